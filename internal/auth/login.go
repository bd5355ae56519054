package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"sentiment-dashboard/internal/storage"
)

const PendingLoginTTL = storage.PendingLoginTTL

var ErrUnknownLoginState = errors.New("auth: unknown or expired login state")

// LoginURL points the user at the GitHub flow of the auth service, asking it
// to come back to frontendURL/auth/callback. A device login state travels as
// a path segment because the auth service appends ?token= to the callback.
func LoginURL(authBase, frontendURL, state string) string {
	callback := strings.TrimRight(frontendURL, "/") + "/auth/callback"
	if state != "" {
		callback += "/" + url.PathEscape(state)
	}
	return strings.TrimRight(authBase, "/") + "/auth/github?callback_url=" + url.QueryEscape(callback)
}

// BeginDeviceLogin parks namespace under a fresh state so a browser that
// completes the login elsewhere can deliver the token to it.
func BeginDeviceLogin(ctx context.Context, logins storage.Store, namespace string, now time.Time) (string, error) {
	state := uuid.NewString()
	raw, err := json.Marshal(storage.PendingLogin{Namespace: namespace, ExpiresAt: now.Add(PendingLoginTTL)})
	if err != nil {
		return "", err
	}
	if err := logins.Set(ctx, storage.PendingLoginKey(state), string(raw)); err != nil {
		return "", fmt.Errorf("store pending login: %w", err)
	}
	return state, nil
}

// CompleteDeviceLogin resolves and consumes a pending login.
func CompleteDeviceLogin(ctx context.Context, logins storage.Store, state string, now time.Time) (string, error) {
	if state == "" {
		return "", ErrUnknownLoginState
	}
	key := storage.PendingLoginKey(state)
	raw, ok, err := logins.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read pending login: %w", err)
	}
	if !ok {
		return "", ErrUnknownLoginState
	}
	if err := logins.Delete(ctx, key); err != nil {
		log.WithError(err).Warn("delete pending login")
	}

	var pending storage.PendingLogin
	if err := json.Unmarshal([]byte(raw), &pending); err != nil || pending.Namespace == "" {
		return "", ErrUnknownLoginState
	}
	if now.After(pending.ExpiresAt) {
		return "", ErrUnknownLoginState
	}
	return pending.Namespace, nil
}
