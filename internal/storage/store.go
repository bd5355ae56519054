// Package storage holds the small key/value stores that stand in for a
// browser's persisted storage. Every dashboard client (browser, SSH key,
// local terminal) gets its own namespace; last writer wins per key.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Stable key names shared by every front end.
const (
	TokenKey   = "auth_token"
	HistoryKey = "search_history"

	// LoginNamespace holds pending device logins, keyed by PendingLoginKey.
	LoginNamespace = "login"
)

var ErrInvalidNamespace = errors.New("storage: invalid namespace")

// Store is a client-scoped key/value store.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Namespacer hands out per-client stores sharing one backend connection.
type Namespacer interface {
	Namespace(ns string) (Store, error)
}

// PendingLoginKey is the key under which a device login state is parked.
func PendingLoginKey(state string) string {
	return pendingLoginPrefix + state
}

const (
	pendingLoginPrefix = "pending_login:"

	// PendingLoginTTL bounds how long a device login may wait for its browser.
	PendingLoginTTL = 10 * time.Minute
)

// PendingLogin is the value stored under PendingLoginKey.
type PendingLogin struct {
	Namespace string    `json:"namespace"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Unreadable values count as expired.
func pendingLoginExpired(raw string, now time.Time) bool {
	var p PendingLogin
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return true
	}
	return now.After(p.ExpiresAt)
}

// LoginPurger removes device logins nobody completed. Backends with native
// expiry do not need it.
type LoginPurger interface {
	PurgeExpiredLogins(ctx context.Context, now time.Time) (int64, error)
}

func validNamespace(ns string) bool {
	if ns == "" || len(ns) > 200 {
		return false
	}
	return !strings.ContainsAny(ns, " \t\r\n")
}
