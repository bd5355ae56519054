// Package auth turns the opaque session token issued by the auth service into
// a user identity and keeps per-client session state.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"sentiment-dashboard/internal/domain"
)

var (
	ErrNoToken      = errors.New("auth: no session token")
	ErrInvalidToken = errors.New("auth: token could not be decoded")
)

type Decoder interface {
	Decode(token string) (*domain.Identity, error)
}

type identityClaims struct {
	UserID      any    `json:"id"`
	Provider    string `json:"provider"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Avatar      string `json:"avatar"`
	jwt.RegisteredClaims
}

func (c *identityClaims) identity() (*domain.Identity, error) {
	id := claimString(c.UserID)
	if id == "" {
		return nil, fmt.Errorf("%w: missing id claim", ErrInvalidToken)
	}
	return &domain.Identity{
		ID:          id,
		Provider:    c.Provider,
		DisplayName: c.DisplayName,
		Email:       c.Email,
		Avatar:      c.Avatar,
	}, nil
}

// The auth service has issued both numeric and string ids.
func claimString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// UnverifiedDecoder reads the claims without checking the signature.
type UnverifiedDecoder struct{}

func (UnverifiedDecoder) Decode(token string) (*domain.Identity, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	claims := &identityClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.identity()
}

// HMACDecoder checks an HS256 signature and, when present, the exp claim.
type HMACDecoder struct {
	secret []byte
}

func NewHMACDecoder(secret string) *HMACDecoder {
	return &HMACDecoder{secret: []byte(secret)}
}

func (d *HMACDecoder) Decode(token string) (*domain.Identity, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return d.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.identity()
}

// DecoderFor picks signature verification whenever a secret is configured.
func DecoderFor(secret string) Decoder {
	if secret == "" {
		return UnverifiedDecoder{}
	}
	return NewHMACDecoder(secret)
}
