// Package rtc provides the media token implementation of
// ports.MediaTokenProvider.
package rtc

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/visioncall/calling-api/internal/core/domain"
)

const defaultTokenTTL = time.Hour

// TokenProvider mints short-lived access tokens for the real-time-media
// session. Tokens are HS256-signed and bind the session code to the account
// joining it; the media gateway shares the secret and validates on join.
type TokenProvider struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenProvider creates a TokenProvider. A non-positive ttl falls back to
// one hour.
func NewTokenProvider(secret string, ttl time.Duration) *TokenProvider {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenProvider{secret: []byte(secret), ttl: ttl}
}

// MintToken returns a signed token for accountID to join sessionCode.
func (p *TokenProvider) MintToken(sessionCode string, accountID string) (string, error) {
	if sessionCode == "" || accountID == "" {
		return "", domain.ErrMissingSignalingData
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":          accountID,
		"session_code": sessionCode,
		"iat":          now.Unix(),
		"exp":          now.Add(p.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(p.secret)
}
