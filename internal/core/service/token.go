package service

import (
	"crypto/rand"
	"encoding/base64"
)

const tokenBytes = 32

// tokenWriteAttempts bounds the issue-then-commit retry loop when a freshly
// issued key collides with an outstanding one.
const tokenWriteAttempts = 3

// TokenIssuer generates single-use keys for the activation and
// forgot-password flows. Keys are drawn from 256 bits of crypto/rand and
// encoded with the URL-safe alphabet, so collisions are negligible in
// practice; the store's uniqueness constraint remains the authority, and the
// issuer is a pure generator that can be re-invoked cheaply on a collision.
type TokenIssuer struct{}

// Issue returns a fresh 43-character URL-safe key.
func (TokenIssuer) Issue() string {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic("token issuer: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
