// Package hash provides the bcrypt implementation of ports.PasswordHasher.
package hash

import "golang.org/x/crypto/bcrypt"

// BcryptHasher hashes secrets with bcrypt. Verification is constant-time via
// bcrypt.CompareHashAndPassword.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using the given cost; values below
// bcrypt.MinCost fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(secret string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h *BcryptHasher) Verify(secret string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
