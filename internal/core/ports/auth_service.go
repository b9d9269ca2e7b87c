package ports

import (
	"context"

	"github.com/visioncall/calling-api/internal/core/domain"
)

// AuthService verifies login credentials and activation status.
type AuthService interface {
	// Authenticate checks email and password against the store. Activation
	// is checked after password verification: a correct password on an
	// inactive account fails domain.ErrNotActivated, never
	// domain.ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// Login authenticates, registers the device push address when provided,
	// and returns a signed session token alongside the account.
	Login(ctx context.Context, email, password, fcmToken string) (string, *domain.User, error)
}
