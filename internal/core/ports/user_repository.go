package ports

import (
	"context"

	"github.com/visioncall/calling-api/internal/core/domain"
)

// UserRepository defines persistence operations for accounts. The store is
// the uniqueness authority for email, activation keys and forgot-password
// keys: a write that collides with an outstanding token returns
// domain.ErrDuplicateToken, a duplicate email returns domain.ErrEmailTaken.
//
// Consume operations are single conditional updates keyed on the token, not
// read-then-write, so two racing consumers can never both succeed.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByForgotPasswordKey(ctx context.Context, key string) (*domain.User, error)

	// UpdatePassword replaces the stored password hash and nothing else.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error

	// SetForgotPasswordKey writes a fresh reset key, overwriting any
	// outstanding one (last writer wins).
	SetForgotPasswordKey(ctx context.Context, id string, key string) error

	// ConsumeForgotPasswordKey atomically sets the new password hash and
	// clears the key on the account currently holding it. An unknown key is
	// indistinguishable from an already-consumed one: both return
	// domain.ErrUserNotFound.
	ConsumeForgotPasswordKey(ctx context.Context, key string, passwordHash string) error

	// ConsumeActivationKey atomically sets active=true and clears the key on
	// the account currently holding it, returning the activated account.
	ConsumeActivationKey(ctx context.Context, key string) (*domain.User, error)

	// SetFCMToken registers the account's single push address, overwriting
	// any previous one.
	SetFCMToken(ctx context.Context, id string, fcmToken string) error
}
