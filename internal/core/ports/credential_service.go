package ports

import (
	"context"

	"github.com/visioncall/calling-api/internal/core/domain"
)

// CredentialService orchestrates account creation and the token lifecycle:
// activation-key consumption, password change, forgot-password issuance and
// reset-key consumption.
type CredentialService interface {
	// Register creates an inactive account holding a fresh activation key
	// and triggers the verification mail (fire-and-forget).
	Register(ctx context.Context, name, email, password string) (*domain.User, error)

	// Activate consumes an activation key: sets the account active and
	// clears the key so it can never be replayed.
	Activate(ctx context.Context, activationKey string) (*domain.User, error)

	ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error

	// RequestPasswordReset issues a fresh reset key, invalidating any
	// outstanding one, and triggers the reset mail (fire-and-forget).
	RequestPasswordReset(ctx context.Context, email string) error

	// VerifyPasswordResetKey reports whether a reset key is currently
	// outstanding, without consuming it.
	VerifyPasswordResetKey(ctx context.Context, key string) error

	// ResetPassword consumes a reset key: atomically stores the new password
	// hash and clears the key in the same update.
	ResetPassword(ctx context.Context, key, newPassword, confirmPassword string) error
}
