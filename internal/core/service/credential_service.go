package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/visioncall/calling-api/internal/core/domain"
	"github.com/visioncall/calling-api/internal/core/ports"
)

const mailTimeout = 10 * time.Second

// ResetThrottle limits how often reset mails go out for a single address.
type ResetThrottle interface {
	// Allow reports whether another reset request may be served for email.
	Allow(ctx context.Context, email string) (bool, error)
}

// CredentialService owns the credential token lifecycle: registration with an
// activation key, activation-key consumption, password change, forgot-password
// issuance and reset-key consumption.
type CredentialService struct {
	users    ports.UserRepository
	hasher   ports.PasswordHasher
	mailer   ports.MailSender
	issuer   TokenIssuer
	throttle ResetThrottle // nil disables throttling
	hostname string        // base URL embedded in mail links
	log      zerolog.Logger
}

func NewCredentialService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	mailer ports.MailSender,
	throttle ResetThrottle,
	hostname string,
	log zerolog.Logger,
) *CredentialService {
	return &CredentialService{
		users:    users,
		hasher:   hasher,
		mailer:   mailer,
		throttle: throttle,
		hostname: hostname,
		log:      log,
	}
}

// Register creates an inactive account holding a fresh activation key. The
// verification mail is dispatched fire-and-forget: a mail failure is logged
// and never fails the registration.
func (s *CredentialService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, domain.ErrMissingField
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Name:         name,
		Active:       false,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for attempt := 0; attempt < tokenWriteAttempts; attempt++ {
		user.ActivationKey = s.issuer.Issue()

		created, err := s.users.Create(ctx, user)
		if errors.Is(err, domain.ErrDuplicateToken) {
			s.log.Warn().Int("attempt", attempt+1).Msg("activation key collision, reissuing")
			continue
		}
		if err != nil {
			return nil, err
		}

		s.log.Info().Str("user_id", created.ID).Str("email", created.Email).Msg("account registered")
		s.sendMailAsync(created.Email, "Verify Email ID", s.activationMailBody(created))
		return created, nil
	}

	return nil, domain.ErrTokenAllocationExhausted
}

// Activate consumes an activation key. The store clears the key and sets
// active=true in a single conditional update, so a consumed key can never be
// replayed: re-submitting it fails ErrUserNotFound like any unknown key.
func (s *CredentialService) Activate(ctx context.Context, activationKey string) (*domain.User, error) {
	if activationKey == "" {
		return nil, domain.ErrUserNotFound
	}

	user, err := s.users.ConsumeActivationKey(ctx, activationKey)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("account activated")
	return user, nil
}

// ChangePassword replaces the password after verifying the current one. The
// no-op check verifies the candidate against the current stored hash before
// hashing; a match means nothing would change.
func (s *CredentialService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return domain.ErrMissingField
	}

	user, err := s.users.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	if s.hasher.Verify(newPassword, user.PasswordHash) {
		return domain.ErrNoOpChange
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("change password: hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password changed")
	return nil
}

// RequestPasswordReset issues a fresh reset key and mails the reset link.
// Re-invoking it overwrites the outstanding key, invalidating the old link
// (last writer wins). The mail is fire-and-forget.
func (s *CredentialService) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return domain.ErrMissingField
	}
	email = normalizeEmail(email)

	if s.throttle != nil {
		ok, err := s.throttle.Allow(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("reset throttle check failed, proceeding")
		} else if !ok {
			return domain.ErrTooManyRequests
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < tokenWriteAttempts; attempt++ {
		key := s.issuer.Issue()

		err := s.users.SetForgotPasswordKey(ctx, user.ID, key)
		if errors.Is(err, domain.ErrDuplicateToken) {
			s.log.Warn().Int("attempt", attempt+1).Msg("reset key collision, reissuing")
			continue
		}
		if err != nil {
			return err
		}

		s.log.Info().Str("user_id", user.ID).Msg("password reset requested")
		s.sendMailAsync(user.Email, "Reset Password", s.resetMailBody(user, key))
		return nil
	}

	return domain.ErrTokenAllocationExhausted
}

// VerifyPasswordResetKey reports whether a reset key is currently
// outstanding, without consuming it.
func (s *CredentialService) VerifyPasswordResetKey(ctx context.Context, key string) error {
	if key == "" {
		return domain.ErrUserNotFound
	}
	_, err := s.users.FindByForgotPasswordKey(ctx, key)
	return err
}

// ResetPassword consumes a reset key. The store sets the new hash and clears
// the key in one conditional update keyed on the token, so a key never
// survives a successful reset and a consumed key is indistinguishable from
// one that was never issued.
func (s *CredentialService) ResetPassword(ctx context.Context, key, newPassword, confirmPassword string) error {
	if newPassword == "" || confirmPassword == "" {
		return domain.ErrMissingField
	}
	if newPassword != confirmPassword {
		return domain.ErrPasswordMismatch
	}
	if key == "" {
		return domain.ErrUserNotFound
	}

	user, err := s.users.FindByForgotPasswordKey(ctx, key)
	if err != nil {
		return err
	}

	if s.hasher.Verify(newPassword, user.PasswordHash) {
		return domain.ErrNoOpChange
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("reset password: hash password: %w", err)
	}

	// Conditional on the key still matching: a concurrent reset or a new
	// request that overwrote the key makes this fail ErrUserNotFound.
	if err := s.users.ConsumeForgotPasswordKey(ctx, key, hash); err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset completed")
	return nil
}

// sendMailAsync dispatches a mail without blocking the caller. Failures are
// logged only; they never fail the triggering operation.
func (s *CredentialService) sendMailAsync(to, subject, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()

		if err := s.mailer.Send(ctx, to, subject, body); err != nil {
			s.log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("mail send failed")
			return
		}
		s.log.Debug().Str("to", to).Str("subject", subject).Msg("mail sent")
	}()
}

func (s *CredentialService) activationMailBody(user *domain.User) string {
	return fmt.Sprintf(
		"<div><h2>Hello %s!</h2><p>Click <a href=%q>here</a> to verify your Email ID.</p></div>",
		user.Name,
		fmt.Sprintf("%s/api/auth/verify-email-id?key=%s", s.hostname, user.ActivationKey),
	)
}

func (s *CredentialService) resetMailBody(user *domain.User, key string) string {
	return fmt.Sprintf(
		"<div><h2>Hello %s!</h2><p>Click <a href=%q>here</a> to reset your Password.</p></div>",
		user.Name,
		fmt.Sprintf("%s/verify-password-key?key=%s", s.hostname, key),
	)
}
