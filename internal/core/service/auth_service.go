package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/visioncall/calling-api/internal/core/domain"
	"github.com/visioncall/calling-api/internal/core/ports"
)

// AuthService implements login verification and session token minting.
type AuthService struct {
	users     ports.UserRepository
	hasher    ports.PasswordHasher
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{users: users, hasher: hasher, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Authenticate verifies the credentials and the activation status of the
// account. The activation check runs after password verification, so an
// inactive account with a correct password fails ErrNotActivated and a wrong
// password always fails ErrInvalidCredentials first.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" {
		return nil, domain.ErrMissingField
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.Active {
		return nil, domain.ErrNotActivated
	}

	return user, nil
}

// Login authenticates and returns a signed session token. A non-empty
// fcmToken replaces the account's registered push address.
func (s *AuthService) Login(ctx context.Context, email, password, fcmToken string) (string, *domain.User, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}

	if fcmToken != "" {
		if err := s.users.SetFCMToken(ctx, user.ID, fcmToken); err != nil {
			return "", nil, err
		}
		user.FCMToken = fcmToken
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Name,
		"role": user.Role,
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// normalizeEmail lowercases and trims an address so lookups are
// case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
