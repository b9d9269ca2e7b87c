package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/visioncall/calling-api/internal/core/domain"
)

func newAuthService(repo *stubUserRepo) *AuthService {
	return NewAuthService(repo, stubHasher{}, "secret", time.Hour)
}

func TestAuthService_Authenticate_Success(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(repo, "ann@example.com", "s3cret")
	svc := newAuthService(repo)

	user, err := svc.Authenticate(context.Background(), "ann@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if user.Email != "ann@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAuthService_Authenticate_EmailCaseInsensitive(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(repo, "ann@example.com", "s3cret")
	svc := newAuthService(repo)

	if _, err := svc.Authenticate(context.Background(), " Ann@Example.COM ", "s3cret"); err != nil {
		t.Fatalf("expected case-insensitive lookup, got %v", err)
	}
}

func TestAuthService_Authenticate_MissingEmail(t *testing.T) {
	svc := newAuthService(newStubUserRepo())

	if _, err := svc.Authenticate(context.Background(), "", "pw"); !errors.Is(err, domain.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestAuthService_Authenticate_UnknownEmail(t *testing.T) {
	svc := newAuthService(newStubUserRepo())

	if _, err := svc.Authenticate(context.Background(), "ghost@example.com", "pw"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_Authenticate_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(repo, "ann@example.com", "s3cret")
	svc := newAuthService(repo)

	if _, err := svc.Authenticate(context.Background(), "ann@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

// Activation is checked after password verification: a correct password on an
// inactive account must fail ErrNotActivated, never ErrInvalidCredentials.
func TestAuthService_Authenticate_InactiveAccount(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&domain.User{
		Email:        "ann@example.com",
		PasswordHash: "hashed:s3cret",
		Active:       false,
	})
	svc := newAuthService(repo)

	_, err := svc.Authenticate(context.Background(), "ann@example.com", "s3cret")
	if !errors.Is(err, domain.ErrNotActivated) {
		t.Fatalf("expected ErrNotActivated, got %v", err)
	}

	// Wrong password on an inactive account still fails the password check first.
	if _, err := svc.Authenticate(context.Background(), "ann@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_MintsTokenAndStoresPushAddress(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedUser(repo, "ann@example.com", "s3cret")
	svc := newAuthService(repo)

	token, user, err := svc.Login(context.Background(), "ann@example.com", "s3cret", "fcm-device-1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.FCMToken != "fcm-device-1" {
		t.Fatalf("expected push address on returned user")
	}
	if repo.get(seeded.ID).FCMToken != "fcm-device-1" {
		t.Fatalf("expected push address persisted")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != seeded.ID || claims["role"] != domain.RoleUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_Login_WithoutPushAddress(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedUser(repo, "ann@example.com", "s3cret")
	svc := newAuthService(repo)

	token, _, err := svc.Login(context.Background(), "ann@example.com", "s3cret", "")
	if err != nil || token == "" {
		t.Fatalf("expected login without fcm token to succeed, got %v", err)
	}
	if repo.get(seeded.ID).FCMToken != "" {
		t.Fatalf("expected push address untouched")
	}
}
