package rtc

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/visioncall/calling-api/internal/core/domain"
)

func TestTokenProviderMintsVerifiableToken(t *testing.T) {
	p := NewTokenProvider("media-secret", time.Hour)

	signed, err := p.MintToken("room-7", "u1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("media-secret"), nil
	})
	if err != nil || !tkn.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims["sub"] != "u1" {
		t.Errorf("sub = %v, want u1", claims["sub"])
	}
	if claims["session_code"] != "room-7" {
		t.Errorf("session_code = %v, want room-7", claims["session_code"])
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		t.Fatalf("exp claim missing")
	}
	ttl := time.Until(time.Unix(int64(exp), 0))
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("exp outside expected window: %v", ttl)
	}
}

func TestTokenProviderRejectsMissingInputs(t *testing.T) {
	p := NewTokenProvider("media-secret", time.Hour)

	if _, err := p.MintToken("", "u1"); !errors.Is(err, domain.ErrMissingSignalingData) {
		t.Errorf("empty session code: got %v", err)
	}
	if _, err := p.MintToken("room-7", ""); !errors.Is(err, domain.ErrMissingSignalingData) {
		t.Errorf("empty account: got %v", err)
	}
}

func TestTokenProviderRejectsWrongSecret(t *testing.T) {
	p := NewTokenProvider("media-secret", time.Hour)

	signed, err := p.MintToken("room-7", "u1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	_, err = jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	if err == nil {
		t.Fatalf("token verified with the wrong secret")
	}
}
