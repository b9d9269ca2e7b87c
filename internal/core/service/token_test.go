package service

import (
	"encoding/base64"
	"testing"
)

func TestTokenIssuer_Issue(t *testing.T) {
	var issuer TokenIssuer

	token := issuer.Issue()
	if len(token) != 43 {
		t.Fatalf("expected 43-character token, got %d", len(token))
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not URL-safe base64: %v", err)
	}
	if len(raw) != tokenBytes {
		t.Fatalf("expected %d bytes of entropy, got %d", tokenBytes, len(raw))
	}
}

func TestTokenIssuer_IssueIsFresh(t *testing.T) {
	var issuer TokenIssuer

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		token := issuer.Issue()
		if _, dup := seen[token]; dup {
			t.Fatalf("issuer returned a repeated token")
		}
		seen[token] = struct{}{}
	}
}
