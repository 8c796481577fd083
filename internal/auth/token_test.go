package auth_test

import (
	"testing"

	"github.com/spec-kit/careteam-transfer/internal/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", 1)

	token, expiresAt, err := manager.GenerateToken("quartz-nightly")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if expiresAt.IsZero() {
		t.Fatal("expiry not set")
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Scheduler != "quartz-nightly" {
		t.Fatalf("scheduler = %s, want quartz-nightly", claims.Scheduler)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	manager := auth.NewTokenManager("secret-a", 1)
	other := auth.NewTokenManager("secret-b", 1)

	token, _, err := manager.GenerateToken("quartz-nightly")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := other.ParseToken(token); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}
