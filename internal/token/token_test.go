package token

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndValidate(t *testing.T) {
	m := NewManager("test-secret", 24*time.Hour)

	tok, err := m.Issue("alice")
	if err != nil {
		t.Fatal("Failed to issue token:", err)
	}

	claims, err := m.Validate(tok)
	if err != nil {
		t.Fatal("Failed to validate token:", err)
	}

	if claims.Username != "alice" {
		t.Errorf("Expected username 'alice', got %s", claims.Username)
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 23*time.Hour || remaining > 24*time.Hour {
		t.Errorf("Expected ~24h expiry, got %v", remaining)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	tok, err := m.Issue("alice")
	if err != nil {
		t.Fatal("Failed to issue token:", err)
	}

	_, err = m.Validate(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	other := NewManager("other-secret", time.Hour)

	tok, err := m.Issue("alice")
	if err != nil {
		t.Fatal("Failed to issue token:", err)
	}

	if _, err := other.Validate(tok); err == nil {
		t.Error("Expected validation to fail with a different secret")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	if _, err := m.Validate("not-a-token"); err == nil {
		t.Error("Expected validation to fail for malformed token")
	}
}

func TestShouldRefresh(t *testing.T) {
	m := NewManager("test-secret", 24*time.Hour)

	tok, err := m.Issue("alice")
	if err != nil {
		t.Fatal("Failed to issue token:", err)
	}

	claims, err := m.Validate(tok)
	if err != nil {
		t.Fatal("Failed to validate token:", err)
	}

	if m.ShouldRefresh(claims) {
		t.Error("Fresh token should not need a refresh")
	}

	short := NewManager("test-secret", time.Minute)
	tok, err = short.Issue("alice")
	if err != nil {
		t.Fatal("Failed to issue token:", err)
	}

	// A one-minute token validated against a 24h manager is far past the
	// 12h refresh midpoint.
	claims, err = m.Validate(tok)
	if err != nil {
		t.Fatal("Failed to validate token:", err)
	}

	if !m.ShouldRefresh(claims) {
		t.Error("Token near expiry should need a refresh")
	}
}
