package auth

import (
	"errors"
	"testing"
	"time"

	"resumai/internal/common"
)

func TestSessionRoundTrip(t *testing.T) {
	sessions := NewSessions("test-secret", time.Hour)

	token, err := sessions.Issue("user-123", "user@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	userID, email, err := sessions.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-123" || email != "user@example.com" {
		t.Fatalf("claims = %q %q", userID, email)
	}
}

func TestSessionExpired(t *testing.T) {
	sessions := NewSessions("test-secret", -time.Minute)

	token, err := sessions.Issue("user-123", "user@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, _, err = sessions.Verify(token)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("want ErrSessionExpired, got %v", err)
	}
	if !errors.Is(err, common.ErrUnauthorized) {
		t.Fatal("expired session must map to ErrUnauthorized")
	}
}

func TestSessionWrongSecret(t *testing.T) {
	token, err := NewSessions("secret-a", time.Hour).Issue("user-123", "user@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, _, err = NewSessions("secret-b", time.Hour).Verify(token)
	if !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("want ErrSessionInvalid, got %v", err)
	}
	if errors.Is(err, ErrSessionExpired) {
		t.Fatal("wrong secret must not report as expired")
	}
}

func TestSessionGarbageToken(t *testing.T) {
	sessions := NewSessions("test-secret", time.Hour)
	if _, _, err := sessions.Verify("not-a-jwt"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("want ErrSessionInvalid, got %v", err)
	}
}
