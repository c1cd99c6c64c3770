package services

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestSessionTokens(t *testing.T) {
	tokens := NewTokenIssuer(testSecret, time.Hour, time.Minute)

	token, expires, err := tokens.IssueSession("user1")
	if err != nil {
		t.Fatalf("IssueSession failed: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Error("Expected expiry in the future")
	}

	userID, err := tokens.ParseSession(token)
	if err != nil {
		t.Fatalf("ParseSession failed: %v", err)
	}
	if userID != "user1" {
		t.Errorf("Expected user1, got %s", userID)
	}

	other := NewTokenIssuer("ffffffffffffffffffffffffffffffff", time.Hour, time.Minute)
	if _, err := other.ParseSession(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for a foreign signature, got %v", err)
	}
}

func TestSessionTokenExpiry(t *testing.T) {
	tokens := NewTokenIssuer(testSecret, time.Hour, time.Minute)
	now := time.Now()
	tokens.now = func() time.Time { return now }

	token, _, err := tokens.IssueSession("user1")
	if err != nil {
		t.Fatalf("IssueSession failed: %v", err)
	}

	tokens.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, err := tokens.ParseSession(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestFileViewTokens(t *testing.T) {
	tokens := NewTokenIssuer(testSecret, time.Hour, time.Minute)

	token, _, err := tokens.IssueFileView("materials", "f1")
	if err != nil {
		t.Fatalf("IssueFileView failed: %v", err)
	}

	if err := tokens.VerifyFileView(token, "materials", "f1"); err != nil {
		t.Errorf("Expected valid token, got %v", err)
	}
	if err := tokens.VerifyFileView(token, "materials", "f2"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for another file, got %v", err)
	}

	// A file token is not a session
	if _, err := tokens.ParseSession(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken when used as a session, got %v", err)
	}
}
