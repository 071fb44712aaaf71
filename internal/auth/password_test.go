package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correcthorse", 4)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	if err := CheckPassword("correcthorse", hash); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := CheckPassword("batterystaple", hash); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestHashPasswordTooShort(t *testing.T) {
	_, err := HashPassword("short", 4)
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestHashPasswordTooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73), 4)
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestGenerateAPIToken(t *testing.T) {
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if len(plaintext) != 64 {
		t.Errorf("plaintext length = %d, expected 64 hex chars", len(plaintext))
	}
	if hash != HashToken(plaintext) {
		t.Error("hash does not match HashToken(plaintext)")
	}
	if hash == plaintext {
		t.Error("hash must differ from plaintext")
	}

	// Tokens are unique
	other, _, err := GenerateAPIToken()
	if err != nil {
		t.Fatalf("generate second token: %v", err)
	}
	if other == plaintext {
		t.Error("two generated tokens should not collide")
	}
}
