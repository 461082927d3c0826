package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/questify/questify-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth() *AuthService {
	return NewAuthService(&config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
}

func TestTokenRoundTrip(t *testing.T) {
	auth := newTestAuth()
	userID := uuid.New()

	token, err := auth.GenerateToken(userID, true)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user %s, got %s", userID, claims.UserID)
	}
	if !claims.IsAdmin {
		t.Fatal("expected admin flag preserved")
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	auth := newTestAuth()
	token, err := auth.GenerateToken(uuid.New(), false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := NewAuthService(&config.Config{JWTSecret: "different-secret", JWTExpiry: time.Hour})
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail with a different secret")
	}
}

func TestPasswordHashAndCheck(t *testing.T) {
	auth := newTestAuth()

	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := auth.CheckPassword(hash, "password123"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := auth.CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
