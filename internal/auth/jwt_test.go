package auth

import (
	"testing"
)

func TestJWTRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	if err := InitJWTSecret(); err != nil {
		t.Fatalf("InitJWTSecret failed: %v", err)
	}

	token, err := GenerateJWT(42, "ana@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	userID, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT failed: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user id 42, got %d", userID)
	}
}

func TestVerifyJWT_RejectsTamperedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	if err := InitJWTSecret(); err != nil {
		t.Fatalf("InitJWTSecret failed: %v", err)
	}

	token, err := GenerateJWT(42, "ana@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"

	if _, err := VerifyJWT(tampered); err == nil {
		t.Fatal("expected tampered token to be rejected")
	}
}

func TestVerifyJWT_RejectsTokenSignedWithOtherSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	if err := InitJWTSecret(); err != nil {
		t.Fatalf("InitJWTSecret failed: %v", err)
	}

	token, err := GenerateJWT(42, "ana@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	t.Setenv("JWT_SECRET", "second-secret")
	if err := InitJWTSecret(); err != nil {
		t.Fatalf("InitJWTSecret failed: %v", err)
	}

	if _, err := VerifyJWT(token); err == nil {
		t.Fatal("expected token from another secret to be rejected")
	}
}
