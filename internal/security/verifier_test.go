package security

import (
	"errors"
	"testing"
	"time"
)

func TestVerify_ValidToken(t *testing.T) {
	verifier, err := NewTestTokenVerifier()
	if err != nil {
		t.Fatalf("NewTestTokenVerifier: %v", err)
	}
	token, err := SignTestToken("user-1", 15*time.Minute)
	if err != nil {
		t.Fatalf("SignTestToken: %v", err)
	}

	userID, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("userID = %q, want %q", userID, "user-1")
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	verifier, err := NewTestTokenVerifier()
	if err != nil {
		t.Fatalf("NewTestTokenVerifier: %v", err)
	}
	token, err := SignTestToken("user-1", -1*time.Minute)
	if err != nil {
		t.Fatalf("SignTestToken: %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify expired token: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerify_MalformedToken(t *testing.T) {
	verifier, err := NewTestTokenVerifier()
	if err != nil {
		t.Fatalf("NewTestTokenVerifier: %v", err)
	}

	_, err = verifier.Verify("not-a-jwt")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify malformed token: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerify_WrongIssuer(t *testing.T) {
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	verifier := NewTokenVerifier(pub, "other-issuer", testAudience)

	token, err := SignTestToken("user-1", 15*time.Minute)
	if err != nil {
		t.Fatalf("SignTestToken: %v", err)
	}
	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify with wrong issuer: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerify_WrongAudience(t *testing.T) {
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	verifier := NewTokenVerifier(pub, testIssuer, "other-audience")

	token, err := SignTestToken("user-1", 15*time.Minute)
	if err != nil {
		t.Fatalf("SignTestToken: %v", err)
	}
	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify with wrong audience: err = %v, want ErrInvalidToken", err)
	}
}
