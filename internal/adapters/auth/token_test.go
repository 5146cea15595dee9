package auth

import (
	"testing"
	"time"
)

func TestJWTIssueAndVerify(t *testing.T) {
	issuer := NewJWTIssuer("test-secret")
	verifier := NewJWTVerifier("test-secret")

	token, err := issuer.Issue("u1", "alan@x.com", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	userID, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if userID != "u1" {
		t.Errorf("user id = %q, want u1", userID)
	}
}

func TestJWTVerify_WrongSecret(t *testing.T) {
	issuer := NewJWTIssuer("test-secret")
	verifier := NewJWTVerifier("other-secret")

	token, err := issuer.Issue("u1", "alan@x.com", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected verification failure")
	}
}

func TestJWTVerify_Expired(t *testing.T) {
	issuer := NewJWTIssuer("test-secret")
	verifier := NewJWTVerifier("test-secret")

	token, err := issuer.Issue("u1", "alan@x.com", -time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected verification failure for expired token")
	}
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(4)

	salt, err := hasher.GenerateSalt()
	if err != nil {
		t.Fatalf("salt failed: %v", err)
	}
	hash, err := hasher.Hash(salt, "hunter22")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if err := hasher.Compare(hash, salt, "hunter22"); err != nil {
		t.Errorf("expected match: %v", err)
	}
	if err := hasher.Compare(hash, salt, "wrong"); err == nil {
		t.Error("expected mismatch")
	}
}
