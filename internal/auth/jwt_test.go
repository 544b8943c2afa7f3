package auth

import (
	"context"
	"testing"

	jwt "github.com/golang-jwt/jwt/v5"

	"quickbite/internal/testutil"
)

const testSecret = "test-secret"

func TestVerify_ValidToken(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, testSecret, "alice")
	v := NewHS256Verifier(testSecret)
	p, err := v.Verify(context.Background(), tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.UID != "alice" {
		t.Fatalf("principal mismatch: %+v", p)
	}
}

func TestVerify_SubjectFallback(t *testing.T) {
	// Tokens without a uid claim still identify via the registered subject.
	claims := jwt.RegisteredClaims{Subject: "bob"}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	p, err := NewHS256Verifier(testSecret).Verify(context.Background(), tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.UID != "bob" {
		t.Fatalf("expected subject fallback, got %+v", p)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, "other-secret", "alice")
	if _, err := NewHS256Verifier(testSecret).Verify(context.Background(), tok); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestVerify_NoIdentity(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, testSecret, "")
	if _, err := NewHS256Verifier(testSecret).Verify(context.Background(), tok); err == nil {
		t.Fatal("expected error for token without identity")
	}
}

func TestVerify_RejectsUnexpectedAlg(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": "mallory"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewHS256Verifier(testSecret).Verify(context.Background(), tok); err == nil {
		t.Fatal("expected error for alg none token")
	}
}
