package hmactoken

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/meiwa-tech/inquiry-classifier/internal/core/domain"
)

func TestVerifyRoundTrip(t *testing.T) {
	verifier := NewVerifier("test-secret")

	token, err := verifier.CreateToken("cus_123", "client", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	identity, err := verifier.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ClientID != "cus_123" || identity.Role != "client" {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	verifier := NewVerifier("test-secret")

	token, _ := verifier.CreateToken("cus_123", "client", time.Hour)
	adminVerifier := NewVerifier("test-secret")
	forged, _ := adminVerifier.CreateToken("cus_123", "admin", time.Hour)

	encoded, _, _ := strings.Cut(forged, ".")
	_, signature, _ := strings.Cut(token, ".")
	tampered := encoded + "." + signature

	if _, err := verifier.Verify(context.Background(), tampered); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for tampered payload, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewVerifier("secret-a")
	verifier := NewVerifier("secret-b")

	token, _ := issuer.CreateToken("cus_123", "client", time.Hour)
	if _, err := verifier.Verify(context.Background(), token); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for wrong secret, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	verifier := NewVerifier("test-secret")

	issued := time.Now()
	verifier.now = func() time.Time { return issued }
	token, _ := verifier.CreateToken("cus_123", "client", time.Minute)

	verifier.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := verifier.Verify(context.Background(), token); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for expired token, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	verifier := NewVerifier("test-secret")

	for _, token := range []string{"", "no-dot", "a.b.c", "!!!.???"} {
		if _, err := verifier.Verify(context.Background(), token); !domain.IsKind(err, domain.ErrUnauthorized) {
			t.Fatalf("expected unauthorized for %q, got %v", token, err)
		}
	}
}

func TestCreateTokenRejectsSeparatorInClientID(t *testing.T) {
	verifier := NewVerifier("test-secret")

	if _, err := verifier.CreateToken("cus|123", "client", time.Hour); err == nil {
		t.Fatalf("separator in client id must be rejected")
	}
}
