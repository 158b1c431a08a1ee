package auth

import (
	"testing"
	"time"
)

func TestIssuerNewAccessTokenAndParse(t *testing.T) {
	issuer := NewIssuer("test-secret", 15*time.Minute, 7*24*time.Hour)

	signed, jti, expiresAt, err := issuer.NewAccessToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if signed == "" || jti == "" {
		t.Fatal("expected non-empty token and jti")
	}
	if !expiresAt.After(time.Now()) {
		t.Error("expected expiry in the future")
	}

	claims, err := issuer.Parse(signed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "user@example.com" {
		t.Errorf("got claims %+v, want userID=user-1 email=user@example.com", claims)
	}
	if claims.ID != jti {
		t.Errorf("claims.ID = %q, want %q", claims.ID, jti)
	}
}

func TestIssuerParseRejectsWrongSecret(t *testing.T) {
	issuer := NewIssuer("secret-a", time.Minute, time.Hour)
	signed, _, _, err := issuer.NewAccessToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	other := NewIssuer("secret-b", time.Minute, time.Hour)
	if _, err := other.Parse(signed); err == nil {
		t.Error("expected Parse to reject a token signed with a different secret")
	}
}

func TestIssuerParseRejectsExpiredToken(t *testing.T) {
	issuer := NewIssuer("test-secret", -time.Minute, time.Hour)
	signed, _, _, err := issuer.NewAccessToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, err := issuer.Parse(signed); err == nil {
		t.Error("expected Parse to reject an already-expired token")
	}
}
