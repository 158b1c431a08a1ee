package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}
	if !VerifyPassword(hash, "correct-horse-battery-staple") {
		t.Error("expected matching password to verify")
	}
	if VerifyPassword(hash, "wrong-password") {
		t.Error("expected mismatched password to fail verification")
	}
}

func TestHashPasswordProducesDistinctHashes(t *testing.T) {
	h1, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Error("expected bcrypt salts to produce distinct hashes for identical input")
	}
}
