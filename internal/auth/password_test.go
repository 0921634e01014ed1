package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Aa1!aaaa", 19456, 2, 1, 16, 32)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	match, err := VerifyPassword("Aa1!aaaa", hash)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if !match {
		t.Error("VerifyPassword() = false, want true for correct password")
	}

	match, err = VerifyPassword("wrong-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if match {
		t.Error("VerifyPassword() = true, want false for incorrect password")
	}
}

func TestNeedsRehash(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Aa1!aaaa", 19456, 2, 1, 16, 32)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if NeedsRehash(hash, 19456, 2, 1, 16, 32) {
		t.Error("NeedsRehash() = true for matching params, want false")
	}
	if !NeedsRehash(hash, 65536, 3, 2, 16, 32) {
		t.Error("NeedsRehash() = false for changed params, want true")
	}
}
