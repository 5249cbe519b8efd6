package utils

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("longpass1", 4)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if hash == "longpass1" {
		t.Fatalf("hash must not equal the plain password")
	}
	if !VerifyPassword(hash, "longpass1") {
		t.Fatalf("expected password to verify")
	}
	if VerifyPassword(hash, "wrongpass") {
		t.Fatalf("expected wrong password to fail")
	}
}
