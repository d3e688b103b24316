package security

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	digest, err := HashPassword("Abcdef1!")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if digest == "Abcdef1!" {
		t.Fatal("digest must not equal the plaintext")
	}
	if !VerifyPassword("Abcdef1!", digest) {
		t.Fatal("expected matching password to verify")
	}
	if VerifyPassword("Abcdef2!", digest) {
		t.Fatal("expected mismatching password to fail")
	}
}

func TestHashIsSalted(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("Abcdef1!")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("Abcdef1!")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password must differ at rest")
	}
}

func TestTruncationBound(t *testing.T) {
	t.Parallel()

	base := strings.Repeat("a", maxPasswordBytes)
	digest, err := HashPassword(base + "tail-one")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	// Bytes past the bound are ignored on both sides.
	if !VerifyPassword(base+"tail-two", digest) {
		t.Fatal("expected passwords identical up to the bound to verify")
	}
	if VerifyPassword(base[:maxPasswordBytes-1]+"x", digest) {
		t.Fatal("expected differing byte inside the bound to fail")
	}
}

func TestVerifyMalformedDigest(t *testing.T) {
	t.Parallel()

	if VerifyPassword("whatever", "not-a-bcrypt-digest") {
		t.Fatal("malformed digest must not verify")
	}
	if VerifyPassword("whatever", "") {
		t.Fatal("empty digest must not verify")
	}
}

func TestHashEmptyPassword(t *testing.T) {
	t.Parallel()

	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}
