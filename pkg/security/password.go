package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt keys at most 72 bytes of input. Longer passwords are truncated
// to that bound before hashing AND before verification, so the two
// sides always agree. This is a documented lossy policy, not a bug.
const maxPasswordBytes = 72

const hashCost = bcrypt.DefaultCost

// HashPassword returns a salted bcrypt digest for the provided password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	digest, err := bcrypt.GenerateFromPassword(truncate(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// VerifyPassword reports whether the candidate matches the stored
// digest. A malformed digest is treated as a mismatch, never an error.
func VerifyPassword(candidate, encoded string) bool {
	if encoded == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(encoded), truncate(candidate)) == nil
}

func truncate(password string) []byte {
	raw := []byte(password)
	if len(raw) > maxPasswordBytes {
		raw = raw[:maxPasswordBytes]
	}
	return raw
}
