package auth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// unusablePrefix marks a hash that no password can ever match.
const unusablePrefix = "!"

// HashPassword creates a bcrypt hash from the given plaintext password.
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// UnusablePassword hashes a random secret and prefixes it so the result is
// never a valid bcrypt hash. Accounts here authenticate by confirmation code
// only, but the column still carries per-user entropy that feeds the code
// fingerprint.
func UnusablePassword() (string, error) {
	hash, err := HashPassword(uuid.NewString())
	if err != nil {
		return "", err
	}
	return unusablePrefix + hash, nil
}
