package util

import (
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost = 12

	// MinPasswordLength is the shortest password accepted at signup.
	MinPasswordLength = 6

	// MaxPasswordBytes is the longest input bcrypt will hash.
	MaxPasswordBytes = 72
)

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword reports whether password matches hashedPassword.
func VerifyPassword(hashedPassword, password string) bool {
	// a malformed hash is reported as a mismatch
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
