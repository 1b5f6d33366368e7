// Package auth implements password hashing, access-token issuance and
// verification, and the per-request identity resolution chain.
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a password with bcrypt.
// The salt is generated per call, so hashing the same password twice
// yields different digests.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword verifies a password against a bcrypt digest.
// A malformed digest is treated as a mismatch, never an error.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
