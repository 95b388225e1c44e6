// Package auth holds the password credential primitives. Passwords are stored
// only as salted bcrypt hashes; the raw value never leaves the request scope.
package auth

import "golang.org/x/crypto/bcrypt"

// dummyHash is a bcrypt hash of an unguessable value. It is compared against
// when the user lookup misses, so the failure path costs roughly the same
// whether the email or the password was wrong.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword derives a salted bcrypt hash of password. bcrypt generates a
// fresh salt per call, so re-hashing the same password yields a new hash.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword verifies password against a stored hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnCompare runs a throwaway bcrypt comparison.
func BurnCompare(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
