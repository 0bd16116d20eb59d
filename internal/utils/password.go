package utils

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var legacyHash = regexp.MustCompile(`^[0-9a-f]{128}$`)

// IsLegacyPasshash reports whether h is a SHA-512 hex digest written by the
// fixture loader rather than a bcrypt hash.
func IsLegacyPasshash(h string) bool { return legacyHash.MatchString(h) }

// LegacyPasshash computes sha512(password + ":" + sha512(accountName)),
// both hex encoded.
func LegacyPasshash(accountName, password string) string {
	return sha512Hex(password + ":" + sha512Hex(accountName))
}

func sha512Hex(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}

// CheckPasshash verifies password against a stored hash of either format.
// legacy is true when the stored hash should be upgraded to bcrypt.
func CheckPasshash(stored, accountName, password string) (ok, legacy bool) {
	if IsLegacyPasshash(stored) {
		want := LegacyPasshash(accountName, password)
		return subtle.ConstantTimeCompare([]byte(stored), []byte(want)) == 1, true
	}
	return VerifyPassword(stored, password), false
}
