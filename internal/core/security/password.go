// Package security implements the salted password hashing used for login.
package security

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	iterations = 10000
	keyLen     = 64
	saltLen    = 128
)

// HashPassword derives a PBKDF2-SHA512 key from password under a fresh
// random salt. Both values come back base64 encoded, ready for storage.
func HashPassword(password string) (hash, salt string, err error) {
	raw := make([]byte, saltLen)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}
	salt = base64.StdEncoding.EncodeToString(raw)

	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLen, sha512.New)
	return base64.StdEncoding.EncodeToString(key), salt, nil
}

// VerifyPassword re-derives the attempt under the stored salt and compares
// in constant time.
func VerifyPassword(savedHash, savedSalt, attempt string) bool {
	key := pbkdf2.Key([]byte(attempt), []byte(savedSalt), iterations, keyLen, sha512.New)
	attemptHash := base64.StdEncoding.EncodeToString(key)
	return subtle.ConstantTimeCompare([]byte(savedHash), []byte(attemptHash)) == 1
}
