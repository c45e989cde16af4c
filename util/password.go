package util

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var (
	jwtSecretByte = []byte(os.Getenv("JWTSECRET"))
	jwtMutex      sync.RWMutex
)

const (
	argonPrefix  = "argon2id$"
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

var ErrInvalidHash = errors.New("invalid password hash format")

// SetJWTSecret updates the key used for token signing. Safe for concurrent use.
func SetJWTSecret(secret string) {
	jwtMutex.Lock()
	defer jwtMutex.Unlock()
	jwtSecretByte = []byte(secret)
}

// GetJWTSecretByte returns a copy of the current JWT secret bytes.
func GetJWTSecretByte() []byte {
	jwtMutex.RLock()
	defer jwtMutex.RUnlock()
	return append([]byte(nil), jwtSecretByte...)
}

// GenerateSalt returns a random base64 salt.
func GenerateSalt() (string, error) {
	b := make([]byte, saltLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(b), nil
}

// HashPasswordArgon2 hashes the password with argon2id. The result is
// "argon2id$<base64 key>"; the salt is stored separately on the user.
func HashPasswordArgon2(password, salt string) (string, error) {
	if salt == "" {
		return "", fmt.Errorf("salt is required")
	}
	key := argon2.IDKey([]byte(password), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return argonPrefix + base64.RawStdEncoding.EncodeToString(key), nil
}

// VerifyPassword compares a plain password with a stored argon2id hash.
func VerifyPassword(password, hashed, salt string) (bool, error) {
	if !strings.HasPrefix(hashed, argonPrefix) {
		return false, ErrInvalidHash
	}
	expected, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(hashed, argonPrefix))
	if err != nil {
		return false, ErrInvalidHash
	}
	key := argon2.IDKey([]byte(password), []byte(salt), argonTime, argonMemory, argonThreads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}
