package util

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSecureToken returns n bytes from crypto/rand, hex encoded
func GenerateSecureToken(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
