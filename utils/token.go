package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateRandomToken returns n random bytes, URL-safe base64 encoded.
func GenerateRandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
