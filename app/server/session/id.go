package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateID returns 256 random bits, base64url encoded (43 characters).
func GenerateID() (string, error) {
	const size = 32

	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
