package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// NewDeviceToken mints an opaque long-lived device credential. The token is
// returned to the client; only its hash is ever persisted server-side.
func NewDeviceToken() (token, tokenHash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("failed to generate device token: %w", err)
	}
	token = hex.EncodeToString(b)
	return token, HashDeviceToken(token), nil
}

// HashDeviceToken returns the hex-encoded SHA-256 of a device token.
// Device tokens are high-entropy random values, so an unsalted fast hash is
// the right lookup key.
func HashDeviceToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
