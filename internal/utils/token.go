package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenKeyBytes is the amount of entropy in an API token key.
const TokenKeyBytes = 20

// GenerateTokenKey returns a random 40 character hex key.
func GenerateTokenKey() (string, error) {
	buf := make([]byte, TokenKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
