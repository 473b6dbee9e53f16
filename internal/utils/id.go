package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const tokenIDBytes = 16

// NewTokenID returns a random URL-safe id for an issued API token.
func NewTokenID() (string, error) {
	b := make([]byte, tokenIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
