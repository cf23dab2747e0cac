package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// newID returns an opaque 32-character hex identifier.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewCSRFToken returns a random token for form submissions.
func NewCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
