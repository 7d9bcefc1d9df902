package core

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// 32 bytes keeps the opaque value comfortably above the 128-bit entropy
// floor for refresh credentials.
const refreshTokenEntropyBytes = 32

func generateRefreshTokenValue() (string, error) {
	raw := make([]byte, refreshTokenEntropyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("core: generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func newRefreshToken(accountID string, value string, now time.Time, ttl time.Duration) RefreshToken {
	return RefreshToken{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Token:     value,
		ExpiresAt: now.Add(ttl),
		Revoked:   false,
		CreatedAt: now,
	}
}
