package domain

import (
	"crypto/sha256"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(42, ActivationTokenTTL, UserActivationScope)
	require.NoError(t, err)

	assert.Equal(t, 42, token.UserID)
	assert.Equal(t, UserActivationScope, token.Scope)
	assert.NotEmpty(t, token.Plaintext)
	assert.WithinDuration(t, time.Now().Add(ActivationTokenTTL), token.Expiry, time.Minute)

	hash := sha256.Sum256([]byte(token.Plaintext))
	assert.Equal(t, hash[:], token.Hash, "stored hash must match the plaintext digest")
}
