package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", string(hash))

	assert.True(t, hasher.Verify("correct horse", hash))
	assert.False(t, hasher.Verify("correct horsf", hash))
	assert.False(t, hasher.Verify("", hash))
}

func TestHashIsSalted(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	a, err := hasher.Hash("secret1")
	require.NoError(t, err)
	b, err := hasher.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDefaultCostIsTen(t *testing.T) {
	hasher := NewPasswordHasher(0)

	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, Cost(hash))
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	assert.False(t, hasher.Verify("secret1", []byte("not-a-hash")))
	assert.Equal(t, 0, Cost([]byte("not-a-hash")))
}

func TestHashTooLong(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	_, err := hasher.Hash(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
