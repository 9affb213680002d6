package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken(t *testing.T) {
	tok := SessionToken()
	// 32 bytes base64url without padding.
	assert.Len(t, tok, 43)
	assert.NotContains(t, tok, "=")
	assert.NotContains(t, tok, "+")
	assert.NotContains(t, tok, "/")

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok := SessionToken()
		require.False(t, seen[tok], "duplicate token")
		seen[tok] = true
	}
}

func TestRandomBytes(t *testing.T) {
	a, err := RandomBytes(32)
	require.NoError(t, err)
	b, err := RandomBytes(32)
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestNormalize(t *testing.T) {
	// NFKC folds compatibility forms; composed and decomposed "é" match.
	assert.Equal(t, Normalize("café"), Normalize("café"))
	assert.Equal(t, "abc", Normalize("abc"))
}
