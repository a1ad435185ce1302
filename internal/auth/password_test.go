package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_Roundtrip(t *testing.T) {
	t.Parallel()

	for _, pw := range []string{"secret123", "p@ssw0rd with spaces", "короткий1"} {
		hash, err := HashPassword(pw)
		require.NoError(t, err)
		require.NotEqual(t, pw, hash)
		require.True(t, CheckPassword(pw, hash))
		require.False(t, CheckPassword(pw+"x", hash))
	}
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same-password")
	require.NoError(t, err)
	h2, err := HashPassword("same-password")
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)

	require.True(t, CheckPassword("same-password", h1))
	require.True(t, CheckPassword("same-password", h2))
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	require.False(t, CheckPassword("whatever", ""))
	require.False(t, CheckPassword("whatever", "not-a-bcrypt-hash"))
}
