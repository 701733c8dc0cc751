package persist

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestVerifyPasswordAgainstBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := NewAccountRepo(nil)
	require.True(t, repo.VerifyPassword(string(hash), "hunter2"))
	require.False(t, repo.VerifyPassword(string(hash), "Hunter2"))
	require.False(t, repo.VerifyPassword("not a bcrypt hash", "hunter2"))
}
