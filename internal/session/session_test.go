package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s := New("user-1")
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, "user-1", s.UserID)
	assert.Equal(t, s.CreatedAt.Add(TTL), s.ExpiresAt)
	assert.False(t, s.Expired(time.Now()))
	assert.True(t, s.Expired(time.Now().Add(TTL+time.Minute)))

	assert.NotEqual(t, s.Token, New("user-1").Token)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	require.NotEqual(t, "correct-horse", hash)

	assert.NoError(t, CheckPassword(hash, "correct-horse"))
	assert.Error(t, CheckPassword(hash, "wrong-password"))
	assert.Error(t, CheckPassword("not-a-hash", "correct-horse"))
}
