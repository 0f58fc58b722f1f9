package revocation

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RevokeUntilExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Revoke(ctx, "jti-1", now.Add(time.Minute)))

	ok, err := s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = s.IsRevoked(ctx, "jti-2")
	assert.False(t, ok)

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	ok, _ = s.IsRevoked(ctx, "jti-1")
	assert.False(t, ok)
}

func TestMemoryStore_PastExpiryIgnoredAndPruned(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Revoke(ctx, "old", now.Add(time.Second)))
	require.NoError(t, s.Revoke(ctx, "stale", now.Add(-time.Second)))
	assert.NotContains(t, s.revoked, "stale")

	s.now = func() time.Time { return now.Add(time.Minute) }
	require.NoError(t, s.Revoke(ctx, "new", now.Add(time.Hour)))
	assert.NotContains(t, s.revoked, "old")
	assert.Contains(t, s.revoked, "new")
}

func TestNewRedisClient_Addr(t *testing.T) {
	c, err := NewRedisClient("localhost:6379")
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "localhost:6379", c.Options().Addr)

	c2, err := NewRedisClient("redis://:secret@cache:6380/2")
	require.NoError(t, err)
	defer c2.Close()
	assert.Equal(t, "cache:6380", c2.Options().Addr)
	assert.Equal(t, 2, c2.Options().DB)

	_, err = NewRedisClient("redis://bad host")
	assert.Error(t, err)
}

// Runs against a real server when ACCOUNTS_TEST_REDIS_ADDR is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("ACCOUNTS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ACCOUNTS_TEST_REDIS_ADDR not set")
	}
	client, err := NewRedisClient(addr)
	require.NoError(t, err)
	s := NewRedisStore(client)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	jti := uuid.NewString()
	ok, err := s.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Revoke(ctx, jti, time.Now().Add(time.Minute)))
	ok, err = s.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, ok)
}
