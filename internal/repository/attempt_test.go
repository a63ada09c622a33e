package repository

import (
	"context"
	"testing"
	"time"

	"github.com/vibe-gaming/publisher/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAttemptRepository(t *testing.T) (*attemptRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return newAttemptRepository(rdb), mr
}

func TestAttemptRepository_CountSince(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestAttemptRepository(t)
	base := time.Now().Truncate(time.Millisecond)
	window := 10 * time.Second

	for i := 0; i < 3; i++ {
		require.NoError(t, r.Create(ctx, domain.Attempt{IP: "1.1.1.1", URL: "/auth/login", Timestamp: base.Add(time.Duration(i) * time.Second)}, window))
	}
	require.NoError(t, r.Create(ctx, domain.Attempt{IP: "2.2.2.2", URL: "/auth/login", Timestamp: base}, window))
	require.NoError(t, r.Create(ctx, domain.Attempt{IP: "1.1.1.1", URL: "/auth/registration", Timestamp: base}, window))

	n, err := r.CountSince(ctx, "1.1.1.1", "/auth/login", base)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = r.CountSince(ctx, "1.1.1.1", "/auth/login", base.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = r.CountSince(ctx, "3.3.3.3", "/auth/login", base)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAttemptRepository_PrunesOutsideRetention(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestAttemptRepository(t)
	base := time.Now().Truncate(time.Millisecond)
	window := 10 * time.Second

	require.NoError(t, r.Create(ctx, domain.Attempt{IP: "1.1.1.1", URL: "/x", Timestamp: base}, window))
	require.NoError(t, r.Create(ctx, domain.Attempt{IP: "1.1.1.1", URL: "/x", Timestamp: base.Add(11 * time.Second)}, window))

	members, err := mr.ZMembers(attemptKey("1.1.1.1", "/x"))
	require.NoError(t, err)
	assert.Len(t, members, 1)
	assert.Equal(t, window, mr.TTL(attemptKey("1.1.1.1", "/x")))
}

func TestAttemptRepository_DeleteAll(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestAttemptRepository(t)
	now := time.Now()

	require.NoError(t, r.Create(ctx, domain.Attempt{IP: "1.1.1.1", URL: "/a", Timestamp: now}, time.Minute))
	require.NoError(t, r.Create(ctx, domain.Attempt{IP: "2.2.2.2", URL: "/b", Timestamp: now}, time.Minute))
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, r.DeleteAll(ctx))

	assert.False(t, mr.Exists(attemptKey("1.1.1.1", "/a")))
	assert.False(t, mr.Exists(attemptKey("2.2.2.2", "/b")))
	assert.True(t, mr.Exists("unrelated"))
}
