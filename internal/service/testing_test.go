package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTesting_ApplySettings(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "user1", "user1@example.com", "qwerty1")

	env.services.Testing.ApplySettings(Settings{
		AccessTokenTTL:  30 * time.Second,
		RefreshTokenTTL: time.Minute,
		AttemptLimit:    2,
	})

	assert.Equal(t, ThrottlePolicy{Limit: 2, Window: 10 * time.Second}, env.services.Throttle.Policy())

	tokens := env.login(t, "user1", "qwerty1")
	assert.Equal(t, 30*time.Second, tokens.AccessTTL)
	assert.WithinDuration(t, env.clock.Now().Add(time.Minute), tokens.RefreshExpiresAt, time.Second)
}

func TestTesting_ClearAll(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "user1", "user1@example.com", "qwerty1")
	env.login(t, "user1", "qwerty1")
	require.NoError(t, env.services.Throttle.RecordAttempt(ctx, "1.1.1.1", "/x"))

	require.NoError(t, env.services.Testing.ClearAll(ctx))

	assert.Zero(t, env.sessions.Len())
	_, err := env.services.Credentials.Verify(ctx, "user1", "qwerty1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	n, err := env.services.Throttle.CountRecent(ctx, "1.1.1.1", "/x", time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)
}
