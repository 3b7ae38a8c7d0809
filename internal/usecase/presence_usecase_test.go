package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otomart/internal/domain/entity"
)

func TestHeartbeatMakesUserOnline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.presence.Heartbeat(ctx, "buyer-1", true))

	status, err := env.presence.Get(ctx, "buyer-1")
	require.NoError(t, err)
	assert.True(t, status.IsOnline)
	assert.WithinDuration(t, time.Now(), status.LastSeenAt, time.Second)
}

func TestStaleHeartbeatReadsOffline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// An ungraceful disconnect leaves a stale "online" row behind; the
	// staleness window (20s here) turns it into offline at read time.
	require.NoError(t, env.presRepo.Upsert(ctx, &entity.PresenceRecord{
		UserID:     "seller-1",
		IsOnline:   true,
		LastSeenAt: time.Now().Add(-time.Minute),
	}))

	status, err := env.presence.Get(ctx, "seller-1")
	require.NoError(t, err)
	assert.False(t, status.IsOnline)
}

func TestFreshHeartbeatSupersedesStaleRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.presRepo.Upsert(ctx, &entity.PresenceRecord{
		UserID:     "buyer-1",
		IsOnline:   true,
		LastSeenAt: time.Now().Add(-time.Minute),
	}))
	require.NoError(t, env.presence.Heartbeat(ctx, "buyer-1", true))

	online, err := env.presence.IsOnline(ctx, "buyer-1")
	require.NoError(t, err)
	assert.True(t, online)
}

func TestExplicitOfflineHeartbeat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.presence.Heartbeat(ctx, "buyer-1", false))

	status, err := env.presence.Get(ctx, "buyer-1")
	require.NoError(t, err)
	assert.False(t, status.IsOnline)
}

func TestUnknownUserIsOffline(t *testing.T) {
	env := newTestEnv(t)

	status, err := env.presence.Get(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.False(t, status.IsOnline)
	assert.True(t, status.LastSeenAt.IsZero())
}
