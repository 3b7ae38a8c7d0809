package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 10*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 20*time.Second, cfg.PresenceStaleness)
	assert.Equal(t, 3*time.Second, cfg.ReconcileInterval)
}

func TestStalenessClampedToTwoHeartbeats(t *testing.T) {
	t.Setenv("HEARTBEAT_INTERVAL_SECONDS", "30")
	t.Setenv("PRESENCE_STALENESS_SECONDS", "15")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.PresenceStaleness)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RECONCILE_INTERVAL_SECONDS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 7*time.Second, cfg.ReconcileInterval)
}
