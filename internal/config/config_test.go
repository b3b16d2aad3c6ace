package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	require.Equal(t, "data/wellness.db", cfg.Database.Path)
	require.Empty(t, cfg.Auth.JWTSecret)
	require.Equal(t, 60, cfg.Auth.AccessTTLMinutes)
	require.Equal(t, 720, cfg.Auth.RefreshTTLHours)
	require.Equal(t, 5, cfg.Lockout.MaxAttempts)
	require.Equal(t, 15, cfg.Lockout.LockMinutes)
	require.Empty(t, cfg.Storage.Bucket)
	require.Equal(t, "wellness-assets", cfg.Storage.KeyPrefix)
	require.Equal(t, "data/uploads", cfg.Uploads.Dir)
	require.Equal(t, "/uploads", cfg.Uploads.BaseURL)
	require.True(t, cfg.Seed.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("WELLNESS_SERVER_ADDR", "127.0.0.1:9090")
	t.Setenv("WELLNESS_AUTH_JWTSECRET", "env-secret")
	t.Setenv("WELLNESS_AUTH_ACCESSTTLMINUTES", "5")
	t.Setenv("WELLNESS_LOCKOUT_MAXATTEMPTS", "3")
	t.Setenv("WELLNESS_SEED_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	require.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	require.Equal(t, 5, cfg.Auth.AccessTTLMinutes)
	require.Equal(t, 3, cfg.Lockout.MaxAttempts)
	require.False(t, cfg.Seed.Enabled)
}
