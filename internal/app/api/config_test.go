package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, ":8080", cfg.Addr())
	require.Equal(t, client.DefaultHostPort, cfg.TemporalAddress)
	require.Equal(t, client.DefaultNamespace, cfg.TemporalNamespace)
	require.Equal(t, 24*time.Hour, cfg.JWTTTL)
	require.Equal(t, 10, cfg.AdoptRatePerMinute)
	require.False(t, cfg.RunMigrations)
	require.False(t, cfg.TemporalDisabled)
	require.Empty(t, cfg.PostgresDSN)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("POSTGRES_DSN", "postgres://pets@localhost/pets")
	t.Setenv("RUN_MIGRATIONS", "true")
	t.Setenv("TEMPORAL_DISABLED", "1")
	t.Setenv("JWT_TTL_MINUTES", "30")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "changeme")
	t.Setenv("ADOPT_RATE_PER_MINUTE", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr())
	require.Equal(t, "postgres://pets@localhost/pets", cfg.PostgresDSN)
	require.True(t, cfg.RunMigrations)
	require.True(t, cfg.TemporalDisabled)
	require.Equal(t, 30*time.Minute, cfg.JWTTTL)
	require.Equal(t, "admin@example.com", cfg.AdminEmail)
	require.Equal(t, 3, cfg.AdoptRatePerMinute)
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_TTL_MINUTES", "0")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("RUN_MIGRATIONS", "true")

	_, err := LoadConfig()
	require.Error(t, err)
	require.ErrorContains(t, err, "JWT_SECRET is required")
	require.ErrorContains(t, err, "JWT_TTL_MINUTES")
	require.ErrorContains(t, err, "ADMIN_EMAIL and ADMIN_PASSWORD")
	require.ErrorContains(t, err, "RUN_MIGRATIONS requires POSTGRES_DSN")
}
