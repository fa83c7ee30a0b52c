package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "mongo", cfg.DatabaseDriver)
	assert.Equal(t, "Europe/London", cfg.StudioTimezone)
	assert.Equal(t, 60, cfg.QuoteTTLMinutes)
	assert.Equal(t, []string{"*"}, cfg.Origins())
	assert.Empty(t, cfg.Proxies())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("ALLOWED_ORIGINS", "https://studio.example, https://admin.studio.example")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, "memory", cfg.DatabaseDriver)
	assert.Equal(t, []string{"https://studio.example", "https://admin.studio.example"}, cfg.Origins())
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.1"}, cfg.Proxies())
}

func TestLoad_ProductionRequiresJWTSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "production")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_DRIVER", "postgres")

	_, err := Load()
	assert.Error(t, err)
}
