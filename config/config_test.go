package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Equal(t, "receita-api", cfg.ServiceName)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "receita.db?_foreign_keys=on", cfg.Database.DSN)
	assert.Equal(t, 30*time.Second, cfg.Database.WaitTimeout)
	assert.False(t, cfg.Consul.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.InsecureSecret())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RECEITA_HTTP_PORT", "9090")
	t.Setenv("RECEITA_DATABASE_DRIVER", "postgres")
	t.Setenv("RECEITA_DATABASE_DSN", "host=db user=app dbname=app")
	t.Setenv("RECEITA_JWT_SECRET", "s3cret")
	t.Setenv("RECEITA_TOKEN_TTL", "1h")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=app dbname=app", cfg.Database.DSN)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.InsecureSecret())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RECEITA_DATABASE_DRIVER", "oracle")

	_, err := Load(viper.New())
	assert.ErrorContains(t, err, "unsupported database driver")
}
