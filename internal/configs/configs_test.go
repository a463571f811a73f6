package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENVIRONMENT", "WX_LISTEN_ADDR", "OPS_LISTEN_ADDR", "DATABASE_URL",
		"WX_READ_TIMEOUT", "WX_WRITE_TIMEOUT", "WX_CONN_RATE", "WX_CONN_BURST",
		"S3_ENDPOINT", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY",
	} {
		t.Setenv(key, "")
	}
	// t.Setenv leaves the key present but empty; LoadConfig treats empty as
	// unset everywhere except OPS_LISTEN_ADDR, which is re-unset here.
	t.Setenv("OPS_LISTEN_ADDR", ":8080")
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, ":6543", cfg.ListenAddr)
	require.Equal(t, ":8080", cfg.OpsAddr)
	require.Equal(t, 5*time.Minute, cfg.ReadTimeout)
	require.Equal(t, 10*time.Second, cfg.WriteTimeout)
	require.Equal(t, 1.0, cfg.ConnRate)
	require.Equal(t, 5, cfg.ConnBurst)
	require.False(t, cfg.S3Enabled())
	require.Contains(t, cfg.DatabaseDSN, "weather_db")
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WX_LISTEN_ADDR", "127.0.0.1:7000")
	t.Setenv("WX_READ_TIMEOUT", "30s")
	t.Setenv("WX_CONN_RATE", "2.5")
	t.Setenv("WX_CONN_BURST", "10")
	t.Setenv("DATABASE_URL", "postgres://example/db")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:7000", cfg.ListenAddr)
	require.Equal(t, 30*time.Second, cfg.ReadTimeout)
	require.Equal(t, 2.5, cfg.ConnRate)
	require.Equal(t, 10, cfg.ConnBurst)
	require.Equal(t, "postgres://example/db", cfg.DatabaseDSN)
}

func TestLoadConfigOpsDisabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPS_LISTEN_ADDR", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Empty(t, cfg.OpsAddr)
}

func TestLoadConfigProductionRequiresDatabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	_, err := LoadConfig()
	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadConfigInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad read timeout", key: "WX_READ_TIMEOUT", value: "soon"},
		{name: "negative read timeout", key: "WX_READ_TIMEOUT", value: "-1s"},
		{name: "bad rate", key: "WX_CONN_RATE", value: "fast"},
		{name: "zero rate", key: "WX_CONN_RATE", value: "0"},
		{name: "bad burst", key: "WX_CONN_BURST", value: "many"},
		{name: "zero burst", key: "WX_CONN_BURST", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestLoadConfigPartialS3(t *testing.T) {
	clearEnv(t)
	t.Setenv("S3_ENDPOINT", "https://minio.local")

	_, err := LoadConfig()
	require.ErrorContains(t, err, "S3")
}

func TestLoadConfigFullS3(t *testing.T) {
	clearEnv(t)
	t.Setenv("S3_ENDPOINT", "https://minio.local")
	t.Setenv("S3_ACCESS_KEY_ID", "key")
	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.True(t, cfg.S3Enabled())
}
