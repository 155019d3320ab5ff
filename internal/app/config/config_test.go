package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		require.Equal(t, "https://api-seller.ozon.ru", cfg.OzonBaseURL)
		require.Equal(t, ":8080", cfg.ListenAddr)
		require.Equal(t, 45, cfg.SupplyProcessInterval)
		require.Equal(t, 60, cfg.RateLimitMaxOn429)
		require.True(t, cfg.AutoDeleteCreatedImmediate)

		loc, err := cfg.Location()
		require.NoError(t, err)
		require.Equal(t, "Asia/Yekaterinburg", loc.String())
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("OZON_CLIENT_ID", "42")
		t.Setenv("TIMEZONE", "Europe/Moscow")
		t.Setenv("SUPPLY_PURGE_AGE_DAYS", "3")
		t.Setenv("SUPPLY_CLUSTER_IDS", "1, 2,abc,3")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "42", cfg.OzonClientID)
		require.Equal(t, "Europe/Moscow", cfg.Timezone)
		require.Equal(t, 3, cfg.SupplyPurgeAgeDays)
		require.Equal(t, []int64{1, 2, 3}, cfg.ClusterIDs())
	})

	t.Run("config file between defaults and env", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":9090\"\ntimezone: Europe/Moscow\n"), 0o644))

		t.Setenv(ConfigFileEnv, path)
		t.Setenv("TIMEZONE", "Asia/Yekaterinburg")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, ":9090", cfg.ListenAddr)
		require.Equal(t, "Asia/Yekaterinburg", cfg.Timezone)
	})

	t.Run("sanity floors", func(t *testing.T) {
		t.Setenv("OZON_HTTP_HARD_TIMEOUT_SECONDS", "0")
		t.Setenv("DRAFT_CREATE_MIN_SPACING_SECONDS", "-1")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 1, cfg.OzonHTTPHardTimeoutSeconds)
		require.Equal(t, 1, cfg.DraftCreateMinSpacingSeconds)
	})
}

func TestConfigPaths(t *testing.T) {
	cfg := &Config{DataDir: "/app/data", SupplyTaskFile: "supply_tasks.db"}

	require.Equal(t, filepath.Join("/app/data", "supply_tasks.db"), cfg.DBPath())
	require.Equal(t, filepath.Join("/app/data", "keys"), cfg.KeysDir())
	require.Equal(t, filepath.Join("/app/data", "keys", "payload-encryption-key.pem"), cfg.PayloadEncryptionKeyPath())
}
