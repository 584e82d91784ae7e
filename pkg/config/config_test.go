package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "frontend", cfg.Server.FrontendDir)
		assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, DriverSQLite, cfg.DB.Driver)
		assert.Equal(t, filepath.Join("instance", "sqlite.db"), cfg.DB.SQLitePath())
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "Local", cfg.Voucher.Timezone)
	})

	t.Run("overrides from environment", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DB_DRIVER", DriverMongo)
		t.Setenv("MONGODB_DATABASE", "promo")
		t.Setenv("CORS_ALLOW_ORIGINS", "http://a.test,http://b.test")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, DriverMongo, cfg.DB.Driver)
		assert.Equal(t, "promo", cfg.DB.MongoDatabase)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowOrigins)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "oracle")

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "unsupported DB_DRIVER")
	})
}

func TestVoucherConfigLocation(t *testing.T) {
	loc, err := VoucherConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = VoucherConfig{Timezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}
