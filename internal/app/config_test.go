package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("requires database url", func(t *testing.T) {
		t.Setenv("STORE_DATABASE_URL", "")
		t.Setenv("DATABASE_URL", "")

		_, err := loadConfig([]string{})
		require.Error(t, err)
	})

	t.Run("defaults and platform fallbacks", func(t *testing.T) {
		t.Setenv("STORE_DATABASE_URL", "")
		t.Setenv("DATABASE_URL", "postgres://platform/db")
		t.Setenv("PORT", "9000")

		cfg, err := loadConfig([]string{})
		require.NoError(t, err)
		assert.Equal(t, "postgres://platform/db", cfg.DatabaseURL)
		assert.Equal(t, "0.0.0.0:9000", cfg.Addr)
		assert.Equal(t, 120, cfg.RateLimit.Max)
		assert.Equal(t, time.Minute, cfg.RateLimit.Window)
		assert.Equal(t, 10*time.Second, cfg.Health.Interval)
		assert.Equal(t, 15*time.Second, cfg.Graceful.ShutdownTimeout)
	})

	t.Run("prefixed env wins", func(t *testing.T) {
		t.Setenv("STORE_DATABASE_URL", "postgres://store/db")
		t.Setenv("DATABASE_URL", "postgres://platform/db")
		t.Setenv("STORE_IMAGE_BASE_URL", "https://cdn.example")

		cfg, err := loadConfig([]string{})
		require.NoError(t, err)
		assert.Equal(t, "postgres://store/db", cfg.DatabaseURL)
		assert.Equal(t, "https://cdn.example", cfg.ImageBaseURL)
	})
}
