package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidclock/internal/location"
)

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "tidclock.db", cfg.Storage.Path)
	assert.Equal(t, "fix", cfg.Location.Mode)
	assert.Equal(t, location.DefaultOptions(), cfg.Location.Options())
	assert.Equal(t, time.Second, cfg.Timer.Tick)
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TIDCLOCK_LOCATION_MODE", "denied")
	t.Setenv("TIDCLOCK_LOCATION_TIMEOUT", "3s")
	t.Setenv("TIDCLOCK_STORAGE_PATH", ":memory:")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "denied", cfg.Location.Mode)
	assert.Equal(t, 3*time.Second, cfg.Location.Timeout)
	assert.Equal(t, ":memory:", cfg.Storage.Path)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Storage:  StorageConfig{Path: "x.db"},
		Log:      LogConfig{Level: "info"},
		Location: LocationConfig{Mode: "fix", Latitude: 59, Longitude: 18, Timeout: time.Second},
		Timer:    TimerConfig{Tick: time.Second},
	}
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Location.Mode = "satellite"
	bad.Location.Latitude = 95
	bad.Timer.Tick = 0
	bad.Log.Level = "loud"
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown location mode")
	assert.Contains(t, err.Error(), "location.latitude")
	assert.Contains(t, err.Error(), "timer.tick")
	assert.Contains(t, err.Error(), "log.level")
}
