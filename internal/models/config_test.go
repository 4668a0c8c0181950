package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tripsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
city: "Curitiba, PR"
seed: 99
extra_drivers: 3
geocode_timeout: 2s
arrival_tick_interval: 250ms
sink: file
output_file_path: /tmp/trips.jsonl
`)

	cfg, err := loadConfig(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "Curitiba, PR", cfg.City)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 3, cfg.ExtraDrivers)
	assert.Equal(t, 2*time.Second, cfg.GeocodeTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.ArrivalTickInterval)
	assert.Equal(t, SinkFile, cfg.Sink)

	// untouched keys keep their defaults
	assert.Equal(t, GeocoderNominatim, cfg.Geocoder)
	assert.Equal(t, 5, cfg.ResultLimit)
	assert.Equal(t, 500*time.Millisecond, cfg.TripTickInterval)
	assert.Equal(t, 0.5, cfg.MinTripDistance)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("TRIPSIM_CITY", "Florianópolis, SC")
	t.Setenv("TRIPSIM_RESULT_LIMIT", "3")

	cfg, err := loadConfig(viper.New(), writeConfig(t, "seed: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, "Florianópolis, SC", cfg.City)
	assert.Equal(t, 3, cfg.ResultLimit)
}

func TestLoadConfig_Fast(t *testing.T) {
	cfg, err := loadConfig(viper.New(), writeConfig(t, "fast: true\n"))
	require.NoError(t, err)
	assert.Zero(t, cfg.ArrivalTickInterval)
	assert.Zero(t, cfg.TripTickInterval)
	assert.Zero(t, cfg.MessagePause)
	assert.Equal(t, 5, cfg.ArrivalTicks)
	assert.Equal(t, 8, cfg.TripTicks)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := loadConfig(viper.New(), writeConfig(t, "geocoder: bing\n"))
	assert.ErrorContains(t, err, "unsupported geocoder")
}

func TestLoadConfig_ZeroGeocodeTimeout(t *testing.T) {
	_, err := loadConfig(viper.New(), writeConfig(t, "geocode_timeout: 0s\n"))
	assert.ErrorContains(t, err, "geocode_timeout must be positive")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"google without key", func(c *Config) { c.Geocoder = GeocoderGoogle }, "google_api_key"},
		{"google with key", func(c *Config) { c.Geocoder = GeocoderGoogle; c.GoogleAPIKey = "k" }, ""},
		{"unknown sink", func(c *Config) { c.Sink = "smoke" }, "unsupported sink"},
		{"zero limit", func(c *Config) { c.ResultLimit = 0 }, "result_limit"},
		{"negative extra drivers", func(c *Config) { c.ExtraDrivers = -1 }, "extra_drivers"},
		{"inverted jitter", func(c *Config) { c.PriceJitterMin = 4 }, "price_jitter_max"},
		{"negative pause", func(c *Config) { c.WalkPause = -time.Second }, "walk_pause"},
		{"zero geocode timeout", func(c *Config) { c.GeocodeTimeout = 0 }, "geocode_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}
