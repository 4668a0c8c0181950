package models

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	GeocoderNominatim = "nominatim"
	GeocoderGoogle    = "google"

	SinkNone  = "none"
	SinkFile  = "file"
	SinkKafka = "kafka"
	SinkNATS  = "nats"
)

type Config struct {
	City         string `mapstructure:"city"`
	Seed         int64  `mapstructure:"seed"` // 0 seeds from the clock
	ExtraDrivers int    `mapstructure:"extra_drivers"`

	Geocoder       string        `mapstructure:"geocoder"`
	GeocoderURL    string        `mapstructure:"geocoder_url"`
	UserAgent      string        `mapstructure:"user_agent"`
	GoogleAPIKey   string        `mapstructure:"google_api_key"`
	ResultLimit    int           `mapstructure:"result_limit"`
	GeocodeTimeout time.Duration `mapstructure:"geocode_timeout"`

	RedisAddr     string        `mapstructure:"redis_addr"` // empty disables the geocode cache
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`

	Sink            string `mapstructure:"sink"`
	OutputFile      string `mapstructure:"output_file_path"`
	KafkaBrokerList string `mapstructure:"kafka_broker_list"`
	NATSURL         string `mapstructure:"nats_url"`

	MetricsAddr string `mapstructure:"metrics_addr"`
	LogFile     string `mapstructure:"log_file"`
	Fast        bool   `mapstructure:"fast"`

	// Fares and sampling
	BaseFare            float64 `mapstructure:"base_fare"`
	PerKmRate           float64 `mapstructure:"per_km_rate"`
	PriceJitterMin      float64 `mapstructure:"price_jitter_min"`
	PriceJitterMax      float64 `mapstructure:"price_jitter_max"`
	MinTripDistance     float64 `mapstructure:"min_trip_distance"` // km
	MaxAvailableDrivers int     `mapstructure:"max_available_drivers"`

	// Cosmetic pacing
	ArrivalTicks        int           `mapstructure:"arrival_ticks"`
	ArrivalTickInterval time.Duration `mapstructure:"arrival_tick_interval"`
	TripTicks           int           `mapstructure:"trip_ticks"`
	TripTickInterval    time.Duration `mapstructure:"trip_tick_interval"`
	ShortPause          time.Duration `mapstructure:"short_pause"`
	MessagePause        time.Duration `mapstructure:"message_pause"`
	WalkPause           time.Duration `mapstructure:"walk_pause"`
}

// DefaultConfig returns the settings the simulator runs with when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		City:                "Porto Alegre, RS",
		Geocoder:            GeocoderNominatim,
		GeocoderURL:         "https://nominatim.openstreetmap.org/search",
		UserAgent:           "TransporteExpress/1.0",
		ResultLimit:         5,
		GeocodeTimeout:      5 * time.Second,
		CacheTTL:            24 * time.Hour,
		Sink:                SinkNone,
		OutputFile:          "trips.jsonl",
		KafkaBrokerList:     "localhost:9092",
		NATSURL:             "nats://127.0.0.1:4222",
		BaseFare:            5.00,
		PerKmRate:           2.5,
		PriceJitterMin:      -2,
		PriceJitterMax:      3,
		MinTripDistance:     0.5,
		MaxAvailableDrivers: 3,
		ArrivalTicks:        5,
		ArrivalTickInterval: 800 * time.Millisecond,
		TripTicks:           8,
		TripTickInterval:    500 * time.Millisecond,
		ShortPause:          time.Second,
		MessagePause:        2 * time.Second,
		WalkPause:           3 * time.Second,
	}
}

// LoadConfig initializes and reads the configuration using Viper.
// A missing config file is fine; defaults, .env, TRIPSIM_* variables and flags still apply.
func LoadConfig(cfgFile string) (*Config, error) {
	return loadConfig(viper.GetViper(), cfgFile)
}

func loadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".tripsim")
	}

	v.SetEnvPrefix("tripsim")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if config.Fast {
		config.ApplyFast()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("city", d.City)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("extra_drivers", d.ExtraDrivers)
	v.SetDefault("geocoder", d.Geocoder)
	v.SetDefault("geocoder_url", d.GeocoderURL)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("google_api_key", d.GoogleAPIKey)
	v.SetDefault("result_limit", d.ResultLimit)
	v.SetDefault("geocode_timeout", d.GeocodeTimeout)
	v.SetDefault("redis_addr", d.RedisAddr)
	v.SetDefault("redis_password", d.RedisPassword)
	v.SetDefault("redis_db", d.RedisDB)
	v.SetDefault("cache_ttl", d.CacheTTL)
	v.SetDefault("sink", d.Sink)
	v.SetDefault("output_file_path", d.OutputFile)
	v.SetDefault("kafka_broker_list", d.KafkaBrokerList)
	v.SetDefault("nats_url", d.NATSURL)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("fast", d.Fast)
	v.SetDefault("base_fare", d.BaseFare)
	v.SetDefault("per_km_rate", d.PerKmRate)
	v.SetDefault("price_jitter_min", d.PriceJitterMin)
	v.SetDefault("price_jitter_max", d.PriceJitterMax)
	v.SetDefault("min_trip_distance", d.MinTripDistance)
	v.SetDefault("max_available_drivers", d.MaxAvailableDrivers)
	v.SetDefault("arrival_ticks", d.ArrivalTicks)
	v.SetDefault("arrival_tick_interval", d.ArrivalTickInterval)
	v.SetDefault("trip_ticks", d.TripTicks)
	v.SetDefault("trip_tick_interval", d.TripTickInterval)
	v.SetDefault("short_pause", d.ShortPause)
	v.SetDefault("message_pause", d.MessagePause)
	v.SetDefault("walk_pause", d.WalkPause)
}

// ApplyFast removes every cosmetic delay. Tick counts are kept so the output stays the same.
func (cfg *Config) ApplyFast() {
	cfg.ArrivalTickInterval = 0
	cfg.TripTickInterval = 0
	cfg.ShortPause = 0
	cfg.MessagePause = 0
	cfg.WalkPause = 0
}

func (cfg *Config) Validate() error {
	switch cfg.Geocoder {
	case GeocoderNominatim:
		if cfg.GeocoderURL == "" {
			return errors.New("geocoder_url is required for the nominatim geocoder")
		}
	case GeocoderGoogle:
		if cfg.GoogleAPIKey == "" {
			return errors.New("google_api_key is required for the google geocoder")
		}
	default:
		return fmt.Errorf("unsupported geocoder: %q", cfg.Geocoder)
	}

	switch cfg.Sink {
	case SinkNone, SinkFile, SinkKafka, SinkNATS:
	default:
		return fmt.Errorf("unsupported sink: %q", cfg.Sink)
	}

	if cfg.ResultLimit <= 0 {
		return fmt.Errorf("result_limit must be positive, got %d", cfg.ResultLimit)
	}
	if cfg.MaxAvailableDrivers <= 0 {
		return fmt.Errorf("max_available_drivers must be positive, got %d", cfg.MaxAvailableDrivers)
	}
	if cfg.ExtraDrivers < 0 {
		return fmt.Errorf("extra_drivers must not be negative, got %d", cfg.ExtraDrivers)
	}
	if cfg.GeocodeTimeout <= 0 {
		return fmt.Errorf("geocode_timeout must be positive, got %s", cfg.GeocodeTimeout)
	}
	if cfg.PriceJitterMax < cfg.PriceJitterMin {
		return fmt.Errorf("price_jitter_max (%.2f) is below price_jitter_min (%.2f)", cfg.PriceJitterMax, cfg.PriceJitterMin)
	}

	durations := map[string]time.Duration{
		"cache_ttl":             cfg.CacheTTL,
		"arrival_tick_interval": cfg.ArrivalTickInterval,
		"trip_tick_interval":    cfg.TripTickInterval,
		"short_pause":           cfg.ShortPause,
		"message_pause":         cfg.MessagePause,
		"walk_pause":            cfg.WalkPause,
	}
	for name, d := range durations {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, d)
		}
	}
	return nil
}
