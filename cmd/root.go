package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/chrisdamba/tripsim/internal/console"
	"github.com/chrisdamba/tripsim/internal/geocoder"
	"github.com/chrisdamba/tripsim/internal/metrics"
	"github.com/chrisdamba/tripsim/internal/models"
	"github.com/chrisdamba/tripsim/internal/simulator"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tripsim",
	Short: "Simulates a ride-hailing trip in the terminal",
	Long: `tripsim is an interactive CLI that simulates a ride-hailing flow: search an origin and a
destination, pick one of the available drivers, follow the trip and rate the driver.
Completed trips are kept in the session history.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		closeLog, err := setupLogging(cfg.LogFile)
		if err != nil {
			return err
		}
		defer closeLog()
		if used := viper.ConfigFileUsed(); used != "" {
			log.Printf("Using config file: %s", used)
		}

		return run(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tripsim.yaml)")

	d := models.DefaultConfig()
	rootCmd.Flags().String("city", d.City, "Base city appended to every address search")
	rootCmd.Flags().Int64("seed", 0, "Random seed for the session (0 uses the clock)")
	rootCmd.Flags().Int("extra-drivers", 0, "Number of generated drivers added to the roster")
	rootCmd.Flags().String("geocoder", d.Geocoder, "Geocoding provider: nominatim or google")
	rootCmd.Flags().String("geocoder-url", d.GeocoderURL, "Nominatim search endpoint")
	rootCmd.Flags().String("google-api-key", "", "Google Maps API key for the google geocoder")
	rootCmd.Flags().String("redis-addr", "", "Redis address for caching geocoding results (empty disables)")
	rootCmd.Flags().String("sink", d.Sink, "Trip event sink: none, file, kafka or nats")
	rootCmd.Flags().String("output-file", d.OutputFile, "Output file path for the file sink")
	rootCmd.Flags().String("kafka-broker-list", d.KafkaBrokerList, "Kafka broker list")
	rootCmd.Flags().String("nats-url", d.NATSURL, "NATS server URL")
	rootCmd.Flags().String("metrics-addr", "", "Address to serve prometheus metrics on (empty disables)")
	rootCmd.Flags().String("log-file", "", "Write diagnostics to this file")
	rootCmd.Flags().Bool("fast", false, "Skip all cosmetic pauses")

	bindFlag("city", "city")
	bindFlag("seed", "seed")
	bindFlag("extra_drivers", "extra-drivers")
	bindFlag("geocoder", "geocoder")
	bindFlag("geocoder_url", "geocoder-url")
	bindFlag("google_api_key", "google-api-key")
	bindFlag("redis_addr", "redis-addr")
	bindFlag("sink", "sink")
	bindFlag("output_file_path", "output-file")
	bindFlag("kafka_broker_list", "kafka-broker-list")
	bindFlag("nats_url", "nats-url")
	bindFlag("metrics_addr", "metrics-addr")
	bindFlag("log_file", "log-file")
	bindFlag("fast", "fast")
}

func bindFlag(key, flag string) {
	cobra.CheckErr(viper.BindPFlag(key, rootCmd.Flags().Lookup(flag)))
}

// setupLogging keeps diagnostics off the screen: they go to the log file or nowhere.
func setupLogging(path string) (func(), error) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	log.SetOutput(f)
	return func() { _ = f.Close() }, nil
}

func run(ctx context.Context, cfg *models.Config, in io.Reader, out io.Writer) error {
	var mcol *metrics.Collector
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector()
		srv := mcol.Serve(cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	geo, closeGeo, err := buildGeocoder(ctx, cfg, mcol)
	if err != nil {
		return err
	}
	defer closeGeo()

	output, err := simulator.NewOutputDestination(cfg)
	if err != nil {
		return fmt.Errorf("failed to create output destination: %w", err)
	}

	sim := simulator.NewSimulator(cfg, console.New(in, out), geo, output, mcol)
	defer func() {
		if err := sim.Close(); err != nil {
			log.Printf("Error closing output: %v", err)
		}
	}()

	return sim.Run(ctx)
}

// buildGeocoder picks the provider and wraps it with metrics and, when redis is configured, a cache.
func buildGeocoder(ctx context.Context, cfg *models.Config, mcol *metrics.Collector) (geocoder.Geocoder, func(), error) {
	var provider geocoder.Geocoder
	switch cfg.Geocoder {
	case models.GeocoderGoogle:
		g, err := geocoder.NewGoogle(cfg.GoogleAPIKey)
		if err != nil {
			return nil, nil, err
		}
		provider = g
	default:
		provider = geocoder.NewNominatim(cfg.GeocoderURL, cfg.UserAgent, cfg.GeocodeTimeout)
	}

	var geo geocoder.Geocoder = geocoder.NewInstrumented(provider, mcol)
	if cfg.RedisAddr == "" {
		return geo, func() {}, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.GeocodeTimeout)
	defer cancel()
	cache, err := geocoder.NewRedisCache(pingCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		// the cache is optional; search the provider directly
		log.Printf("Geocode cache disabled: %v", err)
		return geo, func() {}, nil
	}
	return geocoder.NewCached(geo, cache, cfg.CacheTTL, mcol), func() { _ = cache.Close() }, nil
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
