// Package main provides the jukebot CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"jukebot/internal/core"
	"jukebot/internal/display"
	"jukebot/internal/flood"
	httpserver "jukebot/internal/http"
	"jukebot/internal/spotify"
	"jukebot/internal/store"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "jukebot",
	Short: "Jukebot - chat-driven song request queue",
	Long: `Jukebot is a service that turns chat messages into song requests: it searches
Spotify, asks the requester to confirm, and mirrors the shared play queue to
display clients over websockets.`,
	RunE: runJukebot,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("spotify-client-id", "", "Spotify client ID")
	rootCmd.PersistentFlags().String("spotify-client-secret", "", "Spotify client secret")
	rootCmd.PersistentFlags().String("store-backend", "memory", "store backend (memory, sqlite, postgres, redis)")
	rootCmd.PersistentFlags().String("store-path", "./jukebot.db", "database file for the sqlite backend")
	rootCmd.PersistentFlags().String("store-dsn", "", "connection string for the postgres backend")
	rootCmd.PersistentFlags().String("store-redis-url", "", "connection URL for the redis backend")
	rootCmd.PersistentFlags().String("server-host", "0.0.0.0", "HTTP server bind address")
	rootCmd.PersistentFlags().Int("server-port", 8080, "HTTP server port")
	rootCmd.PersistentFlags().String("language", "en", "reply language (en, de)")
	rootCmd.PersistentFlags().String("timezone", "Local", "IANA timezone for the daily reset")
	rootCmd.PersistentFlags().Int("confirm-ttl", 600, "confirmation token lifetime in seconds")
	rootCmd.PersistentFlags().Float64("similarity-threshold", 0.5, "score below which search results count as ambiguous")
	rootCmd.PersistentFlags().Int("max-alternatives", 3, "alternatives listed in an ambiguous reply")
	rootCmd.PersistentFlags().Int("searches-per-minute", 5, "search rate limit per user")
	rootCmd.PersistentFlags().Int("stats-top-n", 10, "default entry count for top-played statistics")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
	}

	viper.SetEnvPrefix("JUKEBOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")

	if v := viper.GetString("store-backend"); v != "" {
		cfg.Store.Backend = v
	}
	if v := viper.GetString("store-path"); v != "" {
		cfg.Store.Path = v
	}
	cfg.Store.DSN = viper.GetString("store-dsn")
	cfg.Store.RedisURL = viper.GetString("store-redis-url")

	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if v := viper.GetInt("server-port"); v != 0 {
		cfg.Server.Port = v
	}

	cfg.Log.Level = viper.GetString("log-level")

	if v := viper.GetString("language"); v != "" {
		cfg.App.Language = v
	}
	if v := viper.GetString("timezone"); v != "" {
		cfg.App.Timezone = v
	}
	if v := viper.GetInt("confirm-ttl"); v != 0 {
		cfg.App.ConfirmTTLSecs = v
	}
	if v := viper.GetFloat64("similarity-threshold"); v != 0 {
		cfg.App.SimilarityThreshold = v
	}
	if v := viper.GetInt("max-alternatives"); v != 0 {
		cfg.App.MaxAlternatives = v
	}
	if v := viper.GetInt("searches-per-minute"); v != 0 {
		cfg.App.SearchesPerMinute = v
	}
	if v := viper.GetInt("stats-top-n"); v != 0 {
		cfg.App.StatsTopN = v
	}

	return cfg
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runJukebot(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting jukebot",
		zap.String("store_backend", config.Store.Backend),
		zap.String("language", config.App.Language),
		zap.String("timezone", config.App.Timezone))

	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	timezone, err := loadTimezone(config.App.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone: %w", err)
	}

	st, err := buildStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}()

	if err := st.Ping(ctx); err != nil {
		return fmt.Errorf("store is not reachable: %w", err)
	}

	spotifyClient := spotify.NewClient(&config.Spotify, logger.Named("spotify"))
	if err := spotifyClient.Authenticate(ctx); err != nil {
		return fmt.Errorf("failed to authenticate with Spotify: %w", err)
	}

	registry := core.NewConfirmRegistry(time.Duration(config.App.ConfirmTTLSecs) * time.Second)
	played := store.NewPlayedTodaySet(10000, 0.001)
	hub := display.NewHub(logger.Named("display"))

	queue := core.NewQueueManager(st, played, registry, hub, timezone, logger.Named("queue"))
	hub.Bind(queue)

	if err := queue.Load(ctx); err != nil {
		return fmt.Errorf("failed to load queue state: %w", err)
	}

	floodgate := flood.New(config.App.SearchesPerMinute)
	defer floodgate.Stop()

	dispatcher := core.NewDispatcher(
		config,
		spotifyClient,
		registry,
		queue,
		floodgate,
		logger.Named("dispatcher"),
	)

	httpServer := httpserver.NewServer(
		&config.Server,
		st,
		dispatcher,
		hub,
		config.App.StatsTopN,
		logger.Named("http"),
	)

	reset := core.NewResetScheduler(queue, timezone, logger.Named("reset"))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Start(gCtx)
	})

	g.Go(func() error {
		hub.Run(gCtx)
		return nil
	})

	g.Go(func() error {
		reset.Run(gCtx)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		metrics := httpServer.GetMetrics()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				metrics.QueueSize.Set(float64(queue.Size()))
				metrics.DisplayClients.Set(float64(hub.ClientCount()))
			}
		}
	})

	logger.Info("Jukebot started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)),
		zap.Int("pending", queue.Size()))

	if err := g.Wait(); err != nil {
		logger.Error("Jukebot stopped with error", zap.Error(err))
		return err
	}

	logger.Info("Jukebot stopped gracefully")
	return nil
}

func buildStore(ctx context.Context) (core.Store, error) {
	switch config.Store.Backend {
	case "memory", "":
		return store.NewMemoryStore(), nil
	case "sqlite":
		return store.NewSQLiteStore(config.Store.Path)
	case "postgres":
		return store.NewPostgresStore(ctx, config.Store.DSN)
	case "redis":
		return store.NewRedisStore(config.Store.RedisURL)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", config.Store.Backend)
	}
}

func loadTimezone(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

func validateConfig() error {
	if config.Spotify.ClientID == "" {
		return fmt.Errorf("spotify client ID is required")
	}

	if config.Spotify.ClientSecret == "" {
		return fmt.Errorf("spotify client secret is required")
	}

	switch config.Store.Backend {
	case "memory", "", "sqlite":
	case "postgres":
		if config.Store.DSN == "" {
			return fmt.Errorf("store DSN is required for the postgres backend")
		}
	case "redis":
		if config.Store.RedisURL == "" {
			return fmt.Errorf("store redis URL is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown store backend: %s", config.Store.Backend)
	}

	return nil
}
