package core

import (
	"time"
)

type Config struct {
	Spotify SpotifyConfig
	Store   StoreConfig
	Server  ServerConfig
	Log     LogConfig
	App     AppConfig
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
}

type StoreConfig struct {
	// Backend selects the persistence adapter: memory, sqlite, postgres
	// or redis.
	Backend string
	// Path is the database file for the sqlite backend.
	Path string
	// DSN is the connection string for the postgres backend.
	DSN string
	// RedisURL is the connection URL for the redis backend.
	RedisURL string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level string
}

type AppConfig struct {
	// Language selects the reply message catalog.
	Language string
	// Timezone is the IANA zone whose midnight bounds the played-today
	// window. Injected explicitly so day-boundary behavior stays
	// reproducible.
	Timezone string
	// ConfirmTTLSecs bounds how long an issued confirmation token stays
	// redeemable.
	ConfirmTTLSecs int
	// SimilarityThreshold is the minimum best-candidate score below which
	// a search is treated as ambiguous.
	SimilarityThreshold float64
	// MaxAlternatives caps how many candidates an ambiguous reply lists.
	MaxAlternatives int
	// SearchesPerMinute limits search requests per identity.
	SearchesPerMinute int
	// StatsTopN is the default list length for the statistics endpoint.
	StatsTopN int
}

func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: "memory",
			Path:    "./jukebot.db",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		App: AppConfig{
			Language:            "en",
			Timezone:            "Local",
			ConfirmTTLSecs:      600,
			SimilarityThreshold: 0.5,
			MaxAlternatives:     3,
			SearchesPerMinute:   5,
			StatsTopN:           10,
		},
	}
}
