package main

import (
	"testing"

	"jukebot/internal/core"
)

// Every key buildConfig reads from viper must be backed by a registered flag,
// so each setting is reachable via flag, env, and config file alike.
func TestFlagsCoverConfigKeys(t *testing.T) {
	keys := []string{
		"log-level",
		"spotify-client-id",
		"spotify-client-secret",
		"store-backend",
		"store-path",
		"store-dsn",
		"store-redis-url",
		"server-host",
		"server-port",
		"language",
		"timezone",
		"confirm-ttl",
		"similarity-threshold",
		"max-alternatives",
		"searches-per-minute",
		"stats-top-n",
	}

	for _, key := range keys {
		if rootCmd.PersistentFlags().Lookup(key) == nil {
			t.Errorf("no flag registered for config key %q", key)
		}
	}
}

// Flag defaults must match DefaultConfig, otherwise binding the flags would
// silently override the defaults for settings the user never touched.
func TestFlagDefaultsMatchConfig(t *testing.T) {
	defaults := core.DefaultConfig()

	cases := []struct {
		flag string
		want string
	}{
		{"server-host", defaults.Server.Host},
		{"server-port", "8080"},
		{"language", defaults.App.Language},
		{"timezone", defaults.App.Timezone},
		{"confirm-ttl", "600"},
		{"similarity-threshold", "0.5"},
		{"max-alternatives", "3"},
		{"searches-per-minute", "5"},
		{"stats-top-n", "10"},
	}

	for _, tc := range cases {
		flag := rootCmd.PersistentFlags().Lookup(tc.flag)
		if flag == nil {
			t.Errorf("flag %q not registered", tc.flag)
			continue
		}
		if flag.DefValue != tc.want {
			t.Errorf("flag %q default = %q, want %q", tc.flag, flag.DefValue, tc.want)
		}
	}
}
