// Package config loads server configuration from the environment.
package config

import (
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/pkg/errors"
)

// Config holds everything the server reads from the environment. Game
// timing values configured here are defaults; per-session settings are
// still sanitised by the game package.
type Config struct {
	Addr      string `env:"PAIRS_ADDR,default=:8000"`
	PublicURL string `env:"PAIRS_PUBLIC_URL,default=http://localhost:8000"`
	LogLevel  string `env:"PAIRS_LOG_LEVEL,default=info"`

	DefaultCardCount       int `env:"PAIRS_CARD_COUNT,default=16"`
	DefaultTurnTimeSeconds int `env:"PAIRS_TURN_TIME_SECONDS,default=30"`

	MatchDelayMS    int `env:"PAIRS_MATCH_DELAY_MS,default=500"`
	MismatchDelayMS int `env:"PAIRS_MISMATCH_DELAY_MS,default=1500"`
}

// Load decodes the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config from environment")
	}
	return &cfg, nil
}

// MatchDelay returns the post-match feedback pause as a duration.
func (c *Config) MatchDelay() time.Duration {
	return time.Duration(c.MatchDelayMS) * time.Millisecond
}

// MismatchDelay returns the mismatch reveal pause as a duration.
func (c *Config) MismatchDelay() time.Duration {
	return time.Duration(c.MismatchDelayMS) * time.Millisecond
}
