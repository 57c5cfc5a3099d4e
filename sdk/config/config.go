// Package config provides configuration parsing for heartscore SDK
// clients. It defines the standard environment variables used by the
// bot process and the tools that launch it.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variable names used by the bot process and its launchers.
const (
	// EnvServer specifies the WebSocket URL for the table server.
	EnvServer = "HEARTSCORE_SERVER"

	// EnvSeed provides a random seed for deterministic play.
	EnvSeed = "HEARTSCORE_SEED"

	// EnvBotID provides a unique identifier for the bot.
	EnvBotID = "HEARTSCORE_BOT_ID"

	// EnvTable specifies the target table ID (defaults to "default").
	EnvTable = "HEARTSCORE_TABLE"

	// EnvNSamples overrides the decision core's total Monte Carlo sample
	// budget per move (defaults to 1000).
	EnvNSamples = "HEARTSCORE_N_SAMPLES"

	// EnvMaxRetries overrides the sampler's feasibility-restart cap.
	EnvMaxRetries = "HEARTSCORE_MAX_RETRIES"

	// EnvDeadlineMS bounds how long PlayCard may spend sampling, in
	// milliseconds (0 or unset means no deadline).
	EnvDeadlineMS = "HEARTSCORE_DEADLINE_MS"

	// EnvQueenBreaksHearts toggles whether playing the Queen of Spades
	// also breaks hearts ("true"/"false", defaults to true).
	EnvQueenBreaksHearts = "HEARTSCORE_QUEEN_BREAKS_HEARTS"

	// EnvAggressiveMoon toggles whether the bot actively pursues
	// shoot-the-moon attempts ("true"/"false", defaults to false).
	EnvAggressiveMoon = "HEARTSCORE_AGGRESSIVE_MOON"
)

// BotConfig holds configuration parsed from environment variables.
type BotConfig struct {
	// ServerURL is the WebSocket URL for connecting to the table server.
	ServerURL string

	// Seed is the random seed for deterministic behavior (0 means not
	// explicitly set, in which case the bot should still seed itself
	// deterministically from BotID or a fixed default).
	Seed int64

	// BotID is the unique identifier for this bot instance.
	BotID string

	// TableID is the target table to join (defaults to "default").
	TableID string

	// NSamples is the decision core's total sample budget per move.
	NSamples int

	// MaxRetries bounds the sampler's feasibility-restart attempts.
	MaxRetries int

	// DeadlineMS bounds sampling time per move; 0 means unbounded.
	DeadlineMS int

	// QueenBreaksHearts and AggressiveMoon mirror rules.Rules.
	QueenBreaksHearts bool
	AggressiveMoon    bool
}

// FromEnv parses configuration from environment variables. Returns an
// error if required variables are missing or invalid.
func FromEnv() (*BotConfig, error) {
	cfg := &BotConfig{
		TableID:           "default",
		NSamples:          1000,
		MaxRetries:        32,
		QueenBreaksHearts: true,
	}

	cfg.ServerURL = os.Getenv(EnvServer)
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("%s environment variable is required", EnvServer)
	}

	if seedStr := os.Getenv(EnvSeed); seedStr != "" {
		seed, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %w", EnvSeed, err)
		}
		cfg.Seed = seed
	}

	cfg.BotID = os.Getenv(EnvBotID)

	if tableID := os.Getenv(EnvTable); tableID != "" {
		cfg.TableID = tableID
	}

	if v := os.Getenv(EnvNSamples); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %w", EnvNSamples, err)
		}
		cfg.NSamples = n
	}

	if v := os.Getenv(EnvMaxRetries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %w", EnvMaxRetries, err)
		}
		cfg.MaxRetries = n
	}

	if v := os.Getenv(EnvDeadlineMS); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %w", EnvDeadlineMS, err)
		}
		cfg.DeadlineMS = n
	}

	if v := os.Getenv(EnvQueenBreaksHearts); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %w", EnvQueenBreaksHearts, err)
		}
		cfg.QueenBreaksHearts = b
	}

	if v := os.Getenv(EnvAggressiveMoon); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %w", EnvAggressiveMoon, err)
		}
		cfg.AggressiveMoon = b
	}

	return cfg, nil
}

// SetEnv sets an environment variable for a launcher to use, returning
// the extended slice.
func SetEnv(env []string, key, value string) []string {
	return append(env, fmt.Sprintf("%s=%s", key, value))
}
