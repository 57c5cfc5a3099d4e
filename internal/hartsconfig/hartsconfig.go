// Package hartsconfig loads a table's bot configuration from either an
// HCL or a YAML file, mirroring the teacher's internal/server config
// loader (table/bot blocks, defaults applied after decode) but for a
// Hearts table: one "round" block for house-rule toggles and one
// "table" block listing each seat's sampler budget.
package hartsconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"

	"github.com/lox/heartscore/internal/rules"
	"github.com/lox/heartscore/sdk/config"
)

// Config is the complete file-based configuration for a table of four
// seats plus the round's house rules. Both the HCL and the YAML
// loaders decode into this same struct.
type Config struct {
	Round RoundConfig `hcl:"round,block" yaml:"round"`
	Table TableConfig `hcl:"table,block" yaml:"table"`
}

// RoundConfig carries the two house-rule Open Questions the spec
// leaves to the host: whether the Queen of Spades breaks hearts, and
// whether bots should actively pursue shooting the moon.
type RoundConfig struct {
	QueenBreaksHearts bool `hcl:"queen_breaks_hearts,optional" yaml:"queen_breaks_hearts"`
	AggressiveMoon    bool `hcl:"aggressive_moon,optional" yaml:"aggressive_moon"`
}

// TableConfig names the table and lists its four seats.
type TableConfig struct {
	Name  string       `hcl:"name,label" yaml:"name"`
	Seats []SeatConfig `hcl:"seat,block" yaml:"seats"`
}

// SeatConfig is one seat's sampler budget, the HCL/YAML analog of
// sdk/config.BotConfig's decision-tuning fields.
type SeatConfig struct {
	Name       string `hcl:"name,label" yaml:"name"`
	NSamples   int    `hcl:"n_samples,optional" yaml:"n_samples"`
	Seed       int64  `hcl:"seed,optional" yaml:"seed"`
	MaxRetries int    `hcl:"max_retries,optional" yaml:"max_retries"`
	DeadlineMS int    `hcl:"deadline_ms,optional" yaml:"deadline_ms"`
}

// Default returns a single-table, four-seat configuration using the
// decision core's own defaults.
func Default() *Config {
	return &Config{
		Round: RoundConfig{QueenBreaksHearts: true, AggressiveMoon: false},
		Table: TableConfig{
			Name: "main",
			Seats: []SeatConfig{
				{Name: "self", NSamples: 1000, MaxRetries: 32},
				{Name: "opponent1", NSamples: 1000, MaxRetries: 32},
				{Name: "opponent2", NSamples: 1000, MaxRetries: 32},
				{Name: "opponent3", NSamples: 1000, MaxRetries: 32},
			},
		},
	}
}

// Load dispatches to LoadHCLFile or LoadYAMLFile based on filename's
// extension, returning Default() unmodified if the file does not
// exist.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		return LoadYAMLFile(filename)
	case ".hcl":
		return LoadHCLFile(filename)
	default:
		return nil, fmt.Errorf("hartsconfig: unrecognized extension %q, want .hcl, .yaml, or .yml", ext)
	}
}

// LoadHCLFile parses filename as HCL and fills in defaults for the
// table name and each seat's n_samples and max_retries when they are
// left unset; every other field keeps its zero value.
func LoadHCLFile(filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("hartsconfig: parsing HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("hartsconfig: decoding HCL: %s", diags.Error())
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadYAMLFile parses filename as YAML and applies the same defaults
// LoadHCLFile does, so both forms decode to an equivalent Config.
func LoadYAMLFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("hartsconfig: reading YAML file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("hartsconfig: decoding YAML: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Table.Name == "" {
		cfg.Table.Name = "main"
	}
	for i := range cfg.Table.Seats {
		if cfg.Table.Seats[i].NSamples == 0 {
			cfg.Table.Seats[i].NSamples = 1000
		}
		if cfg.Table.Seats[i].MaxRetries == 0 {
			cfg.Table.Seats[i].MaxRetries = 32
		}
	}
}

// Validate reports a descriptive error for any structurally invalid
// configuration: exactly four seats with distinct, non-empty names and
// a positive sample budget.
func (c *Config) Validate() error {
	if len(c.Table.Seats) != 4 {
		return fmt.Errorf("hartsconfig: table %q has %d seats, want 4", c.Table.Name, len(c.Table.Seats))
	}
	seen := make(map[string]bool, 4)
	for _, seat := range c.Table.Seats {
		if seat.Name == "" {
			return fmt.Errorf("hartsconfig: table %q has a seat with no name", c.Table.Name)
		}
		if seen[seat.Name] {
			return fmt.Errorf("hartsconfig: table %q has duplicate seat name %q", c.Table.Name, seat.Name)
		}
		seen[seat.Name] = true
		if seat.NSamples <= 0 {
			return fmt.Errorf("hartsconfig: seat %q: n_samples must be positive", seat.Name)
		}
	}
	return nil
}

// Rules derives the rules.Rules this configuration's round block
// describes.
func (c *Config) Rules() rules.Rules {
	return rules.Rules{
		QueenBreaksHearts: c.Round.QueenBreaksHearts,
		AggressiveMoon:    c.Round.AggressiveMoon,
	}
}

// BotConfig converts one named seat into the env-var shaped
// sdk/config.BotConfig, so a host can launch bot processes from a
// single file-based source of truth while keeping the process
// boundary contract unchanged.
func (c *Config) BotConfig(seatName string) (*config.BotConfig, error) {
	for _, seat := range c.Table.Seats {
		if seat.Name != seatName {
			continue
		}
		return &config.BotConfig{
			BotID:             seat.Name,
			TableID:           c.Table.Name,
			Seed:              seat.Seed,
			NSamples:          seat.NSamples,
			MaxRetries:        seat.MaxRetries,
			DeadlineMS:        seat.DeadlineMS,
			QueenBreaksHearts: c.Round.QueenBreaksHearts,
			AggressiveMoon:    c.Round.AggressiveMoon,
		}, nil
	}
	return nil, fmt.Errorf("hartsconfig: table %q has no seat named %q", c.Table.Name, seatName)
}
