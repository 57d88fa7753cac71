package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Limits is the runtime configuration loaded from rill.yaml. Every field is
// optional; zero values fall back to the defaults above.
type Limits struct {
	// MaxCallDepth is the maximum number of nested function calls.
	MaxCallDepth int `yaml:"max_call_depth,omitempty"`

	// HistorySize is the capacity of the REPL history ring.
	HistorySize int `yaml:"history_size,omitempty"`

	// HistoryDB is an optional path to a sqlite file persisting REPL history
	// across sessions. Empty disables persistence.
	HistoryDB string `yaml:"history_db,omitempty"`
}

// DefaultLimits returns the built-in limits.
func DefaultLimits() Limits {
	return Limits{
		MaxCallDepth: DefaultMaxCallDepth,
		HistorySize:  DefaultHistorySize,
	}
}

// LoadLimits reads limits from a yaml file. A missing file is not an error;
// the defaults are returned.
func LoadLimits(path string) (Limits, error) {
	limits := DefaultLimits()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return limits, nil
		}
		return limits, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &limits); err != nil {
		return limits, fmt.Errorf("parsing %s: %w", path, err)
	}
	if limits.MaxCallDepth <= 0 {
		limits.MaxCallDepth = DefaultMaxCallDepth
	}
	if limits.HistorySize <= 0 {
		limits.HistorySize = DefaultHistorySize
	}
	return limits, nil
}
