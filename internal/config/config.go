// Package config holds CLI runtime configuration: defaults, environment
// overrides, flag parsing and validation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anatolykoptev/go-imgnamer/internal/logging"
)

// Supported search engines.
const (
	EngineGoogle = "google"
	EngineTinEye = "tineye"
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// overlaid with IMGNAMER_* environment variables by [ApplyEnv] and finally
// mutated by [ParseFlags].
type Config struct {
	// Inputs (positional args).
	Paths     []string
	Recursive bool

	// Search.
	Engines      []string      // Default: google.
	Sites        []string      // Preferred sites, searched first.
	Num          int           // Default: 5 results per engine.
	Timeout      time.Duration // Default: 60s per image.
	Render       bool          // Render result pages in headless Chrome.
	UserAgent    string
	RedisAddr    string        // Empty disables the shared cache.
	CacheTTL     time.Duration // Default: 30 days.
	RulesFile    string        // Empty uses the built-in rules.
	Hint         string
	UseReference bool // Default: true. Compare result sizes with the file's own.
	MetadataHint bool // Default: true. Use embedded titles when no hint is given.

	// Behavior.
	DryRun bool

	// Output.
	Verbose     bool
	LogLevel    string // Default: "info".
	LogFormat   string // Default: "text".
	MetricsFile string // Optional Prometheus textfile path.
	ShowVersion bool
}

// DefaultConfig returns the built-in defaults, before env and flags apply.
func DefaultConfig() Config {
	return Config{
		Engines:      []string{EngineGoogle},
		Num:          5,
		Timeout:      60 * time.Second,
		CacheTTL:     30 * 24 * time.Hour,
		UseReference: true,
		MetadataHint: true,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Validate checks the config for consistency. Returns an error describing
// the first problem found.
func (c *Config) Validate() error {
	if c.ShowVersion {
		return nil
	}
	if len(c.Paths) == 0 {
		return errors.New("no input files or directories given")
	}
	if len(c.Engines) == 0 {
		return errors.New("at least one engine is required")
	}
	for _, e := range c.Engines {
		if e != EngineGoogle && e != EngineTinEye {
			return fmt.Errorf("unknown engine %q (want %s or %s)", e, EngineGoogle, EngineTinEye)
		}
	}
	if c.Num <= 0 {
		return fmt.Errorf("num must be positive, got %d", c.Num)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat)
	}
	return nil
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
