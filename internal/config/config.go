// Package config loads typematch.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"typematch/internal/match"
	"typematch/internal/trace"
)

// FileName is the name searched for by Find.
const FileName = "typematch.toml"

// Config is the decoded typematch.toml.
type Config struct {
	Matcher MatcherConfig `toml:"matcher"`
	Trace   TraceConfig   `toml:"trace"`
	Report  ReportConfig  `toml:"report"`

	// Path is the file the config was read from; empty for defaults.
	Path string `toml:"-"`
}

type MatcherConfig struct {
	MaxDepth int `toml:"max_depth"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

type ReportConfig struct {
	Format         string `toml:"format"`
	Color          string `toml:"color"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
	Jobs           int    `toml:"jobs"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Matcher: MatcherConfig{MaxDepth: match.DefaultMaxDepth},
		Trace:   TraceConfig{Level: "off", Mode: "stream", Output: "-"},
		Report:  ReportConfig{Format: "pretty", Color: "auto", MaxDiagnostics: 100},
	}
}

// Find walks up from startDir looking for typematch.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest typematch.toml above startDir, or the defaults
// when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes path over the defaults and validates the result. Keys the
// schema does not know are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated values and ranges.
func (c *Config) Validate() error {
	if c.Matcher.MaxDepth < 0 {
		return fmt.Errorf("[matcher].max_depth must be >= 0, got %d", c.Matcher.MaxDepth)
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("[trace].level: %w", err)
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		return fmt.Errorf("[trace].mode: %w", err)
	}
	switch c.Report.Format {
	case "pretty", "json", "msgpack":
	default:
		return fmt.Errorf("[report].format must be pretty|json|msgpack, got %q", c.Report.Format)
	}
	switch c.Report.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("[report].color must be auto|on|off, got %q", c.Report.Color)
	}
	if c.Report.MaxDiagnostics < 0 {
		return fmt.Errorf("[report].max_diagnostics must be >= 0, got %d", c.Report.MaxDiagnostics)
	}
	if c.Report.Jobs < 0 {
		return fmt.Errorf("[report].jobs must be >= 0, got %d", c.Report.Jobs)
	}
	return nil
}
