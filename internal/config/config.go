// Package config loads the fanidx configuration file.
//
// The file is YAML. Before it is decoded it is checked against an embedded
// CUE schema, so unknown keys and out-of-range values are reported with
// their path instead of being silently ignored.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// DefaultPath is read when no --config flag is given and the file exists.
const DefaultPath = "fanidx.yaml"

// Config is the decoded configuration.
type Config struct {
	Database    string        `yaml:"database"`
	IdentPrefix string        `yaml:"ident_prefix"`
	Closure     ClosureConfig `yaml:"closure"`
	Retry       RetryConfig   `yaml:"retry"`
	Log         LogConfig     `yaml:"log"`
}

type ClosureConfig struct {
	Strategy     string `yaml:"strategy"`
	DeferRebuild bool   `yaml:"defer_rebuild"`
}

type RetryConfig struct {
	MaxElapsed string `yaml:"max_elapsed"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Database: "fanling.db",
		Closure:  ClosureConfig{Strategy: "materialized"},
		Retry:    RetryConfig{MaxElapsed: "2s"},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads path. A missing file at DefaultPath yields Default(); a
// missing file anywhere else is an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultPath {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates data against the schema and decodes it over Default().
func Parse(data []byte) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := validate(raw); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if _, err := cfg.MaxElapsed(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(raw map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	if raw == nil {
		raw = map[string]any{}
	}
	data := ctx.Encode(raw)
	if err := data.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := def.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// MaxElapsed parses Retry.MaxElapsed. Empty means no retries.
func (c Config) MaxElapsed() (time.Duration, error) {
	if c.Retry.MaxElapsed == "" {
		return -1, nil
	}
	d, err := time.ParseDuration(c.Retry.MaxElapsed)
	if err != nil {
		return 0, fmt.Errorf("retry.max_elapsed: %w", err)
	}
	return d, nil
}

// SlogLevel maps Log.Level onto slog levels; unknown values fall back to
// Info.
func (c Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
