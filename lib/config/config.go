// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/memgrid/memgrid/lib/binhash"
	"github.com/memgrid/memgrid/lib/export"
	"github.com/memgrid/memgrid/lib/timeline"
)

// EnvironmentVariable names the variable Load reads the config path
// from.
const EnvironmentVariable = "MEMGRID_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is an analyst workstation.
	Development Environment = "development"
	// Staging is a pre-production analysis worker.
	Staging Environment = "staging"
	// Production is a shared analysis worker.
	Production Environment = "production"
)

// Config is the memgrid configuration.
type Config struct {
	// Environment identifies the deployment type.
	Environment Environment `yaml:"environment"`

	// Output configures where engine output files and exports land.
	Output OutputConfig `yaml:"output"`

	// Render configures tree flattening.
	Render RenderConfig `yaml:"render"`

	// Timeline configures timeline bucketing.
	Timeline TimelineConfig `yaml:"timeline"`

	// Export configures serialization of exported results.
	Export ExportConfig `yaml:"export"`

	// Hash configures evidence and export fingerprints.
	Hash HashConfig `yaml:"hash"`

	// Log configures the command logger.
	Log LogConfig `yaml:"log"`

	// Per-environment overrides, applied after the base config is
	// loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Output *OutputConfig `yaml:"output,omitempty"`
	Export *ExportConfig `yaml:"export,omitempty"`
	Log    *LogConfig    `yaml:"log,omitempty"`
}

// OutputConfig configures the output directory.
type OutputConfig struct {
	// Directory receives committed output files and exports. ${HOME}
	// and ${VAR:-default} are expanded.
	Directory string `yaml:"directory"`

	// FileMode is the octal permission applied to committed files.
	// Default: "0644"
	FileMode string `yaml:"file_mode"`
}

// RenderConfig configures tree flattening.
type RenderConfig struct {
	// LevelMarker is repeated to render node depth.
	// Default: "*"
	LevelMarker string `yaml:"level_marker"`
}

// TimelineConfig configures timeline bucketing.
type TimelineConfig struct {
	// SkipPlugin names the plugin whose rows are ignored. An explicit
	// empty string skips nothing.
	// Default: MFTScan
	SkipPlugin string `yaml:"skip_plugin"`

	// ByDay buckets by calendar day instead of the full timestamp.
	ByDay bool `yaml:"by_day"`

	// DropOpenRun leaves the final run out of the series.
	DropOpenRun bool `yaml:"drop_open_run"`
}

// ExportConfig configures exported results.
type ExportConfig struct {
	// Format is "json" or "cbor".
	// Default: json
	Format string `yaml:"format"`

	// Compression is "none", "zstd" or "lz4".
	// Default: none
	Compression string `yaml:"compression"`
}

// HashConfig configures fingerprints.
type HashConfig struct {
	// Algorithm is "sha256" or "blake3".
	// Default: sha256
	Algorithm string `yaml:"algorithm"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	// Default: info
	Level string `yaml:"level"`
}

// Default returns the default configuration. It is the base the config
// file is merged into and is also used as-is when no file is given.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Environment: Development,
		Output: OutputConfig{
			Directory: filepath.Join(homeDir, ".cache", "memgrid", "output"),
			FileMode:  "0644",
		},
		Render: RenderConfig{
			LevelMarker: "*",
		},
		Timeline: TimelineConfig{
			SkipPlugin: timeline.DefaultSkipPlugin,
		},
		Export: ExportConfig{
			Format:      "json",
			Compression: "none",
		},
		Hash: HashConfig{
			Algorithm: "sha256",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the MEMGRID_CONFIG environment
// variable. There is no discovery: if the variable is not set, Load
// fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your memgrid.yaml config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Environment
// variables never override values from the file; they are only
// consulted by ${VAR} expansion in path fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Shared workers keep results private to the service account
		// unless the file says otherwise.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Output: &OutputConfig{FileMode: "0640"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Output != nil {
		if overrides.Output.Directory != "" {
			c.Output.Directory = overrides.Output.Directory
		}
		if overrides.Output.FileMode != "" {
			c.Output.FileMode = overrides.Output.FileMode
		}
	}

	if overrides.Export != nil {
		if overrides.Export.Format != "" {
			c.Export.Format = overrides.Export.Format
		}
		if overrides.Export.Compression != "" {
			c.Export.Compression = overrides.Export.Compression
		}
	}

	if overrides.Log != nil && overrides.Log.Level != "" {
		c.Log.Level = overrides.Log.Level
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Output.Directory = expandVars(c.Output.Directory, vars)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// FileMode parses Output.FileMode as an octal permission.
func (c *Config) FileMode() (os.FileMode, error) {
	mode, err := strconv.ParseUint(c.Output.FileMode, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("output.file_mode %q is not an octal mode: %w", c.Output.FileMode, err)
	}
	if mode == 0 || mode > 0o777 {
		return 0, fmt.Errorf("output.file_mode %q must be between 0001 and 0777", c.Output.FileMode)
	}
	return os.FileMode(mode), nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// ExportOptions converts the export and hash sections into options for
// export.NewWriter. Logger, clock and run id are left for the caller.
func (c *Config) ExportOptions() (export.Options, error) {
	format, err := export.ParseFormat(c.Export.Format)
	if err != nil {
		return export.Options{}, fmt.Errorf("export.format: %w", err)
	}
	compression, err := export.ParseCompression(c.Export.Compression)
	if err != nil {
		return export.Options{}, fmt.Errorf("export.compression: %w", err)
	}
	algorithm, err := binhash.ParseAlgorithm(c.Hash.Algorithm)
	if err != nil {
		return export.Options{}, fmt.Errorf("hash.algorithm: %w", err)
	}
	return export.Options{
		Format:      format,
		Compression: compression,
		Algorithm:   algorithm,
	}, nil
}

// TimelineOptions converts the timeline section.
func (c *Config) TimelineOptions() timeline.Options {
	return timeline.Options{
		SkipPlugin:  c.Timeline.SkipPlugin,
		ByDay:       c.Timeline.ByDay,
		DropOpenRun: c.Timeline.DropOpenRun,
	}
}

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Output.Directory == "" {
		errs = append(errs, fmt.Errorf("output.directory is required"))
	}
	if _, err := c.FileMode(); err != nil {
		errs = append(errs, err)
	}

	if c.Render.LevelMarker == "" {
		errs = append(errs, fmt.Errorf("render.level_marker must not be empty"))
	}

	if _, err := c.ExportOptions(); err != nil {
		errs = append(errs, err)
	}

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
