// Package config provides configuration management for the seamsql
// CLI. Settings layer from defaults, an optional seamsql.yaml file,
// SEAMSQL_ environment variables, and command-line flags, in rising
// precedence.
package config

import (
	"fmt"

	"github.com/seamsql/seamsql/pkg/dialect"
	"github.com/seamsql/seamsql/pkg/format"
)

// Config holds all CLI configuration options.
type Config struct {
	Dialect string       `koanf:"dialect"`
	Format  FormatConfig `koanf:"format"`
	Output  string       `koanf:"output"`
	Verbose bool         `koanf:"verbose"`
	Serve   ServeConfig  `koanf:"serve"`
	Fmt     FmtConfig    `koanf:"fmt"`
}

// FormatConfig holds pretty-printer defaults used by the fmt command
// and the REPL.
type FormatConfig struct {
	Mode   format.Mode `koanf:"mode"`
	Indent int         `koanf:"indent"`
}

// ServeConfig holds settings for the HTTP API server.
type ServeConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// FmtConfig holds fmt command behavior toggles.
type FmtConfig struct {
	Watch bool `koanf:"watch"`
}

// Default configuration values.
const (
	DefaultDialect = "sqlserver"
	DefaultMode    = "suffixed"
	DefaultIndent  = format.DefaultIndent
	DefaultOutput  = "auto"
	DefaultHost    = "127.0.0.1"
	DefaultPort    = 8080
)

// Syntax resolves the configured dialect name against the registry.
func (c *Config) Syntax() (*dialect.Syntax, error) {
	if c.Dialect == "" {
		return dialect.Default, nil
	}
	syn, ok := dialect.Get(c.Dialect)
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (available: %v)", c.Dialect, dialect.List())
	}
	return syn, nil
}

// FormatOptions builds the pretty-printer options from the config.
func (c *Config) FormatOptions() format.Options {
	return format.Options{Mode: c.Format.Mode, Indent: c.Format.Indent}
}

// Validate checks that the configuration is usable. The format mode
// is already validated during unmarshaling by its decode hook.
func (c *Config) Validate() error {
	if _, err := c.Syntax(); err != nil {
		return err
	}
	switch c.Output {
	case "", "auto", "text", "json":
	default:
		return fmt.Errorf("unknown output mode %q (expected auto, text, or json)", c.Output)
	}
	if c.Format.Indent < 0 {
		return fmt.Errorf("format indent must not be negative, got %d", c.Format.Indent)
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve port out of range: %d", c.Serve.Port)
	}
	return nil
}
