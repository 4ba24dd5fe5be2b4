package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/seamsql/seamsql/internal/cli/config"
	"github.com/seamsql/seamsql/internal/cli/output"
	"github.com/seamsql/seamsql/pkg/dialect"
	"github.com/seamsql/seamsql/pkg/format"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Syntax   *dialect.Syntax
}

// NewCommandContext assembles the dependencies a command needs: the
// loaded config, the context logger, a renderer bound to the
// command's writers, and the resolved dialect.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	syn, err := cfg.Syntax()
	if err != nil {
		return nil, err
	}

	mode := output.Mode(cfg.Output)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
		Syntax:   syn,
	}, nil
}

// getConfig returns the current configuration. It uses
// config.GetCurrentConfig() if available, otherwise falls back to
// environment variables with defaults, which keeps commands usable
// when constructed outside the root command wiring.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	cfg := &config.Config{
		Dialect: getEnvOrDefault("SEAMSQL_DIALECT", config.DefaultDialect),
		Output:  getEnvOrDefault("SEAMSQL_OUTPUT", config.DefaultOutput),
		Verbose: os.Getenv("SEAMSQL_VERBOSE") == "true",
	}
	cfg.Format.Indent = config.DefaultIndent
	if mode, err := format.ParseMode(getEnvOrDefault("SEAMSQL_FORMAT_MODE", config.DefaultMode)); err == nil {
		cfg.Format.Mode = mode
	}
	cfg.Serve.Host = config.DefaultHost
	cfg.Serve.Port = config.DefaultPort
	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// readInput returns the SQL to operate on: the contents of the file
// argument, or stdin when no argument (or "-") is given.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("cannot read %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
