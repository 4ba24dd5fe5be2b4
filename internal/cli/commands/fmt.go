package commands

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/seamsql/seamsql/internal/cli/config"
	"github.com/seamsql/seamsql/internal/cli/output"
	"github.com/seamsql/seamsql/pkg/dialect"
	"github.com/seamsql/seamsql/pkg/format"
	"github.com/seamsql/seamsql/pkg/parser"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// FmtOptions holds options for the fmt command.
type FmtOptions struct {
	Mode   string // Formatting mode: inline, prefixed, suffixed
	Indent int    // Spaces per indent level
	Write  bool   // Rewrite files in place
	Check  bool   // List unformatted files and exit non-zero
	Watch  bool   // Keep watching and reformatting on change
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand() *cobra.Command {
	opts := &FmtOptions{}
	cmd := &cobra.Command{
		Use:   "fmt [files...]",
		Short: "Pretty-print SQL files or stdin",
		Long: `Reformat SQL statements across multiple lines.

Each clause starts its own line, list items are indented one level,
and subqueries indent with their parentheses. Input must parse before
it is formatted, so malformed SQL is reported with its line and
column instead of being mangled.

With no arguments (or "-") input comes from stdin and the result goes
to stdout. Directory arguments are walked recursively for .sql files.`,
		Example: `  # Format stdin to stdout
  seamsql fmt < query.sql

  # Rewrite files in place
  seamsql fmt --write queries/daily.sql

  # List files that are not formatted, exit non-zero if any
  seamsql fmt --check queries/

  # Keep files formatted while editing
  seamsql fmt --watch queries/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", "", "Formatting mode: inline, prefixed, suffixed")
	cmd.Flags().IntVar(&opts.Indent, "indent", 0, "Spaces per indent level")
	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "Rewrite files in place instead of printing")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "List unformatted files and exit non-zero")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Watch files and reformat on change")

	return cmd
}

func runFmt(cmd *cobra.Command, args []string, opts *FmtOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	fmtOpts, err := resolveFormatOptions(cmd, cmdCtx.Cfg, opts)
	if err != nil {
		return err
	}

	watch := cmdCtx.Cfg.Fmt.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		if watch || opts.Write || opts.Check {
			return fmt.Errorf("--write, --check, and --watch require file arguments")
		}
		return fmtStdin(cmd, cmdCtx.Syntax, fmtOpts)
	}

	files, err := collectSQLFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .sql files found in %s", strings.Join(args, ", "))
	}

	switch {
	case watch:
		return watchAndFormat(cmd, cmdCtx, args, files, fmtOpts)
	case opts.Check:
		return checkFiles(cmdCtx, files, fmtOpts)
	case opts.Write:
		return writeFiles(cmdCtx, files, fmtOpts)
	default:
		return printFiles(cmd, cmdCtx.Syntax, files, fmtOpts)
	}
}

// resolveFormatOptions layers command flags over the configured
// pretty-printer defaults.
func resolveFormatOptions(cmd *cobra.Command, cfg *config.Config, opts *FmtOptions) (format.Options, error) {
	fmtOpts := cfg.FormatOptions()
	if cmd.Flags().Changed("mode") {
		mode, err := format.ParseMode(opts.Mode)
		if err != nil {
			return format.Options{}, err
		}
		fmtOpts.Mode = mode
	}
	if cmd.Flags().Changed("indent") {
		fmtOpts.Indent = opts.Indent
	}
	return fmtOpts, nil
}

func fmtStdin(cmd *cobra.Command, syn *dialect.Syntax, opts format.Options) error {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	formatted, err := formatSQL(string(data), syn, opts)
	if err != nil {
		return fmt.Errorf("<stdin>: %w", err)
	}
	_, err = io.WriteString(cmd.OutOrStdout(), formatted)
	return err
}

// formatSQL parses sql for validation, then pretty-prints it. Files
// may hold several semicolon-separated statements, so validation goes
// through ParseScript. The formatter itself never fails, so parsing
// first is what turns malformed input into a positioned error.
func formatSQL(sql string, syn *dialect.Syntax, opts format.Options) (string, error) {
	if _, err := parser.ParseScript(sql, syn); err != nil {
		return "", err
	}
	return format.Format(sql, syn, opts), nil
}

// collectSQLFiles expands the argument list: directories are walked
// recursively for .sql files, plain files are taken as-is. The result
// is deduplicated and sorted.
func collectSQLFiles(args []string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", arg, err)
		}
		if !info.IsDir() {
			seen[filepath.Clean(arg)] = struct{}{}
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".sql") {
				seen[filepath.Clean(path)] = struct{}{}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// rewriteFile formats one file in place. Returns whether the file
// changed.
func rewriteFile(path string, syn *dialect.Syntax, opts format.Options) (bool, error) {
	original, formatted, err := formatFile(path, syn, opts)
	if err != nil {
		return false, err
	}
	if formatted == original {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("cannot stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("cannot write %s: %w", path, err)
	}
	return true, nil
}

func formatFile(path string, syn *dialect.Syntax, opts format.Options) (original, formatted string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	formatted, err = formatSQL(string(data), syn, opts)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", path, err)
	}
	return string(data), formatted, nil
}

// eachFile runs fn for every file on a bounded worker pool.
func eachFile(files []string, fn func(path string) error) error {
	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for _, path := range files {
		eg.Go(func() error { return fn(path) })
	}
	return eg.Wait()
}

func writeFiles(cmdCtx *CommandContext, files []string, opts format.Options) error {
	var (
		mu      sync.Mutex
		changed int
	)
	err := eachFile(files, func(path string) error {
		rewrote, err := rewriteFile(path, cmdCtx.Syntax, opts)
		if err != nil {
			return err
		}
		if rewrote {
			mu.Lock()
			changed++
			mu.Unlock()
			cmdCtx.Logger.Debug("reformatted", "file", path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cmdCtx.Renderer.Printf("Formatted %d of %d files\n", changed, len(files))
	return nil
}

// checkResult is the JSON output structure for fmt --check.
type checkResult struct {
	Checked     int      `json:"checked"`
	Unformatted []string `json:"unformatted"`
}

func checkFiles(cmdCtx *CommandContext, files []string, opts format.Options) error {
	var (
		mu          sync.Mutex
		unformatted []string
	)
	err := eachFile(files, func(path string) error {
		original, formatted, err := formatFile(path, cmdCtx.Syntax, opts)
		if err != nil {
			return err
		}
		if original != formatted {
			mu.Lock()
			unformatted = append(unformatted, path)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(unformatted)

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(checkResult{Checked: len(files), Unformatted: unformatted}); err != nil {
			return err
		}
	} else {
		for _, path := range unformatted {
			r.Println(path)
		}
	}

	if len(unformatted) > 0 {
		return fmt.Errorf("%d of %d files are not formatted", len(unformatted), len(files))
	}
	return nil
}

func printFiles(cmd *cobra.Command, syn *dialect.Syntax, files []string, opts format.Options) error {
	for _, path := range files {
		_, formatted, err := formatFile(path, syn, opts)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(cmd.OutOrStdout(), formatted); err != nil {
			return err
		}
	}
	return nil
}
