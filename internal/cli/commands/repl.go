package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/seamsql/seamsql/internal/cli/output"
	"github.com/seamsql/seamsql/pkg/dialect"
	"github.com/seamsql/seamsql/pkg/format"
	"github.com/seamsql/seamsql/pkg/parser"
	"github.com/spf13/cobra"
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive SQL formatting shell",
		Long: `Start an interactive shell for parsing and formatting SQL.

Statements are buffered until a line ends with a semicolon, then
parsed and pretty-printed. Dot-commands switch the formatting mode,
indent, and dialect for the session, and toggle token and tree
dumps. Type .help inside the shell for the full list.`,
		Example: `  # Start the shell
  seamsql repl

  # Start with a different dialect and mode
  seamsql repl --dialect postgres`,
		Args: cobra.NoArgs,
		RunE: runRepl,
	}
}

// replSession holds the per-session state the dot-commands mutate.
type replSession struct {
	syn        *dialect.Syntax
	opts       format.Options
	showTokens bool
	showTree   bool
}

func runRepl(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	sess := &replSession{
		syn:  cmdCtx.Syntax,
		opts: cmdCtx.Cfg.FormatOptions(),
	}

	// History lives in the home directory; without one the session
	// simply runs without history.
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".seamsql_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "seamsql> ",
		HistoryFile:     historyFile,
		AutoComplete:    newReplCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seamsql REPL (dialect: %s, mode: %s)\n", sess.syn.Name(), sess.opts.Mode)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	var buffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buffer.Reset()
			rl.SetPrompt("seamsql> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") && buffer.Len() == 0 {
			if handled := handleDotCommand(cmd, r, sess, line); handled {
				if line == ".quit" || line == ".exit" {
					break
				}
				continue
			}
		}

		// Accumulate multi-line SQL until semicolon
		buffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buffer.WriteString(" ")
			rl.SetPrompt("    ...> ")
			continue
		}
		rl.SetPrompt("seamsql> ")

		sql := buffer.String()
		buffer.Reset()

		if err := renderReplStatement(cmd, r, sess, sql); err != nil {
			renderParseError(r, sql, err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

// renderReplStatement parses the buffered input and prints the
// formatted SQL plus any enabled diagnostic dumps.
func renderReplStatement(cmd *cobra.Command, r *output.Renderer, sess *replSession, sql string) error {
	queries, err := parser.ParseScript(sql, sess.syn)
	if err != nil {
		return err
	}

	formatted := format.Format(sql, sess.syn, sess.opts)
	if !strings.HasSuffix(formatted, "\n") {
		formatted += "\n"
	}
	r.Printf("%s", formatted)

	if sess.showTokens {
		_ = renderTokensTable(cmd.OutOrStdout(), parser.Tokenize(sql, sess.syn))
	}
	if sess.showTree {
		for i, q := range queries {
			renderStatement(r, summarize(q.Root), fmt.Sprintf("statement %d:", i+1), 0)
		}
	}
	return nil
}

func handleDotCommand(cmd *cobra.Command, r *output.Renderer, sess *replSession, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printReplHelp(cmd.OutOrStdout())
		return true

	case ".mode":
		if len(parts) < 2 {
			r.Printf("mode: %s\n", sess.opts.Mode)
			return true
		}
		mode, err := format.ParseMode(parts[1])
		if err != nil {
			r.Error(err)
			return true
		}
		sess.opts.Mode = mode
		return true

	case ".indent":
		if len(parts) < 2 {
			r.Printf("indent: %d\n", sess.opts.Indent)
			return true
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 0 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .indent <non-negative number>")
			return true
		}
		sess.opts.Indent = n
		return true

	case ".dialect":
		if len(parts) < 2 {
			r.Printf("dialect: %s\n", sess.syn.Name())
			return true
		}
		syn, ok := dialect.Get(parts[1])
		if !ok {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown dialect: %s (available: %s)\n",
				parts[1], strings.Join(dialect.List(), ", "))
			return true
		}
		sess.syn = syn
		return true

	case ".tokens":
		sess.showTokens = !sess.showTokens
		r.Printf("token dump: %s\n", onOff(sess.showTokens))
		return true

	case ".tree":
		sess.showTree = !sess.showTree
		r.Printf("tree dump: %s\n", onOff(sess.showTree))
		return true

	case ".clear":
		fmt.Print("\033[H\033[2J")
		return true

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
		return true
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func printReplHelp(w io.Writer) {
	help := `
Commands:
  .help             Show this help message
  .mode [name]      Show or set the formatting mode (inline, prefixed, suffixed)
  .indent [n]       Show or set the indent width
  .dialect [name]   Show or set the SQL dialect
  .tokens           Toggle the token dump after each statement
  .tree             Toggle the statement tree dump after each statement
  .clear            Clear the screen
  .quit / .exit     Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for keywords and dot-commands
`
	_, _ = fmt.Fprintln(w, help)
}

// newReplCompleter creates a readline completer for statement
// keywords and dot-commands.
func newReplCompleter() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem("SELECT"),
		readline.PcItem("INSERT"),
		readline.PcItem("UPDATE"),
		readline.PcItem("DELETE"),
		readline.PcItem("WITH"),
	}

	var dialects []readline.PrefixCompleterInterface
	for _, name := range dialect.List() {
		dialects = append(dialects, readline.PcItem(name))
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".mode",
			readline.PcItem("inline"),
			readline.PcItem("prefixed"),
			readline.PcItem("suffixed"),
		),
		readline.PcItem(".indent"),
		readline.PcItem(".dialect", dialects...),
		readline.PcItem(".tokens"),
		readline.PcItem(".tree"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
