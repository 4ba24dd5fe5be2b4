package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/seamsql/seamsql/internal/cli/output"
	"github.com/seamsql/seamsql/pkg/parser"
	"github.com/seamsql/seamsql/pkg/token"
	"github.com/spf13/cobra"
)

// TokensOptions holds options for the tokens command.
type TokensOptions struct {
	Format string // Output format: table, json, csv, markdown
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	opts := &TokensOptions{}
	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Tokenize SQL and dump the token stream",
		Long: `Tokenize SQL and dump every token with its kind and position.

Reads from a file argument or from stdin. The dump shows each
token's source spelling, its normalized form, and where it starts.
Comments are discarded during tokenization and do not appear.`,
		Example: `  # Dump tokens as a table
  seamsql tokens query.sql

  # Dump tokens from stdin
  echo "SELECT 1" | seamsql tokens

  # Machine-readable output
  seamsql tokens query.sql --format json

  # Dialect-specific prefix handling
  seamsql tokens query.sql --dialect mysql`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokens(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, markdown")

	return cmd
}

func runTokens(cmd *cobra.Command, args []string, opts *TokensOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	sql, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	toks := parser.Tokenize(sql, cmdCtx.Syntax)
	w := cmd.OutOrStdout()

	format := opts.Format
	if format == "" && cmdCtx.Renderer.EffectiveMode() == output.ModeJSON {
		format = "json"
	}
	switch format {
	case "json":
		return renderTokensJSON(w, toks)
	case "csv":
		return renderTokensCSV(w, toks)
	case "md", "markdown":
		return renderTokensMarkdown(w, toks)
	case "", "table":
		return renderTokensTable(w, toks)
	default:
		return fmt.Errorf("unknown format %q (expected table, json, csv, or markdown)", format)
	}
}

// tokenRow is the machine-readable form of one token.
type tokenRow struct {
	Index  int    `json:"index"`
	Kind   string `json:"kind"`
	Text   string `json:"text"`
	Norm   string `json:"norm"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func tokenRows(toks []token.Token) []tokenRow {
	rows := make([]tokenRow, len(toks))
	for i, t := range toks {
		rows[i] = tokenRow{
			Index:  i + 1,
			Kind:   t.Kind.String(),
			Text:   t.Text,
			Norm:   t.Norm,
			Line:   t.Pos.Line,
			Column: t.Pos.Column,
		}
	}
	return rows
}

func renderTokensTable(w io.Writer, toks []token.Token) error {
	if len(toks) == 0 {
		_, _ = fmt.Fprintln(w, "(0 tokens)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Kind", "Text", "Norm", "Pos"})

	for i, tok := range toks {
		t.AppendRow(table.Row{
			i + 1,
			tok.Kind.String(),
			tok.Text,
			tok.Norm,
			fmt.Sprintf("%d:%d", tok.Pos.Line, tok.Pos.Column),
		})
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d tokens)\n", len(toks))
	return nil
}

func renderTokensJSON(w io.Writer, toks []token.Token) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenRows(toks))
}

func renderTokensCSV(w io.Writer, toks []token.Token) error {
	_, _ = fmt.Fprintln(w, "index,kind,text,norm,line,column")
	for _, row := range tokenRows(toks) {
		values := []string{
			fmt.Sprintf("%d", row.Index),
			row.Kind,
			escapeCSV(row.Text),
			escapeCSV(row.Norm),
			fmt.Sprintf("%d", row.Line),
			fmt.Sprintf("%d", row.Column),
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func renderTokensMarkdown(w io.Writer, toks []token.Token) error {
	if len(toks) == 0 {
		_, _ = fmt.Fprintln(w, "(0 tokens)")
		return nil
	}

	_, _ = fmt.Fprintln(w, "| # | Kind | Text | Norm | Pos |")
	_, _ = fmt.Fprintln(w, "| --- | --- | --- | --- | --- |")
	for _, row := range tokenRows(toks) {
		_, _ = fmt.Fprintf(w, "| %d | %s | %s | %s | %d:%d |\n",
			row.Index, row.Kind, row.Text, row.Norm, row.Line, row.Column)
	}
	return nil
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
