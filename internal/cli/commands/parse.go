package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/seamsql/seamsql/internal/cli/output"
	"github.com/seamsql/seamsql/pkg/parser"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ParseOptions holds options for the parse command.
type ParseOptions struct {
	Format string // Output format: text, json, yaml
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse SQL and show its statement structure",
		Long: `Parse SQL into a statement tree and dump its structure.

Reads from a file argument or from stdin and prints each statement
with its clauses. Subqueries, CTE bodies, and INSERT sources appear
as nested statements. On a parse error the offending line is shown
with the failing position marked.`,
		Example: `  # Parse a file
  seamsql parse query.sql

  # Parse from stdin
  echo "SELECT 1" | seamsql parse

  # Dump the tree as JSON
  seamsql parse query.sql --format json

  # Use a specific dialect
  seamsql parse query.sql --dialect postgres`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, yaml")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	switch opts.Format {
	case "", "yaml":
	case "text", "json":
		// --format takes precedence over the configured output mode.
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	default:
		return fmt.Errorf("unknown format %q (expected text, json, or yaml)", opts.Format)
	}

	sql, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	queries, err := parser.ParseScript(sql, cmdCtx.Syntax)
	if err != nil {
		renderParseError(r, sql, err)
		return fmt.Errorf("parse failed")
	}

	out := parseOutput{Dialect: cmdCtx.Syntax.Name()}
	for _, q := range queries {
		out.Statements = append(out.Statements, summarize(q.Root))
	}

	if opts.Format == "yaml" {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(out)
	}
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	for i, s := range out.Statements {
		if i > 0 {
			r.Println("")
		}
		renderStatement(r, s, fmt.Sprintf("statement %d:", i+1), 0)
	}
	r.Println("")
	r.Println(r.Styles().Muted.Render(fmt.Sprintf("%d statements", len(out.Statements))))
	return nil
}

// parseOutput is the machine-readable envelope for the tree dump.
type parseOutput struct {
	Dialect    string              `json:"dialect" yaml:"dialect"`
	Statements []*statementSummary `json:"statements" yaml:"statements"`
}

// statementSummary describes one parsed statement. Nested statements
// land in With, Subqueries, or Source so the dump mirrors tree
// ownership.
type statementSummary struct {
	Kind    string            `json:"kind" yaml:"kind"`
	SQL     string            `json:"sql" yaml:"sql"`
	With    *withSummary      `json:"with,omitempty" yaml:"with,omitempty"`
	Clauses []clauseSummary   `json:"clauses" yaml:"clauses"`
	Source  *statementSummary `json:"source,omitempty" yaml:"source,omitempty"`
}

type withSummary struct {
	Recursive bool         `json:"recursive" yaml:"recursive"`
	CTEs      []cteSummary `json:"ctes" yaml:"ctes"`
}

type cteSummary struct {
	Name      string            `json:"name" yaml:"name"`
	Columns   []string          `json:"columns,omitempty" yaml:"columns,omitempty"`
	Statement *statementSummary `json:"statement" yaml:"statement"`
}

type clauseSummary struct {
	Name       string              `json:"name" yaml:"name"`
	SQL        string              `json:"sql" yaml:"sql"`
	Subqueries []*statementSummary `json:"subqueries,omitempty" yaml:"subqueries,omitempty"`
}

// summarize flattens a statement into its dump form, recursing into
// every statement it owns.
func summarize(stmt parser.Statement) *statementSummary {
	s := &statementSummary{Kind: stmt.Kind(), SQL: stmt.SQL()}

	if w := statementWith(stmt); w != nil {
		ws := &withSummary{Recursive: w.Recursive}
		for _, cte := range w.CTEs {
			ws.CTEs = append(ws.CTEs, cteSummary{
				Name:      cte.Name,
				Columns:   cte.Columns,
				Statement: summarize(cte.Stmt),
			})
		}
		s.With = ws
	}

	for _, seg := range stmt.Segments() {
		if seg.IsEmpty() {
			continue
		}
		cs := clauseSummary{Name: seg.Name, SQL: seg.SQL()}
		for _, part := range seg.Parts {
			if sub, ok := part.(*parser.SubqueryPart); ok {
				cs.Subqueries = append(cs.Subqueries, summarize(sub.Stmt))
			}
		}
		s.Clauses = append(s.Clauses, cs)
	}

	if ins, ok := stmt.(*parser.InsertStmt); ok && ins.Source != nil {
		s.Source = summarize(ins.Source)
	}
	return s
}

// statementWith returns the statement's WITH clause, if any.
func statementWith(stmt parser.Statement) *parser.WithClause {
	switch s := stmt.(type) {
	case *parser.SelectStmt:
		return s.With
	case *parser.InsertStmt:
		return s.With
	case *parser.UpdateStmt:
		return s.With
	case *parser.DeleteStmt:
		return s.With
	}
	return nil
}

// renderStatement prints one statement of the text dump, indenting
// two spaces per nesting level.
func renderStatement(r *output.Renderer, s *statementSummary, title string, depth int) {
	pad := strings.Repeat("  ", depth)
	r.Printf("%s%s %s\n", pad, r.Styles().Header2.Render(title), r.Styles().Bold.Render(s.Kind))

	if s.With != nil {
		kw := "with"
		if s.With.Recursive {
			kw = "with recursive"
		}
		for _, cte := range s.With.CTEs {
			name := cte.Name
			if len(cte.Columns) > 0 {
				name += " (" + strings.Join(cte.Columns, ", ") + ")"
			}
			renderStatement(r, cte.Statement, fmt.Sprintf("%s %s:", kw, name), depth+1)
		}
	}

	for _, c := range s.Clauses {
		r.Printf("%s  %s %s\n", pad, r.Styles().Muted.Render(fmt.Sprintf("%-9s", c.Name)), c.SQL)
		for _, sub := range c.Subqueries {
			renderStatement(r, sub, "subquery:", depth+2)
		}
	}

	if s.Source != nil {
		renderStatement(r, s.Source, "source:", depth+1)
	}
}

// renderParseError prints err to stderr and, for positioned errors,
// the offending source line with the failing column marked.
func renderParseError(r *output.Renderer, sql string, err error) {
	r.Error(err)

	var pe *parser.ParseError
	if !errors.As(err, &pe) || pe.Pos.Line < 1 {
		return
	}
	lines := strings.Split(sql, "\n")
	if pe.Pos.Line > len(lines) {
		return
	}
	src := strings.TrimRight(lines[pe.Pos.Line-1], "\r")
	col := pe.Pos.Column
	if col < 1 {
		col = 1
	}
	if col > len(src)+1 {
		col = len(src) + 1
	}
	gutter := fmt.Sprintf("%d | ", pe.Pos.Line)
	r.Errorf("%s%s\n", r.Styles().Muted.Render(gutter), src)
	r.Errorf("%s%s\n", strings.Repeat(" ", len(gutter)+col-1), r.Styles().Error.Render("^"))
}
