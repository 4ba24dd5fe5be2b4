// Package format pretty-prints SQL across multiple lines with
// clause-aware indentation and configurable comma placement.
//
// The formatter is purely lexical: it re-tokenizes its input and
// reflows the token stream, so it accepts any SQL the tokenizer can
// consume, parseable or not. Comments do not survive reformatting
// because the tokenizer discards them.
package format

import (
	"fmt"
	"strings"

	"github.com/seamsql/seamsql/pkg/dialect"
	"github.com/seamsql/seamsql/pkg/parser"
)

// Mode selects the output style.
type Mode int

const (
	// Inline leaves the input unchanged.
	Inline Mode = iota
	// Prefixed breaks list clauses one item per line with the comma
	// leading each continuation line.
	Prefixed
	// Suffixed breaks list clauses one item per line with the comma
	// trailing each line.
	Suffixed
)

var modeNames = map[Mode]string{
	Inline:   "inline",
	Prefixed: "prefixed",
	Suffixed: "suffixed",
}

// String returns the mode's name.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MODE(%d)", int(m))
}

// ParseMode maps a mode name to its Mode. The empty string means
// Inline.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inline":
		return Inline, nil
	case "prefixed":
		return Prefixed, nil
	case "suffixed":
		return Suffixed, nil
	}
	return Inline, fmt.Errorf("unknown format mode %q", s)
}

// DefaultIndent is the indent width used when Options.Indent is not
// positive.
const DefaultIndent = 4

// Options control the output style.
type Options struct {
	Mode   Mode
	Indent int
}

func (o Options) indentWidth() int {
	if o.Indent <= 0 {
		return DefaultIndent
	}
	return o.Indent
}

// Format reformats sql in the given dialect. Inline mode returns the
// input unchanged; the other modes produce a multi-line layout ending
// with a single newline. A nil syn means dialect.Default.
func Format(sql string, syn *dialect.Syntax, opts Options) string {
	if opts.Mode == Inline {
		return sql
	}
	if syn == nil {
		syn = dialect.Default
	}
	toks := parser.Tokenize(sql, syn)
	if len(toks) == 0 {
		return ""
	}
	return reflow(toks, opts.Mode, opts.indentWidth())
}

// Query renders a parsed query: its canonical form in Inline mode,
// otherwise the canonical form reformatted.
func Query(q *parser.Query, opts Options) string {
	if q == nil || q.Root == nil {
		return ""
	}
	return Format(q.SQL(), q.Syntax, opts)
}
