package parser

import (
	"github.com/seamsql/seamsql/pkg/dialect"
	"github.com/seamsql/seamsql/pkg/token"
)

// ParseScript parses a script of semicolon-separated statements.
// Statements split on top-level semicolons only, so literals and
// parenthesized spans cannot end one early. Token positions refer to
// the whole input, which keeps errors in later statements pointing at
// their true line and column. Empty statements between semicolons are
// skipped.
func ParseScript(input string, syn *dialect.Syntax) ([]*Query, error) {
	return ParseScriptWithDepth(input, syn, DefaultMaxDepth)
}

// ParseScriptWithDepth parses a script with an explicit nesting limit
// per statement. Non-positive maxDepth falls back to DefaultMaxDepth.
func ParseScriptWithDepth(input string, syn *dialect.Syntax, maxDepth int) ([]*Query, error) {
	if syn == nil {
		syn = dialect.Default
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	toks := Tokenize(input, syn)

	var queries []*Query
	start, depth := 0, 0
	flush := func(end int) error {
		span := toks[start:end]
		start = end
		if emptySpan(span) {
			return nil
		}
		stmt, err := parseTokens(span, syn, maxDepth)
		if err != nil {
			return err
		}
		queries = append(queries, &Query{Root: stmt, Syntax: syn})
		return nil
	}

	for i, t := range toks {
		if t.Kind != token.SYMBOL {
			continue
		}
		switch t.Norm {
		case "(":
			depth++
		case ")":
			if depth > 0 {
				depth--
			}
		case ";":
			if depth == 0 {
				if err := flush(i + 1); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := flush(len(toks)); err != nil {
		return nil, err
	}
	return queries, nil
}

// emptySpan reports whether a span holds no statement: nothing at
// all, or a lone terminating semicolon.
func emptySpan(span []token.Token) bool {
	if len(span) == 0 {
		return true
	}
	return len(span) == 1 && span[0].Kind == token.SYMBOL && span[0].Norm == ";"
}
