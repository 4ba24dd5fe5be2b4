package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seamsql/seamsql/pkg/dialect"
	"github.com/seamsql/seamsql/pkg/token"
)

// tk is a compact (kind, text) pair for comparing token streams.
type tk struct {
	Kind token.Kind
	Text string
}

func lexed(input string, syn *dialect.Syntax) []tk {
	toks := Tokenize(input, syn)
	out := make([]tk, len(toks))
	for i, t := range toks {
		out[i] = tk{Kind: t.Kind, Text: t.Text}
	}
	return out
}

func TestTokenizeBasics(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tk
	}{
		{
			name:  "keywords and identifiers",
			input: "select Id from Users",
			want: []tk{
				{token.KEYWORD, "select"},
				{token.IDENT, "Id"},
				{token.KEYWORD, "from"},
				{token.IDENT, "Users"},
			},
		},
		{
			name:  "punctuation",
			input: "a.b, c;",
			want: []tk{
				{token.IDENT, "a"},
				{token.SYMBOL, "."},
				{token.IDENT, "b"},
				{token.SYMBOL, ","},
				{token.IDENT, "c"},
				{token.SYMBOL, ";"},
			},
		},
		{
			name:  "underscore and dollar identifiers",
			input: "_tmp x$y",
			want:  []tk{{token.IDENT, "_tmp"}, {token.IDENT, "x$y"}},
		},
		{
			name:  "digits continue identifiers",
			input: "col2",
			want:  []tk{{token.IDENT, "col2"}},
		},
		{
			name:  "whitespace only",
			input: " \t\r\n ",
			want:  []tk{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lexed(tt.input, nil))
		})
	}
}

func TestTokenizeKeywordNorm(t *testing.T) {
	toks := Tokenize("select * from t", nil)
	require.Len(t, toks, 4)

	assert.True(t, toks[0].IsKeyword())
	assert.Equal(t, "select", toks[0].Text)
	assert.Equal(t, "SELECT", toks[0].Norm)

	assert.Equal(t, token.SYMBOL, toks[1].Kind)
	assert.Equal(t, "*", toks[1].Norm)
}

func TestTokenizeStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tk
	}{
		{
			name:  "single quoted",
			input: "'hello'",
			want:  []tk{{token.STRING, "'hello'"}},
		},
		{
			name:  "double quoted",
			input: `"first name"`,
			want:  []tk{{token.STRING, `"first name"`}},
		},
		{
			name:  "doubled quote escape",
			input: "'it''s'",
			want:  []tk{{token.STRING, "'it''s'"}},
		},
		{
			name:  "two adjacent literals",
			input: "'a' 'b'",
			want:  []tk{{token.STRING, "'a'"}, {token.STRING, "'b'"}},
		},
		{
			name:  "unterminated runs to end",
			input: "'abc",
			want:  []tk{{token.STRING, "'abc"}},
		},
		{
			name:  "keeps embedded comment markers",
			input: "'a -- b'",
			want:  []tk{{token.STRING, "'a -- b'"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lexed(tt.input, nil))
		})
	}
}

func TestTokenizeBrackets(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tk
	}{
		{
			name:  "bracketed identifier",
			input: "[my table]",
			want:  []tk{{token.IDENT, "[my table]"}},
		},
		{
			name:  "unterminated runs to end",
			input: "[abc",
			want:  []tk{{token.IDENT, "[abc"}},
		},
		{
			name:  "qualified",
			input: "[dbo].[users]",
			want: []tk{
				{token.IDENT, "[dbo]"},
				{token.SYMBOL, "."},
				{token.IDENT, "[users]"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lexed(tt.input, nil))
		})
	}
}

func TestTokenizeComments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tk
	}{
		{
			name:  "line comment",
			input: "a -- rest of line\nb",
			want:  []tk{{token.IDENT, "a"}, {token.IDENT, "b"}},
		},
		{
			name:  "line comment at end of input",
			input: "a -- rest",
			want:  []tk{{token.IDENT, "a"}},
		},
		{
			name:  "block comment",
			input: "a /* note */ b",
			want:  []tk{{token.IDENT, "a"}, {token.IDENT, "b"}},
		},
		{
			name:  "multiline block comment",
			input: "a /* one\ntwo */ b",
			want:  []tk{{token.IDENT, "a"}, {token.IDENT, "b"}},
		},
		{
			name:  "unterminated block comment",
			input: "a /* never closed",
			want:  []tk{{token.IDENT, "a"}},
		},
		{
			name:  "comment only",
			input: "-- nothing",
			want:  []tk{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lexed(tt.input, nil))
		})
	}
}

func TestTokenizeNumbers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tk
	}{
		{
			name:  "integer",
			input: "42",
			want:  []tk{{token.NUMBER, "42"}},
		},
		{
			name:  "decimal",
			input: "4.5",
			want:  []tk{{token.NUMBER, "4.5"}},
		},
		{
			name:  "second dot ends the literal",
			input: "1.2.3",
			want: []tk{
				{token.NUMBER, "1.2"},
				{token.SYMBOL, "."},
				{token.NUMBER, "3"},
			},
		},
		{
			name:  "no exponent form",
			input: "1e5",
			want:  []tk{{token.NUMBER, "1"}, {token.IDENT, "e5"}},
		},
		{
			name:  "leading dot is a symbol",
			input: ".5",
			want:  []tk{{token.SYMBOL, "."}, {token.NUMBER, "5"}},
		},
		{
			name:  "trailing dot is a symbol",
			input: "1.",
			want:  []tk{{token.NUMBER, "1"}, {token.SYMBOL, "."}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lexed(tt.input, nil))
		})
	}
}

func TestTokenizeOperators(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tk
	}{
		{
			name:  "two character comparisons",
			input: ">= <= <> !=",
			want: []tk{
				{token.SYMBOL, ">="},
				{token.SYMBOL, "<="},
				{token.SYMBOL, "<>"},
				{token.SYMBOL, "!="},
			},
		},
		{
			name:  "tight comparison",
			input: "a>=b",
			want:  []tk{{token.IDENT, "a"}, {token.SYMBOL, ">="}, {token.IDENT, "b"}},
		},
		{
			name:  "split by space",
			input: "> =",
			want:  []tk{{token.SYMBOL, ">"}, {token.SYMBOL, "="}},
		},
		{
			name:  "concat is two pipes",
			input: "a || b",
			want: []tk{
				{token.IDENT, "a"},
				{token.SYMBOL, "|"},
				{token.SYMBOL, "|"},
				{token.IDENT, "b"},
			},
		},
		{
			name:  "cast is two colons",
			input: "x::text",
			want: []tk{
				{token.IDENT, "x"},
				{token.SYMBOL, ":"},
				{token.SYMBOL, ":"},
				{token.IDENT, "text"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lexed(tt.input, nil))
		})
	}
}

func TestTokenizeDialectPrefixes(t *testing.T) {
	tests := []struct {
		name  string
		syn   *dialect.Syntax
		input string
		want  []tk
	}{
		{
			name:  "sqlserver variables",
			syn:   dialect.SQLServer,
			input: "@x #tmp",
			want:  []tk{{token.IDENT, "@x"}, {token.IDENT, "#tmp"}},
		},
		{
			name:  "sqlserver system variable",
			syn:   dialect.SQLServer,
			input: "@@ROWCOUNT",
			want:  []tk{{token.IDENT, "@@ROWCOUNT"}},
		},
		{
			name:  "oracle bind",
			syn:   dialect.Oracle,
			input: ":name",
			want:  []tk{{token.IDENT, ":name"}},
		},
		{
			name:  "postgres leaves at sign as symbol",
			syn:   dialect.Postgres,
			input: "@x",
			want:  []tk{{token.SYMBOL, "@"}, {token.IDENT, "x"}},
		},
		{
			name:  "postgres positional parameter",
			syn:   dialect.Postgres,
			input: "$1",
			want:  []tk{{token.IDENT, "$1"}},
		},
		{
			name:  "sqlite question mark parameters",
			syn:   dialect.SQLite,
			input: "? ?2",
			want:  []tk{{token.IDENT, "?"}, {token.IDENT, "?2"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lexed(tt.input, tt.syn))
		})
	}
}

func TestTokenizePositions(t *testing.T) {
	toks := Tokenize("SELECT\n  x, 'a'\nFROM t", nil)
	require.Len(t, toks, 6)

	want := []token.Position{
		{Line: 1, Column: 1, Offset: 0},   // SELECT
		{Line: 2, Column: 3, Offset: 9},   // x
		{Line: 2, Column: 4, Offset: 10},  // ,
		{Line: 2, Column: 6, Offset: 12},  // 'a'
		{Line: 3, Column: 1, Offset: 16},  // FROM
		{Line: 3, Column: 6, Offset: 21},  // t
	}
	for i, w := range want {
		assert.Equal(t, w, toks[i].Pos, "token %d", i)
	}
}

func TestLexerNextAtEnd(t *testing.T) {
	l := NewLexer("x", nil)

	tok, ok := l.Next()
	require.True(t, ok)
	assert.Equal(t, "x", tok.Text)

	_, ok = l.Next()
	assert.False(t, ok)
	_, ok = l.Next()
	assert.False(t, ok)
}
