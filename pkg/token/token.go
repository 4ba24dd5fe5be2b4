// Package token defines the lexical tokens produced by SQL tokenization.
//
// Tokens carry both their source spelling (Text) and a canonical form
// (Norm): keywords are matched case-insensitively against a fixed set
// and normalized to uppercase, everything else keeps its original
// casing. Tokens are immutable once produced.
package token

import "fmt"

// Kind classifies a lexical token.
type Kind int32

const (
	SYMBOL Kind = iota // operators and punctuation
	IDENT              // identifier, including bracket-quoted and prefixed forms
	KEYWORD            // member of the fixed keyword set
	NUMBER             // 123, 45.67
	STRING             // 'hello', "hello"
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND(%d)", k)
}

// kindNames maps kinds to their string representations.
var kindNames = map[Kind]string{
	SYMBOL:  "SYMBOL",
	IDENT:   "IDENT",
	KEYWORD: "KEYWORD",
	NUMBER:  "NUMBER",
	STRING:  "STRING",
}

// keywords is the fixed set of recognized SQL keywords, keyed by
// uppercase spelling. Matching is case-insensitive.
var keywords = map[string]struct{}{
	"ALL":       {},
	"AND":       {},
	"AS":        {},
	"ASC":       {},
	"BETWEEN":   {},
	"BY":        {},
	"CASE":      {},
	"CROSS":     {},
	"DELETE":    {},
	"DESC":      {},
	"DISTINCT":  {},
	"ELSE":      {},
	"END":       {},
	"EXCEPT":    {},
	"EXISTS":    {},
	"FROM":      {},
	"FULL":      {},
	"GROUP":     {},
	"HAVING":    {},
	"IN":        {},
	"INNER":     {},
	"INSERT":    {},
	"INTERSECT": {},
	"INTO":      {},
	"IS":        {},
	"JOIN":      {},
	"LEFT":      {},
	"LIKE":      {},
	"LIMIT":     {},
	"NOT":       {},
	"NULL":      {},
	"OFFSET":    {},
	"ON":        {},
	"OR":        {},
	"ORDER":     {},
	"OUTER":     {},
	"OUTPUT":    {},
	"RECURSIVE": {},
	"RETURNING": {},
	"RIGHT":     {},
	"SELECT":    {},
	"SET":       {},
	"THEN":      {},
	"TOP":       {},
	"UNION":     {},
	"UPDATE":    {},
	"USING":     {},
	"VALUES":    {},
	"WHEN":      {},
	"WHERE":     {},
	"WITH":      {},
}

// IsKeywordWord reports whether word matches the fixed keyword set,
// ignoring case.
func IsKeywordWord(word string) bool {
	_, ok := keywords[upper(word)]
	return ok
}

// Token represents a lexical token with position information.
type Token struct {
	Text string   // source spelling
	Norm string   // uppercase for keywords, Text otherwise
	Kind Kind     // classification
	Pos  Position // location of the first character
}

// New builds a token, deriving Norm from the kind: keywords normalize
// to uppercase, everything else keeps its spelling.
func New(text string, kind Kind, pos Position) Token {
	norm := text
	if kind == KEYWORD {
		norm = upper(text)
	}
	return Token{Text: text, Norm: norm, Kind: kind, Pos: pos}
}

// IsKeyword returns true if the token is a keyword.
func (t Token) IsKeyword() bool {
	return t.Kind == KEYWORD
}

// IsIdent returns true if the token is an identifier.
func (t Token) IsIdent() bool {
	return t.Kind == IDENT
}

// Is reports whether the token's canonical form equals norm. Keyword
// comparisons should pass the uppercase spelling.
func (t Token) Is(norm string) bool {
	return t.Norm == norm
}

// String returns a debug representation like KEYWORD(SELECT).
func (t Token) String() string {
	return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
}

// upper is an ASCII-only ToUpper. Keyword spellings are ASCII, and
// the no-op path returns s without allocating.
func upper(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'a' && b[j] <= 'z' {
					b[j] -= 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}
