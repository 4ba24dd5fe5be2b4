package parser

import (
	"github.com/seamsql/seamsql/pkg/dialect"
	"github.com/seamsql/seamsql/pkg/token"
)

// ---------- Segment ----------

// Segment is one clause body: a flat ordered list of parts with the
// clause name attached. Separators such as commas stay in the part
// list, so rendering a segment reproduces the clause body exactly.
type Segment struct {
	Name  string
	Parts []Part

	syn *dialect.Syntax
}

func newSegment(name string, syn *dialect.Syntax) *Segment {
	return &Segment{Name: name, syn: syn}
}

// IsEmpty reports whether the segment has no parts. Ensure-created
// segments start empty and render as nothing until filled.
func (s *Segment) IsEmpty() bool { return len(s.Parts) == 0 }

// SQL renders the segment body canonically, without the clause
// keyword.
func (s *Segment) SQL() string { return token.Join(s.tokens()) }

// tokens flattens the parts for joining. A nested statement becomes a
// single synthetic symbol holding its parenthesized canonical form.
func (s *Segment) tokens() []token.Token {
	toks := make([]token.Token, 0, len(s.Parts))
	for _, p := range s.Parts {
		switch part := p.(type) {
		case *TokenPart:
			toks = append(toks, part.Tok)
		case *SubqueryPart:
			toks = append(toks, symbolToken("("+part.Stmt.SQL()+")"))
		}
	}
	return toks
}

// ---------- Mutation ----------

// AddRaw tokenizes raw in the segment's dialect and appends the result
// to the part list. Parenthesized statement spans inside raw become
// owned SubqueryParts, exactly as during parsing. On error the segment
// is unchanged. Empty or whitespace-only raw is a no-op.
func (s *Segment) AddRaw(raw string) error {
	parts, err := lowerRaw(raw, s.syn)
	if err != nil {
		return err
	}
	s.Parts = append(s.Parts, parts...)
	return nil
}

// AddCommaSeparatedElement appends raw as a new list element,
// inserting a comma separator first when the segment already has
// content. Meant for list segments such as the select list, GROUP BY,
// or ORDER BY.
func (s *Segment) AddCommaSeparatedElement(raw string) error {
	parts, err := lowerRaw(raw, s.syn)
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return nil
	}
	if len(s.Parts) > 0 {
		s.Parts = append(s.Parts, &TokenPart{Tok: symbolToken(",")})
	}
	s.Parts = append(s.Parts, parts...)
	return nil
}

// AddConjunction appends raw as a new condition joined by the given
// keyword, typically AND or OR. The keyword is only inserted when the
// segment already has content, so the first condition added to an
// empty WHERE reads naturally.
func (s *Segment) AddConjunction(keyword, raw string) error {
	parts, err := lowerRaw(raw, s.syn)
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return nil
	}
	if len(s.Parts) > 0 {
		s.Parts = append(s.Parts, &TokenPart{Tok: keywordToken(keyword)})
	}
	s.Parts = append(s.Parts, parts...)
	return nil
}

func lowerRaw(raw string, syn *dialect.Syntax) ([]Part, error) {
	return lowerSpan(Tokenize(raw, syn), syn, DefaultMaxDepth)
}

// ---------- Items ----------

// Item is one comma-separated element of a segment with its alias
// split off. Expr shares parts with the segment; Items is a read-only
// view and is recomputed on every call.
type Item struct {
	Expr     []Part
	Alias    string
	Explicit bool
}

// Items splits the segment on top-level commas and infers the alias of
// each element. An alias is explicit when introduced by AS, implicit
// when a bare identifier directly follows a completed expression.
// Commas inside parenthesized runs, such as function arguments, do
// not split.
func (s *Segment) Items() []Item {
	if len(s.Parts) == 0 {
		return nil
	}
	var items []Item
	start, depth := 0, 0
	for i, p := range s.Parts {
		tp, ok := p.(*TokenPart)
		if !ok || tp.Tok.Kind != token.SYMBOL {
			continue
		}
		switch tp.Tok.Norm {
		case "(":
			depth++
		case ")":
			if depth > 0 {
				depth--
			}
		case ",":
			if depth == 0 {
				items = append(items, makeItem(s.Parts[start:i]))
				start = i + 1
			}
		}
	}
	return append(items, makeItem(s.Parts[start:]))
}

func makeItem(parts []Part) Item {
	if len(parts) >= 2 {
		if alias, ok := identText(parts[len(parts)-1]); ok {
			prev := parts[len(parts)-2]
			if isAliasKeyword(prev) {
				return Item{Expr: parts[:len(parts)-2], Alias: alias, Explicit: true}
			}
			if endsExpression(prev) {
				return Item{Expr: parts[:len(parts)-1], Alias: alias}
			}
		}
	}
	return Item{Expr: parts}
}

func identText(p Part) (string, bool) {
	tp, ok := p.(*TokenPart)
	if !ok || tp.Tok.Kind != token.IDENT {
		return "", false
	}
	return tp.Tok.Text, true
}

func isAliasKeyword(p Part) bool {
	tp, ok := p.(*TokenPart)
	return ok && tp.Tok.IsKeyword() && tp.Tok.Is("AS")
}

// endsExpression reports whether the part can end an expression, which
// is what lets a trailing identifier read as an alias. Operators and
// keywords cannot, so "a + b" and "col DESC" stay alias-free.
func endsExpression(p Part) bool {
	switch part := p.(type) {
	case *SubqueryPart:
		return true
	case *TokenPart:
		switch part.Tok.Kind {
		case token.IDENT, token.NUMBER, token.STRING:
			return true
		case token.SYMBOL:
			norm := part.Tok.Norm
			if norm == "" {
				return false
			}
			last := norm[len(norm)-1]
			return last == ')' || last == ']'
		}
	}
	return false
}
