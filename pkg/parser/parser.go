// Package parser turns SQL text into a mutable statement tree and
// renders it back to canonical SQL.
//
// Parsing is clause-oriented rather than expression-oriented. A
// statement is split into segments along clause keywords (SELECT,
// FROM, WHERE, ...) and each segment keeps its tokens verbatim, so
// identifiers, literals, and vendor oddities survive a round trip
// untouched. Parenthesized spans whose first keyword starts a
// statement become owned nested statements, which makes subqueries
// and CTE bodies full trees while everything else stays flat. The
// tree can be edited through the Segment methods and re-rendered
// with Query.SQL at any time.
package parser

import (
	"slices"

	"github.com/seamsql/seamsql/pkg/dialect"
	"github.com/seamsql/seamsql/pkg/token"
)

// DefaultMaxDepth bounds statement nesting for Parse and for raw
// fragments added through the Segment methods.
const DefaultMaxDepth = 100

// statementStarts are the keywords that open a statement when they
// lead a parenthesized span.
var statementStarts = []string{"SELECT", "INSERT", "UPDATE", "DELETE", "WITH"}

// sourceStarts are the keywords that open an INSERT source.
var sourceStarts = []string{"SELECT", "WITH"}

// ---------- Entry points ----------

// Parse parses one SQL statement in the given dialect. A nil syntax
// falls back to dialect.Default. The trailing semicolon is optional;
// anything after it is an error.
func Parse(input string, syn *dialect.Syntax) (*Query, error) {
	return ParseWithDepth(input, syn, DefaultMaxDepth)
}

// ParseWithDepth parses with an explicit nesting limit. Non-positive
// maxDepth falls back to DefaultMaxDepth.
func ParseWithDepth(input string, syn *dialect.Syntax, maxDepth int) (*Query, error) {
	if syn == nil {
		syn = dialect.Default
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	root, err := parseTokens(Tokenize(input, syn), syn, maxDepth)
	if err != nil {
		return nil, err
	}
	return &Query{Root: root, Syntax: syn}, nil
}

// parseTokens parses an exact token span into a single statement. The
// span must be fully consumed apart from one optional trailing
// semicolon. CTE bodies and subqueries re-enter here with whatever
// depth remains.
func parseTokens(toks []token.Token, syn *dialect.Syntax, depth int) (Statement, error) {
	p := &Parser{toks: toks, syn: syn, depth: depth}
	stmt, err := p.parseStatement(nil)
	if err != nil {
		return nil, err
	}
	if p.curSymbol(";") {
		p.next()
	}
	if !p.atEnd() {
		return nil, errorAt(p.curPos(), ErrTrailingTokens)
	}
	return stmt, nil
}

// ---------- Parser ----------

// Parser walks a token slice with a single cursor. depth is the
// remaining nesting allowance; it is decremented for every statement
// entered, including CTE bodies and subqueries.
type Parser struct {
	toks  []token.Token
	pos   int
	syn   *dialect.Syntax
	depth int
}

func (p *Parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *Parser) cur() token.Token {
	if p.atEnd() {
		return token.Token{}
	}
	return p.toks[p.pos]
}

func (p *Parser) next() {
	if !p.atEnd() {
		p.pos++
	}
}

func (p *Parser) advance(n int) {
	p.pos += n
	if p.pos > len(p.toks) {
		p.pos = len(p.toks)
	}
}

func (p *Parser) curSymbol(norm string) bool {
	t := p.cur()
	return t.Kind == token.SYMBOL && t.Norm == norm
}

// curPos is the position for an error at the cursor. At the end of
// input it points just past the last token.
func (p *Parser) curPos() token.Position {
	if !p.atEnd() {
		return p.toks[p.pos].Pos
	}
	if len(p.toks) == 0 {
		return token.Position{Line: 1, Column: 1}
	}
	last := p.toks[len(p.toks)-1]
	n := len(last.Text)
	return token.Position{Line: last.Pos.Line, Column: last.Pos.Column + n, Offset: last.Pos.Offset + n}
}

// ---------- Statement dispatch ----------

type statementParser func(*Parser, []Clause) (Statement, error)

// statementParsers dispatches on the leading keyword. Populated in
// init so the parse functions can themselves re-enter parseStatement.
var statementParsers map[string]statementParser

func init() {
	statementParsers = map[string]statementParser{
		"SELECT": (*Parser).parseSelect,
		"INSERT": (*Parser).parseInsert,
		"UPDATE": (*Parser).parseUpdate,
		"DELETE": (*Parser).parseDelete,
	}
}

// parseStatement parses one statement starting at the cursor, leaving
// the cursor on the first unconsumed token. stop names clauses that
// end the statement from outside, such as RETURNING around an INSERT
// source.
func (p *Parser) parseStatement(stop []Clause) (Statement, error) {
	if p.depth <= 0 {
		return nil, errorAt(p.curPos(), ErrMaxDepth)
	}
	p.depth--
	defer func() { p.depth++ }()

	if p.atEnd() || p.curSymbol(";") {
		return nil, errorAt(p.curPos(), ErrEmptyStatement)
	}

	var with *WithClause
	if p.cur().IsKeyword() && p.cur().Is("WITH") {
		w, err := p.parseWith()
		if err != nil {
			return nil, err
		}
		with = w
		if p.atEnd() {
			return nil, errorAt(p.curPos(), ErrExpectedKeyword, "SELECT, INSERT, UPDATE, or DELETE")
		}
	}

	tok := p.cur()
	fn, ok := statementParsers[tok.Norm]
	if !tok.IsKeyword() || !ok {
		return nil, errorAt(tok.Pos, ErrUnsupportedStatement, tok.Text)
	}
	stmt, err := fn(p, stop)
	if err != nil {
		return nil, err
	}
	attachWith(stmt, with)
	return stmt, nil
}

func attachWith(stmt Statement, with *WithClause) {
	if with == nil {
		return
	}
	switch s := stmt.(type) {
	case *SelectStmt:
		s.With = with
	case *InsertStmt:
		s.With = with
	case *UpdateStmt:
		s.With = with
	case *DeleteStmt:
		s.With = with
	}
}

// ---------- WITH ----------

// parseWith parses the WITH clause at the cursor, one CTE at a time.
func (p *Parser) parseWith() (*WithClause, error) {
	p.next() // WITH
	w := &WithClause{}
	if p.cur().IsKeyword() && p.cur().Is("RECURSIVE") {
		w.Recursive = true
		p.next()
	}
	for {
		cte, err := p.parseCTE()
		if err != nil {
			return nil, err
		}
		w.CTEs = append(w.CTEs, cte)
		if p.curSymbol(",") {
			p.next()
			continue
		}
		return w, nil
	}
}

// parseCTE parses one "name [(col, ...)] AS (statement)" definition.
// The body is an exact span handed to a fresh sub-parse, so it must
// form a complete statement on its own.
func (p *Parser) parseCTE() (*CTE, error) {
	tok := p.cur()
	if tok.Kind != token.IDENT {
		return nil, errorAt(p.curPos(), ErrExpectedCTEName)
	}
	cte := &CTE{Name: tok.Text}
	p.next()

	if p.curSymbol("(") {
		p.next()
		for {
			col := p.cur()
			if col.Kind != token.IDENT {
				return nil, errorAt(p.curPos(), ErrExpectedColumnName)
			}
			cte.Columns = append(cte.Columns, col.Text)
			p.next()
			if p.curSymbol(",") {
				p.next()
				continue
			}
			break
		}
		if !p.curSymbol(")") {
			return nil, errorAt(p.curPos(), ErrExpectedToken, ")")
		}
		p.next()
	}

	if !p.cur().IsKeyword() || !p.cur().Is("AS") {
		return nil, errorAt(p.curPos(), ErrExpectedKeyword, "AS")
	}
	p.next()

	if !p.curSymbol("(") {
		return nil, errorAt(p.curPos(), ErrExpectedToken, "(")
	}
	open := p.pos
	end, ok := matchParen(p.toks, open)
	if !ok {
		return nil, errorAt(p.toks[open].Pos, ErrUnterminatedWith)
	}
	body := p.toks[open+1 : end]
	if len(body) == 0 {
		return nil, errorAt(p.toks[open].Pos, ErrEmptyStatement)
	}
	stmt, err := parseTokens(body, p.syn, p.depth)
	if err != nil {
		return nil, err
	}
	cte.Stmt = stmt
	p.pos = end + 1
	return cte, nil
}

// matchParen returns the index of the ')' closing the '(' at open.
// Quoted and bracketed runs are single tokens by then, so only symbol
// tokens count.
func matchParen(toks []token.Token, open int) (int, bool) {
	depth := 0
	for i := open; i < len(toks); i++ {
		if toks[i].Kind != token.SYMBOL {
			continue
		}
		switch toks[i].Norm {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// ---------- Spans ----------

// readSpan consumes tokens until a boundary at paren depth zero: a
// clause from boundaries, a keyword from stopNorms, an unmatched ')',
// or ';'. The boundary token is not consumed. The cursor can sit
// anywhere inside parens when this is called only at depth zero, so
// the count starts fresh.
func (p *Parser) readSpan(boundaries []Clause, stopNorms []string) []token.Token {
	start := p.pos
	depth := 0
	for !p.atEnd() {
		t := p.cur()
		if t.Kind == token.SYMBOL {
			switch t.Norm {
			case "(":
				depth++
				p.next()
				continue
			case ")":
				if depth == 0 {
					return p.toks[start:p.pos]
				}
				depth--
				p.next()
				continue
			case ";":
				if depth == 0 {
					return p.toks[start:p.pos]
				}
				p.next()
				continue
			}
		}
		if depth == 0 && t.IsKeyword() {
			if _, _, ok := clauseStartAt(p.toks, p.pos, boundaries); ok {
				return p.toks[start:p.pos]
			}
			if slices.Contains(stopNorms, t.Norm) {
				return p.toks[start:p.pos]
			}
		}
		p.next()
	}
	return p.toks[start:p.pos]
}

// lowerSpan converts a token span into segment parts. A parenthesized
// run whose interior opens with a statement keyword is parsed into an
// owned SubqueryPart with the parens dropped; everything else is kept
// as literal tokens.
func lowerSpan(toks []token.Token, syn *dialect.Syntax, depth int) ([]Part, error) {
	var parts []Part
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind == token.SYMBOL && t.Norm == "(" {
			if end, ok := matchParen(toks, i); ok {
				if interior := toks[i+1 : end]; startsStatement(interior) {
					stmt, err := parseTokens(interior, syn, depth)
					if err != nil {
						return nil, err
					}
					parts = append(parts, &SubqueryPart{Stmt: stmt})
					i = end
					continue
				}
			}
		}
		parts = append(parts, &TokenPart{Tok: t})
	}
	return parts, nil
}

func startsStatement(toks []token.Token) bool {
	return len(toks) > 0 && toks[0].IsKeyword() && slices.Contains(statementStarts, toks[0].Norm)
}

// ---------- Clause reading ----------

// startsClause reports whether the cursor sits on the start of c and
// how many tokens its keywords take.
func (p *Parser) startsClause(c Clause) (int, bool) {
	_, width, ok := clauseStartAt(p.toks, p.pos, []Clause{c})
	return width, ok
}

// readClause consumes the keywords of c at the cursor and reads the
// clause body up to the given boundaries. An absent keyword or an
// empty body is an error. validate, when set, checks the raw span
// before lowering.
func (p *Parser) readClause(c Clause, boundaries []Clause, stopNorms []string, validate func([]token.Token) error) (*Segment, error) {
	kw := p.cur()
	width, ok := p.startsClause(c)
	if !ok {
		return nil, errorAt(p.curPos(), ErrExpectedKeyword, clauseNames[c])
	}
	p.advance(width)
	span := p.readSpan(boundaries, stopNorms)
	if len(span) == 0 {
		return nil, errorAt(kw.Pos, ErrEmptyClause, clauseNames[c])
	}
	if validate != nil {
		if err := validate(span); err != nil {
			return nil, err
		}
	}
	return p.segmentFromSpan(c, span)
}

func (p *Parser) segmentFromSpan(c Clause, span []token.Token) (*Segment, error) {
	parts, err := lowerSpan(span, p.syn, p.depth)
	if err != nil {
		return nil, err
	}
	return &Segment{Name: clauseNames[c], Parts: parts, syn: p.syn}, nil
}

func joinClauses(groups ...[]Clause) []Clause {
	var out []Clause
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// ---------- Join validation ----------

// validateJoins checks that every JOIN in a source span is answered by
// an ON condition. CROSS JOIN takes no condition and is exempt. A
// single stack pairs the keywords, so joins inside parenthesized
// spans match their own ON before the outer one is consumed.
func validateJoins(toks []token.Token) error {
	var joins []token.Position
	for i, t := range toks {
		if !t.IsKeyword() {
			continue
		}
		switch t.Norm {
		case "JOIN":
			if i > 0 && toks[i-1].IsKeyword() && toks[i-1].Norm == "CROSS" {
				continue
			}
			joins = append(joins, t.Pos)
		case "ON":
			if len(joins) > 0 {
				joins = joins[:len(joins)-1]
			}
		}
	}
	if len(joins) > 0 {
		return errorAt(joins[0], ErrMissingOn)
	}
	return nil
}
