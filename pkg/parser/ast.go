package parser

import (
	"strings"

	"github.com/seamsql/seamsql/pkg/dialect"
	"github.com/seamsql/seamsql/pkg/token"
)

// ---------- Parts ----------

// Part is one element of a segment: a literal token or an owned nested
// statement.
type Part interface {
	partNode()
}

// TokenPart carries one source token verbatim.
type TokenPart struct {
	Tok token.Token
}

func (*TokenPart) partNode() {}

// SubqueryPart owns a statement parsed from a parenthesized span. The
// parentheses are not stored; rendering re-adds them.
type SubqueryPart struct {
	Stmt Statement
}

func (*SubqueryPart) partNode() {}

// ---------- Statements ----------

// Statement is the parsed form of one SQL statement. The concrete
// types are SelectStmt, InsertStmt, UpdateStmt, and DeleteStmt. A
// statement exclusively owns its segments, its CTE bodies, and every
// statement nested through a SubqueryPart.
type Statement interface {
	// Kind returns "select", "insert", "update", or "delete".
	Kind() string
	// SQL renders the canonical single-line form.
	SQL() string
	// Segments returns the statement's present segments in grammar
	// order.
	Segments() []*Segment

	stmtNode()
}

// WithClause holds the common-table-expression definitions preceding a
// statement.
type WithClause struct {
	Recursive bool
	CTEs      []*CTE
}

// CTE is one named definition inside a WITH clause. It owns its
// statement.
type CTE struct {
	Name    string
	Columns []string
	Stmt    Statement
}

// SQL renders the WITH clause canonically.
func (w *WithClause) SQL() string {
	toks := []token.Token{keywordToken("WITH")}
	if w.Recursive {
		toks = append(toks, keywordToken("RECURSIVE"))
	}
	for i, cte := range w.CTEs {
		if i > 0 {
			toks = append(toks, symbolToken(","))
		}
		toks = append(toks, token.New(cte.Name, token.IDENT, token.Position{}))
		if len(cte.Columns) > 0 {
			toks = append(toks, symbolToken("("))
			for j, col := range cte.Columns {
				if j > 0 {
					toks = append(toks, symbolToken(","))
				}
				toks = append(toks, token.New(col, token.IDENT, token.Position{}))
			}
			toks = append(toks, symbolToken(")"))
		}
		toks = append(toks, keywordToken("AS"))
		toks = append(toks, symbolToken("("+cte.Stmt.SQL()+")"))
	}
	return token.Join(toks)
}

// SelectStmt is a SELECT statement: a required select list, optional
// core clauses, and an optional trailing set-operation segment.
type SelectStmt struct {
	With    *WithClause
	Select  *Segment
	From    *Segment
	Where   *Segment
	GroupBy *Segment
	Having  *Segment
	OrderBy *Segment
	Limit   *Segment
	Offset  *Segment
	Tail    *Segment

	syn *dialect.Syntax
}

func (*SelectStmt) stmtNode() {}

// Kind returns "select".
func (s *SelectStmt) Kind() string { return "select" }

// Segments returns the present segments in grammar order.
func (s *SelectStmt) Segments() []*Segment {
	return presentSegments(s.Select, s.From, s.Where, s.GroupBy, s.Having, s.OrderBy, s.Limit, s.Offset, s.Tail)
}

// SQL renders the canonical single-line form.
func (s *SelectStmt) SQL() string {
	var b strings.Builder
	writeWith(&b, s.With)
	b.WriteString("SELECT")
	writeBody(&b, s.Select)
	writeClause(&b, "FROM", s.From)
	writeClause(&b, "WHERE", s.Where)
	writeClause(&b, "GROUP BY", s.GroupBy)
	writeClause(&b, "HAVING", s.Having)
	writeClause(&b, "ORDER BY", s.OrderBy)
	writeClause(&b, "LIMIT", s.Limit)
	writeClause(&b, "OFFSET", s.Offset)
	writeBody(&b, s.Tail)
	return b.String()
}

// EnsureFromSegment lazily creates the FROM segment. Idempotent, like
// all Ensure methods.
func (s *SelectStmt) EnsureFromSegment() *Segment {
	if s.From == nil {
		s.From = newSegment(ClauseFrom.String(), s.syn)
	}
	return s.From
}

// EnsureWhereSegment lazily creates the WHERE segment.
func (s *SelectStmt) EnsureWhereSegment() *Segment {
	if s.Where == nil {
		s.Where = newSegment(ClauseWhere.String(), s.syn)
	}
	return s.Where
}

// EnsureGroupBySegment lazily creates the GROUP BY segment.
func (s *SelectStmt) EnsureGroupBySegment() *Segment {
	if s.GroupBy == nil {
		s.GroupBy = newSegment(ClauseGroupBy.String(), s.syn)
	}
	return s.GroupBy
}

// EnsureHavingSegment lazily creates the HAVING segment.
func (s *SelectStmt) EnsureHavingSegment() *Segment {
	if s.Having == nil {
		s.Having = newSegment(ClauseHaving.String(), s.syn)
	}
	return s.Having
}

// EnsureOrderBySegment lazily creates the ORDER BY segment.
func (s *SelectStmt) EnsureOrderBySegment() *Segment {
	if s.OrderBy == nil {
		s.OrderBy = newSegment(ClauseOrderBy.String(), s.syn)
	}
	return s.OrderBy
}

// EnsureLimitSegment lazily creates the LIMIT segment.
func (s *SelectStmt) EnsureLimitSegment() *Segment {
	if s.Limit == nil {
		s.Limit = newSegment(ClauseLimit.String(), s.syn)
	}
	return s.Limit
}

// EnsureOffsetSegment lazily creates the OFFSET segment.
func (s *SelectStmt) EnsureOffsetSegment() *Segment {
	if s.Offset == nil {
		s.Offset = newSegment(ClauseOffset.String(), s.syn)
	}
	return s.Offset
}

// InsertStmt is an INSERT statement. Values and Source are mutually
// exclusive: Values carries a VALUES span, Source a nested SELECT or
// WITH statement feeding the insert.
type InsertStmt struct {
	With      *WithClause
	Into      *Segment
	Output    *Segment
	Values    *Segment
	Source    Statement
	Returning *Segment

	syn *dialect.Syntax
}

func (*InsertStmt) stmtNode() {}

// Kind returns "insert".
func (s *InsertStmt) Kind() string { return "insert" }

// Segments returns the present segments in grammar order. Source is a
// nested statement, not a segment, and is not included.
func (s *InsertStmt) Segments() []*Segment {
	return presentSegments(s.Into, s.Output, s.Values, s.Returning)
}

// SQL renders the canonical single-line form.
func (s *InsertStmt) SQL() string {
	var b strings.Builder
	writeWith(&b, s.With)
	b.WriteString("INSERT")
	writeClause(&b, "INTO", s.Into)
	writeClause(&b, "OUTPUT", s.Output)
	writeClause(&b, "VALUES", s.Values)
	if s.Source != nil {
		b.WriteByte(' ')
		b.WriteString(s.Source.SQL())
	}
	writeClause(&b, "RETURNING", s.Returning)
	return b.String()
}

// EnsureOutputSegment lazily creates the OUTPUT segment.
func (s *InsertStmt) EnsureOutputSegment() *Segment {
	if s.Output == nil {
		s.Output = newSegment(ClauseOutput.String(), s.syn)
	}
	return s.Output
}

// EnsureValuesSegment lazily creates the VALUES segment.
func (s *InsertStmt) EnsureValuesSegment() *Segment {
	if s.Values == nil {
		s.Values = newSegment(ClauseValues.String(), s.syn)
	}
	return s.Values
}

// EnsureReturningSegment lazily creates the RETURNING segment.
func (s *InsertStmt) EnsureReturningSegment() *Segment {
	if s.Returning == nil {
		s.Returning = newSegment(ClauseReturning.String(), s.syn)
	}
	return s.Returning
}

// UpdateStmt is an UPDATE statement.
type UpdateStmt struct {
	With      *WithClause
	Target    *Segment
	Set       *Segment
	Output    *Segment
	From      *Segment
	Where     *Segment
	Returning *Segment

	syn *dialect.Syntax
}

func (*UpdateStmt) stmtNode() {}

// Kind returns "update".
func (s *UpdateStmt) Kind() string { return "update" }

// Segments returns the present segments in grammar order.
func (s *UpdateStmt) Segments() []*Segment {
	return presentSegments(s.Target, s.Set, s.Output, s.From, s.Where, s.Returning)
}

// SQL renders the canonical single-line form.
func (s *UpdateStmt) SQL() string {
	var b strings.Builder
	writeWith(&b, s.With)
	b.WriteString("UPDATE")
	writeBody(&b, s.Target)
	writeClause(&b, "SET", s.Set)
	writeClause(&b, "OUTPUT", s.Output)
	writeClause(&b, "FROM", s.From)
	writeClause(&b, "WHERE", s.Where)
	writeClause(&b, "RETURNING", s.Returning)
	return b.String()
}

// EnsureOutputSegment lazily creates the OUTPUT segment.
func (s *UpdateStmt) EnsureOutputSegment() *Segment {
	if s.Output == nil {
		s.Output = newSegment(ClauseOutput.String(), s.syn)
	}
	return s.Output
}

// EnsureFromSegment lazily creates the FROM segment.
func (s *UpdateStmt) EnsureFromSegment() *Segment {
	if s.From == nil {
		s.From = newSegment(ClauseFrom.String(), s.syn)
	}
	return s.From
}

// EnsureWhereSegment lazily creates the WHERE segment.
func (s *UpdateStmt) EnsureWhereSegment() *Segment {
	if s.Where == nil {
		s.Where = newSegment(ClauseWhere.String(), s.syn)
	}
	return s.Where
}

// EnsureReturningSegment lazily creates the RETURNING segment.
func (s *UpdateStmt) EnsureReturningSegment() *Segment {
	if s.Returning == nil {
		s.Returning = newSegment(ClauseReturning.String(), s.syn)
	}
	return s.Returning
}

// DeleteStmt is a DELETE statement. Target holds the optional explicit
// target span written between DELETE and FROM.
type DeleteStmt struct {
	With      *WithClause
	Target    *Segment
	From      *Segment
	Output    *Segment
	Using     *Segment
	Where     *Segment
	Returning *Segment

	syn *dialect.Syntax
}

func (*DeleteStmt) stmtNode() {}

// Kind returns "delete".
func (s *DeleteStmt) Kind() string { return "delete" }

// Segments returns the present segments in grammar order.
func (s *DeleteStmt) Segments() []*Segment {
	return presentSegments(s.Target, s.From, s.Output, s.Using, s.Where, s.Returning)
}

// SQL renders the canonical single-line form.
func (s *DeleteStmt) SQL() string {
	var b strings.Builder
	writeWith(&b, s.With)
	b.WriteString("DELETE")
	writeBody(&b, s.Target)
	writeClause(&b, "FROM", s.From)
	writeClause(&b, "OUTPUT", s.Output)
	writeClause(&b, "USING", s.Using)
	writeClause(&b, "WHERE", s.Where)
	writeClause(&b, "RETURNING", s.Returning)
	return b.String()
}

// EnsureOutputSegment lazily creates the OUTPUT segment.
func (s *DeleteStmt) EnsureOutputSegment() *Segment {
	if s.Output == nil {
		s.Output = newSegment(ClauseOutput.String(), s.syn)
	}
	return s.Output
}

// EnsureUsingSegment lazily creates the USING segment.
func (s *DeleteStmt) EnsureUsingSegment() *Segment {
	if s.Using == nil {
		s.Using = newSegment(ClauseUsing.String(), s.syn)
	}
	return s.Using
}

// EnsureWhereSegment lazily creates the WHERE segment.
func (s *DeleteStmt) EnsureWhereSegment() *Segment {
	if s.Where == nil {
		s.Where = newSegment(ClauseWhere.String(), s.syn)
	}
	return s.Where
}

// EnsureReturningSegment lazily creates the RETURNING segment.
func (s *DeleteStmt) EnsureReturningSegment() *Segment {
	if s.Returning == nil {
		s.Returning = newSegment(ClauseReturning.String(), s.syn)
	}
	return s.Returning
}

// ---------- Query ----------

// Query is the root wrapper for a parsed statement tree.
type Query struct {
	Root   Statement
	Syntax *dialect.Syntax
}

// SQL renders the canonical single-line form of the whole query.
func (q *Query) SQL() string {
	if q.Root == nil {
		return ""
	}
	return q.Root.SQL()
}

// Statements returns the root statement followed by every nested
// statement, depth-first. The list is recomputed on each call so it
// always reflects mutations made through the segment API.
func (q *Query) Statements() []Statement {
	var out []Statement
	Walk(q.Root, func(s Statement) bool {
		out = append(out, s)
		return true
	})
	return out
}

// Walk visits s and every statement it owns, depth-first. CTE bodies
// come before segment subqueries, matching source order. Returning
// false from fn skips the statement's children.
func Walk(s Statement, fn func(Statement) bool) {
	if s == nil || !fn(s) {
		return
	}

	switch st := s.(type) {
	case *SelectStmt:
		walkWith(st.With, fn)
		walkSegments(fn, st.Segments())
	case *InsertStmt:
		walkWith(st.With, fn)
		walkSegments(fn, presentSegments(st.Into, st.Output, st.Values))
		Walk(st.Source, fn)
		walkSegments(fn, presentSegments(st.Returning))
	case *UpdateStmt:
		walkWith(st.With, fn)
		walkSegments(fn, st.Segments())
	case *DeleteStmt:
		walkWith(st.With, fn)
		walkSegments(fn, st.Segments())
	}
}

func walkWith(w *WithClause, fn func(Statement) bool) {
	if w == nil {
		return
	}
	for _, cte := range w.CTEs {
		Walk(cte.Stmt, fn)
	}
}

func walkSegments(fn func(Statement) bool, segs []*Segment) {
	for _, seg := range segs {
		for _, part := range seg.Parts {
			if sub, ok := part.(*SubqueryPart); ok {
				Walk(sub.Stmt, fn)
			}
		}
	}
}

// ---------- Rendering helpers ----------

func presentSegments(segs ...*Segment) []*Segment {
	out := make([]*Segment, 0, len(segs))
	for _, seg := range segs {
		if seg != nil {
			out = append(out, seg)
		}
	}
	return out
}

// writeWith prepends the WITH clause when present.
func writeWith(b *strings.Builder, w *WithClause) {
	if w == nil {
		return
	}
	b.WriteString(w.SQL())
	b.WriteByte(' ')
}

// writeClause appends " KEYWORD body" when the segment has content.
// Ensure-created segments that were never filled render as nothing.
func writeClause(b *strings.Builder, keyword string, seg *Segment) {
	if seg == nil || seg.IsEmpty() {
		return
	}
	b.WriteByte(' ')
	b.WriteString(keyword)
	b.WriteByte(' ')
	b.WriteString(seg.SQL())
}

// writeBody appends " body" for segments whose keyword is the
// statement keyword itself (the select list, UPDATE/DELETE targets,
// the tail).
func writeBody(b *strings.Builder, seg *Segment) {
	if seg == nil || seg.IsEmpty() {
		return
	}
	b.WriteByte(' ')
	b.WriteString(seg.SQL())
}

func keywordToken(word string) token.Token {
	return token.New(word, token.KEYWORD, token.Position{})
}

func symbolToken(text string) token.Token {
	return token.New(text, token.SYMBOL, token.Position{})
}
