package parser

import (
	"github.com/seamsql/seamsql/pkg/token"
)

// selectClauseOrder is the recognition order of the optional SELECT
// clauses. A clause keyword appearing before its turn is treated as
// plain body text of the clause being read, which keeps out-of-order
// input intact through a round trip.
var selectClauseOrder = []Clause{
	ClauseFrom,
	ClauseWhere,
	ClauseGroupBy,
	ClauseHaving,
	ClauseOrderBy,
	ClauseLimit,
	ClauseOffset,
}

func (p *Parser) parseSelect(stop []Clause) (Statement, error) {
	stmt := &SelectStmt{syn: p.syn}

	// The select list keeps modifiers such as DISTINCT or TOP n as
	// ordinary body tokens.
	sel, err := p.readClause(ClauseSelect, joinClauses(selectClauseOrder, []Clause{ClauseTail}, stop), nil, nil)
	if err != nil {
		return nil, err
	}
	stmt.Select = sel

	for i, c := range selectClauseOrder {
		if _, ok := p.startsClause(c); !ok {
			continue
		}
		bounds := joinClauses(selectClauseOrder[i+1:], []Clause{ClauseTail}, stop)
		var validate func([]token.Token) error
		if c == ClauseFrom {
			validate = validateJoins
		}
		seg, err := p.readClause(c, bounds, nil, validate)
		if err != nil {
			return nil, err
		}
		switch c {
		case ClauseFrom:
			stmt.From = seg
		case ClauseWhere:
			stmt.Where = seg
		case ClauseGroupBy:
			stmt.GroupBy = seg
		case ClauseHaving:
			stmt.Having = seg
		case ClauseOrderBy:
			stmt.OrderBy = seg
		case ClauseLimit:
			stmt.Limit = seg
		case ClauseOffset:
			stmt.Offset = seg
		}
	}

	if _, ok := p.startsClause(ClauseTail); ok {
		tail, err := p.readTail(stop)
		if err != nil {
			return nil, err
		}
		stmt.Tail = tail
	}
	return stmt, nil
}

// readTail captures a trailing set operation as one flat segment: the
// operator keyword followed by everything up to the statement end.
// Chained operations all land in the same segment.
func (p *Parser) readTail(stop []Clause) (*Segment, error) {
	op := p.cur()
	p.next()
	span := p.readSpan(stop, nil)
	if len(span) == 0 {
		return nil, errorAt(op.Pos, ErrEmptyClause, op.Norm)
	}
	rest, err := lowerSpan(span, p.syn, p.depth)
	if err != nil {
		return nil, err
	}
	parts := append([]Part{&TokenPart{Tok: op}}, rest...)
	return &Segment{Name: clauseNames[ClauseTail], Parts: parts, syn: p.syn}, nil
}

func (p *Parser) parseInsert(stop []Clause) (Statement, error) {
	p.next() // INSERT
	stmt := &InsertStmt{syn: p.syn}

	// The target span covers the table name and an optional column
	// list; a bare SELECT or WITH keyword at depth zero starts the
	// source and ends the span.
	into, err := p.readClause(ClauseInto,
		joinClauses([]Clause{ClauseOutput, ClauseValues, ClauseReturning}, stop),
		sourceStarts, nil)
	if err != nil {
		return nil, err
	}
	stmt.Into = into

	if _, ok := p.startsClause(ClauseOutput); ok {
		out, err := p.readClause(ClauseOutput,
			joinClauses([]Clause{ClauseValues, ClauseReturning}, stop),
			sourceStarts, nil)
		if err != nil {
			return nil, err
		}
		stmt.Output = out
	}

	if _, ok := p.startsClause(ClauseValues); ok {
		vals, err := p.readClause(ClauseValues, joinClauses([]Clause{ClauseReturning}, stop), nil, nil)
		if err != nil {
			return nil, err
		}
		stmt.Values = vals
	} else if p.cur().IsKeyword() && (p.cur().Is("SELECT") || p.cur().Is("WITH")) {
		src, err := p.parseStatement(joinClauses(stop, []Clause{ClauseReturning}))
		if err != nil {
			return nil, err
		}
		stmt.Source = src
	} else {
		return nil, errorAt(p.curPos(), ErrExpectedSource)
	}

	if _, ok := p.startsClause(ClauseReturning); ok {
		ret, err := p.readClause(ClauseReturning, stop, nil, nil)
		if err != nil {
			return nil, err
		}
		stmt.Returning = ret
	}
	return stmt, nil
}

func (p *Parser) parseUpdate(stop []Clause) (Statement, error) {
	updateTok := p.cur()
	p.next() // UPDATE
	stmt := &UpdateStmt{syn: p.syn}

	// Target span runs to the mandatory SET. Later clause keywords
	// also end it so a missing SET is reported where they appear.
	span := p.readSpan(joinClauses([]Clause{ClauseSet, ClauseOutput, ClauseFrom, ClauseWhere, ClauseReturning}, stop), nil)
	if len(span) == 0 {
		return nil, errorAt(updateTok.Pos, ErrEmptyClause, clauseNames[ClauseUpdate])
	}
	target, err := p.segmentFromSpan(ClauseUpdate, span)
	if err != nil {
		return nil, err
	}
	stmt.Target = target

	set, err := p.readClause(ClauseSet,
		joinClauses([]Clause{ClauseOutput, ClauseFrom, ClauseWhere, ClauseReturning}, stop), nil, nil)
	if err != nil {
		return nil, err
	}
	stmt.Set = set

	if _, ok := p.startsClause(ClauseOutput); ok {
		out, err := p.readClause(ClauseOutput,
			joinClauses([]Clause{ClauseFrom, ClauseWhere, ClauseReturning}, stop), nil, nil)
		if err != nil {
			return nil, err
		}
		stmt.Output = out
	}
	if _, ok := p.startsClause(ClauseFrom); ok {
		from, err := p.readClause(ClauseFrom,
			joinClauses([]Clause{ClauseWhere, ClauseReturning}, stop), nil, validateJoins)
		if err != nil {
			return nil, err
		}
		stmt.From = from
	}
	if _, ok := p.startsClause(ClauseWhere); ok {
		where, err := p.readClause(ClauseWhere, joinClauses([]Clause{ClauseReturning}, stop), nil, nil)
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	if _, ok := p.startsClause(ClauseReturning); ok {
		ret, err := p.readClause(ClauseReturning, stop, nil, nil)
		if err != nil {
			return nil, err
		}
		stmt.Returning = ret
	}
	return stmt, nil
}

func (p *Parser) parseDelete(stop []Clause) (Statement, error) {
	p.next() // DELETE
	stmt := &DeleteStmt{syn: p.syn}

	// Vendor forms put an explicit target between DELETE and FROM,
	// as in "DELETE t FROM t JOIN ...". Capture it when present.
	if _, ok := p.startsClause(ClauseFrom); !ok {
		span := p.readSpan(joinClauses([]Clause{ClauseFrom, ClauseOutput, ClauseUsing, ClauseWhere, ClauseReturning}, stop), nil)
		if len(span) > 0 {
			target, err := p.segmentFromSpan(ClauseDelete, span)
			if err != nil {
				return nil, err
			}
			stmt.Target = target
		}
	}

	from, err := p.readClause(ClauseFrom,
		joinClauses([]Clause{ClauseOutput, ClauseUsing, ClauseWhere, ClauseReturning}, stop), nil, validateJoins)
	if err != nil {
		return nil, err
	}
	stmt.From = from

	if _, ok := p.startsClause(ClauseOutput); ok {
		out, err := p.readClause(ClauseOutput,
			joinClauses([]Clause{ClauseUsing, ClauseWhere, ClauseReturning}, stop), nil, nil)
		if err != nil {
			return nil, err
		}
		stmt.Output = out
	}
	if _, ok := p.startsClause(ClauseUsing); ok {
		using, err := p.readClause(ClauseUsing,
			joinClauses([]Clause{ClauseWhere, ClauseReturning}, stop), nil, validateJoins)
		if err != nil {
			return nil, err
		}
		stmt.Using = using
	}
	if _, ok := p.startsClause(ClauseWhere); ok {
		where, err := p.readClause(ClauseWhere, joinClauses([]Clause{ClauseReturning}, stop), nil, nil)
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	if _, ok := p.startsClause(ClauseReturning); ok {
		ret, err := p.readClause(ClauseReturning, stop, nil, nil)
		if err != nil {
			return nil, err
		}
		stmt.Returning = ret
	}
	return stmt, nil
}
