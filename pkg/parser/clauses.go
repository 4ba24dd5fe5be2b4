package parser

import "github.com/seamsql/seamsql/pkg/token"

// Clause identifies one clause slot in a statement grammar.
type Clause int

const (
	ClauseSelect Clause = iota
	ClauseFrom
	ClauseWhere
	ClauseGroupBy
	ClauseHaving
	ClauseOrderBy
	ClauseLimit
	ClauseOffset
	ClauseInto
	ClauseValues
	ClauseOutput
	ClauseReturning
	ClauseUsing
	ClauseSet
	ClauseUpdate
	ClauseDelete
	ClauseTail
	ClauseStatementEnd
)

// clauseNames doubles as the segment name for each clause.
var clauseNames = map[Clause]string{
	ClauseSelect:       "SELECT",
	ClauseFrom:         "FROM",
	ClauseWhere:        "WHERE",
	ClauseGroupBy:      "GROUP BY",
	ClauseHaving:       "HAVING",
	ClauseOrderBy:      "ORDER BY",
	ClauseLimit:        "LIMIT",
	ClauseOffset:       "OFFSET",
	ClauseInto:         "INTO",
	ClauseValues:       "VALUES",
	ClauseOutput:       "OUTPUT",
	ClauseReturning:    "RETURNING",
	ClauseUsing:        "USING",
	ClauseSet:          "SET",
	ClauseUpdate:       "UPDATE",
	ClauseDelete:       "DELETE",
	ClauseTail:         "TAIL",
	ClauseStatementEnd: "end of statement",
}

// String returns the clause's display (and segment) name.
func (c Clause) String() string {
	if name, ok := clauseNames[c]; ok {
		return name
	}
	return "CLAUSE"
}

// clauseKeywords maps each non-terminal clause to the keyword
// sequence(s) that open it. Sequences match consecutive tokens
// case-insensitively.
var clauseKeywords = map[Clause][][]string{
	ClauseSelect:    {{"SELECT"}},
	ClauseFrom:      {{"FROM"}},
	ClauseWhere:     {{"WHERE"}},
	ClauseGroupBy:   {{"GROUP", "BY"}},
	ClauseHaving:    {{"HAVING"}},
	ClauseOrderBy:   {{"ORDER", "BY"}},
	ClauseLimit:     {{"LIMIT"}},
	ClauseOffset:    {{"OFFSET"}},
	ClauseInto:      {{"INTO"}},
	ClauseValues:    {{"VALUES"}},
	ClauseOutput:    {{"OUTPUT"}},
	ClauseReturning: {{"RETURNING"}},
	ClauseUsing:     {{"USING"}},
	ClauseSet:       {{"SET"}},
	ClauseUpdate:    {{"UPDATE"}},
	ClauseDelete:    {{"DELETE"}},
	ClauseTail:      {{"UNION"}, {"EXCEPT"}, {"INTERSECT"}},
}

// matchClause reports whether clause c starts at toks[i] and how many
// tokens its keyword sequence spans. ClauseStatementEnd matches (with
// zero width) at end of input or before `;`.
func matchClause(toks []token.Token, i int, c Clause) (int, bool) {
	if c == ClauseStatementEnd {
		if i >= len(toks) || toks[i].Is(";") {
			return 0, true
		}
		return 0, false
	}

	for _, seq := range clauseKeywords[c] {
		if matchKeywords(toks, i, seq) {
			return len(seq), true
		}
	}
	return 0, false
}

// matchKeywords reports whether the keyword sequence occurs at toks[i].
func matchKeywords(toks []token.Token, i int, seq []string) bool {
	if i+len(seq) > len(toks) {
		return false
	}
	for k, word := range seq {
		t := toks[i+k]
		if !t.IsKeyword() || !t.Is(word) {
			return false
		}
	}
	return true
}

// clauseStartAt returns which of the candidate clauses begins at
// toks[i], if any.
func clauseStartAt(toks []token.Token, i int, candidates []Clause) (Clause, int, bool) {
	for _, c := range candidates {
		if n, ok := matchClause(toks, i, c); ok {
			return c, n, true
		}
	}
	return 0, 0, false
}
