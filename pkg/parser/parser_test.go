package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seamsql/seamsql/pkg/dialect"
)

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{"simple select", "SELECT id, name FROM users WHERE id = 1"},
		{"select star", "SELECT * FROM t"},
		{"distinct", "SELECT DISTINCT a FROM t"},
		{"top", "SELECT TOP 10 a FROM t"},
		{"qualified star", "SELECT t.* FROM t"},
		{"group having order", "SELECT a, COUNT(*) c FROM t GROUP BY a HAVING COUNT(*) > 1 ORDER BY c DESC"},
		{"limit offset", "SELECT a FROM t LIMIT 10 OFFSET 20"},
		{"join", "SELECT a FROM t JOIN u ON t.id = u.id"},
		{"left outer join", "SELECT a FROM t LEFT OUTER JOIN u ON t.id = u.id WHERE u.id IS NOT NULL"},
		{"cross join", "SELECT a FROM t CROSS JOIN u"},
		{"chained joins", "SELECT a FROM t JOIN u ON t.id = u.id JOIN v ON u.id = v.id"},
		{"subquery in from", "SELECT s.a FROM (SELECT a FROM t) s"},
		{"subquery in where", "SELECT a FROM t WHERE id IN (SELECT id FROM u)"},
		{"exists", "SELECT a FROM t WHERE EXISTS (SELECT 1 FROM u WHERE u.id = t.id)"},
		{"case expression", "SELECT CASE WHEN a > 1 THEN 'big' ELSE 'small' END FROM t"},
		{"between", "SELECT a FROM t WHERE a BETWEEN 1 AND 10"},
		{"like escape", "SELECT a FROM t WHERE x LIKE 'a%' ESCAPE '!'"},
		{"function call", "SELECT UPPER(name) FROM t WHERE LEN(name) > 3"},
		{"cte", "WITH recent(id) AS (SELECT id FROM orders) SELECT * FROM recent"},
		{"recursive cte", "WITH RECURSIVE r AS (SELECT 1 UNION SELECT n + 1 FROM r) SELECT * FROM r"},
		{"multiple ctes", "WITH a AS (SELECT 1), b AS (SELECT 2) SELECT * FROM a, b"},
		{"union", "SELECT a FROM t UNION SELECT a FROM u"},
		{"union all", "SELECT a FROM t UNION ALL SELECT a FROM u"},
		{"except", "SELECT a FROM t EXCEPT SELECT a FROM u"},
		{"intersect", "SELECT a FROM t INTERSECT SELECT a FROM u"},
		{"union parenthesized", "SELECT a FROM t UNION (SELECT b FROM u ORDER BY b)"},
		{"insert values", "INSERT INTO t(a, b) VALUES (1, 'x')"},
		{"insert multiple rows", "INSERT INTO t(a) VALUES (1), (2), (3)"},
		{"insert select", "INSERT INTO t(a) SELECT a FROM u WHERE a > 0"},
		{"insert with cte source", "INSERT INTO t(a) WITH s AS (SELECT 1) SELECT * FROM s"},
		{"insert returning", "INSERT INTO t(a) VALUES (1) RETURNING id"},
		{"insert output", "INSERT INTO t(a) OUTPUT inserted.id VALUES (1)"},
		{"update", "UPDATE t SET a = 1, b = 'x' WHERE id = 2"},
		{"update from", "UPDATE t SET a = u.a FROM u WHERE t.id = u.id"},
		{"update returning", "UPDATE t SET a = 1 RETURNING id"},
		{"delete", "DELETE FROM t WHERE a = 1"},
		{"delete all rows", "DELETE FROM t"},
		{"delete using", "DELETE FROM t USING u WHERE t.id = u.id RETURNING t.id"},
		{"delete with target", "DELETE t1 FROM t1 JOIN t2 ON t1.id = t2.id"},
		{"bracket identifiers", "SELECT [user id] FROM [my table]"},
		{"string literals", "SELECT 'it''s' FROM t"},
		{"parameters", "SELECT @id, name FROM t WHERE id = @id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.sql, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, q.SQL())

			// Canonical output is a fixed point.
			again, err := Parse(q.SQL(), nil)
			require.NoError(t, err)
			assert.Equal(t, q.SQL(), again.SQL())
		})
	}
}

func TestParseNormalizesKeywordCase(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "select",
			sql:  "select Id from Users where Id = 1",
			want: "SELECT Id FROM Users WHERE Id = 1",
		},
		{
			name: "insert",
			sql:  "insert into t(a) values (1)",
			want: "INSERT INTO t(a) VALUES (1)",
		},
		{
			name: "identifier case survives",
			sql:  "SELECT CamelCase FROM MixedCase",
			want: "SELECT CamelCase FROM MixedCase",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.sql, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.SQL())
		})
	}
}

func TestParseNormalizesWhitespace(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "runs collapse",
			sql:  "SELECT   a,\n\tb\nFROM t",
			want: "SELECT a, b FROM t",
		},
		{
			name: "comments drop",
			sql:  "SELECT a -- pick a\nFROM t /* main table */ WHERE a > 1",
			want: "SELECT a FROM t WHERE a > 1",
		},
		{
			name: "trailing semicolon drops",
			sql:  "SELECT 1;",
			want: "SELECT 1",
		},
		{
			name: "space before column list drops",
			sql:  "INSERT INTO t (a, b) VALUES (1, 2)",
			want: "INSERT INTO t(a, b) VALUES (1, 2)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.sql, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.SQL())
		})
	}
}

func TestParseStatementKinds(t *testing.T) {
	tests := []struct {
		sql  string
		kind string
	}{
		{"SELECT 1", "select"},
		{"INSERT INTO t VALUES (1)", "insert"},
		{"UPDATE t SET a = 1", "update"},
		{"DELETE FROM t", "delete"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			q, err := Parse(tt.sql, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, q.Root.Kind())
		})
	}
}

func TestParseClauseSegments(t *testing.T) {
	q, err := Parse("SELECT a FROM t WHERE a > 1 GROUP BY a HAVING COUNT(*) > 2 ORDER BY a LIMIT 5 OFFSET 10", nil)
	require.NoError(t, err)

	sel, ok := q.Root.(*SelectStmt)
	require.True(t, ok)

	require.NotNil(t, sel.Select)
	assert.Equal(t, "SELECT", sel.Select.Name)
	assert.Equal(t, "a", sel.Select.SQL())

	require.NotNil(t, sel.From)
	assert.Equal(t, "t", sel.From.SQL())
	require.NotNil(t, sel.Where)
	assert.Equal(t, "a > 1", sel.Where.SQL())
	require.NotNil(t, sel.GroupBy)
	assert.Equal(t, "a", sel.GroupBy.SQL())
	require.NotNil(t, sel.Having)
	assert.Equal(t, "COUNT(*) > 2", sel.Having.SQL())
	require.NotNil(t, sel.OrderBy)
	assert.Equal(t, "a", sel.OrderBy.SQL())
	require.NotNil(t, sel.Limit)
	assert.Equal(t, "5", sel.Limit.SQL())
	require.NotNil(t, sel.Offset)
	assert.Equal(t, "10", sel.Offset.SQL())

	names := make([]string, 0, len(sel.Segments()))
	for _, seg := range sel.Segments() {
		names = append(names, seg.Name)
	}
	assert.Equal(t, []string{"SELECT", "FROM", "WHERE", "GROUP BY", "HAVING", "ORDER BY", "LIMIT", "OFFSET"}, names)
}

func TestParseOptionalClausesAbsent(t *testing.T) {
	q, err := Parse("SELECT a FROM t", nil)
	require.NoError(t, err)

	sel := q.Root.(*SelectStmt)
	assert.Nil(t, sel.Where)
	assert.Nil(t, sel.GroupBy)
	assert.Nil(t, sel.Having)
	assert.Nil(t, sel.OrderBy)
	assert.Nil(t, sel.Limit)
	assert.Nil(t, sel.Offset)
	assert.Nil(t, sel.Tail)
	assert.Nil(t, sel.With)
}

func TestParseInsertShapes(t *testing.T) {
	t.Run("values", func(t *testing.T) {
		q, err := Parse("INSERT INTO t(a) VALUES (1)", nil)
		require.NoError(t, err)
		ins := q.Root.(*InsertStmt)
		require.NotNil(t, ins.Values)
		assert.Nil(t, ins.Source)
	})

	t.Run("select source", func(t *testing.T) {
		q, err := Parse("INSERT INTO t SELECT a FROM u", nil)
		require.NoError(t, err)
		ins := q.Root.(*InsertStmt)
		assert.Nil(t, ins.Values)
		require.NotNil(t, ins.Source)
		assert.Equal(t, "SELECT a FROM u", ins.Source.SQL())
	})

	t.Run("source stops at returning", func(t *testing.T) {
		q, err := Parse("INSERT INTO t SELECT a FROM u RETURNING id", nil)
		require.NoError(t, err)
		ins := q.Root.(*InsertStmt)
		require.NotNil(t, ins.Source)
		assert.Equal(t, "SELECT a FROM u", ins.Source.SQL())
		require.NotNil(t, ins.Returning)
		assert.Equal(t, "id", ins.Returning.SQL())
	})
}

func TestParseWithClause(t *testing.T) {
	q, err := Parse("WITH t(n, m) AS (SELECT 1, 2), u AS (SELECT 3) SELECT * FROM t, u", nil)
	require.NoError(t, err)

	sel := q.Root.(*SelectStmt)
	require.NotNil(t, sel.With)
	assert.False(t, sel.With.Recursive)
	require.Len(t, sel.With.CTEs, 2)

	first := sel.With.CTEs[0]
	assert.Equal(t, "t", first.Name)
	assert.Equal(t, []string{"n", "m"}, first.Columns)
	assert.Equal(t, "SELECT 1, 2", first.Stmt.SQL())

	second := sel.With.CTEs[1]
	assert.Equal(t, "u", second.Name)
	assert.Empty(t, second.Columns)

	assert.Equal(t, "WITH t(n, m) AS (SELECT 1, 2), u AS (SELECT 3)", sel.With.SQL())
}

func TestParseRecursiveWith(t *testing.T) {
	q, err := Parse("WITH RECURSIVE r AS (SELECT 1 UNION ALL SELECT n + 1 FROM r WHERE n < 10) SELECT * FROM r", nil)
	require.NoError(t, err)

	sel := q.Root.(*SelectStmt)
	require.NotNil(t, sel.With)
	assert.True(t, sel.With.Recursive)

	body := sel.With.CTEs[0].Stmt.(*SelectStmt)
	require.NotNil(t, body.Tail)
	assert.Equal(t, "UNION ALL SELECT n + 1 FROM r WHERE n < 10", body.Tail.SQL())
}

func TestStatementsDepthFirst(t *testing.T) {
	q, err := Parse("WITH c AS (SELECT 1) SELECT a FROM (SELECT a FROM t) s WHERE a IN (SELECT b FROM u)", nil)
	require.NoError(t, err)

	stmts := q.Statements()
	require.Len(t, stmts, 4)
	assert.Same(t, q.Root, stmts[0])
	assert.Equal(t, "SELECT 1", stmts[1].SQL())
	assert.Equal(t, "SELECT a FROM t", stmts[2].SQL())
	assert.Equal(t, "SELECT b FROM u", stmts[3].SQL())
}

func TestStatementsIncludesInsertSource(t *testing.T) {
	q, err := Parse("INSERT INTO t SELECT a FROM (SELECT a FROM u) s", nil)
	require.NoError(t, err)

	stmts := q.Statements()
	require.Len(t, stmts, 3)
	assert.Equal(t, "insert", stmts[0].Kind())
	assert.Equal(t, "SELECT a FROM (SELECT a FROM u) s", stmts[1].SQL())
	assert.Equal(t, "SELECT a FROM u", stmts[2].SQL())
}

func TestStatementsRecomputedAfterMutation(t *testing.T) {
	q, err := Parse("SELECT a FROM t", nil)
	require.NoError(t, err)
	require.Len(t, q.Statements(), 1)

	sel := q.Root.(*SelectStmt)
	require.NoError(t, sel.EnsureWhereSegment().AddConjunction("AND", "id IN (SELECT id FROM u)"))

	stmts := q.Statements()
	require.Len(t, stmts, 2)
	assert.Equal(t, "SELECT id FROM u", stmts[1].SQL())
}

func TestWalkStopsOnFalse(t *testing.T) {
	q, err := Parse("SELECT a FROM (SELECT b FROM t) s", nil)
	require.NoError(t, err)

	count := 0
	Walk(q.Root, func(Statement) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{"empty input", "", "empty statement"},
		{"whitespace only", "   \n", "empty statement"},
		{"comment only", "-- nothing here", "empty statement"},
		{"bare semicolon", ";", "empty statement"},
		{"unsupported statement", "DROP TABLE t", `unsupported statement "DROP"`},
		{"empty select list", "SELECT", "empty SELECT clause"},
		{"empty from", "SELECT a FROM", "empty FROM clause"},
		{"empty where", "SELECT a FROM t WHERE", "empty WHERE clause"},
		{"empty group by", "SELECT a FROM t GROUP BY", "empty GROUP BY clause"},
		{"empty tail", "SELECT a FROM t UNION", "empty UNION clause"},
		{"join without on", "SELECT a FROM t JOIN u", "missing ON clause"},
		{"second join without on", "SELECT a FROM t JOIN u ON t.id = u.id JOIN v", "missing ON clause"},
		{"join in update from", "UPDATE t SET a = 1 FROM u JOIN v", "missing ON clause"},
		{"trailing statement", "SELECT 1; SELECT 2", "unexpected trailing tokens"},
		{"unmatched close paren", "SELECT 1)", "unexpected trailing tokens"},
		{"insert without source", "INSERT INTO t", "expected VALUES or a SELECT source"},
		{"insert missing into", "INSERT t VALUES (1)", "expected keyword INTO"},
		{"empty values", "INSERT INTO t VALUES", "empty VALUES clause"},
		{"update missing set", "UPDATE t WHERE a = 1", "expected keyword SET"},
		{"empty update target", "UPDATE SET a = 1", "empty UPDATE clause"},
		{"empty set", "UPDATE t SET", "empty SET clause"},
		{"delete missing from", "DELETE t WHERE a = 1", "expected keyword FROM"},
		{"cte missing as", "WITH t SELECT 1", "expected keyword AS"},
		{"cte missing name", "WITH AS (SELECT 1) SELECT 1", "expected CTE name"},
		{"cte bad column", "WITH t(1) AS (SELECT 1) SELECT 1", "expected column name"},
		{"cte missing body paren", "WITH t AS SELECT 1", "expected ("},
		{"cte unterminated body", "WITH t AS (SELECT 1 SELECT 2", "unterminated parenthesis"},
		{"cte empty body", "WITH t AS () SELECT 1", "empty statement"},
		{"with without statement", "WITH t AS (SELECT 1)", "expected keyword SELECT, INSERT, UPDATE, or DELETE"},
		{"bad statement after with", "WITH t AS (SELECT 1) DROP x", `unsupported statement "DROP"`},
		{"nested error surfaces", "SELECT a FROM (SELECT FROM t) s", "empty SELECT clause"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.sql, nil)
			require.Error(t, err)
			assert.Nil(t, q)
			assert.ErrorContains(t, err, tt.want)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.GreaterOrEqual(t, pe.Pos.Line, 1)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	t.Run("single line", func(t *testing.T) {
		_, err := Parse("SELECT a FROM t JOIN u", nil)
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, 1, pe.Pos.Line)
		assert.Equal(t, 17, pe.Pos.Column)
		assert.Contains(t, err.Error(), "parse error at line 1, column 17")
	})

	t.Run("multi line", func(t *testing.T) {
		_, err := Parse("SELECT a\nFROM t JOIN u", nil)
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, 2, pe.Pos.Line)
		assert.Equal(t, 8, pe.Pos.Column)
	})
}

func TestParseDepthLimit(t *testing.T) {
	t.Run("explicit limit", func(t *testing.T) {
		_, err := ParseWithDepth("SELECT (SELECT 1)", nil, 1)
		require.Error(t, err)
		assert.ErrorContains(t, err, "nesting depth")

		_, err = ParseWithDepth("SELECT (SELECT 1)", nil, 2)
		assert.NoError(t, err)
	})

	t.Run("default limit", func(t *testing.T) {
		sql := "SELECT 1"
		for range 150 {
			sql = "SELECT (" + sql + ")"
		}
		_, err := Parse(sql, nil)
		require.Error(t, err)
		assert.ErrorContains(t, err, "nesting depth")
	})

	t.Run("non-positive falls back to default", func(t *testing.T) {
		q, err := ParseWithDepth("SELECT (SELECT 1)", nil, 0)
		require.NoError(t, err)
		assert.Equal(t, "SELECT (SELECT 1)", q.SQL())
	})
}

func TestParseDialects(t *testing.T) {
	t.Run("oracle binds", func(t *testing.T) {
		q, err := Parse("SELECT :id FROM t WHERE x = :id", dialect.Oracle)
		require.NoError(t, err)
		assert.Equal(t, "SELECT :id FROM t WHERE x = :id", q.SQL())
		assert.Same(t, dialect.Oracle, q.Syntax)
	})

	t.Run("nil syntax uses default", func(t *testing.T) {
		q, err := Parse("SELECT @x FROM t", nil)
		require.NoError(t, err)
		assert.Same(t, dialect.Default, q.Syntax)
		assert.Equal(t, "SELECT @x FROM t", q.SQL())
	})
}
