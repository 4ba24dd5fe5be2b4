package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScript(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			"two statements",
			"SELECT a FROM t; SELECT b FROM u",
			[]string{"SELECT a FROM t", "SELECT b FROM u"},
		},
		{
			"single statement without semicolon",
			"SELECT a FROM t",
			[]string{"SELECT a FROM t"},
		},
		{
			"trailing semicolon",
			"SELECT a FROM t;",
			[]string{"SELECT a FROM t"},
		},
		{
			"empty statements skipped",
			"SELECT 1;; ;SELECT 2;",
			[]string{"SELECT 1", "SELECT 2"},
		},
		{
			"mixed kinds",
			"INSERT INTO t(a) VALUES (1); UPDATE t SET a = 2; DELETE FROM t WHERE a = 2",
			[]string{"INSERT INTO t(a) VALUES (1)", "UPDATE t SET a = 2", "DELETE FROM t WHERE a = 2"},
		},
		{
			"semicolon inside string literal",
			"SELECT ';' FROM t; SELECT 1",
			[]string{"SELECT ';' FROM t", "SELECT 1"},
		},
		{
			"parenthesized subquery",
			"SELECT a FROM (SELECT a FROM t) s; SELECT 1",
			[]string{"SELECT a FROM (SELECT a FROM t) s", "SELECT 1"},
		},
		{
			"cte statement",
			"WITH r AS (SELECT 1) SELECT * FROM r; SELECT 2",
			[]string{"WITH r AS (SELECT 1) SELECT * FROM r", "SELECT 2"},
		},
		{"empty input", "", nil},
		{"whitespace only", "  \n\t ", nil},
		{"only semicolons", ";;;", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queries, err := ParseScript(tt.sql, nil)
			require.NoError(t, err)
			require.Len(t, queries, len(tt.want))
			for i, q := range queries {
				assert.Equal(t, tt.want[i], q.SQL())
			}
		})
	}
}

func TestParseScriptErrorPosition(t *testing.T) {
	// The error in the second statement keeps its position relative
	// to the whole input, not to the statement it sits in.
	_, err := ParseScript("SELECT a FROM t;\nUPDATE users", nil)
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Pos.Line)
	assert.Equal(t, 13, pe.Pos.Column)
	assert.Contains(t, err.Error(), "expected keyword SET")
}

func TestParseScriptFirstErrorWins(t *testing.T) {
	_, err := ParseScript("SELECT FROM t; UPDATE users", nil)
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Pos.Line)
	assert.ErrorContains(t, err, "empty SELECT clause")
}

func TestParseScriptDepthLimit(t *testing.T) {
	_, err := ParseScriptWithDepth("SELECT 1; SELECT (SELECT 1)", nil, 1)
	require.Error(t, err)
	assert.ErrorContains(t, err, "nesting depth")

	queries, err := ParseScriptWithDepth("SELECT 1; SELECT (SELECT 1)", nil, 2)
	require.NoError(t, err)
	assert.Len(t, queries, 2)
}
