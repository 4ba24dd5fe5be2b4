package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsKeywordWord(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{"select", true},
		{"SELECT", true},
		{"Select", true},
		{"group", true},
		{"returning", true},
		{"count", false},
		{"users", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, IsKeywordWord(tt.word))
		})
	}
}

func TestNew(t *testing.T) {
	kw := New("select", KEYWORD, Position{Line: 1, Column: 1})
	assert.Equal(t, "select", kw.Text)
	assert.Equal(t, "SELECT", kw.Norm)
	assert.True(t, kw.IsKeyword())
	assert.False(t, kw.IsIdent())
	assert.True(t, kw.Is("SELECT"))

	id := New("Users", IDENT, Position{Line: 1, Column: 8})
	assert.Equal(t, "Users", id.Text)
	assert.Equal(t, "Users", id.Norm)
	assert.True(t, id.IsIdent())
	assert.False(t, id.Is("users"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "KEYWORD", KEYWORD.String())
	assert.Equal(t, "SYMBOL", SYMBOL.String())
	assert.Equal(t, "KIND(42)", Kind(42).String())
}

func TestTokenString(t *testing.T) {
	tok := New("from", KEYWORD, Position{})
	assert.Equal(t, "KEYWORD(from)", tok.String())
}
