package parser

import (
	"fmt"

	"github.com/seamsql/seamsql/pkg/token"
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	ErrUnsupportedStatement = "unsupported statement %q"
	ErrEmptyStatement       = "empty statement"
	ErrExpectedKeyword      = "expected keyword %s"
	ErrExpectedToken        = "expected %s"
	ErrEmptyClause          = "empty %s clause"
	ErrMissingOn            = "missing ON clause"
	ErrExpectedCTEName      = "expected CTE name"
	ErrExpectedColumnName   = "expected column name in CTE definition"
	ErrUnterminatedWith     = "unterminated parenthesis in WITH definition"
	ErrExpectedSource       = "expected VALUES or a SELECT source"
	ErrTrailingTokens       = "unexpected trailing tokens after statement"
	ErrMaxDepth             = "maximum statement nesting depth exceeded"
)

// errorAt builds a ParseError at the given position.
func errorAt(pos token.Position, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}
