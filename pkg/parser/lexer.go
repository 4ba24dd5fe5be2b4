package parser

import (
	"unicode"

	"github.com/seamsql/seamsql/pkg/dialect"
	"github.com/seamsql/seamsql/pkg/token"
)

// Lexer tokenizes SQL input under a dialect's syntax options.
//
// Literals are consumed verbatim, delimiters included, so the token
// stream can reproduce the source text exactly. Unterminated strings,
// bracket identifiers, and block comments silently consume to the end
// of input instead of erroring; callers that need stricter behavior
// must detect truncation themselves.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	syntax *dialect.Syntax
}

// NewLexer creates a new Lexer for the given input. A nil syntax falls
// back to dialect.Default.
func NewLexer(input string, syn *dialect.Syntax) *Lexer {
	if syn == nil {
		syn = dialect.Default
	}
	l := &Lexer{
		input:  input,
		line:   1,
		col:    0,
		syntax: syn,
	}
	l.readChar()
	return l
}

// Tokenize returns all tokens from the input. The result is finite and
// eagerly produced; re-tokenizing requires calling again.
func Tokenize(input string, syn *dialect.Syntax) []token.Token {
	l := NewLexer(input, syn)
	var tokens []token.Token
	for {
		tok, ok := l.Next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// Next returns the next token, or ok=false at end of input.
func (l *Lexer) Next() (token.Token, bool) {
	l.skipWhitespaceAndComments()

	if l.ch == 0 {
		return token.Token{}, false
	}

	pos := l.currentPos()

	switch {
	case l.ch == '\'' || l.ch == '"':
		return token.New(l.readQuoted(l.ch), token.STRING, pos), true

	case l.ch == '[':
		return token.New(l.readBracketed(), token.IDENT, pos), true

	case isLetter(l.ch) || l.ch == '_' || l.ch == '$' || l.syntax.IsPrefix(l.ch):
		text := l.readIdentifier()
		if token.IsKeywordWord(text) {
			return token.New(text, token.KEYWORD, pos), true
		}
		return token.New(text, token.IDENT, pos), true

	case isDigit(l.ch):
		return token.New(l.readNumber(), token.NUMBER, pos), true
	}

	// Two-character operators via one-character lookahead.
	switch l.ch {
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.New(">=", token.SYMBOL, pos), true
		}
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			l.readChar()
			return token.New("<=", token.SYMBOL, pos), true
		case '>':
			l.readChar()
			l.readChar()
			return token.New("<>", token.SYMBOL, pos), true
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.New("!=", token.SYMBOL, pos), true
		}
	}

	tok := token.New(string(l.ch), token.SYMBOL, pos)
	l.readChar()
	return tok, true
}

// skipWhitespaceAndComments skips whitespace, line comments, and block
// comments. An unterminated block comment runs to end of input.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch == '-' && l.peekChar() == '-' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar() // skip '/'
			l.readChar() // skip '*'
			for l.ch != 0 {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar() // skip '*'
					l.readChar() // skip '/'
					break
				}
				l.readChar()
			}
			continue
		}

		break
	}
}

// readQuoted reads a quoted literal verbatim, delimiters included.
// Doubled quotes escape: 'it''s' stays 'it''s' in the token text.
func (l *Lexer) readQuoted(quote byte) string {
	start := l.pos
	l.readChar() // skip opening quote

	for l.ch != 0 {
		if l.ch == quote {
			if l.peekChar() == quote {
				l.readChar() // skip first quote
				l.readChar() // skip second quote
				continue
			}
			l.readChar() // skip closing quote
			break
		}
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readBracketed reads a bracket-quoted identifier verbatim, brackets
// included.
func (l *Lexer) readBracketed() string {
	start := l.pos
	l.readChar() // skip '['

	for l.ch != 0 && l.ch != ']' {
		l.readChar()
	}
	if l.ch == ']' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readIdentifier reads an identifier or keyword run. Dialect prefix
// characters both start and continue a run, so @@ROWCOUNT or :bind
// lex as single identifiers.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '$' || l.syntax.IsPrefix(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal: digits with at most one internal
// dot. Exponents are not supported.
func (l *Lexer) readNumber() string {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

// isLetter returns true if ch is a letter.
func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch))
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
