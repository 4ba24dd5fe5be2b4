package token

import "strings"

// Join renders a token sequence as canonical single-line SQL. Tokens
// render through Norm, so keywords come out uppercase while
// identifiers and literals keep their source spelling.
func Join(toks []Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && NeedSpace(toks[i-1], t) {
			b.WriteByte(' ')
		}
		b.WriteString(t.Norm)
	}
	return b.String()
}

// NeedSpace decides whether canonical output separates prev and next
// with a space. The rules, in order: never before `, ) . ; : ]`; never
// after a token ending in `( [ .`; before `(` only after a keyword or
// a token ending in punctuation (an identifier or number directly
// abuts its call parenthesis); otherwise a single space.
//
// next may be a composite rendering (a parenthesized subquery) whose
// text spans multiple source tokens; only its first character matters
// here.
func NeedSpace(prev, next Token) bool {
	switch next.Norm {
	case ",", ")", ".", ";", ":", "]":
		return false
	}

	last := prev.Norm[len(prev.Norm)-1]
	switch last {
	case '(', '[', '.':
		return false
	}

	if next.Norm[0] == '(' {
		switch prev.Kind {
		case KEYWORD:
			return true
		case IDENT, NUMBER:
			return false
		default:
			return !isIdentByte(last)
		}
	}

	return true
}

// isIdentByte reports whether b can appear inside an unprefixed
// identifier or number run.
func isIdentByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '_' || b == '$':
		return true
	}
	return false
}
