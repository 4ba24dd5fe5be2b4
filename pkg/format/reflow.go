package format

import "github.com/seamsql/seamsql/pkg/token"

// clauseClass groups clause-opening keywords by how their bodies are
// laid out.
type clauseClass int

const (
	classNone clauseClass = iota
	// classList clauses put each top-level comma-separated item on its
	// own line one level below the keyword.
	classList
	// classTable clauses keep their body inline but break join
	// keywords onto fresh lines.
	classTable
	// classPlain clauses start a new line and keep the body inline.
	classPlain
)

// clauseClasses maps clause-opening keywords to their layout class.
// GROUP BY and ORDER BY are recognized as pairs in clauseClassAt.
var clauseClasses = map[string]clauseClass{
	"SELECT":    classList,
	"VALUES":    classList,
	"SET":       classList,
	"RETURNING": classList,
	"FROM":      classTable,
	"USING":     classTable,
	"WHERE":     classPlain,
	"HAVING":    classPlain,
	"LIMIT":     classPlain,
	"OFFSET":    classPlain,
	"OUTPUT":    classPlain,
	"UNION":     classPlain,
	"EXCEPT":    classPlain,
	"INTERSECT": classPlain,
}

// joinWords start a new join line inside FROM and USING bodies unless
// the line already ends with a join modifier.
var joinWords = map[string]bool{
	"JOIN":  true,
	"INNER": true,
	"LEFT":  true,
	"RIGHT": true,
	"FULL":  true,
	"CROSS": true,
	"OUTER": true,
}

// joinModifiers keep a following join keyword on the same line.
var joinModifiers = map[string]bool{
	"INNER": true,
	"LEFT":  true,
	"RIGHT": true,
	"FULL":  true,
	"CROSS": true,
	"OUTER": true,
}

// clauseClassAt reports the layout class of the clause keyword at
// toks[i] and how many tokens its keyword sequence spans.
func clauseClassAt(toks []token.Token, i int) (clauseClass, int) {
	switch toks[i].Norm {
	case "GROUP", "ORDER":
		if i+1 < len(toks) && toks[i+1].IsKeyword() && toks[i+1].Is("BY") {
			return classList, 2
		}
		return classNone, 0
	}
	if class, ok := clauseClasses[toks[i].Norm]; ok {
		return class, 1
	}
	return classNone, 0
}

// clauseWord reports whether norm opens a clause. Used to decide
// whether a parenthesized group spans multiple lines.
func clauseWord(norm string) bool {
	if _, ok := clauseClasses[norm]; ok {
		return true
	}
	return norm == "GROUP" || norm == "ORDER"
}

// multilineGroup reports whether the group opened at toks[open]
// contains a clause keyword directly inside it. Such groups break
// after the opening parenthesis and before the closing one.
func multilineGroup(toks []token.Token, open int) bool {
	depth := 0
	for i := open; i < len(toks); i++ {
		t := toks[i]
		if t.Kind == token.SYMBOL {
			switch t.Norm {
			case "(":
				depth++
				continue
			case ")":
				depth--
				if depth == 0 {
					return false
				}
				continue
			}
		}
		if depth == 1 && t.IsKeyword() && clauseWord(t.Norm) {
			return true
		}
	}
	return false
}

// context tracks which clause body the walk is inside.
type context int

const (
	ctxNone context = iota
	ctxList
	ctxTable
)

// frame records the state saved when a parenthesized group opens.
// Only multiline groups restore indentation and clause context; plain
// groups merely suspend comma and join breaking while open.
type frame struct {
	multiline bool
	depth     int
	base      int
	ctx       context
	inline    int
}

// reflow lays the token stream out across lines. It tracks the open
// parenthesis stack, the base indent for clause keywords, and the
// active clause context governing comma and join breaks.
func reflow(toks []token.Token, mode Mode, indentSize int) string {
	p := newPrinter(indentSize)

	var (
		stack   []frame
		base    int     // indent of clause keywords in the current group
		ctx     context // layout class of the open clause body
		inline  int     // plain parens open inside the current group
		pending bool    // list clause opened; break before its first item
	)

	for i := 0; i < len(toks); i++ {
		t := toks[i]

		// The first list item starts its own line, but select-list
		// modifiers stay on the keyword line.
		if pending && !listModifier(p, t) {
			p.breakTo(base + 1)
			pending = false
		}

		if t.Kind == token.SYMBOL {
			switch t.Norm {
			case "(":
				if multilineGroup(toks, i) {
					p.add(t)
					stack = append(stack, frame{
						multiline: true,
						depth:     p.depth,
						base:      base,
						ctx:       ctx,
						inline:    inline,
					})
					base = p.depth + 1
					ctx = ctxNone
					inline = 0
					p.breakTo(base)
				} else {
					stack = append(stack, frame{})
					inline++
					p.add(t)
				}
				continue
			case ")":
				if n := len(stack); n > 0 {
					f := stack[n-1]
					stack = stack[:n-1]
					if f.multiline {
						p.breakTo(f.depth)
						base, ctx, inline = f.base, f.ctx, f.inline
					} else {
						inline--
					}
				}
				p.add(t)
				continue
			case ",":
				if ctx == ctxList && inline == 0 {
					if mode == Prefixed {
						p.breakComma(base + 1)
						p.add(t)
					} else {
						p.add(t)
						p.breakTo(base + 1)
					}
				} else {
					p.add(t)
				}
				continue
			case ";":
				p.add(t)
				p.breakTo(0)
				base, ctx, pending = 0, ctxNone, false
				continue
			}
			p.add(t)
			continue
		}

		if t.IsKeyword() && inline == 0 {
			if ctx == ctxTable && joinWords[t.Norm] {
				if last, ok := p.last(); !ok || !last.IsKeyword() || !joinModifiers[last.Norm] {
					p.breakTo(base)
				}
				p.add(t)
				continue
			}
			if ctx == ctxTable && t.Is("ON") {
				p.breakTo(base + 1)
				p.add(t)
				continue
			}
			if class, width := clauseClassAt(toks, i); class != classNone {
				p.breakTo(base)
				for k := 0; k < width; k++ {
					p.add(toks[i+k])
				}
				i += width - 1
				switch class {
				case classList:
					ctx = ctxList
					pending = true
				case classTable:
					ctx = ctxTable
				default:
					ctx = ctxNone
				}
				continue
			}
		}

		p.add(t)
	}

	return p.String()
}

// listModifier reports whether t belongs on the list keyword's own
// line: DISTINCT, ALL, TOP, and TOP's row count.
func listModifier(p *printer, t token.Token) bool {
	if t.IsKeyword() {
		switch t.Norm {
		case "DISTINCT", "ALL", "TOP":
			return true
		}
		return false
	}
	if t.Kind == token.NUMBER {
		last, ok := p.last()
		return ok && last.IsKeyword() && last.Is("TOP")
	}
	return false
}
