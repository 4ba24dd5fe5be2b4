package format

import (
	"bytes"
	"strings"

	"github.com/seamsql/seamsql/pkg/token"
)

// printer accumulates output lines. Tokens collect into a pending line
// and are joined with the canonical spacing rule when the line
// flushes.
type printer struct {
	indentSize int
	output     *bytes.Buffer
	line       []token.Token
	depth      int
	comma      bool // pending line leads with a comma; indent one column short
}

func newPrinter(indentSize int) *printer {
	return &printer{
		indentSize: indentSize,
		output:     &bytes.Buffer{},
	}
}

// String returns the formatted output ending with a single newline.
func (p *printer) String() string {
	p.flush()
	return strings.TrimRight(p.output.String(), "\n") + "\n"
}

func (p *printer) add(t token.Token) {
	p.line = append(p.line, t)
}

// last returns the final token of the pending line, if any.
func (p *printer) last() (token.Token, bool) {
	if len(p.line) == 0 {
		return token.Token{}, false
	}
	return p.line[len(p.line)-1], true
}

func (p *printer) flush() {
	if len(p.line) == 0 {
		return
	}
	pad := p.depth * p.indentSize
	if p.comma {
		pad--
	}
	for i := 0; i < pad; i++ {
		p.output.WriteByte(' ')
	}
	p.output.WriteString(token.Join(p.line))
	p.output.WriteByte('\n')
	p.line = p.line[:0]
}

// breakTo ends the pending line and starts the next one at depth.
func (p *printer) breakTo(depth int) {
	p.flush()
	p.depth = depth
	p.comma = false
}

// breakComma ends the pending line and starts a comma-led continuation
// line whose comma sits one column before the item indent.
func (p *printer) breakComma(depth int) {
	p.flush()
	p.depth = depth
	p.comma = true
}
