// Package dialect provides per-dialect lexing options for SQL analysis.
//
// A Syntax describes which characters may prefix identifiers and
// parameters beyond letters and underscore (SQL Server's `@var` and
// `#temp`, Oracle's `:bind`, and so on), plus the designated prefix
// for auto-generated parameters. Built-in presets for the common
// database families are registered at load time; callers may register
// their own.
package dialect

// Syntax holds the identifier-prefix configuration for one dialect.
// Values are immutable after construction; presets are shared and safe
// for concurrent use.
type Syntax struct {
	name      string
	prefixes  [256]bool
	autoParam byte
}

// New builds a Syntax. autoParam is the prefix used when generating
// parameter names and is always part of the prefix set; extra lists
// any additional prefix characters the dialect accepts.
func New(name string, autoParam byte, extra ...byte) *Syntax {
	s := &Syntax{name: name, autoParam: autoParam}
	s.prefixes[autoParam] = true
	for _, ch := range extra {
		s.prefixes[ch] = true
	}
	return s
}

// Name returns the registry name of the dialect.
func (s *Syntax) Name() string {
	return s.name
}

// IsPrefix reports whether ch may start (and continue) an identifier
// run in this dialect.
func (s *Syntax) IsPrefix(ch byte) bool {
	return s.prefixes[ch]
}

// AutoParam returns the prefix character for auto-generated
// parameters.
func (s *Syntax) AutoParam() byte {
	return s.autoParam
}

// Prefixes returns the prefix characters in byte order.
func (s *Syntax) Prefixes() []byte {
	var out []byte
	for ch := 0; ch < len(s.prefixes); ch++ {
		if s.prefixes[ch] {
			out = append(out, byte(ch))
		}
	}
	return out
}
