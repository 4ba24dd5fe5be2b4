package dialect

import (
	"sort"
	"strings"
	"sync"
)

// Syntax registry
var (
	syntaxesMu sync.RWMutex
	syntaxes   = make(map[string]*Syntax)
)

// aliases maps alternate spellings to registry names.
var aliases = map[string]string{
	"mssql":      "sqlserver",
	"tsql":       "sqlserver",
	"mariadb":    "mysql",
	"sqlite3":    "sqlite",
	"postgresql": "postgres",
	"pg":         "postgres",
}

// Get returns a registered syntax by name or alias.
func Get(name string) (*Syntax, bool) {
	key := strings.ToLower(name)
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	syntaxesMu.RLock()
	defer syntaxesMu.RUnlock()
	s, ok := syntaxes[key]
	return s, ok
}

// Register adds a syntax to the global registry under its name.
// Later registrations with the same name replace earlier ones.
func Register(s *Syntax) {
	syntaxesMu.Lock()
	defer syntaxesMu.Unlock()
	syntaxes[strings.ToLower(s.Name())] = s
}

// List returns all registered syntax names (sorted).
func List() []string {
	syntaxesMu.RLock()
	defer syntaxesMu.RUnlock()
	names := make([]string, 0, len(syntaxes))
	for name := range syntaxes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
