package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets(t *testing.T) {
	tests := []struct {
		name      string
		syntax    *Syntax
		prefixes  string
		autoParam byte
	}{
		{"sqlserver", SQLServer, "#$@", '@'},
		{"oracle", Oracle, ":", ':'},
		{"mysql", MySQL, "@", '@'},
		{"sqlite", SQLite, "$:?@", '@'},
		{"postgres", Postgres, "$", '$'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.syntax.Name())
			assert.Equal(t, tt.prefixes, string(tt.syntax.Prefixes()))
			assert.Equal(t, tt.autoParam, tt.syntax.AutoParam())
			assert.True(t, tt.syntax.IsPrefix(tt.autoParam))
			assert.False(t, tt.syntax.IsPrefix('x'))
		})
	}
}

func TestRegistryGet(t *testing.T) {
	s, ok := Get("sqlserver")
	require.True(t, ok)
	assert.Equal(t, SQLServer, s)

	s, ok = Get("POSTGRES")
	require.True(t, ok)
	assert.Equal(t, Postgres, s)

	_, ok = Get("no-such-dialect")
	assert.False(t, ok)
}

func TestRegistryAliases(t *testing.T) {
	tests := []struct {
		alias string
		want  *Syntax
	}{
		{"mssql", SQLServer},
		{"tsql", SQLServer},
		{"mariadb", MySQL},
		{"sqlite3", SQLite},
		{"postgresql", Postgres},
		{"pg", Postgres},
	}

	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			s, ok := Get(tt.alias)
			require.True(t, ok)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestRegisterCustom(t *testing.T) {
	custom := New("custom", '%', '&')
	Register(custom)

	s, ok := Get("custom")
	require.True(t, ok)
	assert.True(t, s.IsPrefix('%'))
	assert.True(t, s.IsPrefix('&'))
	assert.Equal(t, byte('%'), s.AutoParam())
	assert.Contains(t, List(), "custom")
}

func TestListSorted(t *testing.T) {
	names := List()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i])
	}
}
