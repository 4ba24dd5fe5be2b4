package dialect

// Built-in syntax presets. Registered automatically when the package
// is loaded.
var (
	// SQLServer accepts @variables, #temp tables, and $identifiers;
	// auto parameters use @.
	SQLServer = New("sqlserver", '@', '#', '$')

	// Oracle accepts :bind variables; auto parameters use :.
	Oracle = New("oracle", ':')

	// MySQL accepts @user variables; auto parameters use @.
	MySQL = New("mysql", '@')

	// SQLite accepts all of its parameter markers (@, :, $, ?); auto
	// parameters use @.
	SQLite = New("sqlite", '@', ':', '$', '?')

	// Postgres accepts $n parameters; auto parameters use $.
	Postgres = New("postgres", '$')
)

// Default is the preset assumed when no dialect is specified.
var Default = SQLServer

func init() {
	Register(SQLServer)
	Register(Oracle)
	Register(MySQL)
	Register(SQLite)
	Register(Postgres)
}
