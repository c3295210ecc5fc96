package sqltrack

// Dialect represents supported database dialects
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectDuckDB   Dialect = "duckdb"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// Valid reports whether d is one of the known dialects.
func (d Dialect) Valid() bool {
	switch d {
	case DialectSQLite, DialectDuckDB, DialectPostgres, DialectMySQL:
		return true
	}
	return false
}

// DefaultRowIdentity returns the expression that identifies a physical row
// of a base table. MySQL has none.
func (d Dialect) DefaultRowIdentity() (string, bool) {
	switch d {
	case DialectSQLite, DialectDuckDB:
		return "rowid", true
	case DialectPostgres:
		return "ctid", true
	}
	return "", false
}
