package querymodel

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// Queries every server dialect accepts. Derived tables are always aliased
// for MySQL.
var serverQueries = []string{
	"SELECT x_, y_ FROM a ORDER BY x_",
	"SELECT * FROM (SELECT * FROM a) b ORDER BY x_",
	"SELECT b.*, y_ + 1 AS y FROM (SELECT *, x_ AS z FROM a a_alias) b ORDER BY x_",
	"SELECT s FROM (SELECT x_ + y_ AS s, x.* FROM (SELECT * FROM a) x) q ORDER BY s",
	"WITH c AS (SELECT x_ FROM a) SELECT x_ FROM c ORDER BY x_",
	"SELECT x_ FROM a WHERE x_ < 2 UNION ALL SELECT x_ FROM a WHERE x_ >= 2 ORDER BY 1",
	"SELECT a.x_, b2.y_ FROM a JOIN a b2 ON a.x_ = b2.x_ ORDER BY a.x_",
}

func seed(t *testing.T, db *sql.DB, create string) {
	t.Helper()

	_, err := db.Exec(create)
	require.NoError(t, err)

	_, err = db.Exec("INSERT INTO a (x_, y_) VALUES (1, 10), (2, 20), (3, 30)")
	require.NoError(t, err)
}

func requireDistinct(t *testing.T, values []any) {
	t.Helper()

	seen := map[string]bool{}
	for _, v := range values {
		key := fmt.Sprintf("%v", v)
		require.False(t, seen[key], "duplicate tracking value %s", key)
		seen[key] = true
	}
}

func TestRewriteKeepsResultsInPostgreSQL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := t.Context()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, container.Terminate(ctx))
	}()

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)

	defer db.Close()

	seed(t, db, "CREATE TABLE a (x_ INTEGER, y_ INTEGER)")

	item := SelectItem{Expr: "ctid", Alias: "__dd_rowid"}

	for _, query := range serverQueries {
		t.Run(query, func(t *testing.T) {
			requireDistinct(t, rewriteAndCompare(t, db, query, item))
		})
	}
}

func TestRewriteKeepsResultsInMySQL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := t.Context()

	container, err := mysql.Run(ctx,
		"mysql:8.4",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("testuser"),
		mysql.WithPassword("testpass"),
	)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, container.Terminate(ctx))
	}()

	// Double quotes delimit identifiers in rewritten SQL
	connStr, err := container.ConnectionString(ctx, "sql_mode=%27ANSI_QUOTES%27")
	require.NoError(t, err)

	db, err := sql.Open("mysql", connStr)
	require.NoError(t, err)

	defer db.Close()

	seed(t, db, "CREATE TABLE a (id INTEGER AUTO_INCREMENT PRIMARY KEY, x_ INTEGER, y_ INTEGER)")

	item := SelectItem{Expr: "id", Alias: "__dd_rowid"}

	for _, query := range serverQueries {
		t.Run(query, func(t *testing.T) {
			requireDistinct(t, rewriteAndCompare(t, db, query, item))
		})
	}
}
