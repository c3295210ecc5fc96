package sqltrack

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/sqltrack/parser"
	"github.com/shibukawa/sqltrack/querymodel"
)

func TestRewrite(t *testing.T) {
	config, err := LoadConfig("non-existent-file.yaml")
	assert.NoError(t, err)

	result, rewritten, err := RewriteWithConfig("SELECT * FROM (SELECT a FROM t) x", config)
	assert.NoError(t, err)
	assert.True(t, rewritten)
	assert.Equal(t, `SELECT * FROM (SELECT a, rowid AS "__dd_rowid" FROM t) x`, result)
}

func TestRewrite_NotDataQuery(t *testing.T) {
	sql := "UPDATE t SET a = 1"
	result, rewritten, err := Rewrite(sql, querymodel.SelectItem{Expr: "rowid", Alias: DefaultAlias})
	assert.NoError(t, err)
	assert.False(t, rewritten)
	assert.Equal(t, sql, result)
}

func TestRewrite_Errors(t *testing.T) {
	item := querymodel.SelectItem{Expr: "rowid", Alias: DefaultAlias}

	_, _, err := Rewrite("SELECT (1", item)
	assert.True(t, errors.Is(err, parser.ErrSyntax))

	_, _, err = Rewrite("VALUES (1)", item)
	assert.True(t, errors.Is(err, querymodel.ErrStructural))
}
