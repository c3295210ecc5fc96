package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"

	"github.com/shibukawa/sqltrack"
	"github.com/shibukawa/sqltrack/querymodel"
	"github.com/shibukawa/sqltrack/testhelper"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	var cli CLI

	parser, err := kong.New(&cli, kong.Name("sqltrack"))
	assert.NoError(t, err)

	kctx, err := parser.Parse(args)
	if err != nil {
		return result{err: err}
	}

	var stdout, stderr bytes.Buffer

	ctx := newContext(&cli)
	ctx.Stdin = strings.NewReader(stdin)
	ctx.Stdout = &stdout
	ctx.Stderr = &stderr

	err = kctx.Run(ctx)

	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestClassifyCmd(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		stdin    string
		expected string
	}{
		{name: "select argument", args: []string{"classify", "SELECT 1"}, expected: "true\n"},
		{name: "insert from stdin", args: []string{"classify"}, stdin: "INSERT INTO t VALUES (1)", expected: "false\n"},
		{name: "with select", args: []string{"classify", "WITH c AS (SELECT 1) SELECT * FROM c"}, expected: "true\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := run(t, test.stdin, test.args...)
			assert.NoError(t, r.err)
			assert.Equal(t, test.expected, r.stdout)
		})
	}
}

func TestRewriteCmd(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		r := run(t, "", "rewrite", "SELECT x_ FROM a")
		assert.NoError(t, r.err)
		assert.Equal(t, "SELECT x_, rowid AS \"__dd_rowid\" FROM a\n", r.stdout)
	})

	t.Run("ExpressionAndAlias", func(t *testing.T) {
		r := run(t, "", "rewrite", "--expr", "oid", "--alias", "tracked", "SELECT x_ FROM a")
		assert.NoError(t, r.err)
		assert.Equal(t, "SELECT x_, oid AS \"tracked\" FROM a\n", r.stdout)
	})

	t.Run("AutoAlias", func(t *testing.T) {
		r := run(t, "", "rewrite", "--alias", "auto", "SELECT x_ FROM a")
		assert.NoError(t, r.err)
		assert.True(t, strings.HasPrefix(r.stdout, `SELECT x_, rowid AS "__dd_`))
		assert.NotContains(t, r.stdout, `"__dd_rowid"`)
	})

	t.Run("Pretty", func(t *testing.T) {
		r := run(t, "", "rewrite", "--pretty", "SELECT x_ FROM a")
		assert.NoError(t, r.err)
		assert.Equal(t, testhelper.TrimIndent(t, `
			SELECT
				x_,
				rowid AS "__dd_rowid"
			FROM a
			`), r.stdout)
	})

	t.Run("NotDataQueryPassesThrough", func(t *testing.T) {
		r := run(t, "", "rewrite", "DELETE FROM a")
		assert.NoError(t, r.err)
		assert.Equal(t, "DELETE FROM a\n", r.stdout)
		assert.Contains(t, r.stderr, "not a data query")
	})

	t.Run("NotDataQueryStrict", func(t *testing.T) {
		r := run(t, "", "rewrite", "--strict", "DELETE FROM a")
		assert.IsError(t, r.err, ErrNotDataQuery)
	})

	t.Run("QuietSuppressesWarning", func(t *testing.T) {
		r := run(t, "", "-q", "rewrite", "DELETE FROM a")
		assert.NoError(t, r.err)
		assert.Equal(t, "", r.stderr)
	})

	t.Run("FromFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "query.sql")
		assert.NoError(t, os.WriteFile(path, []byte("SELECT x_ FROM a"), 0o644))

		r := run(t, "", "rewrite", "--file", path)
		assert.NoError(t, r.err)
		assert.Equal(t, "SELECT x_, rowid AS \"__dd_rowid\" FROM a\n", r.stdout)
	})

	t.Run("MissingFile", func(t *testing.T) {
		r := run(t, "", "rewrite", "--file", filepath.Join(t.TempDir(), "missing.sql"))
		assert.IsError(t, r.err, ErrInputFileNotExist)
	})

	t.Run("EmptyInput", func(t *testing.T) {
		r := run(t, "  \n", "rewrite")
		assert.IsError(t, r.err, ErrEmptyInput)
	})

	t.Run("StructuralError", func(t *testing.T) {
		r := run(t, "", "rewrite", "VALUES (1), (2)")
		assert.IsError(t, r.err, querymodel.ErrStructural)
	})

	t.Run("ConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sqltrack.yaml")
		assert.NoError(t, os.WriteFile(path, []byte("dialect: postgres\ntracking:\n  alias: row_ref\n"), 0o644))

		r := run(t, "", "--config", path, "rewrite", "SELECT x_ FROM a")
		assert.NoError(t, r.err)
		assert.Equal(t, "SELECT x_, ctid AS \"row_ref\" FROM a\n", r.stdout)
	})

	t.Run("ExprSatisfiesDialectWithoutRowIdentity", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sqltrack.yaml")
		assert.NoError(t, os.WriteFile(path, []byte("dialect: mysql\n"), 0o644))

		r := run(t, "", "--config", path, "rewrite", "--expr", "id", "SELECT x_ FROM a")
		assert.NoError(t, r.err)
		assert.Equal(t, "SELECT x_, id AS \"__dd_rowid\" FROM a\n", r.stdout)

		r = run(t, "", "--config", path, "rewrite", "SELECT x_ FROM a")
		assert.Error(t, r.err)
		assert.True(t, errors.Is(r.err, sqltrack.ErrNoRowIdentity))
	})
}

func TestInspectCmd(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		r := run(t, "", "inspect", "--format", "json", "SELECT u.id FROM users u")
		assert.NoError(t, r.err)
		assert.Contains(t, r.stdout, `"statement":"select"`)
		assert.Contains(t, r.stdout, `"data_query":true`)
		assert.Contains(t, r.stdout, `"name":"users"`)
	})

	t.Run("CSV", func(t *testing.T) {
		r := run(t, "", "inspect", "--format", "csv", "SELECT u.id FROM users u")
		assert.NoError(t, r.err)
		assert.Equal(t, "name,alias,schema,source,joinType,node\nusers,u,,main,none,1\n", r.stdout)
	})

	t.Run("CSVWithoutHeader", func(t *testing.T) {
		r := run(t, "", "inspect", "--format", "csv", "--no-header", "SELECT u.id FROM users u")
		assert.NoError(t, r.err)
		assert.Equal(t, "users,u,,main,none,1\n", r.stdout)
	})

	t.Run("Track", func(t *testing.T) {
		r := run(t, "", "inspect", "--track", "SELECT x_ FROM a")
		assert.NoError(t, r.err)
		assert.Contains(t, r.stdout, `"added":true`)
	})

	t.Run("StrictNonData", func(t *testing.T) {
		r := run(t, "", "inspect", "--strict", "UPDATE a SET x_ = 1")
		assert.Error(t, r.err)
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		r := run(t, "", "inspect", "--format", "xml", "SELECT 1")
		assert.IsError(t, r.err, ErrUnknownFormat)
	})
}

func TestDumpCmd(t *testing.T) {
	t.Run("Tree", func(t *testing.T) {
		r := run(t, "", "dump", "SELECT x_ FROM a")
		assert.NoError(t, r.err)
		assert.Contains(t, r.stdout, "SELECT \"SELECT\"")
		assert.Contains(t, r.stdout, "\"x_\"")
	})

	t.Run("Tokens", func(t *testing.T) {
		r := run(t, "", "dump", "--tokens", "SELECT x_")
		assert.NoError(t, r.err)
		assert.Contains(t, r.stdout, "1:1\tSELECT\t\"SELECT\"\n")
		assert.NotContains(t, r.stdout, "WHITESPACE")
	})

	t.Run("UnsupportedStatement", func(t *testing.T) {
		r := run(t, "", "dump", "INSERT INTO a VALUES (1)")
		assert.Error(t, r.err)
	})
}

func TestFormatCmd(t *testing.T) {
	t.Run("Stdin", func(t *testing.T) {
		r := run(t, "select x_,y_ from a", "format")
		assert.NoError(t, r.err)
		assert.Equal(t, testhelper.TrimIndent(t, `
			SELECT
				x_,
				y_
			FROM a
			`), r.stdout)
	})

	t.Run("Compact", func(t *testing.T) {
		r := run(t, "SELECT x_\n  FROM a", "format", "--compact")
		assert.NoError(t, r.err)
		assert.Equal(t, "SELECT x_ FROM a\n", r.stdout)
	})

	t.Run("WriteAndCheckDirectory", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "q.sql")
		assert.NoError(t, os.WriteFile(path, []byte("select * from a"), 0o644))
		assert.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("select"), 0o644))

		r := run(t, "", "format", "-c", dir)
		assert.IsError(t, r.err, ErrFormattingErrors)

		r = run(t, "", "format", "-w", dir)
		assert.NoError(t, r.err)

		data, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.Equal(t, "SELECT *\nFROM a\n", string(data))

		r = run(t, "", "format", "-c", dir)
		assert.NoError(t, r.err)

		notes, err := os.ReadFile(filepath.Join(dir, "notes.txt"))
		assert.NoError(t, err)
		assert.Equal(t, "select", string(notes))
	})

	t.Run("Diff", func(t *testing.T) {
		r := run(t, "select * from a", "format", "-d")
		assert.NoError(t, r.err)
		assert.Contains(t, r.stdout, "-select * from a\n")
		assert.Contains(t, r.stdout, "+SELECT *\n")
		assert.Contains(t, r.stdout, "+FROM a\n")
	})
}

func TestVersionCmd(t *testing.T) {
	r := run(t, "", "version")
	assert.NoError(t, r.err)
	assert.Equal(t, "sqltrack v0.1.0\n", r.stdout)
}
