package sqltrack

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "sqltrack.yaml")
	assert.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	return configPath
}

func TestLoadConfig_DefaultValues(t *testing.T) {
	// Test loading config with non-existent file (should return defaults)
	config, err := LoadConfig("non-existent-file.yaml")
	assert.NoError(t, err)
	assert.True(t, config != nil)

	assert.Equal(t, DialectSQLite, config.Dialect)
	assert.Equal(t, "rowid", config.Tracking.Expression)
	assert.Equal(t, DefaultAlias, config.Tracking.Alias)
	assert.Equal(t, "json", config.Inspect.Format)
	assert.True(t, config.Output.ColorEnabled())
	assert.False(t, config.Output.Pretty)
}

func TestLoadConfigStrict_Missing(t *testing.T) {
	_, err := LoadConfigStrict(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, ErrConfigFileNotFound))
}

func TestLoadConfig_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
dialect: postgres
tracking:
  alias: row_ref
output:
  pretty: true
  color: false
inspect:
  format: csv
  strict: true
`)

	config, err := LoadConfig(configPath)
	assert.NoError(t, err)
	assert.Equal(t, DialectPostgres, config.Dialect)
	assert.Equal(t, "ctid", config.Tracking.Expression)
	assert.Equal(t, "row_ref", config.Tracking.Alias)
	assert.True(t, config.Output.Pretty)
	assert.False(t, config.Output.ColorEnabled())
	assert.Equal(t, "csv", config.Inspect.Format)
	assert.True(t, config.Inspect.Strict)
}

func TestLoadConfig_StrictMode_UnknownKeys(t *testing.T) {
	configPath := writeConfig(t, `
dialect: sqlite
tracking:
  alias: x
  unknown_tracking_key: "should cause error"
`)

	_, err := LoadConfig(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{
			name:    "invalid dialect",
			content: "dialect: oracle\n",
			target:  ErrConfigValidation,
		},
		{
			name:    "mysql without expression",
			content: "dialect: mysql\n",
			target:  ErrNoRowIdentity,
		},
		{
			name:    "invalid inspect format",
			content: "inspect:\n  format: xml\n",
			target:  ErrConfigValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
			assert.True(t, errors.Is(err, tt.target))
			assert.True(t, errors.Is(err, ErrConfigValidation))
		})
	}
}

func TestLoadConfig_MySQLWithExpression(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "dialect: mysql\ntracking:\n  expression: id\n"))
	assert.NoError(t, err)
	assert.Equal(t, "id", config.Tracking.Expression)
}

func TestLoadConfig_ExpressionOverride(t *testing.T) {
	path := writeConfig(t, "dialect: mysql\ntracking:\n  alias: from_file\n")

	config, err := LoadConfig(path, WithTrackingExpression("id"), WithTrackingAlias(""))
	assert.NoError(t, err)
	assert.Equal(t, "id", config.Tracking.Expression)
	assert.Equal(t, "from_file", config.Tracking.Alias)

	_, err = LoadConfig(path, WithTrackingExpression(""))
	assert.True(t, errors.Is(err, ErrNoRowIdentity))

	config, err = LoadConfig("non-existent-file.yaml", WithTrackingExpression("oid"), WithTrackingAlias("ref"))
	assert.NoError(t, err)
	assert.Equal(t, "oid", config.Tracking.Expression)
	assert.Equal(t, "ref", config.Tracking.Alias)
}

func TestLoadConfig_AutoAlias(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "tracking:\n  alias: auto\n"))
	assert.NoError(t, err)
	assert.True(t, regexp.MustCompile(`^__dd_[0-9a-f]{32}$`).MatchString(config.Tracking.Alias), config.Tracking.Alias)

	other, err := LoadConfig(writeConfig(t, "tracking:\n  alias: auto\n"))
	assert.NoError(t, err)
	assert.NotEqual(t, config.Tracking.Alias, other.Tracking.Alias)
}

func TestLoadConfig_EnvExpansion(t *testing.T) {
	t.Setenv("SQLTRACK_TEST_EXPR", "oid")
	t.Setenv("SQLTRACK_TEST_ALIAS", "ref")

	config, err := LoadConfig(writeConfig(t, "tracking:\n  expression: ${SQLTRACK_TEST_EXPR}\n  alias: $SQLTRACK_TEST_ALIAS\n"))
	assert.NoError(t, err)
	assert.Equal(t, "oid", config.Tracking.Expression)
	assert.Equal(t, "ref", config.Tracking.Alias)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SQLTRACK_DOTENV_ALIAS=from_dotenv\n"), 0644))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "sqltrack.yaml"), []byte("tracking:\n  alias: ${SQLTRACK_DOTENV_ALIAS}\n"), 0644))
	t.Chdir(dir)
	t.Cleanup(func() { _ = os.Unsetenv("SQLTRACK_DOTENV_ALIAS") })

	config, err := LoadConfig("sqltrack.yaml")
	assert.NoError(t, err)
	assert.Equal(t, "from_dotenv", config.Tracking.Alias)
}

func TestDialect_DefaultRowIdentity(t *testing.T) {
	tests := []struct {
		dialect  Dialect
		expected string
		ok       bool
	}{
		{DialectSQLite, "rowid", true},
		{DialectDuckDB, "rowid", true},
		{DialectPostgres, "ctid", true},
		{DialectMySQL, "", false},
		{Dialect("oracle"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			expr, ok := tt.dialect.DefaultRowIdentity()
			assert.Equal(t, tt.expected, expr)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.ok, tt.dialect.Valid() && tt.dialect != DialectMySQL)
		})
	}
}
