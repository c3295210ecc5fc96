package sqltrack

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/shibukawa/sqltrack/querymodel"
)

// DefaultAlias is the output name of the tracking column.
const DefaultAlias = "__dd_rowid"

// AutoAlias in tracking.alias asks for a generated, collision-free alias.
const AutoAlias = "auto"

// Config represents the sqltrack configuration
type Config struct {
	Dialect  Dialect        `yaml:"dialect"`
	Tracking TrackingConfig `yaml:"tracking"`
	Output   OutputConfig   `yaml:"output"`
	Inspect  InspectConfig  `yaml:"inspect"`
}

// TrackingConfig describes the column added to every data query.
type TrackingConfig struct {
	// Expression is selected at the innermost SELECT reading a table. Empty
	// means the dialect's row identity.
	Expression string `yaml:"expression"`
	Alias      string `yaml:"alias"`
}

// OutputConfig represents console output settings
type OutputConfig struct {
	Pretty bool  `yaml:"pretty"`
	Color  *bool `yaml:"color"` // Pointer to distinguish between unset and false. If nil, color is on
}

// ColorEnabled returns true unless color: false is set
func (o *OutputConfig) ColorEnabled() bool {
	return o.Color == nil || *o.Color
}

// InspectConfig represents defaults of the inspect command
type InspectConfig struct {
	Format string `yaml:"format"`
	Strict bool   `yaml:"strict"`
}

// TrackingItem returns the select item the configuration asks for.
func (c *Config) TrackingItem() querymodel.SelectItem {
	return querymodel.SelectItem{Expr: c.Tracking.Expression, Alias: c.Tracking.Alias}
}

// ConfigOption overrides a loaded setting before the configuration is
// validated, typically with a command-line flag.
type ConfigOption func(*Config)

// WithTrackingExpression overrides tracking.expression when expr is not
// empty.
func WithTrackingExpression(expr string) ConfigOption {
	return func(c *Config) {
		if expr != "" {
			c.Tracking.Expression = expr
		}
	}
}

// WithTrackingAlias overrides tracking.alias when alias is not empty.
func WithTrackingAlias(alias string) ConfigOption {
	return func(c *Config) {
		if alias != "" {
			c.Tracking.Alias = alias
		}
	}
}

// LoadConfig loads configuration from file. A missing file yields the
// defaults. Options are applied before validation.
func LoadConfig(configPath string, opts ...ConfigOption) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	// Check if config file exists
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		config := &Config{}
		applyOptions(config, opts)
		applyDefaults(config)

		return config, nil
	}

	return loadConfigFile(configPath, opts)
}

// LoadConfigStrict is LoadConfig for a path the user named explicitly: a
// missing file is an error.
func LoadConfigStrict(configPath string, opts ...ConfigOption) (*Config, error) {
	if !fileExists(configPath) {
		return nil, fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
	}

	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	return loadConfigFile(configPath, opts)
}

func loadConfigFile(configPath string, opts []ConfigOption) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	expandConfigEnvVars(&config)
	applyOptions(&config, opts)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	applyDefaults(&config)

	return &config, nil
}

func validateConfig(config *Config) error {
	if config.Dialect != "" && !config.Dialect.Valid() {
		return fmt.Errorf("%w: invalid dialect '%s': must be one of sqlite, duckdb, postgres, mysql", ErrConfigValidation, config.Dialect)
	}

	if config.Tracking.Expression == "" {
		dialect := config.Dialect
		if dialect == "" {
			dialect = DialectSQLite
		}

		if _, ok := dialect.DefaultRowIdentity(); !ok {
			return fmt.Errorf("%w: %s: %w", ErrConfigValidation, dialect, ErrNoRowIdentity)
		}
	}

	if config.Inspect.Format != "" {
		validFormats := map[string]bool{
			"json": true,
			"csv":  true,
		}
		if !validFormats[config.Inspect.Format] {
			return fmt.Errorf("%w: inspect.format '%s' is invalid: must be one of json, csv", ErrConfigValidation, config.Inspect.Format)
		}
	}

	return nil
}

func applyOptions(config *Config, opts []ConfigOption) {
	for _, opt := range opts {
		opt(config)
	}
}

func applyDefaults(config *Config) {
	if config.Dialect == "" {
		config.Dialect = DialectSQLite
	}

	if config.Tracking.Expression == "" {
		config.Tracking.Expression, _ = config.Dialect.DefaultRowIdentity()
	}

	switch config.Tracking.Alias {
	case "":
		config.Tracking.Alias = DefaultAlias
	case AutoAlias:
		config.Tracking.Alias = GenerateAlias()
	}

	if config.Inspect.Format == "" {
		config.Inspect.Format = "json"
	}
}

// GenerateAlias returns __dd_ followed by a random UUID without dashes.
func GenerateAlias() string {
	return "__dd_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	// Try to load .env file from current directory
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareEnvVar   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	return bareEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

// expandConfigEnvVars expands environment variables in configuration
func expandConfigEnvVars(config *Config) {
	config.Dialect = Dialect(expandEnvVars(string(config.Dialect)))
	config.Tracking.Expression = expandEnvVars(config.Tracking.Expression)
	config.Tracking.Alias = expandEnvVars(config.Tracking.Alias)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
