package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/shibukawa/sqltrack"
)

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// loadConfig loads the configuration named by --config, with flag
// overrides applied before validation.
func (ctx *Context) loadConfig(opts ...sqltrack.ConfigOption) (*sqltrack.Config, error) {
	config, err := sqltrack.LoadConfig(ctx.Config, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if !config.Output.ColorEnabled() {
		color.NoColor = true
	}

	if ctx.Verbose {
		ctx.note("Dialect: %s, tracking %s AS %s", config.Dialect, config.Tracking.Expression, config.Tracking.Alias)
	}

	return config, nil
}

func (ctx *Context) note(format string, args ...any) {
	if !ctx.Quiet {
		color.New(color.FgBlue).Fprintf(ctx.Stderr, format+"\n", args...)
	}
}

func (ctx *Context) warn(format string, args ...any) {
	if !ctx.Quiet {
		color.New(color.FgYellow).Fprintf(ctx.Stderr, format+"\n", args...)
	}
}

func (ctx *Context) success(format string, args ...any) {
	if !ctx.Quiet {
		color.New(color.FgGreen).Fprintf(ctx.Stderr, format+"\n", args...)
	}
}

// CLI represents the command-line interface
type CLI struct {
	Config   string      `help:"Configuration file path" default:"sqltrack.yaml"`
	Verbose  bool        `help:"Enable verbose output" short:"v"`
	Quiet    bool        `help:"Suppress output" short:"q"`
	Classify ClassifyCmd `cmd:"" help:"Report whether a statement returns rows"`
	Rewrite  RewriteCmd  `cmd:"" help:"Add the tracking column to a query"`
	Inspect  InspectCmd  `cmd:"" help:"Summarise the query structure as JSON or CSV"`
	Dump     DumpCmd     `cmd:"" help:"Print the syntax tree of a statement"`
	Format   FormatCmd   `cmd:"" help:"Format SQL files"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintln(ctx.Stdout, "sqltrack v0.1.0")
	return nil
}

func newContext(cli *CLI) *Context {
	return &Context{
		Config:  cli.Config,
		Verbose: cli.Verbose,
		Quiet:   cli.Quiet,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

func main() {
	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("sqltrack"),
		kong.Description("Add a row-tracking column to SQL data queries."),
		kong.UsageOnError(),
	)

	err := ctx.Run(newContext(&cli))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
