package main

import (
	"fmt"

	"github.com/shibukawa/sqltrack"
	"github.com/shibukawa/sqltrack/formatter"
)

// RewriteCmd represents the rewrite command
type RewriteCmd struct {
	InputFlags `embed:""`

	Expr    string `help:"Expression to track (default: the dialect's row identity)"`
	Alias   string `help:"Output name of the tracking column (\"auto\" generates one)"`
	Pretty  bool   `help:"Pretty-print the result"`
	Compact bool   `help:"Print the result on one line"`
	Strict  bool   `help:"Fail on statements that are not data queries"`
}

// Run executes the rewrite command
func (cmd *RewriteCmd) Run(ctx *Context) error {
	sql, err := cmd.read(ctx)
	if err != nil {
		return err
	}

	config, err := ctx.loadConfig(
		sqltrack.WithTrackingExpression(cmd.Expr),
		sqltrack.WithTrackingAlias(cmd.Alias),
	)
	if err != nil {
		return err
	}

	item := config.TrackingItem()

	result, rewritten, err := sqltrack.Rewrite(sql, item)
	if err != nil {
		return err
	}

	if !rewritten {
		if cmd.Strict {
			return ErrNotDataQuery
		}
		ctx.warn("not a data query, emitted unchanged")
	}

	switch {
	case cmd.Pretty || (config.Output.Pretty && !cmd.Compact):
		result, err = formatter.NewSQLFormatter().Format(result)
	case cmd.Compact:
		result, err = formatter.Compact(result)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.Stdout, result)

	if rewritten && ctx.Verbose {
		ctx.success("Added %s AS %s", item.Expr, item.Alias)
	}

	return nil
}
