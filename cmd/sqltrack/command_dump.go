package main

import (
	"fmt"

	"github.com/shibukawa/sqltrack/parser"
	"github.com/shibukawa/sqltrack/sqltree"
)

// DumpCmd represents the dump command
type DumpCmd struct {
	InputFlags `embed:""`

	Tokens bool `help:"Print the token stream instead of the tree"`
}

// Run executes the dump command
func (cmd *DumpCmd) Run(ctx *Context) error {
	sql, err := cmd.read(ctx)
	if err != nil {
		return err
	}

	h := parser.Parse(sql)

	if cmd.Tokens {
		tokens, err := h.Tokens()
		if err != nil {
			return err
		}

		for _, t := range tokens {
			if t.Type.IsTrivia() && !ctx.Verbose {
				continue
			}
			fmt.Fprintf(ctx.Stdout, "%d:%d\t%s\t%q\n", t.Position.Line, t.Position.Column, t.Type, t.Value)
		}

		return nil
	}

	tree, err := h.Tree()
	if err != nil {
		return err
	}

	fmt.Fprint(ctx.Stdout, sqltree.Debug(tree))

	return nil
}
