package main

import (
	"fmt"

	"github.com/shibukawa/sqltrack/classify"
)

// ClassifyCmd represents the classify command
type ClassifyCmd struct {
	InputFlags `embed:""`
}

// Run prints true for statements that return rows, false otherwise.
func (cmd *ClassifyCmd) Run(ctx *Context) error {
	sql, err := cmd.read(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.Stdout, classify.IsDataQuerySQL(sql))

	return nil
}
