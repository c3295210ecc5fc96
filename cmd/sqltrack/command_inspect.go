package main

import (
	"fmt"

	"github.com/shibukawa/sqltrack/inspect"
	"github.com/shibukawa/sqltrack/querymodel"
)

// InspectCmd represents the inspect command
type InspectCmd struct {
	InputFlags `embed:""`

	Format string `help:"Output format (json|csv, default: inspect.format from config)"`
	Strict bool   `help:"Fail instead of emitting notes"`
	Pretty bool   `help:"Pretty-print JSON"`
	Header bool   `help:"Write a header row in CSV output" default:"true" negatable:""`
	Track  bool   `help:"Describe the query after the tracking column is added"`
}

// Run executes the inspect command
func (cmd *InspectCmd) Run(ctx *Context) error {
	sql, err := cmd.read(ctx)
	if err != nil {
		return err
	}

	config, err := ctx.loadConfig()
	if err != nil {
		return err
	}

	format := cmd.Format
	if format == "" {
		format = config.Inspect.Format
	}

	opt := inspect.InspectOptions{
		Strict: cmd.Strict || config.Inspect.Strict,
		Pretty: cmd.Pretty || config.Output.Pretty,
	}

	res, err := inspect.InspectSQL(sql, opt)
	if err != nil {
		return err
	}

	if cmd.Track && res.DataQuery && len(res.Nodes) > 0 {
		err = describeTracked(sql, config.TrackingItem(), &res)
		if err != nil {
			if opt.Strict {
				return err
			}
			res.Notes = append(res.Notes, "not tracked: "+err.Error())
		}
	}

	var out []byte

	switch format {
	case "json":
		out, err = inspect.MarshalResult(res, opt.Pretty)
		out = append(out, '\n')
	case "csv":
		out, err = inspect.TablesCSV(res, cmd.Header)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	if err != nil {
		return err
	}

	_, err = ctx.Stdout.Write(out)

	return err
}

func describeTracked(sql string, item querymodel.SelectItem, res *inspect.InspectResult) error {
	m, err := querymodel.FromSQL(sql)
	if err != nil {
		return err
	}

	if err := m.AddSelectItem(item); err != nil {
		return err
	}

	inspect.Describe(m, res)

	return nil
}
