package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// InputFlags selects where the SQL text comes from: --file, the positional
// argument, or stdin.
type InputFlags struct {
	File string `short:"f" help:"Read SQL from file" type:"path"`
	SQL  string `arg:"" optional:"" help:"SQL text (default: stdin)"`
}

func (in *InputFlags) read(ctx *Context) (string, error) {
	var (
		data []byte
		err  error
	)

	switch {
	case in.File != "":
		data, err = os.ReadFile(in.File)
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrInputFileNotExist, in.File)
		}
	case in.SQL != "":
		data = []byte(in.SQL)
	default:
		data, err = io.ReadAll(ctx.Stdin)
	}

	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return "", ErrEmptyInput
	}

	return string(data), nil
}
