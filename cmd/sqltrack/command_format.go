package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shibukawa/sqltrack/formatter"
)

// FormatCmd represents the format command
type FormatCmd struct {
	Input   string `arg:"" optional:"" help:"Input file or directory (default: stdin)"`
	Output  string `short:"o" help:"Output file (default: stdout, or overwrite input file)"`
	Write   bool   `short:"w" help:"Write result to input file instead of stdout"`
	Check   bool   `short:"c" help:"Check if files are formatted (exit 1 if not)"`
	Diff    bool   `short:"d" help:"Show diff instead of rewriting files"`
	Compact bool   `help:"Collapse each statement onto one line"`
}

// Run executes the format command
func (cmd *FormatCmd) Run(ctx *Context) error {
	if cmd.Input == "" {
		return cmd.formatFromReader(ctx, ctx.Stdin, ctx.Stdout, "<stdin>")
	}

	info, err := os.Stat(cmd.Input)
	if err != nil {
		return fmt.Errorf("failed to stat input: %w", err)
	}

	if info.IsDir() {
		return cmd.formatDirectory(ctx, cmd.Input)
	}

	return cmd.formatFile(ctx, cmd.Input)
}

func (cmd *FormatCmd) format(sql string) (string, error) {
	if cmd.Compact {
		return formatter.Compact(sql)
	}

	return formatter.NewSQLFormatter().Format(sql)
}

// formatFromReader formats SQL from a reader and writes to a writer
func (cmd *FormatCmd) formatFromReader(ctx *Context, reader io.Reader, writer io.Writer, filename string) error {
	input, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	formatted, err := cmd.format(string(input))
	if err != nil {
		return fmt.Errorf("failed to format SQL in %s: %w", filename, err)
	}

	if cmd.Check {
		if strings.TrimSpace(string(input)) != formatted {
			ctx.warn("%s is not formatted", filename)
			return ErrFileNotFormatted
		}

		return nil
	}

	if cmd.Diff {
		showDiff(ctx.Stdout, string(input), formatted, filename)
		return nil
	}

	_, err = io.WriteString(writer, formatted+"\n")

	return err
}

// formatFile formats a single file
func (cmd *FormatCmd) formatFile(ctx *Context, filename string) error {
	input, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	if cmd.Check || cmd.Diff || (!cmd.Write && cmd.Output == "") {
		return cmd.formatFromReader(ctx, strings.NewReader(string(input)), ctx.Stdout, filename)
	}

	target := cmd.Output
	if cmd.Write {
		target = filename
	}

	var sb strings.Builder

	err = cmd.formatFromReader(ctx, strings.NewReader(string(input)), &sb, filename)
	if err != nil {
		return err
	}

	// Write to a temporary file first so a failure never truncates the target
	tempFile, err := os.CreateTemp(filepath.Dir(target), ".sqltrack-format-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	_, err = tempFile.WriteString(sb.String())
	if closeErr := tempFile.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		os.Remove(tempFile.Name())
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	return os.Rename(tempFile.Name(), target)
}

// formatDirectory formats all .sql files in a directory recursively
func (cmd *FormatCmd) formatDirectory(ctx *Context, dirPath string) error {
	var hasErrors bool

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !isSQLFile(path) {
			return nil
		}

		err = cmd.formatFile(ctx, path)
		if err != nil {
			ctx.warn("Error formatting %s: %v", path, err)

			hasErrors = true

			return nil
		}

		if cmd.Write {
			ctx.success("Formatted: %s", path)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}

	if hasErrors {
		return ErrFormattingErrors
	}

	return nil
}

func isSQLFile(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ".sql"
}

// showDiff shows the difference between original and formatted content
func showDiff(w io.Writer, original, formatted, filename string) {
	if strings.TrimSpace(original) == formatted {
		return
	}

	fmt.Fprintf(w, "--- %s (original)\n", filename)
	fmt.Fprintf(w, "+++ %s (formatted)\n", filename)

	originalLines := strings.Split(strings.TrimSpace(original), "\n")
	formattedLines := strings.Split(formatted, "\n")

	maxLines := max(len(originalLines), len(formattedLines))

	for i := range maxLines {
		var origLine, formLine string

		if i < len(originalLines) {
			origLine = originalLines[i]
		}

		if i < len(formattedLines) {
			formLine = formattedLines[i]
		}

		if origLine != formLine {
			if origLine != "" {
				fmt.Fprintf(w, "-%s\n", origLine)
			}

			if formLine != "" {
				fmt.Fprintf(w, "+%s\n", formLine)
			}
		}
	}
}

// Help returns help text for the format command
func (cmd *FormatCmd) Help() string {
	return `Format SQL files with 4-space indentation, one clause per line and
upper-case keywords. Literals, quoted identifiers and comments are kept as written.

Examples:
  # Format a single file and print to stdout
  sqltrack format query.sql

  # Format all files in a directory in place
  sqltrack format -w ./queries/

  # Check if files are properly formatted
  sqltrack format -c ./queries/

  # Show diff of what would be changed
  sqltrack format -d query.sql

  # Format from stdin
  cat query.sql | sqltrack format`
}
