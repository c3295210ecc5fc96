// Package testhelper holds helpers shared by package tests.
package testhelper

import (
	"strings"
	"testing"
)

// TrimIndent lets multi-line expectations be written indented inside a raw
// string. The first line (right after the opening backquote) is dropped, the
// indentation of the second line is removed from every line, and tabs left
// at the start of a line become four spaces each.
func TrimIndent(t *testing.T, src string) string {
	t.Helper()

	lines := strings.Split(src, "\n")
	if len(lines) < 2 {
		return src
	}

	lines = lines[1:]
	indent := lines[0][:len(lines[0])-len(strings.TrimLeft(lines[0], " \t"))]

	for i, line := range lines {
		line = strings.TrimPrefix(line, indent)
		rest := strings.TrimLeft(line, "\t")
		lines[i] = strings.Repeat("    ", len(line)-len(rest)) + rest
	}

	return strings.Join(lines, "\n")
}
