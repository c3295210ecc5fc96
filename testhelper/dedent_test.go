package testhelper

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestTrimIndent(t *testing.T) {
	got := TrimIndent(t, `
		SELECT
			x_
		FROM a`)
	assert.Equal(t, "SELECT\n    x_\nFROM a", got)

	assert.Equal(t, "one line", TrimIndent(t, "one line"))
}
