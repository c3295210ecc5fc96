package formatter

import (
	"fmt"
	"strings"

	tok "github.com/shibukawa/sqltrack/tokenizer"
)

// Compact collapses every whitespace run outside literals and comments to a
// single space and trims both ends. A line comment keeps the line break
// that ends it.
func Compact(sql string) (string, error) {
	tokens, err := tok.Tokenize(sql)
	if err != nil {
		return "", fmt.Errorf("failed to tokenize SQL: %w", err)
	}

	var sb strings.Builder
	gap := ""

	for _, token := range tokens {
		switch token.Type {
		case tok.EOF:
			continue
		case tok.WHITESPACE:
			if gap == "" {
				gap = " "
			}
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString(gap)
		}
		sb.WriteString(token.Value)

		gap = ""
		if token.Type == tok.LINE_COMMENT {
			gap = "\n"
		}
	}

	return sb.String(), nil
}
