// Package classify decides whether a statement is a data query (SELECT,
// VALUES or WITH) that can be rewritten, by looking only at its first
// significant token.
package classify

import (
	"strings"

	tok "github.com/shibukawa/sqltrack/tokenizer"
)

// IsDataQuery reports whether the token stream starts a data query.
// Whitespace, comments, statement separators and opening parentheses before
// the first significant token are skipped.
func IsDataQuery(tokens []tok.Token) bool {
	for _, token := range tokens {
		if decided, result := decide(token); decided {
			return result
		}
	}
	return false
}

// IsDataQueryIter is IsDataQuery over a lazy stream. It stops pulling tokens
// as soon as the result is known. A tokenizer error yields false.
func IsDataQueryIter(seq tok.TokenIterator) bool {
	for token, err := range seq {
		if err != nil {
			return false
		}
		if decided, result := decide(token); decided {
			return result
		}
	}
	return false
}

// IsDataQuerySQL classifies sql with a streaming tokenizer.
func IsDataQuerySQL(sql string) bool {
	return IsDataQueryIter(tok.NewSqlTokenizer(sql).Tokens())
}

func decide(token tok.Token) (decided, result bool) {
	switch token.Type {
	case tok.WHITESPACE, tok.LINE_COMMENT, tok.BLOCK_COMMENT, tok.SEMICOLON, tok.OPENED_PARENS:
		return false, false
	case tok.SELECT, tok.VALUES, tok.WITH:
		return true, true
	case tok.EOF:
		return true, false
	case tok.UNKNOWN:
		// token without kind metadata
		switch strings.TrimSpace(token.Value) {
		case "", ";", "(":
			return false, false
		}
	}
	return true, isDataKeyword(token.Value)
}

func isDataKeyword(text string) bool {
	for _, keyword := range []string{"SELECT", "VALUES", "WITH"} {
		if strings.EqualFold(text, keyword) {
			return true
		}
	}
	return false
}
