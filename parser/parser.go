// Package parser builds the concrete syntax tree of one SQL query statement.
//
// The accepted grammar covers SELECT, VALUES, WITH (CTE) and set-operation
// forms with nested subqueries. Other statements are rejected with
// ErrUnsupportedStatement.
package parser

import (
	"fmt"
	"sync"

	"github.com/shibukawa/sqltrack/sqltree"
	tok "github.com/shibukawa/sqltrack/tokenizer"
)

// Handle gives lazy, memoised access to the token stream and the tree of a
// statement. Tokenizing and tree building each run at most once.
type Handle struct {
	sql    string
	tokens func() ([]tok.Token, error)
	tree   func() (*sqltree.Node, error)
}

// Parse returns a handle for sql. No work is done until an accessor is used.
func Parse(sql string) *Handle {
	return newHandle(sql, tok.Tokenize, buildTree)
}

func newHandle(sql string, tokenize func(string) ([]tok.Token, error), build func([]tok.Token) (*sqltree.Node, error)) *Handle {
	h := &Handle{sql: sql}
	h.tokens = sync.OnceValues(func() ([]tok.Token, error) {
		return tokenize(sql)
	})
	h.tree = sync.OnceValues(func() (*sqltree.Node, error) {
		tokens, err := h.tokens()
		if err != nil {
			perr := &ParseError{}
			perr.Add(fmt.Errorf("%w: %w", ErrSyntax, err))
			return nil, perr
		}
		return build(tokens)
	})
	return h
}

// SQL returns the source text.
func (h *Handle) SQL() string {
	return h.sql
}

// Tokens returns every token of the statement including whitespace, comments
// and the trailing EOF.
func (h *Handle) Tokens() ([]tok.Token, error) {
	return h.tokens()
}

// Tree returns the statement's syntax tree. The error is a *ParseError.
func (h *Handle) Tree() (*sqltree.Node, error) {
	return h.tree()
}
