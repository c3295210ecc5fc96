package classify

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	tok "github.com/shibukawa/sqltrack/tokenizer"
)

func TestIsDataQuerySQL(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want bool
	}{
		{name: "select", sql: "SELECT 1", want: true},
		{name: "lower case select", sql: "select * from t", want: true},
		{name: "with", sql: "WITH x AS (SELECT 1) SELECT * FROM x", want: true},
		{name: "values", sql: "values (1)", want: true},
		{name: "parenthesised", sql: "((SELECT 1)) UNION (SELECT 2)", want: true},
		{name: "leading comments", sql: "-- note\n/* block */ ;; SELECT 1", want: true},
		{name: "empty", sql: "", want: false},
		{name: "blank", sql: "  \n\t", want: false},
		{name: "only separators", sql: ";(;", want: false},
		{name: "show", sql: "SHOW TABLES", want: false},
		{name: "insert", sql: "INSERT INTO t SELECT 1", want: false},
		{name: "create", sql: "CREATE TABLE t (a int)", want: false},
		{name: "explain", sql: "EXPLAIN SELECT 1", want: false},
		{name: "selective identifier", sql: "selection", want: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, IsDataQuerySQL(test.sql))

			tokens, err := tok.Tokenize(test.sql)
			assert.NoError(t, err)
			assert.Equal(t, test.want, IsDataQuery(tokens))
		})
	}
}

func TestIsDataQueryTextFallback(t *testing.T) {
	tests := []struct {
		name   string
		tokens []tok.Token
		want   bool
	}{
		{name: "select text", tokens: []tok.Token{{Value: "sElEcT"}}, want: true},
		{name: "with after blanks", tokens: []tok.Token{{Value: " "}, {Value: "("}, {Value: "With"}}, want: true},
		{name: "other text", tokens: []tok.Token{{Value: "update"}}, want: false},
		{name: "no tokens", tokens: nil, want: false},
		{name: "identifier kind named like keyword", tokens: []tok.Token{{Type: tok.IDENTIFIER, Value: "values"}}, want: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, IsDataQuery(test.tokens))
		})
	}
}

func TestIsDataQueryIterStopsEarly(t *testing.T) {
	pulled := 0
	seq := tok.TokenIterator(func(yield func(tok.Token, error) bool) {
		stream := []tok.Token{
			{Type: tok.WHITESPACE, Value: " "},
			{Type: tok.SELECT, Value: "SELECT"},
			{Type: tok.NUMBER, Value: "1"},
			{Type: tok.EOF},
		}
		for _, token := range stream {
			pulled++
			if !yield(token, nil) {
				return
			}
		}
	})

	assert.True(t, IsDataQueryIter(seq))
	assert.Equal(t, 2, pulled)
}

func TestIsDataQueryIterTokenizerError(t *testing.T) {
	assert.False(t, IsDataQuerySQL("/* unterminated"))
	// the broken literal is never reached
	assert.True(t, IsDataQuerySQL("SELECT 'unterminated"))
}
