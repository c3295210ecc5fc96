package tokenizer

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrUnterminatedString     = errors.New("unterminated string literal")
	ErrUnterminatedIdentifier = errors.New("unterminated quoted identifier")
	ErrUnterminatedComment    = errors.New("unterminated block comment")
	ErrInvalidNumber          = errors.New("invalid number format")
)

// TokenType represents the type of a token.
// The zero value UNKNOWN means the token carries no kind metadata.
type TokenType int

const (
	UNKNOWN TokenType = iota
	EOF
	WHITESPACE
	IDENTIFIER        // bare identifiers and non-reserved words
	QUOTED_IDENTIFIER // "name", `name`
	STRING            // 'text'
	NUMBER            // numeric literals
	OPENED_PARENS     // (
	CLOSED_PARENS     // )
	COMMA             // ,
	SEMICOLON         // ;
	DOT               // .

	// Operators
	EQUAL         // =, ==
	NOT_EQUAL     // <>, !=
	LESS_THAN     // <
	GREATER_THAN  // >
	LESS_EQUAL    // <=
	GREATER_EQUAL // >=
	PLUS          // +
	MINUS         // -
	MULTIPLY      // *
	DIVIDE        // /
	MODULO        // %
	CONCAT        // ||
	DOUBLE_COLON  // ::

	// Query structure keywords
	WITH
	RECURSIVE
	SELECT
	VALUES
	DISTINCT
	ALL
	AS
	FROM
	WHERE
	GROUP
	BY
	HAVING
	WINDOW
	QUALIFY
	ORDER
	LIMIT
	OFFSET
	FETCH
	UNION
	INTERSECT
	EXCEPT

	// Join keywords
	JOIN
	INNER
	LEFT
	RIGHT
	FULL
	OUTER
	CROSS
	NATURAL
	ON
	USING
	LATERAL

	// Expression keywords
	AND
	OR
	NOT
	IN
	IS
	NULL
	LIKE
	BETWEEN
	EXISTS
	CASE
	WHEN
	THEN
	ELSE
	END
	OVER
	PARTITION
	COLLATE
	ESCAPE

	// Statement keywords outside the query grammar
	INSERT
	UPDATE
	DELETE
	CREATE
	DROP
	ALTER

	// Comments
	LINE_COMMENT  // -- line comment
	BLOCK_COMMENT // /* block comment */

	// Others
	OTHER // database-specific operators and punctuation
)

var tokenTypeNames = map[TokenType]string{
	UNKNOWN:           "UNKNOWN",
	EOF:               "EOF",
	WHITESPACE:        "WHITESPACE",
	IDENTIFIER:        "IDENTIFIER",
	QUOTED_IDENTIFIER: "QUOTED_IDENTIFIER",
	STRING:            "STRING",
	NUMBER:            "NUMBER",
	OPENED_PARENS:     "OPENED_PARENS",
	CLOSED_PARENS:     "CLOSED_PARENS",
	COMMA:             "COMMA",
	SEMICOLON:         "SEMICOLON",
	DOT:               "DOT",
	EQUAL:             "EQUAL",
	NOT_EQUAL:         "NOT_EQUAL",
	LESS_THAN:         "LESS_THAN",
	GREATER_THAN:      "GREATER_THAN",
	LESS_EQUAL:        "LESS_EQUAL",
	GREATER_EQUAL:     "GREATER_EQUAL",
	PLUS:              "PLUS",
	MINUS:             "MINUS",
	MULTIPLY:          "MULTIPLY",
	DIVIDE:            "DIVIDE",
	MODULO:            "MODULO",
	CONCAT:            "CONCAT",
	DOUBLE_COLON:      "DOUBLE_COLON",
	LINE_COMMENT:      "LINE_COMMENT",
	BLOCK_COMMENT:     "BLOCK_COMMENT",
	OTHER:             "OTHER",
}

func init() {
	for word, tt := range keywords {
		tokenTypeNames[tt] = word
	}
}

// String returns the string representation of TokenType
func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsKeyword reports whether the type is one of the reserved keyword kinds.
func (t TokenType) IsKeyword() bool {
	return t >= WITH && t <= ALTER
}

// IsTrivia reports whether the type carries no syntax (whitespace and comments).
func (t TokenType) IsTrivia() bool {
	return t == WHITESPACE || t == LINE_COMMENT || t == BLOCK_COMMENT
}

// Position represents a position in the source code
type Position struct {
	Line   int
	Column int
	Offset int
}

// String returns "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a token. Value holds the exact source text.
type Token struct {
	Type     TokenType
	Value    string
	Position Position
}

// String returns the string representation of Token
func (t Token) String() string {
	return t.Type.String() + ": " + t.Value
}
