package tokenizer

import (
	"fmt"
	"iter"
	"unicode"
	"unicode/utf8"
)

// TokenIterator uses Go 1.24 iterator pattern
type TokenIterator iter.Seq2[Token, error]

// SqlTokenizer is a tokenizer that returns an iterator
type SqlTokenizer struct {
	input   string
	options TokenizerOptions
}

// TokenizerOptions are options for the tokenizer
type TokenizerOptions struct {
	SkipWhitespace bool
	SkipComments   bool
}

// NewSqlTokenizer creates a new SqlTokenizer
func NewSqlTokenizer(input string, options ...TokenizerOptions) *SqlTokenizer {
	opts := TokenizerOptions{}
	if len(options) > 0 {
		opts = options[0]
	}

	return &SqlTokenizer{
		input:   input,
		options: opts,
	}
}

// Tokenize returns every token of sql including trivia and the trailing EOF.
func Tokenize(sql string) ([]Token, error) {
	return NewSqlTokenizer(sql).AllTokens()
}

// Tokens returns an iterator of tokens. Tokens are produced on demand, so a
// consumer that stops early never pays for the rest of the input.
func (t *SqlTokenizer) Tokens() TokenIterator {
	return func(yield func(Token, error) bool) {
		tokenizer := newTokenizer(t.input)

		for {
			token, err := tokenizer.nextToken()
			if err != nil {
				if !yield(Token{}, err) {
					return
				}
				continue
			}

			if token.Type == EOF {
				yield(token, nil)
				return
			}

			// Filtering based on options
			if t.options.SkipWhitespace && token.Type == WHITESPACE {
				continue
			}
			if t.options.SkipComments && (token.Type == LINE_COMMENT || token.Type == BLOCK_COMMENT) {
				continue
			}

			if !yield(token, nil) {
				return
			}
		}
	}
}

// AllTokens gets all tokens as a slice. The first error is returned together
// with the tokens that could be read.
func (t *SqlTokenizer) AllTokens() ([]Token, error) {
	tokens := make([]Token, 0, 64)
	var firstError error

	for token, err := range t.Tokens() {
		if err != nil {
			if firstError == nil {
				firstError = err
			}
			continue
		}
		tokens = append(tokens, token)
		if token.Type == EOF {
			break
		}
	}

	return tokens, firstError
}

// Internal tokenizer implementation
type tokenizer struct {
	input   string
	offset  int // byte offset of current
	width   int // byte width of current
	line    int
	column  int
	current rune
}

func newTokenizer(input string) *tokenizer {
	t := &tokenizer{
		input:  input,
		line:   1,
		column: 1,
	}
	t.decode()
	return t
}

func (t *tokenizer) eof() bool {
	return t.offset >= len(t.input)
}

func (t *tokenizer) decode() {
	if t.eof() {
		t.current = 0
		t.width = 0
		return
	}
	t.current, t.width = utf8.DecodeRuneInString(t.input[t.offset:])
}

// readChar advances to the next character
func (t *tokenizer) readChar() {
	if t.eof() {
		return
	}
	if t.current == '\n' {
		t.line++
		t.column = 1
	} else {
		t.column++
	}
	t.offset += t.width
	t.decode()
}

// peekChar looks ahead at the next character
func (t *tokenizer) peekChar() rune {
	next := t.offset + t.width
	if next >= len(t.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(t.input[next:])
	return r
}

func (t *tokenizer) position() Position {
	return Position{Line: t.line, Column: t.column, Offset: t.offset}
}

func (t *tokenizer) tokenFrom(tokenType TokenType, start Position) Token {
	return Token{
		Type:     tokenType,
		Value:    t.input[start.Offset:t.offset],
		Position: start,
	}
}

// single consumes n characters and returns them as one token
func (t *tokenizer) single(tokenType TokenType, n int) Token {
	start := t.position()
	for range n {
		t.readChar()
	}
	return t.tokenFrom(tokenType, start)
}

// nextToken gets the next token
func (t *tokenizer) nextToken() (Token, error) {
	if t.eof() {
		return Token{Type: EOF, Position: t.position()}, nil
	}

	switch c := t.current; c {
	case '(':
		return t.single(OPENED_PARENS, 1), nil
	case ')':
		return t.single(CLOSED_PARENS, 1), nil
	case ',':
		return t.single(COMMA, 1), nil
	case ';':
		return t.single(SEMICOLON, 1), nil
	case '.':
		return t.single(DOT, 1), nil
	case '\'':
		return t.readQuoted('\'', STRING, ErrUnterminatedString)
	case '"', '`':
		return t.readQuoted(c, QUOTED_IDENTIFIER, ErrUnterminatedIdentifier)
	case '-':
		if t.peekChar() == '-' {
			return t.readLineComment(), nil
		}
		return t.single(MINUS, 1), nil
	case '/':
		if t.peekChar() == '*' {
			return t.readBlockComment()
		}
		return t.single(DIVIDE, 1), nil
	case '=':
		if t.peekChar() == '=' {
			return t.single(EQUAL, 2), nil
		}
		return t.single(EQUAL, 1), nil
	case '<':
		switch t.peekChar() {
		case '=':
			return t.single(LESS_EQUAL, 2), nil
		case '>':
			return t.single(NOT_EQUAL, 2), nil
		}
		return t.single(LESS_THAN, 1), nil
	case '>':
		if t.peekChar() == '=' {
			return t.single(GREATER_EQUAL, 2), nil
		}
		return t.single(GREATER_THAN, 1), nil
	case '!':
		if t.peekChar() == '=' {
			return t.single(NOT_EQUAL, 2), nil
		}
		return t.single(OTHER, 1), nil
	case '|':
		if t.peekChar() == '|' {
			return t.single(CONCAT, 2), nil
		}
		return t.single(OTHER, 1), nil
	case ':':
		if t.peekChar() == ':' {
			return t.single(DOUBLE_COLON, 2), nil
		}
		return t.single(OTHER, 1), nil
	case '+':
		return t.single(PLUS, 1), nil
	case '*':
		return t.single(MULTIPLY, 1), nil
	case '%':
		return t.single(MODULO, 1), nil
	default:
		switch {
		case unicode.IsSpace(c):
			return t.readWhitespace(), nil
		case unicode.IsLetter(c) || c == '_':
			return t.readWord(), nil
		case unicode.IsDigit(c):
			return t.readNumber()
		}
		// Other characters are treated as OTHER
		return t.single(OTHER, 1), nil
	}
}

// readWhitespace reads whitespace characters
func (t *tokenizer) readWhitespace() Token {
	start := t.position()
	for !t.eof() && unicode.IsSpace(t.current) {
		t.readChar()
	}
	return t.tokenFrom(WHITESPACE, start)
}

// readWord reads words (identifiers and keywords)
func (t *tokenizer) readWord() Token {
	start := t.position()
	for !t.eof() && (unicode.IsLetter(t.current) || unicode.IsDigit(t.current) || t.current == '_' || t.current == '$') {
		t.readChar()
	}
	token := t.tokenFrom(IDENTIFIER, start)
	token.Type = KeywordType(token.Value)
	return token
}

// readQuoted reads string literals and quoted identifiers. A doubled
// delimiter inside the quotes stands for the delimiter itself.
func (t *tokenizer) readQuoted(delimiter rune, tokenType TokenType, unterminated error) (Token, error) {
	start := t.position()
	t.readChar() // opening quote

	for {
		if t.eof() {
			return Token{}, fmt.Errorf("%w: %c at %s", unterminated, delimiter, start.String())
		}
		if t.current == delimiter {
			if t.peekChar() == delimiter {
				t.readChar()
				t.readChar()
				continue
			}
			t.readChar() // closing quote
			return t.tokenFrom(tokenType, start), nil
		}
		t.readChar()
	}
}

// readNumber reads numeric literals
func (t *tokenizer) readNumber() (Token, error) {
	start := t.position()

	// Integer part
	for !t.eof() && unicode.IsDigit(t.current) {
		t.readChar()
	}

	// Decimal point
	if t.current == '.' && unicode.IsDigit(t.peekChar()) {
		t.readChar()
		for !t.eof() && unicode.IsDigit(t.current) {
			t.readChar()
		}
	}

	// Exponential part
	if t.current == 'e' || t.current == 'E' {
		t.readChar()
		if t.current == '+' || t.current == '-' {
			t.readChar()
		}
		if t.eof() || !unicode.IsDigit(t.current) {
			return Token{}, fmt.Errorf("%w: invalid exponent at %s", ErrInvalidNumber, start.String())
		}
		for !t.eof() && unicode.IsDigit(t.current) {
			t.readChar()
		}
	}

	return t.tokenFrom(NUMBER, start), nil
}

// readLineComment reads line comments up to (not including) the newline
func (t *tokenizer) readLineComment() Token {
	start := t.position()
	for !t.eof() && t.current != '\n' {
		t.readChar()
	}
	return t.tokenFrom(LINE_COMMENT, start)
}

// readBlockComment reads block comments
func (t *tokenizer) readBlockComment() (Token, error) {
	start := t.position()
	t.readChar() // '/'
	t.readChar() // '*'

	for !t.eof() {
		if t.current == '*' && t.peekChar() == '/' {
			t.readChar()
			t.readChar()
			return t.tokenFrom(BLOCK_COMMENT, start), nil
		}
		t.readChar()
	}

	return Token{}, fmt.Errorf("%w at %s", ErrUnterminatedComment, start.String())
}
