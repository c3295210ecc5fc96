// Package formatter lays out SQL text for reading: Format pretty-prints a
// statement with one clause per line, Compact squeezes it onto one line.
package formatter

import (
	"fmt"
	"strings"

	tok "github.com/shibukawa/sqltrack/tokenizer"
)

// SQLFormatter formats SQL statements with go fmt style
type SQLFormatter struct {
	indentSize int
}

// NewSQLFormatter creates a new SQL formatter
func NewSQLFormatter() *SQLFormatter {
	return &SQLFormatter{
		indentSize: 4, // 4 spaces for indentation
	}
}

// Format formats a SQL statement. Literals, quoted identifiers and comments
// are kept as written; keywords are upper-cased.
func (f *SQLFormatter) Format(sql string) (string, error) {
	tokens, err := tok.Tokenize(sql)
	if err != nil {
		return "", fmt.Errorf("failed to tokenize SQL: %w", err)
	}

	return f.formatTokens(tokens), nil
}

// frame is one parenthesis level. The statement itself is the outermost
// frame.
type frame struct {
	subquery   bool
	selectList bool
	multiline  bool
}

// lineWriter defers line breaks until the next token, so a trailing line
// comment can stay on the line it annotates.
type lineWriter struct {
	sb         strings.Builder
	indentSize int
	pending    bool
	level      int
}

func (w *lineWriter) breakLine(level int) {
	w.pending = true
	w.level = level
}

func (w *lineWriter) put(value string, space bool) {
	switch {
	case w.pending:
		if w.sb.Len() > 0 {
			w.sb.WriteByte('\n')
		}
		w.sb.WriteString(strings.Repeat(" ", w.level*w.indentSize))
		w.pending = false
	case space && w.sb.Len() > 0:
		w.sb.WriteByte(' ')
	}
	w.sb.WriteString(value)
}

func (w *lineWriter) comment(value string) {
	if w.sb.Len() > 0 {
		w.sb.WriteByte(' ')
	}
	w.sb.WriteString(value)
}

// formatTokens formats the tokens according to the style rules
func (f *SQLFormatter) formatTokens(tokens []tok.Token) string {
	w := &lineWriter{indentSize: f.indentSize}
	stack := []frame{{subquery: true}}
	indent := 0

	var prev, prev2 tok.TokenType
	noSpace := true

	for i, token := range tokens {
		switch token.Type {
		case tok.WHITESPACE, tok.EOF:
			continue
		case tok.LINE_COMMENT:
			w.comment(token.Value)
			w.breakLine(w.level)
			continue
		case tok.BLOCK_COMMENT:
			w.comment(token.Value)
			continue
		}

		top := &stack[len(stack)-1]
		space := !noSpace
		noSpace = false

		switch token.Type {
		case tok.OPENED_PARENS:
			sub := isQueryStart(nextSignificant(tokens, i))
			w.put("(", space && prev != tok.IDENTIFIER && prev != tok.QUOTED_IDENTIFIER &&
				prev != tok.LEFT && prev != tok.RIGHT && prev != tok.DOT)
			stack = append(stack, frame{subquery: sub})
			if sub {
				indent++
				w.breakLine(indent)
			}
			noSpace = true

		case tok.CLOSED_PARENS:
			if len(stack) > 1 {
				if stack[len(stack)-1].subquery {
					indent--
					w.breakLine(indent)
				}
				stack = stack[:len(stack)-1]
			}
			w.put(")", false)

		case tok.COMMA:
			w.put(",", false)
			if top.selectList && top.multiline {
				w.breakLine(indent + 1)
			}

		case tok.SEMICOLON:
			w.put(";", false)
			w.breakLine(0)

		case tok.DOT, tok.DOUBLE_COLON:
			w.put(token.Value, false)
			noSpace = true

		case tok.PLUS, tok.MINUS:
			w.put(token.Value, space)
			noSpace = isUnaryContext(prev)

		default:
			if !token.Type.IsKeyword() {
				value := token.Value
				if token.Type == tok.IDENTIFIER && upperWords[strings.ToUpper(value)] {
					value = strings.ToUpper(value)
				}
				w.put(value, space)
				break
			}

			value := strings.ToUpper(token.Value)
			switch {
			case token.Type == tok.SELECT:
				if top.subquery {
					w.breakLine(indent)
				}
				w.put(value, space)
				top.selectList = true
				top.multiline = selectListItems(tokens, i+1) > 1
				if top.multiline {
					if next := nextSignificant(tokens, i); next != tok.DISTINCT && next != tok.ALL {
						w.breakLine(indent + 1)
					}
				}

			case (token.Type == tok.DISTINCT || token.Type == tok.ALL) && prev == tok.SELECT:
				w.put(value, space)
				if top.multiline {
					w.breakLine(indent + 1)
				}

			case top.subquery && isClauseStart(token.Type, tokens, i, prev, prev2):
				top.selectList = false
				w.breakLine(indent)
				w.put(value, space)

			case top.subquery && isJoinStart(token.Type, tokens, i, prev):
				top.selectList = false
				w.breakLine(indent)
				w.put(value, space)

			case top.subquery && token.Type == tok.ON:
				w.breakLine(indent + 1)
				w.put(value, space)

			default:
				w.put(value, space)
			}
		}

		prev2 = prev
		prev = token.Type
	}

	return f.cleanupFormatting(w.sb.String())
}

var upperWords = map[string]bool{"ASC": true, "DESC": true, "NULLS": true}

var joinWords = map[tok.TokenType]bool{
	tok.JOIN: true, tok.INNER: true, tok.LEFT: true, tok.RIGHT: true,
	tok.FULL: true, tok.OUTER: true, tok.CROSS: true, tok.NATURAL: true,
}

func isQueryStart(t tok.TokenType) bool {
	return t == tok.SELECT || t == tok.WITH || t == tok.VALUES
}

func isUnaryContext(prev tok.TokenType) bool {
	switch {
	case prev == tok.UNKNOWN, prev == tok.COMMA, prev == tok.OPENED_PARENS:
		return true
	case prev >= tok.EQUAL && prev <= tok.DOUBLE_COLON:
		return true
	case prev == tok.NULL, prev == tok.END:
		return false
	}
	return prev.IsKeyword()
}

// isClauseStart checks if a keyword starts a new clause
func isClauseStart(t tok.TokenType, tokens []tok.Token, i int, prev, prev2 tok.TokenType) bool {
	switch t {
	case tok.FROM:
		// IS [NOT] DISTINCT FROM
		return !(prev == tok.DISTINCT && prev2 != tok.SELECT)
	case tok.GROUP, tok.ORDER:
		return nextSignificant(tokens, i) == tok.BY
	case tok.WITH, tok.VALUES, tok.WHERE, tok.HAVING, tok.WINDOW, tok.QUALIFY,
		tok.LIMIT, tok.OFFSET, tok.FETCH, tok.UNION, tok.INTERSECT, tok.EXCEPT,
		tok.INSERT, tok.UPDATE, tok.DELETE:
		return !(t == tok.EXCEPT && nextSignificant(tokens, i) == tok.OPENED_PARENS && prev == tok.MULTIPLY)
	}
	return false
}

func isJoinStart(t tok.TokenType, tokens []tok.Token, i int, prev tok.TokenType) bool {
	if !joinWords[t] || t == tok.OUTER || joinWords[prev] {
		return false
	}
	if t == tok.LEFT || t == tok.RIGHT {
		return nextSignificant(tokens, i) != tok.OPENED_PARENS
	}
	return true
}

func nextSignificant(tokens []tok.Token, i int) tok.TokenType {
	for j := i + 1; j < len(tokens); j++ {
		if !tokens[j].Type.IsTrivia() {
			return tokens[j].Type
		}
	}
	return tok.EOF
}

// selectListItems counts the items of the select list starting at tokens[i].
func selectListItems(tokens []tok.Token, i int) int {
	items := 1
	depth := 0
	var prev tok.TokenType

	for ; i < len(tokens); i++ {
		t := tokens[i].Type
		if t.IsTrivia() {
			continue
		}

		switch t {
		case tok.OPENED_PARENS:
			depth++
		case tok.CLOSED_PARENS:
			if depth == 0 {
				return items
			}
			depth--
		case tok.COMMA:
			if depth == 0 {
				items++
			}
		case tok.EOF, tok.SEMICOLON:
			return items
		case tok.FROM:
			if depth == 0 && prev != tok.DISTINCT {
				return items
			}
		case tok.WHERE, tok.GROUP, tok.HAVING, tok.WINDOW, tok.QUALIFY, tok.ORDER,
			tok.LIMIT, tok.OFFSET, tok.FETCH, tok.UNION, tok.INTERSECT:
			if depth == 0 {
				return items
			}
		}
		prev = t
	}
	return items
}

// cleanupFormatting cleans up the formatted SQL
func (f *SQLFormatter) cleanupFormatting(sql string) string {
	lines := strings.Split(sql, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
