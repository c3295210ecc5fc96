package tokenizer

import "strings"

// keywords maps upper-case reserved words to their token types.
// Words absent from this table are IDENTIFIER tokens, so non-reserved words
// such as COUNT, KEY or ROW can be used as column and function names.
var keywords = map[string]TokenType{
	"WITH":      WITH,
	"RECURSIVE": RECURSIVE,
	"SELECT":    SELECT,
	"VALUES":    VALUES,
	"DISTINCT":  DISTINCT,
	"ALL":       ALL,
	"AS":        AS,
	"FROM":      FROM,
	"WHERE":     WHERE,
	"GROUP":     GROUP,
	"BY":        BY,
	"HAVING":    HAVING,
	"WINDOW":    WINDOW,
	"QUALIFY":   QUALIFY,
	"ORDER":     ORDER,
	"LIMIT":     LIMIT,
	"OFFSET":    OFFSET,
	"FETCH":     FETCH,
	"UNION":     UNION,
	"INTERSECT": INTERSECT,
	"EXCEPT":    EXCEPT,

	"JOIN":    JOIN,
	"INNER":   INNER,
	"LEFT":    LEFT,
	"RIGHT":   RIGHT,
	"FULL":    FULL,
	"OUTER":   OUTER,
	"CROSS":   CROSS,
	"NATURAL": NATURAL,
	"ON":      ON,
	"USING":   USING,
	"LATERAL": LATERAL,

	"AND":       AND,
	"OR":        OR,
	"NOT":       NOT,
	"IN":        IN,
	"IS":        IS,
	"NULL":      NULL,
	"LIKE":      LIKE,
	"BETWEEN":   BETWEEN,
	"EXISTS":    EXISTS,
	"CASE":      CASE,
	"WHEN":      WHEN,
	"THEN":      THEN,
	"ELSE":      ELSE,
	"END":       END,
	"OVER":      OVER,
	"PARTITION": PARTITION,
	"COLLATE":   COLLATE,
	"ESCAPE":    ESCAPE,

	"INSERT": INSERT,
	"UPDATE": UPDATE,
	"DELETE": DELETE,
	"CREATE": CREATE,
	"DROP":   DROP,
	"ALTER":  ALTER,
}

// KeywordType returns the keyword token type for word, or IDENTIFIER.
func KeywordType(word string) TokenType {
	if tt, ok := keywords[strings.ToUpper(word)]; ok {
		return tt
	}
	return IDENTIFIER
}
