// Package quote renders identifiers and values as SQL text for fragments the
// rewriter synthesizes.
package quote

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Raw is SQL text that Literal emits verbatim.
type Raw string

// MarkRaw wraps already valid SQL so that Literal passes it through.
func MarkRaw(text string) Raw {
	return Raw(text)
}

// Identifier quotes name with double quotes, doubling embedded quotes.
//
// A []string or []any yields a comma separated list of independently quoted
// identifiers. A dotted path is quoted per segment unless forbidQualified is
// set, in which case the dot is kept inside one identifier. Other values are
// converted with fmt first.
func Identifier(name any, forbidQualified bool) string {
	switch v := name.(type) {
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = Identifier(s, forbidQualified)
		}
		return strings.Join(quoted, ", ")
	case []any:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = Identifier(s, forbidQualified)
		}
		return strings.Join(quoted, ", ")
	}

	text := stringify(name)
	if forbidQualified {
		return quoteIdentifier(text)
	}
	segments := strings.Split(text, ".")
	for i, segment := range segments {
		segments[i] = quoteIdentifier(segment)
	}
	return strings.Join(segments, ".")
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	}
	return fmt.Sprint(value)
}

// Literal renders value as a SQL literal. Absent values (nil, nil pointers
// and the empty string) become NULL.
func Literal(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case Raw:
		return string(v)
	case string:
		if v == "" {
			return "NULL"
		}
		return quoteString(v)
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(v)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case decimal.Decimal:
		return v.String()
	case time.Time:
		return quoteString(v.Format(time.RFC3339Nano))
	case []byte:
		if v == nil {
			return "NULL"
		}
		return "X'" + strings.ToUpper(hex.EncodeToString(v)) + "'"
	case fmt.Stringer:
		if isNilPointer(value) {
			return "NULL"
		}
		return Literal(v.String())
	}

	if isNilPointer(value) {
		return "NULL"
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		return Literal(rv.Elem().Interface())
	}
	return Literal(fmt.Sprint(value))
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func isNilPointer(value any) bool {
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
