package parser

import (
	"slices"

	pc "github.com/shibukawa/parsercombinator"

	tok "github.com/shibukawa/sqltrack/tokenizer"
)

var (
	union     = primitiveType("union", tok.UNION)
	intersect = primitiveType("intersect", tok.INTERSECT)
	except    = primitiveType("except", tok.EXCEPT)
	all       = primitiveType("all", tok.ALL)
	distinct  = primitiveType("distinct", tok.DISTINCT)

	natural  = primitiveType("natural", tok.NATURAL)
	joinKind = primitiveType("joinKind", tok.LEFT, tok.RIGHT, tok.FULL, tok.INNER, tok.CROSS)
	outer    = primitiveType("outer", tok.OUTER)
	join     = primitiveType("join", tok.JOIN)

	group = primitiveType("group", tok.GROUP)
	order = primitiveType("order", tok.ORDER)
	by    = primitiveType("by", tok.BY)

	where   = primitiveType("where", tok.WHERE)
	having  = primitiveType("having", tok.HAVING)
	window  = primitiveType("window", tok.WINDOW)
	qualify = primitiveType("qualify", tok.QUALIFY)
)

// UNION [ALL|DISTINCT], INTERSECT, EXCEPT
var setOperator = pc.Trace("setOperator", pc.Seq(
	pc.Or(union, intersect, except),
	pc.Optional(pc.Or(all, distinct)),
))

// [NATURAL] [LEFT|RIGHT|FULL|INNER|CROSS] [OUTER] JOIN
var joinOperator = pc.Trace("joinOperator", pc.Seq(
	pc.Optional(natural),
	pc.Optional(joinKind),
	pc.Optional(outer),
	join,
))

var groupBy = pc.Seq(group, by)

var orderBy = pc.Seq(order, by)

// name{.name}.*
var qualifiedWildcard = pc.Trace("qualifiedWildcard", func(pctx *pc.ParseContext[tok.Token], tokens []pc.Token[tok.Token]) (int, []pc.Token[tok.Token], error) {
	for i := 0; i+2 < len(tokens) && isName(tokens[i].Val.Type) && tokens[i+1].Val.Type == tok.DOT; i += 2 {
		if tokens[i+2].Val.Type == tok.MULTIPLY {
			return i + 3, tokens[:i+3], nil
		}
	}
	return 0, nil, pc.ErrNotMatch
})

func primitiveType(typeName string, types ...tok.TokenType) pc.Parser[tok.Token] {
	return func(pctx *pc.ParseContext[tok.Token], tokens []pc.Token[tok.Token]) (int, []pc.Token[tok.Token], error) {
		if len(tokens) > 0 && slices.Contains(types, tokens[0].Val.Type) {
			return 1, tokens[:1], nil
		}
		return 0, nil, pc.ErrNotMatch
	}
}

func toParserToken(tokens []tok.Token) []pc.Token[tok.Token] {
	results := make([]pc.Token[tok.Token], len(tokens))
	for i, token := range tokens {
		results[i] = pc.Token[tok.Token]{
			Type: "raw",
			Pos: &pc.Pos{
				Line:  token.Position.Line,
				Col:   token.Position.Column,
				Index: token.Position.Offset,
			},
			Val: token,
			Raw: token.Value,
		}
	}
	return results
}
