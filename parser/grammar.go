package parser

import (
	"fmt"
	"slices"
	"strings"

	pc "github.com/shibukawa/parsercombinator"

	"github.com/shibukawa/sqltrack/sqltree"
	tok "github.com/shibukawa/sqltrack/tokenizer"
)

// builder turns a token stream into a concrete syntax tree by recursive
// descent. Only significant tokens are visited; the whitespace and comments
// before each of them travel with its leaf, and the EOF leaf carries the
// trailing trivia.
type builder struct {
	tokens   []tok.Token
	leading  [][]tok.Token
	pcTokens []pc.Token[tok.Token]
	pos      int
	pctx     *pc.ParseContext[tok.Token]
}

func buildTree(tokens []tok.Token) (*sqltree.Node, error) {
	b := newBuilder(tokens)
	stmt, err := b.statement()
	if err != nil {
		perr := &ParseError{}
		perr.Add(err)
		return nil, perr
	}
	return stmt, nil
}

func newBuilder(tokens []tok.Token) *builder {
	b := &builder{pctx: pc.NewParseContext[tok.Token]()}
	var trivia []tok.Token
	var last tok.Position
	for _, t := range tokens {
		last = t.Position
		if t.Type.IsTrivia() {
			trivia = append(trivia, t)
			continue
		}
		b.tokens = append(b.tokens, t)
		b.leading = append(b.leading, trivia)
		trivia = nil
		if t.Type == tok.EOF {
			break
		}
	}
	if len(b.tokens) == 0 || b.tokens[len(b.tokens)-1].Type != tok.EOF {
		b.tokens = append(b.tokens, tok.Token{Type: tok.EOF, Position: last})
		b.leading = append(b.leading, trivia)
	}
	b.pcTokens = toParserToken(b.tokens)
	return b
}

func (b *builder) peek(n int) tok.TokenType {
	if i := b.pos + n; i < len(b.tokens) {
		return b.tokens[i].Type
	}
	return tok.EOF
}

func (b *builder) current() tok.Token {
	return b.tokens[min(b.pos, len(b.tokens)-1)]
}

// next returns the leaf of the current token and advances. The cursor never
// moves past EOF.
func (b *builder) next() *sqltree.Node {
	leaf := sqltree.NewLeaf(b.tokens[b.pos], b.leading[b.pos])
	if b.tokens[b.pos].Type != tok.EOF {
		b.pos++
	}
	return leaf
}

func (b *builder) take(n int) []*sqltree.Node {
	leaves := make([]*sqltree.Node, 0, n)
	for range n {
		leaves = append(leaves, b.next())
	}
	return leaves
}

// match runs p at the cursor and returns the number of tokens it recognises.
func (b *builder) match(p pc.Parser[tok.Token]) int {
	consumed, _, err := p(b.pctx, b.pcTokens[b.pos:])
	if err != nil {
		return 0
	}
	return consumed
}

func (b *builder) expect(what string, types ...tok.TokenType) (*sqltree.Node, error) {
	if !slices.Contains(types, b.peek(0)) {
		return nil, b.unexpected(what)
	}
	return b.next(), nil
}

func (b *builder) unexpected(what string) error {
	t := b.current()
	if t.Type == tok.EOF {
		return fmt.Errorf("%w at %s: expected %s but reached end of input", ErrSyntax, t.Position.String(), what)
	}
	return fmt.Errorf("%w at %s: expected %s but got %q", ErrSyntax, t.Position.String(), what, t.Value)
}

func isQueryStart(t tok.TokenType) bool {
	return t == tok.SELECT || t == tok.VALUES || t == tok.WITH
}

func isName(t tok.TokenType) bool {
	return t == tok.IDENTIFIER || t == tok.QUOTED_IDENTIFIER
}

// boundaryAt reports whether the token at offset n ends the current clause.
func (b *builder) boundaryAt(n int) bool {
	switch b.peek(n) {
	case tok.EOF, tok.SEMICOLON, tok.CLOSED_PARENS,
		tok.WHERE, tok.HAVING, tok.WINDOW, tok.QUALIFY,
		tok.LIMIT, tok.OFFSET, tok.FETCH,
		tok.UNION, tok.INTERSECT, tok.EXCEPT:
		return true
	case tok.FROM:
		// a IS DISTINCT FROM b
		i := b.pos + n - 1
		return i < 0 || b.tokens[i].Type != tok.DISTINCT
	case tok.GROUP, tok.ORDER:
		return b.peek(n+1) == tok.BY
	}
	return false
}

func (b *builder) atClauseBoundary() bool {
	return b.boundaryAt(0)
}

func (b *builder) atItemEnd() bool {
	return b.peek(0) == tok.COMMA || b.boundaryAt(0)
}

func (b *builder) atJoinConditionEnd() bool {
	return b.atItemEnd() || b.match(joinOperator) > 0
}

// statement := query [;]* EOF
func (b *builder) statement() (*sqltree.Node, error) {
	switch b.peek(0) {
	case tok.SELECT, tok.VALUES, tok.WITH, tok.OPENED_PARENS:
	case tok.EOF:
		return nil, fmt.Errorf("%w: empty statement", ErrSyntax)
	default:
		t := b.current()
		return nil, fmt.Errorf("%w at %s: %s", ErrUnsupportedStatement, t.Position.String(), strings.ToUpper(t.Value))
	}

	query, err := b.query()
	if err != nil {
		return nil, err
	}
	stmt := sqltree.New(sqltree.KindStatement, query)
	for b.peek(0) == tok.SEMICOLON {
		stmt.Append(b.next())
	}
	if b.peek(0) != tok.EOF {
		return nil, b.unexpected("end of statement")
	}
	stmt.Append(b.next())
	return stmt, nil
}

// query := [with] term {set-op term} {ORDER BY|LIMIT|OFFSET|FETCH ...}
func (b *builder) query() (*sqltree.Node, error) {
	query := sqltree.New(sqltree.KindQuery)
	if b.peek(0) == tok.WITH {
		with, err := b.with()
		if err != nil {
			return nil, err
		}
		query.Append(with)
	}

	term, err := b.term()
	if err != nil {
		return nil, err
	}
	query.Append(term)

	for {
		n := b.match(setOperator)
		if n == 0 {
			break
		}
		query.Append(sqltree.New(sqltree.KindSetOperator, b.take(n)...))
		term, err := b.term()
		if err != nil {
			return nil, err
		}
		query.Append(term)
	}

	for {
		var clause *sqltree.Node
		var err error
		switch {
		case b.match(orderBy) > 0:
			clause, err = b.clause(sqltree.KindOrderBy, 2)
		case b.peek(0) == tok.LIMIT:
			clause, err = b.clause(sqltree.KindLimit, 1)
		case b.peek(0) == tok.OFFSET:
			clause, err = b.clause(sqltree.KindOffset, 1)
		case b.peek(0) == tok.FETCH:
			clause, err = b.clause(sqltree.KindFetch, 1)
		default:
			return query, nil
		}
		if err != nil {
			return nil, err
		}
		query.Append(clause)
	}
}

func (b *builder) term() (*sqltree.Node, error) {
	switch b.peek(0) {
	case tok.SELECT:
		return b.selectCore()
	case tok.VALUES:
		return b.values()
	case tok.OPENED_PARENS:
		return b.subquery()
	}
	return nil, b.unexpected("SELECT, VALUES or (")
}

// with := WITH [RECURSIVE] cte {, cte}
func (b *builder) with() (*sqltree.Node, error) {
	with := sqltree.New(sqltree.KindWith, b.next())
	if b.peek(0) == tok.RECURSIVE {
		with.Append(b.next())
	}
	for {
		cte, err := b.cte()
		if err != nil {
			return nil, err
		}
		with.Append(cte)
		if b.peek(0) != tok.COMMA {
			return with, nil
		}
		with.Append(b.next())
	}
}

// cte := name [(cols)] AS [NOT] [MATERIALIZED] (query)
func (b *builder) cte() (*sqltree.Node, error) {
	nameLeaf, err := b.expect("CTE name", tok.IDENTIFIER, tok.QUOTED_IDENTIFIER)
	if err != nil {
		return nil, err
	}
	cte := sqltree.New(sqltree.KindCTE, sqltree.New(sqltree.KindAlias, nameLeaf))
	if b.peek(0) == tok.OPENED_PARENS {
		cols, err := b.parens()
		if err != nil {
			return nil, err
		}
		cte.Append(cols)
	}
	as, err := b.expect("AS", tok.AS)
	if err != nil {
		return nil, err
	}
	cte.Append(as)
	if b.peek(0) == tok.NOT {
		cte.Append(b.next())
	}
	if b.peek(0) == tok.IDENTIFIER && strings.EqualFold(b.current().Value, "MATERIALIZED") {
		cte.Append(b.next())
	}
	body, err := b.subquery()
	if err != nil {
		return nil, err
	}
	cte.Append(body)
	return cte, nil
}

func (b *builder) subquery() (*sqltree.Node, error) {
	open, err := b.expect("(", tok.OPENED_PARENS)
	if err != nil {
		return nil, err
	}
	query, err := b.query()
	if err != nil {
		return nil, err
	}
	closeParen, err := b.expect(")", tok.CLOSED_PARENS)
	if err != nil {
		return nil, err
	}
	return sqltree.New(sqltree.KindSubquery, open, query, closeParen), nil
}

// parenthesized parses a parenthesised group as a subquery when it holds a
// query and as an opaque Parens node otherwise.
func (b *builder) parenthesized() (*sqltree.Node, error) {
	switch {
	case isQueryStart(b.peek(1)):
		return b.subquery()
	case b.peek(1) == tok.OPENED_PARENS && b.startsQuery():
		saved := b.pos
		if node, err := b.subquery(); err == nil {
			return node, nil
		}
		b.pos = saved
	}
	return b.parens()
}

func (b *builder) startsQuery() bool {
	for i := 0; ; i++ {
		switch t := b.peek(i); {
		case t == tok.OPENED_PARENS:
		case isQueryStart(t):
			return true
		default:
			return false
		}
	}
}

func (b *builder) parens() (*sqltree.Node, error) {
	open, err := b.expect("(", tok.OPENED_PARENS)
	if err != nil {
		return nil, err
	}
	inner, err := b.expression(func() bool { return b.peek(0) == tok.CLOSED_PARENS })
	if err != nil {
		return nil, err
	}
	closeParen, err := b.expect(")", tok.CLOSED_PARENS)
	if err != nil {
		return nil, err
	}
	node := sqltree.New(sqltree.KindParens, open)
	if len(inner.Children) > 0 {
		node.Append(inner)
	}
	node.Append(closeParen)
	return node, nil
}

// clause takes n keyword tokens followed by a non-empty expression body.
func (b *builder) clause(kind sqltree.Kind, n int) (*sqltree.Node, error) {
	clause := sqltree.New(kind, b.take(n)...)
	body, err := b.expression(b.atClauseBoundary)
	if err != nil {
		return nil, err
	}
	if len(body.Children) == 0 {
		return nil, b.unexpected("expression")
	}
	clause.Append(body)
	return clause, nil
}

// selectCore := SELECT [DISTINCT [ON (..)] | ALL] items [FROM ..] [WHERE ..]
// [GROUP BY ..] [HAVING ..] [WINDOW ..] [QUALIFY ..]
func (b *builder) selectCore() (*sqltree.Node, error) {
	sel := sqltree.New(sqltree.KindSelect, b.next())
	switch b.peek(0) {
	case tok.DISTINCT:
		quantifier := sqltree.New(sqltree.KindSetQuantifier, b.next())
		if b.peek(0) == tok.ON {
			quantifier.Append(b.next())
			on, err := b.parens()
			if err != nil {
				return nil, err
			}
			quantifier.Append(on)
		}
		sel.Append(quantifier)
	case tok.ALL:
		sel.Append(sqltree.New(sqltree.KindSetQuantifier, b.next()))
	}

	list, err := b.selectList()
	if err != nil {
		return nil, err
	}
	sel.Append(list)

	if b.peek(0) == tok.FROM {
		from, err := b.from()
		if err != nil {
			return nil, err
		}
		sel.Append(from)
	}

	clauses := []struct {
		kind sqltree.Kind
		head pc.Parser[tok.Token]
	}{
		{sqltree.KindWhere, where},
		{sqltree.KindGroupBy, groupBy},
		{sqltree.KindHaving, having},
		{sqltree.KindWindow, window},
		{sqltree.KindQualify, qualify},
	}
	for _, c := range clauses {
		if n := b.match(c.head); n > 0 {
			clause, err := b.clause(c.kind, n)
			if err != nil {
				return nil, err
			}
			sel.Append(clause)
		}
	}
	return sel, nil
}

func (b *builder) values() (*sqltree.Node, error) {
	values := sqltree.New(sqltree.KindValues, b.next())
	rows, err := b.expression(b.atClauseBoundary)
	if err != nil {
		return nil, err
	}
	if len(rows.Children) == 0 {
		return nil, b.unexpected("row")
	}
	values.Append(rows)
	return values, nil
}

func (b *builder) selectList() (*sqltree.Node, error) {
	list := sqltree.New(sqltree.KindSelectList)
	for {
		item, err := b.selectItem()
		if err != nil {
			return nil, err
		}
		list.Append(item)
		if b.peek(0) != tok.COMMA {
			return list, nil
		}
		list.Append(b.next())
	}
}

func (b *builder) selectItem() (*sqltree.Node, error) {
	item := sqltree.New(sqltree.KindSelectItem)
	if b.peek(0) == tok.MULTIPLY {
		wildcard, err := b.wildcardModifiers(sqltree.New(sqltree.KindWildcard, b.next()))
		if err != nil {
			return nil, err
		}
		item.Append(wildcard)
		return item, nil
	}
	if n := b.match(qualifiedWildcard); n > 0 {
		wildcard, err := b.wildcardModifiers(sqltree.New(sqltree.KindQualifiedWildcard, b.take(n)...))
		if err != nil {
			return nil, err
		}
		item.Append(wildcard)
		return item, nil
	}

	expr := sqltree.New(sqltree.KindExpression)
	for !b.atItemEnd() && b.peek(0) != tok.AS {
		if len(expr.Children) > 0 && b.atBareAlias(expr) {
			break
		}
		element, err := b.element()
		if err != nil {
			return nil, err
		}
		expr.Append(element)
	}
	if len(expr.Children) == 0 {
		return nil, b.unexpected("select item")
	}
	item.Append(expr)

	switch {
	case b.peek(0) == tok.AS:
		as := b.next()
		aliasName, err := b.expect("alias", tok.IDENTIFIER, tok.QUOTED_IDENTIFIER, tok.STRING)
		if err != nil {
			return nil, err
		}
		item.Append(sqltree.New(sqltree.KindAlias, as, aliasName))
	case isName(b.peek(0)):
		item.Append(sqltree.New(sqltree.KindAlias, b.next()))
	}
	if !b.atItemEnd() {
		return nil, b.unexpected(", or end of select list")
	}
	return item, nil
}

// wildcardModifiers keeps dialect extensions such as * EXCLUDE (a) or
// * REPLACE (..) inside the wildcard node.
func (b *builder) wildcardModifiers(node *sqltree.Node) (*sqltree.Node, error) {
	for {
		if b.peek(0) == tok.EXCEPT && b.peek(1) == tok.OPENED_PARENS && !isQueryStart(b.peek(2)) {
			node.Append(b.next())
			continue
		}
		if b.atItemEnd() {
			return node, nil
		}
		element, err := b.element()
		if err != nil {
			return nil, err
		}
		node.Append(element)
	}
}

// atBareAlias reports whether the current name is an alias written without
// AS: it follows a complete operand and closes the item.
func (b *builder) atBareAlias(expr *sqltree.Node) bool {
	if !isName(b.peek(0)) {
		return false
	}
	if b.peek(1) != tok.COMMA && !b.boundaryAt(1) {
		return false
	}
	leaves := expr.Leaves()
	switch leaves[len(leaves)-1].TokenType() {
	case tok.IDENTIFIER, tok.QUOTED_IDENTIFIER, tok.NUMBER, tok.STRING, tok.NULL, tok.END, tok.CLOSED_PARENS:
		return true
	}
	return false
}

// expression collects elements until stop reports the end of the expression.
// Parenthesised groups are parsed recursively, so stop is only consulted at
// the current nesting depth.
func (b *builder) expression(stop func() bool) (*sqltree.Node, error) {
	expr := sqltree.New(sqltree.KindExpression)
	for b.peek(0) != tok.EOF && !stop() {
		element, err := b.element()
		if err != nil {
			return nil, err
		}
		expr.Append(element)
	}
	return expr, nil
}

func (b *builder) element() (*sqltree.Node, error) {
	switch b.peek(0) {
	case tok.OPENED_PARENS:
		return b.parenthesized()
	case tok.CLOSED_PARENS:
		return nil, b.unexpected("expression")
	case tok.IDENTIFIER, tok.QUOTED_IDENTIFIER:
		return b.reference()
	case tok.LEFT, tok.RIGHT:
		// LEFT(s, n) and RIGHT(s, n) are functions in expression position
		if b.peek(1) == tok.OPENED_PARENS {
			return b.functionCall([]*sqltree.Node{b.next()})
		}
	case tok.CASE:
		return b.caseExpression()
	}
	return b.next(), nil
}

func (b *builder) qualifiedName() []*sqltree.Node {
	leaves := []*sqltree.Node{b.next()}
	for b.peek(0) == tok.DOT && isName(b.peek(1)) {
		leaves = append(leaves, b.next(), b.next())
	}
	return leaves
}

// reference := name{.name} [( args )]
func (b *builder) reference() (*sqltree.Node, error) {
	leaves := b.qualifiedName()
	if b.peek(0) == tok.OPENED_PARENS {
		return b.functionCall(leaves)
	}
	return sqltree.New(sqltree.KindColumnRef, leaves...), nil
}

func (b *builder) functionCall(nameLeaves []*sqltree.Node) (*sqltree.Node, error) {
	args, err := b.parens()
	if err != nil {
		return nil, err
	}
	call := sqltree.New(sqltree.KindFunctionCall, nameLeaves...)
	call.Append(args)
	return call, nil
}

func (b *builder) caseExpression() (*sqltree.Node, error) {
	node := sqltree.New(sqltree.KindExpression, b.next())
	for b.peek(0) != tok.END {
		if b.peek(0) == tok.EOF || b.peek(0) == tok.CLOSED_PARENS {
			return nil, b.unexpected("END")
		}
		element, err := b.element()
		if err != nil {
			return nil, err
		}
		node.Append(element)
	}
	node.Append(b.next())
	return node, nil
}

// from := FROM source {, source | join}
func (b *builder) from() (*sqltree.Node, error) {
	from := sqltree.New(sqltree.KindFrom, b.next())
	source, err := b.tableRef()
	if err != nil {
		return nil, err
	}
	from.Append(source)

	for {
		if b.peek(0) == tok.COMMA {
			from.Append(b.next())
			source, err := b.tableRef()
			if err != nil {
				return nil, err
			}
			from.Append(source)
		} else if n := b.match(joinOperator); n > 0 {
			join, err := b.join(n)
			if err != nil {
				return nil, err
			}
			from.Append(join)
		} else {
			return from, nil
		}
	}
}

func (b *builder) join(n int) (*sqltree.Node, error) {
	join := sqltree.New(sqltree.KindJoin, b.take(n)...)
	source, err := b.tableRef()
	if err != nil {
		return nil, err
	}
	join.Append(source)

	switch b.peek(0) {
	case tok.ON:
		condition := sqltree.New(sqltree.KindJoinCondition, b.next())
		body, err := b.expression(b.atJoinConditionEnd)
		if err != nil {
			return nil, err
		}
		if len(body.Children) == 0 {
			return nil, b.unexpected("join condition")
		}
		condition.Append(body)
		join.Append(condition)
	case tok.USING:
		condition := sqltree.New(sqltree.KindJoinCondition, b.next())
		columns, err := b.parens()
		if err != nil {
			return nil, err
		}
		condition.Append(columns)
		join.Append(condition)
	}
	return join, nil
}

// tableRef := [LATERAL] (table | function(..) | (query) | (join)) [[AS] alias [(cols)]]
func (b *builder) tableRef() (*sqltree.Node, error) {
	ref := sqltree.New(sqltree.KindTableRef)
	if b.peek(0) == tok.LATERAL {
		ref.Append(b.next())
	}

	switch b.peek(0) {
	case tok.OPENED_PARENS:
		source, err := b.parenthesized()
		if err != nil {
			return nil, err
		}
		ref.Append(source)
	case tok.IDENTIFIER, tok.QUOTED_IDENTIFIER:
		leaves := b.qualifiedName()
		if b.peek(0) == tok.OPENED_PARENS {
			call, err := b.functionCall(leaves)
			if err != nil {
				return nil, err
			}
			ref.Append(call)
		} else {
			ref.Append(sqltree.New(sqltree.KindTableName, leaves...))
		}
	default:
		return nil, b.unexpected("table reference")
	}

	var alias *sqltree.Node
	switch {
	case b.peek(0) == tok.AS:
		as := b.next()
		aliasName, err := b.expect("alias", tok.IDENTIFIER, tok.QUOTED_IDENTIFIER)
		if err != nil {
			return nil, err
		}
		alias = sqltree.New(sqltree.KindAlias, as, aliasName)
	case isName(b.peek(0)):
		alias = sqltree.New(sqltree.KindAlias, b.next())
	}
	if alias != nil {
		if b.peek(0) == tok.OPENED_PARENS {
			columns, err := b.parens()
			if err != nil {
				return nil, err
			}
			alias.Append(columns)
		}
		ref.Append(alias)
	}

	if !b.atJoinConditionEnd() && b.peek(0) != tok.ON && b.peek(0) != tok.USING {
		return nil, b.unexpected("end of table reference")
	}
	return ref, nil
}
