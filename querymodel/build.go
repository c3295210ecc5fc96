package querymodel

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/shibukawa/sqltrack/parser"
	"github.com/shibukawa/sqltrack/sqltree"
	tok "github.com/shibukawa/sqltrack/tokenizer"
)

// FromSQL parses sql and builds its query model. A statement outside the
// supported grammar returns the parser's *parser.ParseError.
func FromSQL(sql string) (*QueryModel, error) {
	handle := parser.Parse(sql)
	tree, err := handle.Tree()
	if err != nil {
		return nil, err
	}

	m := &QueryModel{
		handle: handle,
		tree:   tree,
		lists:  make(map[*sqltree.Node]int),

		columnLists: make(map[*sqltree.Node]int),
	}
	b := &modelBuilder{m: m}
	m.roots = b.query(tree.Child(sqltree.KindQuery), placement{parent: -1}, nil)
	return m, nil
}

// scope resolves CTE names visible at a point of the statement.
type scope struct {
	parent *scope
	ctes   map[string]int
}

func (s *scope) lookup(name string) (int, bool) {
	key := cases.Fold().String(name)
	for ; s != nil; s = s.parent {
		if idx, ok := s.ctes[key]; ok {
			return idx, true
		}
	}
	return -1, false
}

// placement describes where a node hangs in its parent's FROM clause.
type placement struct {
	parent    int
	group     int
	joinType  string
	alias     string
	qualifier string
}

type modelBuilder struct {
	m *QueryModel
}

func (b *modelBuilder) newNode(at placement, kind SourceKind, span *sqltree.Node) *QueryNode {
	n := &QueryNode{
		model:     b.m,
		id:        len(b.m.nodes),
		parent:    at.parent,
		kind:      kind,
		span:      span,
		alias:     at.alias,
		qualifier: at.qualifier,
		joinType:  at.joinType,
		group:     at.group,
		cte:       -1,
		body:      -1,
	}
	b.m.nodes = append(b.m.nodes, n)
	if at.parent >= 0 {
		parent := b.m.nodes[at.parent]
		parent.children = append(parent.children, n.id)
	}
	return n
}

// query builds the terms of a query and returns their ids. Terms of nested
// parenthesised queries are flattened, so every branch of one set operation
// ends up as a sibling.
func (b *modelBuilder) query(query *sqltree.Node, at placement, sc *scope) []int {
	if with := query.Child(sqltree.KindWith); with != nil {
		sc = b.with(with, sc)
	}

	var ids []int
	for _, child := range query.Children {
		switch child.Kind {
		case sqltree.KindSelect, sqltree.KindValues:
			ids = append(ids, b.term(child, at, sc))
		case sqltree.KindSubquery:
			ids = append(ids, b.query(child.Child(sqltree.KindQuery), at, sc)...)
		}
	}
	for _, id := range ids {
		b.m.nodes[id].siblings = ids
	}
	if len(ids) == 1 {
		b.m.nodes[ids[0]].span = query
	}
	return ids
}

func (b *modelBuilder) with(with *sqltree.Node, sc *scope) *scope {
	inner := &scope{parent: sc, ctes: make(map[string]int)}
	recursive := false
	for _, leaf := range with.Children {
		if leaf.TokenType() == tok.RECURSIVE {
			recursive = true
		}
	}

	for _, node := range sqltree.BFSDescendants(with, sqltree.KindCTE) {
		c := &CTE{
			model: b.m,
			name:  unquote(sqltree.String(node.Child(sqltree.KindAlias))),
			node:  node,
		}
		idx := len(b.m.ctes)
		b.m.ctes = append(b.m.ctes, c)
		if cols := node.Child(sqltree.KindParens); cols != nil {
			c.columns = cols
			c.names = columnNames(cols)
			b.m.columnLists[cols] = idx
		}
		key := cases.Fold().String(c.name)
		if recursive {
			inner.ctes[key] = idx
		}
		body := node.Child(sqltree.KindSubquery).Child(sqltree.KindQuery)
		c.terms = b.query(body, placement{parent: -1}, inner)
		for _, id := range c.terms {
			b.m.nodes[id].body = idx
		}
		inner.ctes[key] = idx
	}
	return inner
}

func (b *modelBuilder) term(term *sqltree.Node, at placement, sc *scope) int {
	if term.Kind == sqltree.KindValues {
		return b.newNode(at, SourceValues, term).id
	}

	n := b.newNode(at, SourceSelect, term)
	list := term.Child(sqltree.KindSelectList)
	n.items = buildItems(list)
	b.m.lists[list] = n.id

	if from := term.Child(sqltree.KindFrom); from != nil {
		b.from(n, from, sc)
	}
	return n.id
}

func (b *modelBuilder) from(n *QueryNode, from *sqltree.Node, sc *scope) {
	joinType := ""
	for _, child := range from.Children {
		switch child.Kind {
		case sqltree.KindToken:
			if child.TokenType() == tok.COMMA {
				joinType = ","
			}
		case sqltree.KindTableRef:
			b.source(n, child, joinType, sc)
		case sqltree.KindJoin:
			b.source(n, child.Child(sqltree.KindTableRef), joinKeywords(child), sc)
		}
	}
}

func joinKeywords(join *sqltree.Node) string {
	var words []string
	for _, c := range join.Children {
		if c.Kind != sqltree.KindToken {
			break
		}
		words = append(words, strings.ToUpper(c.Token.Value))
	}
	return strings.Join(words, " ")
}

func (b *modelBuilder) source(n *QueryNode, ref *sqltree.Node, joinType string, sc *scope) {
	at := placement{parent: n.id, group: n.groups, joinType: joinType}
	n.groups++
	if alias := ref.Child(sqltree.KindAlias); alias != nil {
		nameLeaf := aliasName(alias)
		at.alias = unquote(nameLeaf.Token.Value)
		at.qualifier = nameLeaf.Token.Value
	}

	for _, c := range ref.Children {
		switch c.Kind {
		case sqltree.KindSubquery:
			query := c.Child(sqltree.KindQuery)
			if valuesOnly(query) {
				b.newNode(at, SourceOpaque, ref)
				return
			}
			b.query(query, at, sc)
			return
		case sqltree.KindTableName:
			text := sqltree.String(c)
			leaf := b.newNode(at, SourceTable, ref)
			leaf.tableName = unquotePath(c)
			if leaf.qualifier == "" {
				leaf.qualifier = text
			}
			if len(c.Children) == 1 {
				if idx, ok := sc.lookup(leaf.tableName); ok {
					leaf.kind = SourceCTE
					leaf.cte = idx
				}
			}
			return
		case sqltree.KindFunctionCall, sqltree.KindParens:
			b.newNode(at, SourceOpaque, ref)
			return
		}
	}
}

// valuesOnly reports whether query is a single VALUES list, possibly
// parenthesised.
func valuesOnly(query *sqltree.Node) bool {
	var terms []*sqltree.Node
	for _, c := range query.Children {
		switch c.Kind {
		case sqltree.KindWith:
			return false
		case sqltree.KindSelect, sqltree.KindValues, sqltree.KindSubquery:
			terms = append(terms, c)
		}
	}
	if len(terms) != 1 {
		return false
	}
	switch terms[0].Kind {
	case sqltree.KindValues:
		return true
	case sqltree.KindSubquery:
		return valuesOnly(terms[0].Child(sqltree.KindQuery))
	}
	return false
}

// columnNames returns the names of a CTE column list.
func columnNames(cols *sqltree.Node) []ProjectionItem {
	var names []ProjectionItem
	for _, leaf := range cols.Leaves() {
		switch leaf.TokenType() {
		case tok.IDENTIFIER, tok.QUOTED_IDENTIFIER:
			names = append(names, ProjectionItem{
				Kind:   ExpressionItem,
				Expr:   leaf.Token.Value,
				Name:   unquote(leaf.Token.Value),
				quoted: isQuoted(leaf),
			})
		}
	}
	return names
}

// aliasName returns the name leaf of an Alias node.
func aliasName(alias *sqltree.Node) *sqltree.Node {
	for _, c := range alias.Children {
		if c.Kind == sqltree.KindToken && c.TokenType() != tok.AS {
			return c
		}
	}
	return alias.FirstLeaf()
}

func buildItems(list *sqltree.Node) []ProjectionItem {
	var items []ProjectionItem
	for _, item := range sqltree.BFSDescendants(list, sqltree.KindSelectItem) {
		head := item.Children[0]
		switch head.Kind {
		case sqltree.KindWildcard:
			items = append(items, ProjectionItem{Kind: WildcardItem, Expr: sqltree.String(head)})
		case sqltree.KindQualifiedWildcard:
			items = append(items, ProjectionItem{
				Kind:      QualifiedWildcardItem,
				Expr:      sqltree.String(head),
				Qualifier: qualifierOf(head),
			})
		default:
			p := ProjectionItem{Kind: ExpressionItem, Expr: sqltree.String(head)}
			if alias := item.Child(sqltree.KindAlias); alias != nil {
				leaf := aliasName(alias)
				p.Name = unquote(leaf.Token.Value)
				p.quoted = isQuoted(leaf)
			} else if leaf := implicitName(head); leaf != nil {
				p.Name = unquote(leaf.Token.Value)
				p.quoted = isQuoted(leaf)
			}
			items = append(items, p)
		}
	}
	return items
}

// qualifierOf returns the unquoted path before ".*".
func qualifierOf(wildcard *sqltree.Node) string {
	var segments []string
	for _, leaf := range wildcard.Leaves() {
		switch leaf.TokenType() {
		case tok.IDENTIFIER, tok.QUOTED_IDENTIFIER:
			segments = append(segments, unquote(leaf.Token.Value))
		case tok.MULTIPLY:
			return strings.Join(segments, ".")
		}
	}
	return strings.Join(segments, ".")
}

// implicitName returns the leaf that names the output column of an
// unaliased expression made of a single column reference or function call,
// or nil when the engine makes the name up.
func implicitName(expr *sqltree.Node) *sqltree.Node {
	if len(expr.Children) != 1 {
		return nil
	}
	single := expr.Children[0]
	switch single.Kind {
	case sqltree.KindColumnRef:
		leaves := single.Leaves()
		return leaves[len(leaves)-1]
	case sqltree.KindFunctionCall:
		var name *sqltree.Node
		for _, c := range single.Children {
			if c.Kind == sqltree.KindToken && c.TokenType() != tok.DOT {
				name = c
			}
		}
		return name
	}
	return nil
}

// isQuoted reports whether an identifier leaf keeps its case.
func isQuoted(leaf *sqltree.Node) bool {
	switch leaf.TokenType() {
	case tok.QUOTED_IDENTIFIER, tok.STRING:
		return true
	}
	return false
}

func unquotePath(name *sqltree.Node) string {
	var segments []string
	for _, leaf := range name.Leaves() {
		if leaf.TokenType() != tok.DOT {
			segments = append(segments, unquote(leaf.Token.Value))
		}
	}
	return strings.Join(segments, ".")
}

// unquote strips identifier or string quotes and undoubles embedded ones.
func unquote(text string) string {
	if len(text) < 2 {
		return text
	}
	switch q := text[0]; q {
	case '"', '`', '\'':
		if text[len(text)-1] == q {
			d := string(q)
			return strings.ReplaceAll(text[1:len(text)-1], d+d, d)
		}
	}
	return text
}
