// Package querymodel mirrors the nested SELECT structure of a statement as a
// graph of query nodes, adds projections to it and renders it back to SQL.
//
// Nodes live in an arena owned by the QueryModel. A node owns its FROM
// children; the parent link is an arena index.
package querymodel

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/shibukawa/sqltrack/parser"
	"github.com/shibukawa/sqltrack/quote"
	"github.com/shibukawa/sqltrack/sqltree"
)

// ItemKind is the kind of a projection item.
type ItemKind int

const (
	ExpressionItem        ItemKind = iota // expr [AS name]
	WildcardItem                          // *
	QualifiedWildcardItem                 // q.*
)

func (k ItemKind) String() string {
	switch k {
	case WildcardItem:
		return "wildcard"
	case QualifiedWildcardItem:
		return "qualified_wildcard"
	}
	return "expression"
}

// ProjectionItem is one entry of a select list.
type ProjectionItem struct {
	Kind ItemKind
	// Expr is the source text of the item without its alias.
	Expr string
	// Name is the output column name: the alias, the bare column name or the
	// function name. Empty when the engine assigns it.
	Name string
	// Qualifier is the unquoted source name of a qualified wildcard.
	Qualifier string

	quoted bool
	added  bool
}

// Added reports whether the item was added by AddSelectItem.
func (p ProjectionItem) Added() bool {
	return p.added
}

// named reports whether the item's output column is name. A quoted name is
// matched exactly, an unquoted one case-insensitively.
func (p ProjectionItem) named(name string) bool {
	if p.quoted {
		return p.Name == name
	}
	return foldEqual(p.Name, name)
}

// SelectItem is a projection to add.
type SelectItem struct {
	Expr  string
	Alias string
}

// SourceKind classifies a query node.
type SourceKind int

const (
	SourceSelect SourceKind = iota // SELECT term
	SourceValues                   // VALUES term of a root or set operation
	SourceTable                    // base table
	SourceCTE                      // reference to a CTE of the statement
	SourceOpaque                   // table function, VALUES list or parenthesised join
)

func (k SourceKind) String() string {
	switch k {
	case SourceValues:
		return "values"
	case SourceTable:
		return "table"
	case SourceCTE:
		return "cte"
	case SourceOpaque:
		return "opaque"
	}
	return "select"
}

// QueryModel is the query graph of one statement.
type QueryModel struct {
	handle *parser.Handle
	tree   *sqltree.Node
	nodes  []*QueryNode
	roots  []int
	ctes   []*CTE
	lists  map[*sqltree.Node]int
	// columnLists maps the explicit column list of a CTE to its index.
	columnLists map[*sqltree.Node]int
}

// CTE is one definition of a WITH clause.
type CTE struct {
	model *QueryModel
	name  string
	node  *sqltree.Node
	terms []int

	// columns is the explicit column list; nil when the CTE has none.
	columns *sqltree.Node
	names   []ProjectionItem
}

// Name returns the unquoted CTE name.
func (c *CTE) Name() string {
	return c.name
}

// Terms returns the top-level terms of the CTE body.
func (c *CTE) Terms() []*QueryNode {
	return c.model.resolve(c.terms)
}

// Columns returns the names of the explicit column list, including added
// ones, or nil when the CTE has no column list.
func (c *CTE) Columns() []string {
	if c.columns == nil {
		return nil
	}
	names := make([]string, len(c.names))
	for i, item := range c.names {
		names[i] = item.Name
	}
	return names
}

func (c *CTE) hasColumn(name string) bool {
	for _, item := range c.names {
		if item.named(name) {
			return true
		}
	}
	return false
}

func (c *CTE) modified() bool {
	for _, item := range c.names {
		if item.added {
			return true
		}
	}
	return false
}

// String returns the source text of the definition.
func (c *CTE) String() string {
	return sqltree.Render(c.node, c.model.override)
}

// QueryNode is a SELECT or VALUES term, or a leaf source of a FROM clause.
type QueryNode struct {
	model    *QueryModel
	id       int
	parent   int
	children []int
	siblings []int
	kind     SourceKind
	items    []ProjectionItem

	span *sqltree.Node

	alias     string
	qualifier string
	tableName string
	joinType  string
	group     int
	groups    int
	cte       int
	// body is the index of the CTE whose body this term is a top-level term
	// of, or -1.
	body int
}

// Tree returns the statement's syntax tree.
func (m *QueryModel) Tree() *sqltree.Node {
	return m.tree
}

// SQL returns the statement as it was given.
func (m *QueryModel) SQL() string {
	return m.handle.SQL()
}

// Roots returns the top-level terms. More than one root means a top-level
// set operation.
func (m *QueryModel) Roots() []*QueryNode {
	return m.resolve(m.roots)
}

// CTEs returns the CTE definitions of the statement in source order.
func (m *QueryModel) CTEs() []*CTE {
	return m.ctes
}

// Nodes returns every node in the order they were built.
func (m *QueryModel) Nodes() []*QueryNode {
	return m.nodes
}

// Modified reports whether any node or CTE column list received an added
// item.
func (m *QueryModel) Modified() bool {
	for _, n := range m.nodes {
		if n.Modified() {
			return true
		}
	}
	for _, c := range m.ctes {
		if c.modified() {
			return true
		}
	}
	return false
}

func (m *QueryModel) resolve(ids []int) []*QueryNode {
	nodes := make([]*QueryNode, len(ids))
	for i, id := range ids {
		nodes[i] = m.nodes[id]
	}
	return nodes
}

// ID returns the arena index of the node.
func (n *QueryNode) ID() int {
	return n.id
}

// Kind returns the node's source kind.
func (n *QueryNode) Kind() SourceKind {
	return n.kind
}

// Items returns the projection, including added items.
func (n *QueryNode) Items() []ProjectionItem {
	return append([]ProjectionItem(nil), n.items...)
}

// From returns the FROM sources in source order. A derived table holding a
// set operation contributes one node per branch.
func (n *QueryNode) From() []*QueryNode {
	return n.model.resolve(n.children)
}

// Alias returns the unquoted alias of the source, if any.
func (n *QueryNode) Alias() string {
	return n.alias
}

// TableName returns the unquoted table name of a table or CTE leaf.
func (n *QueryNode) TableName() string {
	return n.tableName
}

// Parent returns the enclosing SELECT, or nil for roots and CTE bodies.
func (n *QueryNode) Parent() *QueryNode {
	if n.parent < 0 {
		return nil
	}
	return n.model.nodes[n.parent]
}

// IsLeaf reports whether the node has no projection of its own.
func (n *QueryNode) IsLeaf() bool {
	return n.kind == SourceTable || n.kind == SourceCTE || n.kind == SourceOpaque
}

// JoinType returns how the source joins its preceding sources: empty for the
// first source, "," for a comma join, else the join keywords.
func (n *QueryNode) JoinType() string {
	return n.joinType
}

// CTE returns the definition a CTE leaf refers to.
func (n *QueryNode) CTE() *CTE {
	if n.cte < 0 {
		return nil
	}
	return n.model.ctes[n.cte]
}

// Modified reports whether the node received added items.
func (n *QueryNode) Modified() bool {
	for _, item := range n.items {
		if item.added {
			return true
		}
	}
	return false
}

// String renders the node's span with all added items.
func (n *QueryNode) String() string {
	return sqltree.Render(n.span, n.model.override)
}

// sourceName is the name a qualified wildcard in the parent uses for n.
func (n *QueryNode) sourceName() string {
	if n.alias != "" {
		return n.alias
	}
	if n.tableName != "" {
		return lastSegment(n.tableName)
	}
	return ""
}

func (n *QueryNode) describe() string {
	switch n.kind {
	case SourceTable, SourceCTE:
		return n.kind.String() + " leaf " + quote.Identifier(n.tableName, false)
	case SourceOpaque:
		return "opaque leaf"
	}
	return strings.ToUpper(n.kind.String()) + " term"
}

func (n *QueryNode) exposes(name string) bool {
	for _, item := range n.items {
		if item.Kind == ExpressionItem && item.named(name) {
			return true
		}
	}
	return false
}

func foldEqual(a, b string) bool {
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}
