// Package sqltree defines the concrete syntax tree produced by the parser and
// the traversal helpers used to inspect and re-emit it.
//
// Every significant token of the source becomes a leaf. A leaf also keeps the
// whitespace and comments that preceded it, so any subtree can reproduce its
// exact source span.
package sqltree

import (
	"github.com/shibukawa/sqltrack/tokenizer"
)

// Kind represents the type of a tree node
type Kind int

const (
	// Statement structure
	KindStatement Kind = iota
	KindWith
	KindCTE
	KindQuery    // terms joined by set operators, plus ORDER BY/LIMIT/OFFSET/FETCH
	KindSelect   // SELECT core
	KindValues   // VALUES row list
	KindSubquery // ( query )
	KindSetOperator
	KindSetQuantifier

	// Projection
	KindSelectList
	KindSelectItem
	KindWildcard
	KindQualifiedWildcard
	KindAlias

	// FROM
	KindFrom
	KindTableRef
	KindTableName
	KindJoin
	KindJoinCondition

	// Other clauses
	KindWhere
	KindGroupBy
	KindHaving
	KindWindow
	KindQualify
	KindOrderBy
	KindLimit
	KindOffset
	KindFetch

	// Expressions
	KindExpression
	KindColumnRef
	KindFunctionCall
	KindParens

	// Leaves
	KindToken
	KindRaw
)

var kindNames = [...]string{
	KindStatement:         "Statement",
	KindWith:              "With",
	KindCTE:               "CTE",
	KindQuery:             "Query",
	KindSelect:            "Select",
	KindValues:            "Values",
	KindSubquery:          "Subquery",
	KindSetOperator:       "SetOperator",
	KindSetQuantifier:     "SetQuantifier",
	KindSelectList:        "SelectList",
	KindSelectItem:        "SelectItem",
	KindWildcard:          "Wildcard",
	KindQualifiedWildcard: "QualifiedWildcard",
	KindAlias:             "Alias",
	KindFrom:              "From",
	KindTableRef:          "TableRef",
	KindTableName:         "TableName",
	KindJoin:              "Join",
	KindJoinCondition:     "JoinCondition",
	KindWhere:             "Where",
	KindGroupBy:           "GroupBy",
	KindHaving:            "Having",
	KindWindow:            "Window",
	KindQualify:           "Qualify",
	KindOrderBy:           "OrderBy",
	KindLimit:             "Limit",
	KindOffset:            "Offset",
	KindFetch:             "Fetch",
	KindExpression:        "Expression",
	KindColumnRef:         "ColumnRef",
	KindFunctionCall:      "FunctionCall",
	KindParens:            "Parens",
	KindToken:             "Token",
	KindRaw:               "Raw",
}

// String returns string representation of Kind
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}

// Node is a node of the concrete syntax tree.
type Node struct {
	Kind     Kind
	Children []*Node
	Parent   *Node

	// Token is the significant token of a KindToken leaf.
	Token tokenizer.Token
	// Leading holds the whitespace and comments preceding a KindToken leaf.
	Leading []tokenizer.Token
	// Text is the literal output of a KindRaw leaf.
	Text string
}

// New creates an inner node and links the given children to it.
func New(kind Kind, children ...*Node) *Node {
	n := &Node{Kind: kind}
	n.Append(children...)
	return n
}

// NewLeaf creates a token leaf.
func NewLeaf(token tokenizer.Token, leading []tokenizer.Token) *Node {
	return &Node{Kind: KindToken, Token: token, Leading: leading}
}

// NewRaw creates a synthetic leaf that renders text verbatim.
func NewRaw(text string) *Node {
	return &Node{Kind: KindRaw, Text: text}
}

// Append links children to n. Nil children are ignored.
func (n *Node) Append(children ...*Node) {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.Parent = n
		n.Children = append(n.Children, c)
	}
}

// IsLeaf reports whether n is a token or raw leaf.
func (n *Node) IsLeaf() bool {
	return n.Kind == KindToken || n.Kind == KindRaw
}

// TokenType returns the token type of a token leaf, or UNKNOWN.
func (n *Node) TokenType() tokenizer.TokenType {
	if n.Kind != KindToken {
		return tokenizer.UNKNOWN
	}
	return n.Token.Type
}

// Leaves returns the leaves of the subtree in source order.
func (n *Node) Leaves() []*Node {
	var leaves []*Node
	var walk func(*Node)
	walk = func(node *Node) {
		if node.IsLeaf() {
			leaves = append(leaves, node)
			return
		}
		for _, c := range node.Children {
			walk(c)
		}
	}
	walk(n)
	return leaves
}

// FirstLeaf returns the first leaf of the subtree, or nil for an empty node.
func (n *Node) FirstLeaf() *Node {
	if n.IsLeaf() {
		return n
	}
	for _, c := range n.Children {
		if leaf := c.FirstLeaf(); leaf != nil {
			return leaf
		}
	}
	return nil
}

// Child returns the first direct child of the given kind, or nil.
func (n *Node) Child(kind Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// Ancestor returns the nearest ancestor of the given kind, or nil.
func (n *Node) Ancestor(kind Kind) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == kind {
			return p
		}
	}
	return nil
}

// Position returns the position of the first token of the subtree.
func (n *Node) Position() tokenizer.Position {
	if leaf := n.FirstLeaf(); leaf != nil {
		return leaf.Token.Position
	}
	return tokenizer.Position{}
}
