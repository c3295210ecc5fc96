package querymodel

import (
	"strings"

	"github.com/shibukawa/sqltrack/quote"
	"github.com/shibukawa/sqltrack/sqltree"
)

// String renders the statement. Unchanged parts keep their source text; a
// SELECT that received items gets them appended to its original select list.
func (m *QueryModel) String() string {
	return sqltree.RenderFull(m.tree, m.override)
}

func (m *QueryModel) override(node *sqltree.Node) (string, bool) {
	if idx, ok := m.columnLists[node]; ok {
		return columnList(node, m.ctes[idx])
	}
	id, ok := m.lists[node]
	if !ok {
		return "", false
	}
	n := m.nodes[id]
	if !n.Modified() {
		return "", false
	}

	var sb strings.Builder
	sb.WriteString(sqltree.String(node))
	for _, item := range n.items {
		if !item.added {
			continue
		}
		sb.WriteString(", ")
		sb.WriteString(item.Expr)
		sb.WriteString(" AS ")
		sb.WriteString(quote.Identifier(item.Name, true))
	}
	return sb.String(), true
}

// columnList renders a CTE column list with the added names before its
// closing parenthesis.
func columnList(node *sqltree.Node, c *CTE) (string, bool) {
	if !c.modified() {
		return "", false
	}

	var sb strings.Builder
	for _, item := range c.names {
		if item.added {
			sb.WriteString(", ")
			sb.WriteString(item.Expr)
		}
	}
	sb.WriteString(")")

	closing := node.Children[len(node.Children)-1]
	return sqltree.Render(node, func(n *sqltree.Node) (string, bool) {
		return sb.String(), n == closing
	}), true
}
