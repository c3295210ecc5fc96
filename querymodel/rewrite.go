package querymodel

import (
	"strings"

	"github.com/shibukawa/sqltrack/quote"
	tok "github.com/shibukawa/sqltrack/tokenizer"
)

// AddSelectItem adds items to every top-level term and threads them up from
// the innermost SELECT of each driving source chain. Either all changes are
// applied or, on error, none.
func (m *QueryModel) AddSelectItem(items ...SelectItem) error {
	return m.addSelectItem(m.roots, false, items)
}

// AddSelectItem adds items below and at n, then propagates them through n's
// ancestors up to the top level. For a term of a CTE body the propagation
// continues from every reference to that CTE.
func (n *QueryNode) AddSelectItem(items ...SelectItem) error {
	return n.model.addSelectItem([]int{n.id}, true, items)
}

func (m *QueryModel) addSelectItem(targets []int, upward bool, items []SelectItem) error {
	for _, item := range items {
		if strings.TrimSpace(item.Expr) == "" {
			return structuralError(nil, "empty expression")
		}
		if strings.TrimSpace(item.Alias) == "" {
			return structuralError(nil, "empty alias")
		}
	}

	p := &plan{
		m:       m,
		pending: make(map[int][]ProjectionItem),
		columns: make(map[int][]ProjectionItem),
	}
	for _, item := range items {
		done := make(map[int]bool)
		if !upward {
			if err := p.ensureGroup(targets, item, done); err != nil {
				return err
			}
			continue
		}
		n := m.nodes[targets[0]]
		if n.IsLeaf() {
			return structuralError(n, "a leaf has no select list")
		}
		if len(n.siblings) > 1 {
			return structuralError(n, "set operation branch would be extended without its siblings")
		}
		if err := p.ensure(n.id, item, done); err != nil {
			return err
		}
		if err := p.propagateUp(n.id, item.Alias, make(map[int]bool)); err != nil {
			return err
		}
	}
	p.commit()
	return nil
}

// plan collects the items to append per node and per CTE column list before
// anything is changed.
type plan struct {
	m       *QueryModel
	pending map[int][]ProjectionItem
	columns map[int][]ProjectionItem
}

func (p *plan) exposes(id int, name string) bool {
	if p.m.nodes[id].exposes(name) {
		return true
	}
	for _, item := range p.pending[id] {
		if item.named(name) {
			return true
		}
	}
	return false
}

func (p *plan) add(id int, expr, name string) {
	p.pending[id] = append(p.pending[id], ProjectionItem{
		Kind:   ExpressionItem,
		Expr:   expr,
		Name:   name,
		quoted: true,
		added:  true,
	})
}

// listed reports whether the column list of CTE idx names name.
func (p *plan) listed(idx int, name string) bool {
	if p.m.ctes[idx].hasColumn(name) {
		return true
	}
	for _, item := range p.columns[idx] {
		if item.named(name) {
			return true
		}
	}
	return false
}

func (p *plan) commit() {
	for id, items := range p.pending {
		n := p.m.nodes[id]
		n.items = append(n.items, items...)
	}
	for idx, names := range p.columns {
		c := p.m.ctes[idx]
		c.names = append(c.names, names...)
	}
}

// ensureGroup ensures every branch of one set operation. The branches must
// agree on whether they already expose the column: all of them are left
// alone, or none is.
func (p *plan) ensureGroup(ids []int, item SelectItem, done map[int]bool) error {
	if len(ids) > 1 {
		exposed := 0
		for _, id := range ids {
			if p.m.nodes[id].exposes(item.Alias) {
				exposed++
			}
		}
		switch exposed {
		case 0:
		case len(ids):
			return nil
		default:
			return structuralError(p.m.nodes[ids[0]],
				"only some set operation branches expose "+quote.Identifier(item.Alias, true))
		}
	}
	for _, id := range ids {
		if err := p.ensure(id, item, done); err != nil {
			return err
		}
	}
	return nil
}

// ensureCTE makes the body of CTE idx expose name, extending its column list
// when it has one.
func (p *plan) ensureCTE(idx int, item SelectItem, done map[int]bool) error {
	c := p.m.ctes[idx]
	if c.columns != nil && p.listed(idx, item.Alias) {
		return nil
	}
	if err := p.ensureGroup(c.terms, item, done); err != nil {
		return err
	}
	return p.extendColumns(idx, item.Alias)
}

// extendColumns appends name to the column list of CTE idx, if any.
func (p *plan) extendColumns(idx int, name string) error {
	c := p.m.ctes[idx]
	if c.columns == nil || p.listed(idx, name) {
		return nil
	}
	if p.m.nodes[c.terms[0]].exposes(name) {
		return &StructuralError{
			Node:     "CTE " + quote.Identifier(c.name, false),
			Position: c.columns.Position(),
			Reason:   "its column list renames " + quote.Identifier(name, true),
		}
	}
	p.columns[idx] = append(p.columns[idx], ProjectionItem{
		Kind:   ExpressionItem,
		Expr:   quote.Identifier(name, true),
		Name:   name,
		quoted: true,
		added:  true,
	})
	return nil
}

// ensure makes term id expose a column named item.Alias. It descends along
// the driving source (the first FROM source) to the innermost SELECT that
// reads a table directly, adds the expression there and references it on
// the way back.
func (p *plan) ensure(id int, item SelectItem, done map[int]bool) error {
	if done[id] {
		return nil
	}
	done[id] = true

	n := p.m.nodes[id]
	switch n.kind {
	case SourceValues:
		return structuralError(n, "a VALUES term cannot expose an added column")
	case SourceSelect:
	default:
		return structuralError(n, "a leaf has no select list")
	}
	if p.exposes(id, item.Alias) {
		return nil
	}

	driving := n.driving()
	if len(driving) == 0 {
		p.add(id, item.Expr, item.Alias)
		return nil
	}

	first := p.m.nodes[driving[0]]
	switch first.kind {
	case SourceTable, SourceOpaque:
		expr := item.Expr
		if n.groups > 1 && first.qualifier != "" && isBareIdentifier(expr) {
			expr = first.qualifier + "." + expr
		}
		p.add(id, expr, item.Alias)
		return nil
	case SourceCTE:
		if err := p.ensureCTE(first.cte, item, done); err != nil {
			return err
		}
	default:
		if err := p.ensureGroup(driving, item, done); err != nil {
			return err
		}
	}
	p.reference(id, first, item.Alias)
	return nil
}

// propagateUp references the column from every ancestor of id. Reaching
// the body of a CTE, it extends the CTE's column list and carries on from
// each leaf that reads the CTE. seen holds the CTEs already passed.
func (p *plan) propagateUp(id int, name string, seen map[int]bool) error {
	child := p.m.nodes[id]
	for child.parent >= 0 {
		parent := p.m.nodes[child.parent]
		if p.exposes(parent.id, name) {
			return nil
		}
		if len(parent.siblings) > 1 {
			return structuralError(parent, "set operation branch would be extended without its siblings")
		}
		p.reference(parent.id, child, name)
		child = parent
	}

	idx := child.body
	if idx < 0 || seen[idx] {
		return nil
	}
	seen[idx] = true
	if err := p.extendColumns(idx, name); err != nil {
		return err
	}
	for _, n := range p.m.nodes {
		if n.kind == SourceCTE && n.cte == idx {
			if err := p.propagateUp(n.id, name, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// reference makes id select the column name from child unless a wildcard of
// id already carries it.
func (p *plan) reference(id int, child *QueryNode, name string) {
	n := p.m.nodes[id]
	if n.covers(child) {
		return
	}
	expr := quote.Identifier(name, true)
	if n.groups > 1 && child.qualifier != "" {
		expr = child.qualifier + "." + expr
	}
	p.add(id, expr, name)
}

// driving returns the nodes of the first FROM source: one node for a table,
// one per branch for a derived table.
func (n *QueryNode) driving() []int {
	var ids []int
	for _, id := range n.children {
		if n.model.nodes[id].group == 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// covers reports whether a wildcard of n already selects every column of
// child.
func (n *QueryNode) covers(child *QueryNode) bool {
	source := child.sourceName()
	for _, item := range n.items {
		switch item.Kind {
		case WildcardItem:
			return true
		case QualifiedWildcardItem:
			if source != "" && foldEqual(lastSegment(item.Qualifier), source) {
				return true
			}
		}
	}
	return false
}

func isBareIdentifier(expr string) bool {
	tokens, err := tok.NewSqlTokenizer(strings.TrimSpace(expr)).AllTokens()
	return err == nil && len(tokens) == 2 && tokens[0].Type == tok.IDENTIFIER
}
