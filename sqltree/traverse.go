package sqltree

import (
	"fmt"
	"slices"
	"strings"
)

// BFSDescendants returns the strict descendants of node whose kind is one of
// kinds, in breadth-first order. The search does not continue below a match,
// so nested nodes of the same kind are left for a call rooted at the match.
func BFSDescendants(node *Node, kinds ...Kind) []*Node {
	if node == nil {
		return nil
	}
	var result []*Node
	queue := slices.Clone(node.Children)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if slices.Contains(kinds, current.Kind) {
			result = append(result, current)
			continue
		}
		queue = append(queue, current.Children...)
	}
	return result
}

// String reconstructs the source text of the subtree. Trivia between tokens
// is reproduced as written; the trivia before the first token is not.
func String(node *Node) string {
	return Render(node, nil)
}

// FullString is like String but also includes the trivia before the first
// token.
func FullString(node *Node) string {
	return RenderFull(node, nil)
}

// Render reconstructs the source text of the subtree like String, except
// that for every node where override returns ok the returned text is written
// instead of the node's own span. The trivia preceding an overridden node is
// kept.
func Render(node *Node, override func(*Node) (string, bool)) string {
	if node == nil {
		return ""
	}
	r := renderer{override: override}
	r.walk(node)
	return r.sb.String()
}

// RenderFull is like Render but also includes the trivia before the first
// token.
func RenderFull(node *Node, override func(*Node) (string, bool)) string {
	if node == nil {
		return ""
	}
	r := renderer{override: override, started: true}
	r.walk(node)
	return r.sb.String()
}

type renderer struct {
	sb       strings.Builder
	override func(*Node) (string, bool)
	started  bool
}

func (r *renderer) walk(n *Node) {
	if r.override != nil {
		if text, ok := r.override(n); ok {
			r.leading(n)
			r.sb.WriteString(text)
			return
		}
	}
	switch n.Kind {
	case KindToken:
		r.leading(n)
		r.sb.WriteString(n.Token.Value)
	case KindRaw:
		r.started = true
		r.sb.WriteString(n.Text)
	default:
		for _, c := range n.Children {
			r.walk(c)
		}
	}
}

func (r *renderer) leading(n *Node) {
	leaf := n.FirstLeaf()
	if leaf != nil && leaf.Kind == KindToken && r.started {
		for _, t := range leaf.Leading {
			r.sb.WriteString(t.Value)
		}
	}
	r.started = true
}

// Debug returns an indented dump of the subtree for diagnostics.
func Debug(node *Node) string {
	var sb strings.Builder
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		sb.WriteString(strings.Repeat("  ", depth))
		switch n.Kind {
		case KindToken:
			fmt.Fprintf(&sb, "%s %q\n", n.Token.Type, n.Token.Value)
		case KindRaw:
			fmt.Fprintf(&sb, "Raw %q\n", n.Text)
		default:
			sb.WriteString(n.Kind.String())
			sb.WriteByte('\n')
			for _, c := range n.Children {
				walk(c, depth+1)
			}
		}
	}
	if node != nil {
		walk(node, 0)
	}
	return sb.String()
}
