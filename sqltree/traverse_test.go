package sqltree

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/sqltrack/tokenizer"
)

// leaves tokenizes sql and returns one leaf per significant token, each with
// its preceding trivia attached. The EOF leaf is included.
func leaves(t *testing.T, sql string) []*Node {
	t.Helper()
	tokens, err := tokenizer.Tokenize(sql)
	assert.NoError(t, err)

	var result []*Node
	var trivia []tokenizer.Token
	for _, token := range tokens {
		if token.Type.IsTrivia() {
			trivia = append(trivia, token)
			continue
		}
		result = append(result, NewLeaf(token, trivia))
		trivia = nil
	}
	return result
}

// SELECT a, (SELECT b) FROM t
func sampleTree(t *testing.T) (*Node, *Node) {
	t.Helper()
	l := leaves(t, "/* c */ SELECT  a ,(SELECT b) FROM t")
	// 0:SELECT 1:a 2:, 3:( 4:SELECT 5:b 6:) 7:FROM 8:t 9:EOF
	innerSelect := New(KindSelect, l[4], New(KindSelectList, New(KindSelectItem, New(KindColumnRef, l[5]))))
	inner := New(KindSubquery, l[3], New(KindQuery, innerSelect), l[6])
	outer := New(KindSelect,
		l[0],
		New(KindSelectList,
			New(KindSelectItem, New(KindColumnRef, l[1])),
			l[2],
			New(KindSelectItem, inner),
		),
		New(KindFrom, l[7], New(KindTableRef, New(KindTableName, l[8]))),
	)
	root := New(KindStatement, New(KindQuery, outer), l[9])
	return root, innerSelect
}

func TestBFSDescendants(t *testing.T) {
	root, inner := sampleTree(t)

	selects := BFSDescendants(root, KindSelect)
	assert.Equal(t, 1, len(selects))
	assert.Equal(t, "SELECT  a ,(SELECT b) FROM t", String(selects[0]))

	nested := BFSDescendants(selects[0], KindSelect)
	assert.Equal(t, 1, len(nested))
	assert.True(t, nested[0] == inner)

	assert.Equal(t, 0, len(BFSDescendants(inner, KindSelect)))

	items := BFSDescendants(root, KindSelectItem, KindTableName)
	assert.Equal(t, 3, len(items))
	assert.Equal(t, KindSelectItem, items[0].Kind)
	assert.Equal(t, KindTableName, items[2].Kind)
}

func TestBFSDescendantsBreadthFirst(t *testing.T) {
	root, _ := sampleTree(t)
	refs := BFSDescendants(root, KindColumnRef)
	assert.Equal(t, []string{"a", "b"}, []string{String(refs[0]), String(refs[1])})
}

func TestString(t *testing.T) {
	root, inner := sampleTree(t)
	assert.Equal(t, "SELECT  a ,(SELECT b) FROM t", String(root))
	assert.Equal(t, "/* c */ SELECT  a ,(SELECT b) FROM t", FullString(root))
	assert.Equal(t, "SELECT b", String(inner))
	assert.Equal(t, "", String(nil))
}

func TestRender(t *testing.T) {
	root, inner := sampleTree(t)
	out := Render(root, func(n *Node) (string, bool) {
		if n == inner {
			return "SELECT 1 AS b", true
		}
		return "", false
	})
	assert.Equal(t, "SELECT  a ,(SELECT 1 AS b) FROM t", out)

	list := BFSDescendants(root, KindSelectList)[0]
	out = Render(root, func(n *Node) (string, bool) {
		if n == list {
			return String(n) + ", rowid", true
		}
		return "", false
	})
	assert.Equal(t, "SELECT  a ,(SELECT b), rowid FROM t", out)
}

func TestRawLeaf(t *testing.T) {
	l := leaves(t, "SELECT a")
	node := New(KindSelect, l[0], New(KindSelectList, l[1], NewRaw(", 1 AS x")))
	assert.Equal(t, "SELECT a, 1 AS x", String(node))
}

func TestNodeHelpers(t *testing.T) {
	root, inner := sampleTree(t)

	assert.Equal(t, KindSubquery, inner.Parent.Parent.Kind)
	assert.True(t, inner.Ancestor(KindStatement) == root)
	assert.True(t, inner.Ancestor(KindWith) == nil)

	assert.Equal(t, tokenizer.SELECT, inner.FirstLeaf().TokenType())
	assert.Equal(t, 2, len(inner.Leaves()))
	assert.Equal(t, 1, inner.Position().Line)
	assert.Equal(t, 21, inner.Position().Column)
	assert.True(t, root.Child(KindQuery) != nil)
}

func TestDebug(t *testing.T) {
	_, inner := sampleTree(t)
	out := Debug(inner)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "Select", lines[0])
	assert.Equal(t, `  SELECT "SELECT"`, lines[1])
	assert.Equal(t, `        IDENTIFIER "b"`, lines[len(lines)-1])
	assert.Equal(t, "Unknown", Kind(999).String())
}
