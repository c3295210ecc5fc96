// Package inspect summarises a SQL statement: its kind, whether it returns
// rows, the query model and the tables it reads.
package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shibukawa/sqltrack/classify"
	"github.com/shibukawa/sqltrack/querymodel"
	"github.com/shibukawa/sqltrack/tokenizer"
)

// Inspect parses SQL and returns a summarized view suitable for JSON.
func Inspect(r io.Reader, opt InspectOptions) (InspectResult, error) {
	var res InspectResult

	b, err := io.ReadAll(r)
	if err != nil {
		return res, fmt.Errorf("read input: %w", err)
	}

	return InspectSQL(string(b), opt)
}

// InspectSQL is Inspect over a string.
func InspectSQL(sql string, opt InspectOptions) (InspectResult, error) {
	res := InspectResult{Tables: []TableRef{}}

	tokens, err := tokenizer.Tokenize(sql)
	if err != nil {
		if opt.Strict {
			return res, fmt.Errorf("tokenize: %w", err)
		}

		res.Notes = append(res.Notes, "not tokenized: "+err.Error())

		return res, nil
	}

	res.Statement = statementKind(tokens)
	res.DataQuery = classify.IsDataQuery(tokens)

	if !res.DataQuery {
		if opt.Strict {
			return res, fmt.Errorf("%s statement is not a data query", res.Statement)
		}

		res.Notes = append(res.Notes, "not a data query")

		return res, nil
	}

	m, err := querymodel.FromSQL(sql)
	if err != nil {
		if opt.Strict {
			return res, err
		}

		res.Notes = append(res.Notes, "not parsed: "+err.Error())

		return res, nil
	}

	Describe(m, &res)

	return res, nil
}

// Describe fills the model part of res from m. It can be called after
// AddSelectItem to show the added items.
func Describe(m *querymodel.QueryModel, res *InspectResult) {
	res.CTEs = res.CTEs[:0]
	for _, c := range m.CTEs() {
		res.CTEs = append(res.CTEs, c.Name())
	}

	res.Nodes = res.Nodes[:0]
	res.Tables = []TableRef{}

	roots := map[int]bool{}
	for _, n := range m.Roots() {
		roots[n.ID()] = true
	}

	for _, n := range m.Nodes() {
		res.Nodes = append(res.Nodes, describeNode(n))

		if n.Kind() != querymodel.SourceTable && n.Kind() != querymodel.SourceCTE {
			continue
		}

		res.Tables = append(res.Tables, tableRef(n, roots[n.Parent().ID()]))
	}
}

func describeNode(n *querymodel.QueryNode) NodeInfo {
	info := NodeInfo{
		ID:     n.ID(),
		Parent: -1,
		Kind:   n.Kind().String(),
		Alias:  n.Alias(),
		Table:  n.TableName(),
	}

	if p := n.Parent(); p != nil {
		info.Parent = p.ID()
		info.JoinType = joinToString(n.JoinType())
	}

	if c := n.CTE(); c != nil {
		info.CTE = c.Name()
	}

	for _, item := range n.Items() {
		info.Items = append(info.Items, ItemInfo{
			Kind:  item.Kind.String(),
			Expr:  item.Expr,
			Name:  item.Name,
			Added: item.Added(),
		})
	}

	return info
}

func tableRef(n *querymodel.QueryNode, topLevel bool) TableRef {
	ref := TableRef{
		Name:     n.TableName(),
		Alias:    n.Alias(),
		JoinType: joinToString(n.JoinType()),
		Node:     n.ID(),
	}

	if i := strings.LastIndexByte(ref.Name, '.'); i >= 0 {
		ref.Schema = ref.Name[:i]
		ref.Name = ref.Name[i+1:]
	}

	switch {
	case n.Kind() == querymodel.SourceCTE:
		ref.Source = "cte"
	case !topLevel:
		ref.Source = "subquery"
	case n.JoinType() == "":
		ref.Source = "main"
	default:
		ref.Source = "join"
	}

	return ref
}

func joinToString(joinType string) string {
	switch joinType {
	case "":
		return "none"
	case ",":
		return "comma"
	}

	var words []string

	for _, w := range strings.Fields(strings.ToLower(joinType)) {
		if w != "join" && w != "outer" {
			words = append(words, w)
		}
	}

	if len(words) == 0 || (len(words) == 1 && words[0] == "natural") {
		words = append(words, "inner")
	}

	if words[0] == "natural" && words[1] == "inner" {
		return "natural"
	}

	return strings.Join(words, "_")
}

// statementKind is the lower-cased first word, looking through a WITH
// clause and parentheses to the main term.
func statementKind(tokens []tokenizer.Token) string {
	depth := 0
	inWith := false

	for _, t := range tokens {
		switch {
		case t.Type.IsTrivia():
			continue
		case t.Type == tokenizer.EOF:
			if inWith {
				return "with"
			}

			return "empty"
		case t.Type == tokenizer.WITH:
			inWith = true
			continue
		case t.Type == tokenizer.OPENED_PARENS:
			depth++
			continue
		case t.Type == tokenizer.CLOSED_PARENS:
			depth--
			continue
		}

		if !inWith {
			if t.Type.IsKeyword() || t.Type == tokenizer.IDENTIFIER {
				return strings.ToLower(t.Value)
			}

			continue
		}

		switch t.Type {
		case tokenizer.SELECT, tokenizer.VALUES, tokenizer.INSERT, tokenizer.UPDATE, tokenizer.DELETE:
			if depth == 0 {
				return strings.ToLower(t.Value)
			}
		}
	}

	return "unknown"
}

// MarshalResult renders res as JSON.
func MarshalResult(res InspectResult, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(res, "", "  ")
	}

	return json.Marshal(res)
}
