package inspect

// InspectOptions controls inspect behavior.
type InspectOptions struct {
	Strict bool // if true, unparsable or non-data input is an error instead of a note
	Pretty bool // pretty-print JSON (used by CLI layer)
}

// TableRef describes a referenced table in the query.
type TableRef struct {
	Name     string `json:"name"`
	Alias    string `json:"alias,omitempty"`
	Schema   string `json:"schema,omitempty"`
	Source   string `json:"source"`    // main|join|cte|subquery
	JoinType string `json:"join_type"` // none|inner|left|right|full|cross|comma|natural|natural_left|natural_right|natural_full
	Node     int    `json:"node"`
}

// ItemInfo is one projection item of a query node.
type ItemInfo struct {
	Kind  string `json:"kind"` // expression|wildcard|qualified_wildcard
	Expr  string `json:"expr"`
	Name  string `json:"name,omitempty"`
	Added bool   `json:"added,omitempty"`
}

// NodeInfo describes one node of the query model.
type NodeInfo struct {
	ID       int        `json:"id"`
	Parent   int        `json:"parent"` // -1 for top-level terms and CTE bodies
	Kind     string     `json:"kind"`   // select|values|table|cte|opaque
	Alias    string     `json:"alias,omitempty"`
	Table    string     `json:"table,omitempty"`
	JoinType string     `json:"join_type,omitempty"`
	CTE      string     `json:"cte,omitempty"`
	Items    []ItemInfo `json:"items,omitempty"`
}

// InspectResult is the JSON-serializable output model.
type InspectResult struct {
	Statement string     `json:"statement"`
	DataQuery bool       `json:"data_query"`
	CTEs      []string   `json:"ctes,omitempty"`
	Nodes     []NodeInfo `json:"nodes,omitempty"`
	Tables    []TableRef `json:"tables"`
	Notes     []string   `json:"notes,omitempty"`
}
