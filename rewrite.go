// Package sqltrack adds a row-tracking column to SQL data queries. The
// column is selected where a base table is read and carried through every
// enclosing SELECT up to the statement's result.
package sqltrack

import (
	"github.com/shibukawa/sqltrack/classify"
	"github.com/shibukawa/sqltrack/querymodel"
)

// Rewrite returns sql with items added to its result. Statements that are
// not data queries come back unchanged with rewritten set to false.
func Rewrite(sql string, items ...querymodel.SelectItem) (result string, rewritten bool, err error) {
	if !classify.IsDataQuerySQL(sql) {
		return sql, false, nil
	}

	m, err := querymodel.FromSQL(sql)
	if err != nil {
		return "", false, err
	}

	if err := m.AddSelectItem(items...); err != nil {
		return "", false, err
	}

	return m.String(), true, nil
}

// RewriteWithConfig is Rewrite with the tracking item of cfg.
func RewriteWithConfig(sql string, cfg *Config) (string, bool, error) {
	return Rewrite(sql, cfg.TrackingItem())
}
