package cleaning

import "github.com/KaramelBytes/datalens-cli/internal/table"

// DropEmpty removes columns whose every value is null. When disabled it
// returns an unchanged copy and no names.
func DropEmpty(t *table.Table, enabled bool) (*table.Table, []string) {
	if !enabled {
		return t.Clone(), []string{}
	}
	return dropWhere(t, (*table.Column).AllNull)
}

// DropSingleValue removes columns with at most one distinct non-null value.
func DropSingleValue(t *table.Table) (*table.Table, []string) {
	return dropWhere(t, func(c *table.Column) bool { return c.Distinct() <= 1 })
}

func dropWhere(t *table.Table, pred func(*table.Column) bool) (*table.Table, []string) {
	names := []string{}
	for _, c := range t.Columns() {
		if pred(c) {
			names = append(names, c.Name)
		}
	}
	if len(names) == 0 {
		return t.Clone(), names
	}
	return t.Drop(names...), names
}
