package cleaning

import "github.com/KaramelBytes/datalens-cli/internal/table"

// Dedupe removes rows that fully equal an earlier row, keeping the first
// occurrence. It returns the new table and the number of rows removed.
// When disabled it returns an unchanged copy and 0.
func Dedupe(t *table.Table, enabled bool) (*table.Table, int) {
	if !enabled {
		return t.Clone(), 0
	}
	mask := t.DuplicateMask()
	keep := make([]bool, len(mask))
	removed := 0
	for i, dup := range mask {
		keep[i] = !dup
		if dup {
			removed++
		}
	}
	return t.KeepRows(keep), removed
}
