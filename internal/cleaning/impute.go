package cleaning

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/datalens-cli/internal/stats"
	"github.com/KaramelBytes/datalens-cli/internal/table"
)

// Impute applies the missing-value strategy and returns the new table with
// its report lines. t is not modified. Unknown methods return an unchanged
// copy and no actions.
func Impute(t *table.Table, s MissingStrategy) (*table.Table, []string) {
	switch s.Method {
	case MissingDrop:
		return dropMissingRows(t)
	case MissingMean, MissingMedian:
		return fillNumeric(t, s.Method)
	case MissingMode:
		return fillMode(t)
	case MissingConstant:
		return fillConstant(t, s.constantValue())
	case MissingFFill:
		return fillDirectional(t, true), []string{"Filled missing with forward fill"}
	case MissingBFill:
		return fillDirectional(t, false), []string{"Filled missing with backward fill"}
	default:
		return t.Clone(), nil
	}
}

func dropMissingRows(t *table.Table) (*table.Table, []string) {
	keep := make([]bool, t.NumRows())
	dropped := 0
	for i := range keep {
		keep[i] = true
		for _, c := range t.Columns() {
			if c.Values[i].IsNull() {
				keep[i] = false
				dropped++
				break
			}
		}
	}
	return t.KeepRows(keep), []string{fmt.Sprintf("Dropped %d rows with missing values", dropped)}
}

func fillNumeric(t *table.Table, method string) (*table.Table, []string) {
	out := t.Clone()
	var actions []string
	for _, c := range out.Columns() {
		if c.Kind != table.KindNumeric {
			continue
		}
		nulls := c.NullCount()
		if nulls == 0 || nulls == c.Len() {
			continue
		}
		vals := c.Floats()
		var fill float64
		if method == MissingMean {
			fill = stats.Mean(vals)
		} else {
			fill = stats.Median(vals)
		}
		fillNulls(c, table.Number(fill))
		actions = append(actions, fmt.Sprintf("Filled %s with %s (%s)", c.Name, method, table.FormatNumber(fill)))
	}
	return out, actions
}

func fillMode(t *table.Table) (*table.Table, []string) {
	out := t.Clone()
	var actions []string
	for _, c := range out.Columns() {
		if c.NullCount() == 0 {
			continue
		}
		m, ok := Mode(c)
		if !ok {
			continue
		}
		fillNulls(c, m)
		actions = append(actions, fmt.Sprintf("Filled %s with mode (%s)", c.Name, m.String()))
	}
	return out, actions
}

// Mode returns the most frequent non-null value of c. Ties go to the
// smallest value. ok is false for an all-null column.
func Mode(c *table.Column) (table.Value, bool) {
	counts := make(map[string]int)
	first := make(map[string]table.Value)
	for _, v := range c.Values {
		if v.IsNull() {
			continue
		}
		k := v.Key()
		if _, seen := first[k]; !seen {
			first[k] = v
		}
		counts[k]++
	}
	if len(counts) == 0 {
		return table.Null, false
	}
	cands := make([]table.Value, 0, len(first))
	for _, v := range first {
		cands = append(cands, v)
	}
	sort.Slice(cands, func(i, j int) bool {
		ci, cj := counts[cands[i].Key()], counts[cands[j].Key()]
		if ci != cj {
			return ci > cj
		}
		return cands[i].Less(cands[j])
	})
	return cands[0], true
}

func fillConstant(t *table.Table, v table.Value) (*table.Table, []string) {
	out := t.Clone()
	for _, c := range out.Columns() {
		if c.NullCount() == 0 {
			continue
		}
		fillNulls(c, coerceConstant(c, v))
	}
	return out, []string{fmt.Sprintf("Filled all missing with constant value '%s'", v.String())}
}

// coerceConstant returns the fill value for c, converting c to text when the
// constant cannot be stored in its kind.
func coerceConstant(c *table.Column, v table.Value) table.Value {
	switch c.Kind {
	case table.KindUnknown:
		c.Kind = v.Kind()
		return v
	case v.Kind():
		return v
	case table.KindDatetime:
		if s, ok := v.Str(); ok {
			if ts, ok := table.ParseTime(s); ok {
				return table.Timestamp(ts)
			}
		}
	case table.KindNumeric:
		if s, ok := v.Str(); ok {
			if f, ok := table.ParseNumber(s, table.InferOptions{DecimalSeparator: '.'}); ok {
				return table.Number(f)
			}
		}
	}
	toText(c)
	return table.Text(v.String())
}

func toText(c *table.Column) {
	for i, v := range c.Values {
		if !v.IsNull() {
			c.Values[i] = table.Text(v.String())
		}
	}
	c.Kind = table.KindCategorical
}

func fillNulls(c *table.Column, v table.Value) {
	for i := range c.Values {
		if c.Values[i].IsNull() {
			c.Values[i] = v
		}
	}
}

func fillDirectional(t *table.Table, forward bool) *table.Table {
	out := t.Clone()
	for _, c := range out.Columns() {
		n := c.Len()
		last := table.Null
		for k := 0; k < n; k++ {
			i := k
			if !forward {
				i = n - 1 - k
			}
			if c.Values[i].IsNull() {
				c.Values[i] = last
			} else {
				last = c.Values[i]
			}
		}
	}
	return out
}
