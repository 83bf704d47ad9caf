package cleaning

import (
	"github.com/KaramelBytes/datalens-cli/internal/stats"
	"github.com/KaramelBytes/datalens-cli/internal/table"
)

// OutlierOptions configures HandleOutliers. Remove gates row removal; Cap
// clips every numeric column to its CapQ quantiles instead and never removes
// rows.
type OutlierOptions struct {
	Method  string
	ZThresh float64
	Remove  bool
	Cap     bool
	CapQ    Quantiles
}

// Bounds is a closed interval; values strictly outside it are outliers.
type Bounds struct {
	Lower, Upper float64
}

// Outside reports whether v falls strictly outside b.
func (b Bounds) Outside(v float64) bool { return v < b.Lower || v > b.Upper }

// Thresholds computes per-column bounds for every numeric column with at
// least one non-null value.
func Thresholds(t *table.Table, method string, z float64) (map[string]Bounds, error) {
	if method != OutlierIQR && method != OutlierZScore {
		return nil, &ConfigError{Field: "outlier_method", Value: method, Reason: "must be 'iqr' or 'zscore'"}
	}
	out := make(map[string]Bounds)
	for _, c := range t.Columns() {
		if c.Kind != table.KindNumeric {
			continue
		}
		vals := c.Floats()
		if len(vals) == 0 {
			continue
		}
		var b Bounds
		if method == OutlierIQR {
			_, _, b.Lower, b.Upper = stats.IQRBounds(vals)
		} else {
			b.Lower, b.Upper = stats.ZBounds(vals, z)
		}
		out[c.Name] = b
	}
	return out, nil
}

// HandleOutliers flags outlier rows using thresholds computed once on t and
// returns the per-column outlier counts together with the resulting table.
// Counts are reported whatever the disposition.
func HandleOutliers(t *table.Table, opt OutlierOptions) (*table.Table, map[string]int, error) {
	bounds, err := Thresholds(t, opt.Method, opt.ZThresh)
	if err != nil {
		return nil, nil, err
	}
	counts := make(map[string]int, len(bounds))
	flagged := make([]bool, t.NumRows())
	found := false
	for _, c := range t.Columns() {
		b, ok := bounds[c.Name]
		if !ok {
			continue
		}
		n := 0
		for i, v := range c.Values {
			f, ok := v.Float()
			if ok && b.Outside(f) {
				n++
				flagged[i] = true
				found = true
			}
		}
		counts[c.Name] = n
	}
	switch {
	case !found:
		return t.Clone(), counts, nil
	case opt.Cap:
		return capColumns(t, opt.CapQ), counts, nil
	case opt.Remove:
		keep := make([]bool, len(flagged))
		for i, f := range flagged {
			keep[i] = !f
		}
		return t.KeepRows(keep), counts, nil
	default:
		return t.Clone(), counts, nil
	}
}

// capColumns clips each numeric column to its own [low, high] quantiles.
func capColumns(t *table.Table, q Quantiles) *table.Table {
	out := t.Clone()
	for _, c := range out.Columns() {
		if c.Kind != table.KindNumeric {
			continue
		}
		vals := c.Floats()
		if len(vals) == 0 {
			continue
		}
		s := stats.Sorted(vals)
		lo, hi := stats.Quantile(s, q.Low), stats.Quantile(s, q.High)
		for i, v := range c.Values {
			if f, ok := v.Float(); ok {
				c.Values[i] = table.Number(stats.Clip(f, lo, hi))
			}
		}
	}
	return out
}
