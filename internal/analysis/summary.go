// Package analysis computes descriptive statistics, insights and feature
// hints for a table. Every function works on the table it is given and
// keeps no state between calls.
package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/KaramelBytes/datalens-cli/internal/stats"
	"github.com/KaramelBytes/datalens-cli/internal/table"
)

// HighCardinalityRatio is the distinct/row ratio above which a categorical
// column is reported as high cardinality.
const HighCardinalityRatio = 0.5

const topValuesLimit = 3

// Shape is a (rows, columns) pair.
type Shape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// TopValue is one entry of a column's frequency table.
type TopValue struct {
	Value any `json:"value"`
	Count int `json:"count"`
}

// NumericStats describes a numeric column. Std is the population standard deviation.
type NumericStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	IQR    float64 `json:"iqr"`
}

// MarshalJSON writes non-finite statistics as null.
func (n NumericStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Mean   *float64 `json:"mean"`
		Median *float64 `json:"median"`
		Std    *float64 `json:"std"`
		Min    *float64 `json:"min"`
		Max    *float64 `json:"max"`
		IQR    *float64 `json:"iqr"`
	}{finite(n.Mean), finite(n.Median), finite(n.Std), finite(n.Min), finite(n.Max), finite(n.IQR)})
}

// finite returns nil for NaN and ±Inf so they serialize as null.
func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// ColumnSummary captures per-column statistics. TopValues is set for
// categorical columns; Statistics and Outliers for numeric columns with at
// least one value.
type ColumnSummary struct {
	Name           string        `json:"name"`
	Dtype          string        `json:"dtype"`
	NullCount      int           `json:"null_count"`
	NullPercentage float64       `json:"null_percentage"`
	Unique         int           `json:"unique"`
	TopValues      []TopValue    `json:"top_values"`
	Statistics     *NumericStats `json:"statistics"`
	Outliers       *int          `json:"outliers"`
}

// DatasetSummary is the dataset-level report.
type DatasetSummary struct {
	Shape             Shape             `json:"shape"`
	Size              int               `json:"size"`
	Dtypes            map[string]string `json:"dtypes"`
	MemoryBytes       uint64            `json:"memory_bytes"`
	MemoryUsage       string            `json:"memory_usage"`
	TotalMissing      int               `json:"total_missing"`
	MissingPercentage float64           `json:"missing_percentage"`
	DuplicateRows     int               `json:"duplicate_rows"`
	Columns           []ColumnSummary   `json:"columns"`
	Insights          []string          `json:"insights"`
}

// Summarize builds the DatasetSummary of t.
func Summarize(t *table.Table) *DatasetSummary {
	rows, ncols := t.Shape()
	s := &DatasetSummary{
		Shape:    Shape{Rows: rows, Columns: ncols},
		Size:     rows * ncols,
		Dtypes:   make(map[string]string, ncols),
		Columns:  make([]ColumnSummary, 0, ncols),
		Insights: []string{},
	}
	for _, c := range t.Columns() {
		cs := summarizeColumn(c, rows)
		s.Dtypes[c.Name] = cs.Dtype
		s.TotalMissing += cs.NullCount
		s.Columns = append(s.Columns, cs)
		s.Insights = append(s.Insights, columnInsights(cs, c.Kind, rows)...)
	}
	s.MissingPercentage = percent(s.TotalMissing, s.Size)
	for _, dup := range t.DuplicateMask() {
		if dup {
			s.DuplicateRows++
		}
	}
	s.MemoryBytes = MemoryBytes(t)
	s.MemoryUsage = humanize.IBytes(s.MemoryBytes)
	return s
}

func summarizeColumn(c *table.Column, rows int) ColumnSummary {
	cs := ColumnSummary{
		Name:      c.Name,
		Dtype:     c.Kind.String(),
		NullCount: c.NullCount(),
		Unique:    c.Distinct(),
	}
	cs.NullPercentage = percent(cs.NullCount, rows)
	switch c.Kind {
	case table.KindCategorical, table.KindUnknown:
		cs.TopValues = topValues(c, topValuesLimit)
	case table.KindNumeric:
		vals := c.Floats()
		if len(vals) == 0 {
			break
		}
		sorted := stats.Sorted(vals)
		mean, std := stats.PopMeanStd(vals)
		q1, q3, lower, upper := stats.IQRBounds(vals)
		cs.Statistics = &NumericStats{
			Mean:   mean,
			Median: stats.Quantile(sorted, 0.5),
			Std:    std,
			Min:    sorted[0],
			Max:    sorted[len(sorted)-1],
			IQR:    q3 - q1,
		}
		n := 0
		for _, v := range vals {
			if v < lower || v > upper {
				n++
			}
		}
		cs.Outliers = &n
	}
	return cs
}

// topValues returns the k most frequent non-null values, most frequent
// first; ties keep first-appearance order.
func topValues(c *table.Column, k int) []TopValue {
	counts := make(map[string]int)
	var order []table.Value
	for _, v := range c.Values {
		if v.IsNull() {
			continue
		}
		key := v.Key()
		if counts[key] == 0 {
			order = append(order, v)
		}
		counts[key]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i].Key()] > counts[order[j].Key()]
	})
	if len(order) > k {
		order = order[:k]
	}
	out := make([]TopValue, len(order))
	for i, v := range order {
		out[i] = TopValue{Value: v.Interface(), Count: counts[v.Key()]}
	}
	return out
}

func columnInsights(cs ColumnSummary, kind table.Kind, rows int) []string {
	var out []string
	if cs.NullCount > 0 {
		out = append(out, fmt.Sprintf("Column '%s' has %d missing values (%.2f%%).", cs.Name, cs.NullCount, cs.NullPercentage))
	}
	if cs.Outliers != nil && *cs.Outliers > 0 {
		out = append(out, fmt.Sprintf("Column '%s' contains %d potential outliers.", cs.Name, *cs.Outliers))
	}
	if kind == table.KindCategorical && highCardinality(cs.Unique, rows) {
		out = append(out, fmt.Sprintf("Column '%s' has high cardinality (%d unique).", cs.Name, cs.Unique))
	}
	return out
}

func highCardinality(unique, rows int) bool {
	if unique == 0 {
		return false
	}
	return float64(unique)/float64(max(1, rows)) > HighCardinalityRatio
}

// MemoryBytes approximates the in-memory footprint of t: 8 bytes per
// numeric, datetime or null cell and 16 plus the byte length per text cell.
func MemoryBytes(t *table.Table) uint64 {
	var n uint64
	for _, c := range t.Columns() {
		for _, v := range c.Values {
			if s, ok := v.Str(); ok {
				n += 16 + uint64(len(s))
				continue
			}
			n += 8
		}
	}
	return n
}

// percent returns 100·n/d rounded to two decimals, or 0 when d is 0.
func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return math.Round(10000*float64(n)/float64(d)) / 100
}
