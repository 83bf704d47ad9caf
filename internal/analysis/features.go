package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/KaramelBytes/datalens-cli/internal/stats"
	"github.com/KaramelBytes/datalens-cli/internal/table"
)

// StrongCorrelation is the absolute Pearson coefficient above which a pair
// of numeric columns is reported.
const StrongCorrelation = 0.7

// CorrPair is one strongly correlated pair of numeric columns.
type CorrPair struct {
	Col1        string  `json:"col1"`
	Col2        string  `json:"col2"`
	Correlation float64 `json:"correlation"`
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric
// columns. Undefined coefficients are stored as 0.
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"` // row-major, Values[i][j]
}

// KPI holds headline numbers for the first numeric column and, when a date
// column exists, the time span it covers.
type KPI struct {
	Column string     `json:"column,omitempty"`
	Total  float64    `json:"total"`
	Mean   float64    `json:"mean"`
	Rows   int        `json:"rows"`
	Start  *time.Time `json:"start,omitempty"`
	End    *time.Time `json:"end,omitempty"`
}

// MarshalJSON writes a non-finite total or mean as null.
func (k KPI) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Column string     `json:"column,omitempty"`
		Total  *float64   `json:"total"`
		Mean   *float64   `json:"mean"`
		Rows   int        `json:"rows"`
		Start  *time.Time `json:"start,omitempty"`
		End    *time.Time `json:"end,omitempty"`
	}{k.Column, finite(k.Total), finite(k.Mean), k.Rows, k.Start, k.End})
}

// FeatureReport lists column kinds, strong correlations and suggestions.
type FeatureReport struct {
	Numeric            []string    `json:"numeric_features"`
	Categorical        []string    `json:"categorical_features"`
	Datetime           []string    `json:"datetime_features"`
	StrongCorrelations []CorrPair  `json:"strong_correlations"`
	Suggestions        []string    `json:"suggestions"`
	Matrix             *CorrMatrix `json:"correlation_matrix"`
	DateColumn         string      `json:"date_column,omitempty"`
	DateCandidates     []string    `json:"date_candidates"`
	DateAmbiguous      bool        `json:"date_ambiguous"`
	KPI                *KPI        `json:"kpi"`
}

// Analyzer extracts features using its Classifier for kinds and the date column.
type Analyzer struct {
	Classifier table.Classifier
}

// ExtractFeatures runs a default Analyzer.
func ExtractFeatures(t *table.Table) *FeatureReport {
	return Analyzer{}.ExtractFeatures(t)
}

// ExtractFeatures classifies columns of t, correlates numeric pairs and flags
// high-cardinality categorical columns. t is not modified.
func (a Analyzer) ExtractFeatures(t *table.Table) *FeatureReport {
	dt, choice := a.Classifier.DetectDates(t)
	cls := a.Classifier.Classify(dt)
	rep := &FeatureReport{
		Numeric:            cls.Numeric,
		Categorical:        cls.Categorical,
		Datetime:           cls.Datetime,
		StrongCorrelations: []CorrPair{},
		Suggestions:        []string{},
		DateColumn:         choice.Column,
		DateCandidates:     choice.Candidates,
		DateAmbiguous:      choice.Ambiguous,
	}
	if rep.DateCandidates == nil {
		rep.DateCandidates = []string{}
	}
	if len(cls.Numeric) >= 2 {
		rep.Matrix = Correlations(dt, cls.Numeric)
		n := len(rep.Matrix.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				r := rep.Matrix.Values[i][j]
				if math.Abs(r) > StrongCorrelation {
					rep.StrongCorrelations = append(rep.StrongCorrelations, CorrPair{
						Col1: rep.Matrix.Columns[i], Col2: rep.Matrix.Columns[j], Correlation: r,
					})
				}
			}
		}
	}
	rows := dt.NumRows()
	for _, name := range cls.Categorical {
		uniq := dt.Column(name).Distinct()
		if highCardinality(uniq, rows) {
			rep.Suggestions = append(rep.Suggestions, fmt.Sprintf("Column '%s' has high cardinality: %d", name, uniq))
		}
	}
	rep.KPI = kpi(dt, cls.Numeric, choice.Column)
	return rep
}

// Correlations computes the pairwise-complete Pearson matrix of the named
// numeric columns: each pair uses the rows where both values are present.
func Correlations(t *table.Table, names []string) *CorrMatrix {
	n := len(names)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 0; a < n; a++ {
		ca := t.Column(names[a])
		for b := a + 1; b < n; b++ {
			cb := t.Column(names[b])
			var xs, ys []float64
			for i := range ca.Values {
				x, okx := ca.Values[i].Float()
				y, oky := cb.Values[i].Float()
				if okx && oky {
					xs = append(xs, x)
					ys = append(ys, y)
				}
			}
			r := stats.Pearson(xs, ys)
			if math.IsNaN(r) {
				r = 0
			}
			mat[a][b], mat[b][a] = r, r
		}
	}
	cols := make([]string, n)
	copy(cols, names)
	return &CorrMatrix{Columns: cols, Values: mat}
}

func kpi(t *table.Table, numeric []string, dateCol string) *KPI {
	if len(numeric) == 0 {
		return nil
	}
	c := t.Column(numeric[0])
	vals := c.Floats()
	k := &KPI{Column: c.Name, Mean: stats.Mean(vals), Rows: t.NumRows()}
	for _, v := range vals {
		k.Total += v
	}
	if dateCol == "" {
		return k
	}
	for _, v := range t.Column(dateCol).Values {
		ts, ok := v.Time()
		if !ok {
			continue
		}
		if k.Start == nil || ts.Before(*k.Start) {
			s := ts
			k.Start = &s
		}
		if k.End == nil || ts.After(*k.End) {
			e := ts
			k.End = &e
		}
	}
	return k
}
