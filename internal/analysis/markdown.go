package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/table"
)

// Markdown renders a compact report suitable for terminals or standalone docs.
func (s *DatasetSummary) Markdown(name string) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", s.Shape.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", s.Shape.Columns))
	b.WriteString(fmt.Sprintf("Memory: %s\n", s.MemoryUsage))
	b.WriteString(fmt.Sprintf("Missing: %d cells (%.2f%%)\n", s.TotalMissing, s.MissingPercentage))
	b.WriteString(fmt.Sprintf("Duplicate rows: %d\n\n", s.DuplicateRows))

	b.WriteString("[SCHEMA]\n")
	for _, c := range s.Columns {
		b.WriteString(fmt.Sprintf("- %s: %s (missing %d, %.2f%%; unique %d)", safeName(c.Name), c.Dtype, c.NullCount, c.NullPercentage, c.Unique))
		if st := c.Statistics; st != nil {
			b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g, iqr %.4g",
				st.Min, st.Max, st.Mean, st.Median, st.Std, st.IQR))
			if c.Outliers != nil && *c.Outliers > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d outside 1.5·IQR", *c.Outliers))
			}
		}
		if len(c.TopValues) > 0 {
			b.WriteString(" — top: ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(fmt.Sprint(kv.Value)), kv.Count))
			}
		}
		b.WriteString("\n")
	}
	if len(s.Insights) > 0 {
		b.WriteString("\n[INSIGHTS]\n")
		for _, in := range s.Insights {
			b.WriteString("- " + in + "\n")
		}
	}
	return b.String()
}

// Markdown renders the feature report. The matrix is only listed when
// withMatrix is set; strong pairs are always listed.
func (r *FeatureReport) Markdown(withMatrix bool) string {
	var b strings.Builder
	b.WriteString("[FEATURES]\n")
	b.WriteString(fmt.Sprintf("Numeric: %s\n", joinOrNone(r.Numeric)))
	b.WriteString(fmt.Sprintf("Categorical: %s\n", joinOrNone(r.Categorical)))
	b.WriteString(fmt.Sprintf("Datetime: %s\n", joinOrNone(r.Datetime)))
	if r.DateColumn != "" {
		b.WriteString(fmt.Sprintf("Date column: %s", r.DateColumn))
		if r.DateAmbiguous {
			b.WriteString(fmt.Sprintf(" (ambiguous; candidates: %s)", strings.Join(r.DateCandidates, ", ")))
		}
		b.WriteString("\n")
	}
	if k := r.KPI; k != nil {
		b.WriteString("\n[KPI]\n")
		b.WriteString(fmt.Sprintf("- %s: total %.4g, mean %.4g, rows %d\n", k.Column, k.Total, k.Mean, k.Rows))
		if k.Start != nil && k.End != nil {
			b.WriteString(fmt.Sprintf("- span: %s → %s\n", table.FormatTime(*k.Start), table.FormatTime(*k.End)))
		}
	}
	if len(r.StrongCorrelations) > 0 {
		b.WriteString("\n[STRONG CORRELATIONS]\n")
		pairs := make([]CorrPair, len(r.StrongCorrelations))
		copy(pairs, r.StrongCorrelations)
		sort.SliceStable(pairs, func(i, j int) bool {
			return math.Abs(pairs[i].Correlation) > math.Abs(pairs[j].Correlation)
		})
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.Col1, p.Col2, p.Correlation))
		}
	}
	if withMatrix && r.Matrix != nil {
		b.WriteString("\n[CORRELATION MATRIX]\n")
		b.WriteString("| |")
		for _, c := range r.Matrix.Columns {
			b.WriteString(" " + safeVal(c) + " |")
		}
		b.WriteString("\n|---|")
		for range r.Matrix.Columns {
			b.WriteString("---|")
		}
		b.WriteString("\n")
		for i, row := range r.Matrix.Values {
			b.WriteString("| " + safeVal(r.Matrix.Columns[i]) + " |")
			for _, v := range row {
				b.WriteString(fmt.Sprintf(" %.3f |", v))
			}
			b.WriteString("\n")
		}
	}
	if len(r.Suggestions) > 0 {
		b.WriteString("\n[SUGGESTIONS]\n")
		for _, s := range r.Suggestions {
			b.WriteString("- " + s + "\n")
		}
	}
	return b.String()
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
