package cleaning

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/table"
)

// Shape is a (rows, columns) pair.
type Shape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

func (s Shape) String() string { return fmt.Sprintf("(%d, %d)", s.Rows, s.Columns) }

func shapeOf(t *table.Table) Shape {
	r, c := t.Shape()
	return Shape{Rows: r, Columns: c}
}

// Report is the outcome of a pipeline run.
type Report struct {
	Actions  []string       `json:"actions"`
	Before   Shape          `json:"before"`
	After    Shape          `json:"after"`
	Summary  string         `json:"summary"`
	Outliers map[string]int `json:"outliers"`
}

// Clean runs the fixed stage sequence on a copy of t: duplicates, empty
// columns, missing values, single-value columns, outliers. Options are
// validated first; on error no table is produced and t is untouched.
func Clean(t *table.Table, opt Options) (*table.Table, *Report, error) {
	if err := opt.Validate(); err != nil {
		return nil, nil, err
	}
	rep := &Report{Actions: []string{}, Before: shapeOf(t), Outliers: map[string]int{}}

	cur, removed := Dedupe(t, opt.RemoveDuplicates)
	if removed > 0 {
		rep.Actions = append(rep.Actions, fmt.Sprintf("Removed %d duplicate rows", removed))
	}

	var dropped []string
	cur, dropped = DropEmpty(cur, opt.RemoveEmptyCols)
	if len(dropped) > 0 {
		rep.Actions = append(rep.Actions, "Dropped empty columns: "+strings.Join(dropped, ", "))
	}

	var acts []string
	cur, acts = Impute(cur, opt.Missing)
	rep.Actions = append(rep.Actions, acts...)

	cur, dropped = DropSingleValue(cur)
	if len(dropped) > 0 {
		rep.Actions = append(rep.Actions, "Dropped single-value columns: "+strings.Join(dropped, ", "))
	}

	before := cur
	cur, counts, err := HandleOutliers(cur, OutlierOptions{
		Method:  opt.OutlierMethod,
		ZThresh: opt.OutlierZThresh,
		Remove:  opt.RemoveOutliers && !opt.OutlierCap,
		Cap:     opt.OutlierCap,
		CapQ:    opt.OutlierCapQ,
	})
	if err != nil {
		return nil, nil, err
	}
	total := 0
	var parts []string
	for _, name := range before.Names() {
		n, ok := counts[name]
		if !ok {
			continue
		}
		rep.Outliers[name] = n
		total += n
		parts = append(parts, fmt.Sprintf("%s=%d", name, n))
	}
	if total > 0 {
		rep.Actions = append(rep.Actions, fmt.Sprintf("Outliers handled: %s (method=%s, cap=%t)",
			strings.Join(parts, ", "), opt.OutlierMethod, opt.OutlierCap))
	}

	rep.After = shapeOf(cur)
	rep.Summary = rep.Before.String() + " → " + rep.After.String()
	return cur, rep, nil
}

// Markdown renders the report in the sectioned plain-text layout used by
// the other reports.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[CLEANING REPORT]\n")
	b.WriteString(fmt.Sprintf("Shape: %s\n\n", r.Summary))
	b.WriteString("[ACTIONS]\n")
	if len(r.Actions) == 0 {
		b.WriteString("- no changes\n")
	}
	for _, a := range r.Actions {
		b.WriteString("- " + a + "\n")
	}
	return b.String()
}
