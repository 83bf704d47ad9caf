package table

// Classification partitions a table's column names by kind, in table order.
type Classification struct {
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`
	Datetime    []string `json:"datetime"`
}

// DateChoice records which column is used for time-based analysis.
// Ambiguous is set when more than one datetime column qualified and no
// preference picked one.
type DateChoice struct {
	Column     string   `json:"column,omitempty"`
	Candidates []string `json:"candidates,omitempty"`
	Ambiguous  bool     `json:"ambiguous"`
}

// Classifier decides column kinds and the table's date column.
// PreferredDate, when present in the table as a datetime column, is always
// chosen as the date column.
type Classifier struct {
	PreferredDate string
}

// Classify partitions columns. Unknown-kind columns count as categorical.
func (Classifier) Classify(t *Table) Classification {
	out := Classification{Numeric: []string{}, Categorical: []string{}, Datetime: []string{}}
	for _, c := range t.Columns() {
		switch c.Kind {
		case KindNumeric:
			out.Numeric = append(out.Numeric, c.Name)
		case KindDatetime:
			out.Datetime = append(out.Datetime, c.Name)
		default:
			out.Categorical = append(out.Categorical, c.Name)
		}
	}
	return out
}

// DetectDates returns a copy of t where every categorical column whose
// non-null values all parse as timestamps has become a datetime column, and
// the resulting date column choice. t itself is left untouched.
func (cl Classifier) DetectDates(t *Table) (*Table, DateChoice) {
	out := t.Clone()
	var choice DateChoice
	for i, c := range out.cols {
		if c.Kind == KindCategorical {
			if conv, ok := toDatetime(c); ok {
				out.cols[i] = conv
				c = conv
			}
		}
		if c.Kind == KindDatetime {
			choice.Candidates = append(choice.Candidates, c.Name)
		}
	}
	if len(choice.Candidates) == 0 {
		return out, choice
	}
	for _, name := range choice.Candidates {
		if cl.PreferredDate != "" && name == cl.PreferredDate {
			choice.Column = name
			return out, choice
		}
	}
	choice.Column = choice.Candidates[0]
	choice.Ambiguous = len(choice.Candidates) > 1
	return out, choice
}

func toDatetime(c *Column) (*Column, bool) {
	vals := make([]Value, len(c.Values))
	for i, v := range c.Values {
		s, ok := v.Str()
		if !ok {
			continue
		}
		ts, ok := ParseTime(s)
		if !ok {
			return nil, false
		}
		vals[i] = Timestamp(ts)
	}
	return &Column{Name: c.Name, Kind: KindDatetime, Values: vals}, true
}
