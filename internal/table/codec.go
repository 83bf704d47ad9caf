package table

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

type wireColumn struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Values []any  `json:"values"`
}

type wireTable struct {
	Rows    int          `json:"rows"`
	Columns []wireColumn `json:"columns"`
}

func kindFromLabel(s string) (Kind, error) {
	switch s {
	case "numeric":
		return KindNumeric, nil
	case "categorical":
		return KindCategorical, nil
	case "datetime":
		return KindDatetime, nil
	case "unknown":
		return KindUnknown, nil
	}
	return KindUnknown, fmt.Errorf("unknown column kind %q", s)
}

// MarshalJSON encodes the table losslessly, including column kinds.
func (t *Table) MarshalJSON() ([]byte, error) {
	w := wireTable{Rows: t.rows, Columns: make([]wireColumn, len(t.cols))}
	for j, c := range t.cols {
		vals := make([]any, len(c.Values))
		for i, v := range c.Values {
			switch v.kind {
			case KindNumeric:
				if math.IsInf(v.num, 0) {
					vals[i] = v.String()
				} else {
					vals[i] = v.num
				}
			case KindCategorical:
				vals[i] = v.str
			case KindDatetime:
				vals[i] = v.ts.Format(time.RFC3339Nano)
			}
		}
		w.Columns[j] = wireColumn{Name: c.Name, Kind: c.Kind.String(), Values: vals}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the MarshalJSON form.
func (t *Table) UnmarshalJSON(b []byte) error {
	var w wireTable
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	cols := make([]*Column, len(w.Columns))
	for j, wc := range w.Columns {
		kind, err := kindFromLabel(wc.Kind)
		if err != nil {
			return err
		}
		vals := make([]Value, len(wc.Values))
		for i, raw := range wc.Values {
			if raw == nil {
				continue
			}
			v, err := decodeValue(kind, raw)
			if err != nil {
				return fmt.Errorf("column %q row %d: %w", wc.Name, i, err)
			}
			vals[i] = v
		}
		cols[j] = &Column{Name: wc.Name, Kind: kind, Values: vals}
	}
	nt, err := NewWithRows(w.Rows, cols...)
	if err != nil {
		return err
	}
	*t = *nt
	return nil
}

func decodeValue(kind Kind, raw any) (Value, error) {
	switch kind {
	case KindNumeric:
		switch x := raw.(type) {
		case float64:
			return Number(x), nil
		case string:
			switch x {
			case "+Inf", "Inf":
				return Number(math.Inf(1)), nil
			case "-Inf":
				return Number(math.Inf(-1)), nil
			}
		}
	case KindCategorical:
		if s, ok := raw.(string); ok {
			return Text(s), nil
		}
	case KindDatetime:
		if s, ok := raw.(string); ok {
			ts, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return Null, err
			}
			return Timestamp(ts), nil
		}
	}
	return Null, fmt.Errorf("cannot decode %T as %s", raw, kind)
}
