package table

import (
	"strconv"
	"strings"
	"time"
)

// InferOptions controls how raw text cells become typed values.
type InferOptions struct {
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, auto-detect common separators (',' '.' space)
	// ParseDates turns uniformly parseable text columns into datetime columns.
	ParseDates bool
	// NullMarkers overrides DefaultNullMarkers when non-nil.
	NullMarkers []string
}

// DefaultNullMarkers are the cell spellings read as null.
var DefaultNullMarkers = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "#N/A"}

// DefaultInferOptions parses dates and auto-detects number locale.
func DefaultInferOptions() InferOptions {
	return InferOptions{ParseDates: true}
}

// FromRecords builds a table from a header and string rows, inferring each
// column's kind once: numeric if every non-null cell is a number, datetime if
// every non-null cell is a timestamp, categorical otherwise. A column of nulls
// has KindUnknown. Short rows are padded with nulls; extra cells are ignored.
func FromRecords(header []string, rows [][]string, opt InferOptions) (*Table, error) {
	markers := opt.NullMarkers
	if markers == nil {
		markers = DefaultNullMarkers
	}
	isNull := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		isNull[m] = struct{}{}
	}
	cols := make([]*Column, len(header))
	names := uniqueNames(header)
	for j := range header {
		raw := make([]string, len(rows))
		valid := make([]bool, len(rows))
		for i, rec := range rows {
			if j >= len(rec) {
				continue
			}
			v := strings.TrimSpace(rec[j])
			if _, ok := isNull[v]; ok {
				continue
			}
			raw[i] = v
			valid[i] = true
		}
		cols[j] = inferColumn(names[j], raw, valid, opt)
	}
	return NewWithRows(len(rows), cols...)
}

func inferColumn(name string, raw []string, valid []bool, opt InferOptions) *Column {
	vals := make([]Value, len(raw))
	nonNull := 0
	numeric := true
	for i, s := range raw {
		if !valid[i] {
			continue
		}
		nonNull++
		if numeric {
			if f, ok := ParseNumber(s, opt); ok {
				vals[i] = Number(f)
				continue
			}
			numeric = false
		}
	}
	if nonNull == 0 {
		return &Column{Name: name, Kind: KindUnknown, Values: make([]Value, len(raw))}
	}
	if numeric {
		return &Column{Name: name, Kind: KindNumeric, Values: vals}
	}
	if opt.ParseDates {
		if col, ok := parseDateColumn(name, raw, valid); ok {
			return col
		}
	}
	for i, s := range raw {
		if valid[i] {
			vals[i] = Text(s)
		} else {
			vals[i] = Null
		}
	}
	return &Column{Name: name, Kind: KindCategorical, Values: vals}
}

func parseDateColumn(name string, raw []string, valid []bool) (*Column, bool) {
	vals := make([]Value, len(raw))
	for i, s := range raw {
		if !valid[i] {
			continue
		}
		t, ok := ParseTime(s)
		if !ok {
			return nil, false
		}
		vals[i] = Timestamp(t)
	}
	return &Column{Name: name, Kind: KindDatetime, Values: vals}, true
}

// uniqueNames suffixes repeated header names (".1", ".2", ...) and names blank headers.
func uniqueNames(header []string) []string {
	out := make([]string, len(header))
	taken := make(map[string]struct{}, len(header))
	next := make(map[string]int, len(header))
	for i, h := range header {
		base := strings.TrimSpace(h)
		if base == "" {
			base = "Unnamed: " + strconv.Itoa(i)
		}
		n := base
		for {
			if _, dup := taken[n]; !dup {
				break
			}
			next[base]++
			n = base + "." + strconv.Itoa(next[base])
		}
		taken[n] = struct{}{}
		out[i] = n
	}
	return out
}

var timeLayouts = []string{
	time.RFC3339, time.RFC3339Nano, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02T15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"02-Jan-2006", "Jan 2, 2006", "2 Jan 2006",
}

// ParseTime tries the known layouts in order.
func ParseTime(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseNumber parses s as a number, honoring the separators in opt.
func ParseNumber(s string, opt InferOptions) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	// Reject text that merely starts with digits before locale stripping.
	for _, r := range raw {
		if !strings.ContainsRune("0123456789+-.,eE ", r) {
			return 0, false
		}
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		// auto detect
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			// "1,234" reads as thousands, "1,5" as a decimal comma
			if len(raw)-cpos-1 == 3 {
				dec = '.'
				thou = ','
			} else {
				dec = ','
			}
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
