package table

import (
	"math"
	"strconv"
	"time"
)

// Kind is the semantic type of a column (and of a non-null value).
type Kind int

const (
	KindUnknown Kind = iota
	KindNumeric
	KindCategorical
	KindDatetime
)

// String returns the dtype label used in reports.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	case KindDatetime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Value is a tagged scalar. The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	str  string
	ts   time.Time
}

// Null is the uniform null value for every column kind.
var Null = Value{}

// Number returns a numeric value. NaN is treated as null.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Null
	}
	return Value{kind: KindNumeric, num: f}
}

// Text returns a categorical value.
func Text(s string) Value { return Value{kind: KindCategorical, str: s} }

// Timestamp returns a datetime value.
func Timestamp(t time.Time) Value { return Value{kind: KindDatetime, ts: t} }

// Kind reports the kind of a non-null value, or KindUnknown for null.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindUnknown }

// Float returns the numeric payload.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumeric {
		return 0, false
	}
	return v.num, true
}

// Str returns the text payload.
func (v Value) Str() (string, bool) {
	if v.kind != KindCategorical {
		return "", false
	}
	return v.str, true
}

// Time returns the timestamp payload.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDatetime {
		return time.Time{}, false
	}
	return v.ts, true
}

// Key is a canonical representation used for equality, distinct counts and modes.
// Values of different kinds never share a key.
func (v Value) Key() string {
	switch v.kind {
	case KindNumeric:
		f := v.num
		if f == 0 {
			f = 0 // -0 and 0 are the same value
		}
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	case KindCategorical:
		return "s:" + v.str
	case KindDatetime:
		return "t:" + strconv.FormatInt(v.ts.UnixNano(), 10)
	default:
		return "\x00"
	}
}

// Equal reports whether two values hold the same payload. Two nulls are equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumeric:
		return v.num == o.num
	case KindCategorical:
		return v.str == o.str
	case KindDatetime:
		return v.ts.Equal(o.ts)
	default:
		return true
	}
}

// Less orders two non-null values of the same kind. Nulls sort last.
func (v Value) Less(o Value) bool {
	if v.IsNull() || o.IsNull() {
		return !v.IsNull() && o.IsNull()
	}
	switch v.kind {
	case KindNumeric:
		return v.num < o.num
	case KindCategorical:
		return v.str < o.str
	case KindDatetime:
		return v.ts.Before(o.ts)
	}
	return false
}

// String renders the value as a CSV cell; null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumeric:
		return FormatNumber(v.num)
	case KindCategorical:
		return v.str
	case KindDatetime:
		return FormatTime(v.ts)
	default:
		return ""
	}
}

// Interface returns the JSON-boundary scalar: nil, float64 or string.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumeric:
		if math.IsInf(v.num, 0) {
			return v.String()
		}
		return v.num
	case KindCategorical:
		return v.str
	case KindDatetime:
		return v.ts.Format(time.RFC3339)
	default:
		return nil
	}
}

// FormatNumber renders integral values without a fractional part.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FormatTime renders midnight UTC timestamps as dates and others as date-times.
func FormatTime(t time.Time) string {
	if t.Location() != time.UTC {
		return t.Format(time.RFC3339)
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}
