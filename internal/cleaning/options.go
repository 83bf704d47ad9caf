// Package cleaning implements the ordered cleaning pipeline: duplicate rows,
// empty columns, missing values, single-value columns and outliers.
package cleaning

import (
	"encoding/json"
	"fmt"

	"github.com/KaramelBytes/datalens-cli/internal/table"
)

// Missing-value methods.
const (
	MissingDrop     = "drop"
	MissingMean     = "mean"
	MissingMedian   = "median"
	MissingMode     = "mode"
	MissingConstant = "constant"
	MissingFFill    = "ffill"
	MissingBFill    = "bfill"
)

// Outlier methods.
const (
	OutlierIQR    = "iqr"
	OutlierZScore = "zscore"
)

// KnownMissingMethod reports whether m is a recognised missing-value method.
// Unknown methods are accepted by the pipeline and do nothing.
func KnownMissingMethod(m string) bool {
	switch m {
	case MissingDrop, MissingMean, MissingMedian, MissingMode, MissingConstant, MissingFFill, MissingBFill:
		return true
	}
	return false
}

// MissingStrategy selects how nulls are handled. Value is only used by the
// constant method; it is a JSON scalar (string, number, bool) or nil.
type MissingStrategy struct {
	Method string `json:"method"`
	Value  any    `json:"value,omitempty"`
}

// Quantiles is a (low, high) pair, encoded as a two-element JSON array.
type Quantiles struct {
	Low, High float64
}

func (q Quantiles) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{q.Low, q.High})
}

func (q *Quantiles) UnmarshalJSON(b []byte) error {
	var pair []float64
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("outlier_cap_q: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("outlier_cap_q: want 2 values, got %d", len(pair))
	}
	q.Low, q.High = pair[0], pair[1]
	return nil
}

// Options configures Clean. Decode JSON on top of DefaultOptions so absent
// fields keep their defaults.
type Options struct {
	RemoveDuplicates bool            `json:"remove_duplicates" yaml:"remove_duplicates"`
	RemoveEmptyCols  bool            `json:"remove_empty_cols" yaml:"remove_empty_cols"`
	Missing          MissingStrategy `json:"missing" yaml:"missing"`
	RemoveOutliers   bool            `json:"remove_outliers" yaml:"remove_outliers"`
	OutlierMethod    string          `json:"outlier_method" yaml:"outlier_method"`
	OutlierCap       bool            `json:"outlier_cap" yaml:"outlier_cap"`
	OutlierZThresh   float64         `json:"outlier_z_thresh" yaml:"outlier_z_thresh"`
	OutlierCapQ      Quantiles       `json:"outlier_cap_q" yaml:"outlier_cap_q"`
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		RemoveDuplicates: true,
		RemoveEmptyCols:  true,
		Missing:          MissingStrategy{Method: MissingDrop},
		RemoveOutliers:   true,
		OutlierMethod:    OutlierIQR,
		OutlierCap:       false,
		OutlierZThresh:   3.0,
		OutlierCapQ:      Quantiles{Low: 0.01, High: 0.99},
	}
}

// DecodeOptions reads JSON options over the defaults. Empty input yields defaults.
func DecodeOptions(b []byte) (Options, error) {
	opt := DefaultOptions()
	if len(b) == 0 {
		return opt, nil
	}
	if err := json.Unmarshal(b, &opt); err != nil {
		return opt, fmt.Errorf("decode cleaning options: %w", err)
	}
	return opt, nil
}

// Validate returns a *ConfigError for settings the pipeline cannot run with.
func (o Options) Validate() error {
	switch o.OutlierMethod {
	case OutlierIQR, OutlierZScore:
	default:
		return &ConfigError{Field: "outlier_method", Value: o.OutlierMethod, Reason: "must be 'iqr' or 'zscore'"}
	}
	if o.OutlierZThresh <= 0 {
		return &ConfigError{Field: "outlier_z_thresh", Value: o.OutlierZThresh, Reason: "must be positive"}
	}
	q := o.OutlierCapQ
	if q.Low < 0 || q.High > 1 || q.Low > q.High {
		return &ConfigError{Field: "outlier_cap_q", Value: [2]float64{q.Low, q.High}, Reason: "must satisfy 0 <= low <= high <= 1"}
	}
	return nil
}

// constantValue converts the JSON scalar of a constant strategy to a table value.
// A constant strategy without a value fills with the empty string.
func (m MissingStrategy) constantValue() table.Value {
	switch x := m.Value.(type) {
	case nil:
		return table.Text("")
	case float64:
		return table.Number(x)
	case float32:
		return table.Number(float64(x))
	case int:
		return table.Number(float64(x))
	case int64:
		return table.Number(float64(x))
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return table.Number(f)
		}
		return table.Text(x.String())
	case bool:
		if x {
			return table.Text("true")
		}
		return table.Text("false")
	case string:
		return table.Text(x)
	default:
		return table.Text(fmt.Sprint(x))
	}
}
