// Package stats holds the numeric kernels shared by the cleaning pipeline and
// the analysis reports. Standard deviations are population (divisor N).
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Sorted returns a sorted copy of vals.
func Sorted(vals []float64) []float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return cp
}

// Quantile returns the q-quantile of sorted values with linear interpolation
// between closest ranks. sorted must be ascending.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Median of unsorted values.
func Median(vals []float64) float64 {
	return Quantile(Sorted(vals), 0.5)
}

// scaleLimit is the magnitude above which sums and squares may overflow.
const scaleLimit = 1e150

// rescale divides vals by their largest magnitude when that magnitude is
// above scaleLimit, returning the factor to multiply results back by.
func rescale(vals []float64) ([]float64, float64) {
	m := 0.0
	for _, v := range vals {
		m = math.Max(m, math.Abs(v))
	}
	if m <= scaleLimit || math.IsInf(m, 0) {
		return vals, 1
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v / m
	}
	return out, m
}

// PopMeanStd returns the mean and population standard deviation.
// Both are 0 for an empty slice. Values near the float64 limit are scaled
// down first so the result stays finite.
func PopMeanStd(vals []float64) (mean, std float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	xs, k := rescale(vals)
	mean, std = stat.PopMeanStdDev(xs, nil)
	return mean * k, std * k
}

// Mean of vals, 0 when empty.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	xs, k := rescale(vals)
	return stat.Mean(xs, nil) * k
}

// IQRBounds returns Q1, Q3 and the Tukey fences Q1-1.5·IQR, Q3+1.5·IQR.
func IQRBounds(vals []float64) (q1, q3, lower, upper float64) {
	s := Sorted(vals)
	q1 = Quantile(s, 0.25)
	q3 = Quantile(s, 0.75)
	iqr := q3 - q1
	return q1, q3, q1 - 1.5*iqr, q3 + 1.5*iqr
}

// ZBounds returns mean ± z·σ with σ the population standard deviation.
func ZBounds(vals []float64, z float64) (lower, upper float64) {
	mean, std := PopMeanStd(vals)
	return mean - z*std, mean + z*std
}

// Pearson returns the correlation of two equal-length samples, or NaN when
// fewer than two pairs exist or either side has zero variance.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if n != len(y) || n < 2 {
		return math.NaN()
	}
	x, _ = rescale(x)
	y, _ = rescale(y)
	mx, my := Mean(x), Mean(y)
	var sxy, sxx, syy float64
	for i := range x {
		dx := x[i] - mx
		dy := y[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	denom := math.Sqrt(sxx * syy)
	if denom == 0 {
		return math.NaN()
	}
	r := sxy / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// Clip bounds v to [lo, hi].
func Clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
