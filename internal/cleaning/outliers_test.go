package cleaning

import (
	"errors"
	"math"
	"testing"

	"github.com/KaramelBytes/datalens-cli/internal/table"
)

func TestThresholdsIQR(t *testing.T) {
	in := table.MustNew(nums("v", 1, 2, 3, 4, 100))
	b, err := Thresholds(in, OutlierIQR, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got := b["v"]; got.Lower != -1 || got.Upper != 7 {
		t.Fatalf("bounds = %+v, want [-1, 7]", got)
	}
	_, counts, _ := HandleOutliers(in, OutlierOptions{Method: OutlierIQR})
	if counts["v"] != 1 {
		t.Fatalf("count = %d, want 1", counts["v"])
	}
}

func TestThresholdsZScoreUsesPopulationStd(t *testing.T) {
	in := table.MustNew(nums("v", 10, 12, 11, 13, 1000))
	b, err := Thresholds(in, OutlierZScore, 3)
	if err != nil {
		t.Fatal(err)
	}
	mean := 209.2
	std := math.Sqrt(156342.16)
	if got := b["v"]; math.Abs(got.Upper-(mean+3*std)) > 1e-9 || math.Abs(got.Lower-(mean-3*std)) > 1e-9 {
		t.Fatalf("bounds = %+v", got)
	}
	// With five samples no z-score can exceed (n-1)/sqrt(n), so 3σ flags nothing
	// while 1.5σ isolates the single extreme value.
	_, counts, _ := HandleOutliers(in, OutlierOptions{Method: OutlierZScore, ZThresh: 3, Remove: true})
	if counts["v"] != 0 {
		t.Fatalf("z=3 count = %d, want 0", counts["v"])
	}
	out, counts, _ := HandleOutliers(in, OutlierOptions{Method: OutlierZScore, ZThresh: 1.5, Remove: true})
	if counts["v"] != 1 || out.NumRows() != 4 {
		t.Fatalf("z=1.5 count = %d rows = %d", counts["v"], out.NumRows())
	}
}

func TestHandleOutliersRemovesUnionOfRows(t *testing.T) {
	in := table.MustNew(
		nums("a", 1, 2, 3, 4, 100, 2),
		nums("b", 5, 6, 5, 6, 5, -100),
		texts("s", "p", "q", "r", "s", "t", "u"),
	)
	out, counts, err := HandleOutliers(in, OutlierOptions{Method: OutlierIQR, Remove: true})
	if err != nil {
		t.Fatal(err)
	}
	if counts["a"] != 1 || counts["b"] != 1 {
		t.Fatalf("counts = %v", counts)
	}
	if out.NumRows() != 4 {
		t.Fatalf("rows = %d, want 4", out.NumRows())
	}
	if _, ok := counts["s"]; ok {
		t.Fatalf("text column must not be counted")
	}
}

func TestHandleOutliersDisabledKeepsRowsButCounts(t *testing.T) {
	in := table.MustNew(nums("v", 1, 2, 3, 4, 100))
	out, counts, _ := HandleOutliers(in, OutlierOptions{Method: OutlierIQR})
	if out.NumRows() != 5 || counts["v"] != 1 {
		t.Fatalf("rows = %d counts = %v", out.NumRows(), counts)
	}
}

func TestHandleOutliersCapNeverRemovesRows(t *testing.T) {
	in := table.MustNew(nums("v", 1, 2, 3, 4, 100, nil))
	for _, remove := range []bool{true, false} {
		out, _, err := HandleOutliers(in, OutlierOptions{
			Method: OutlierIQR, Remove: remove, Cap: true, CapQ: Quantiles{Low: 0, High: 0.75},
		})
		if err != nil {
			t.Fatal(err)
		}
		if out.NumRows() != in.NumRows() {
			t.Fatalf("remove=%v: rows = %d, want %d", remove, out.NumRows(), in.NumRows())
		}
		if f, _ := out.Column("v").Values[4].Float(); f != 4 {
			t.Fatalf("capped value = %v, want 4", f)
		}
		if !out.Column("v").Values[5].IsNull() {
			t.Fatalf("null must stay null when capping")
		}
	}
}

func TestHandleOutliersSkipsAllNullColumns(t *testing.T) {
	in := table.MustNew(nums("v", nil, nil))
	out, counts, err := HandleOutliers(in, OutlierOptions{Method: OutlierZScore, ZThresh: 3, Remove: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 0 || out.NumRows() != 2 {
		t.Fatalf("counts = %v rows = %d", counts, out.NumRows())
	}
}

func TestThresholdsRejectsUnknownMethod(t *testing.T) {
	_, err := Thresholds(table.MustNew(nums("v", 1)), "mad", 3)
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}
