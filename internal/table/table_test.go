package table

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func sample() *Table {
	return MustNew(
		&Column{Name: "n", Kind: KindNumeric, Values: []Value{Number(1), Null, Number(1), Number(math.Inf(1))}},
		&Column{Name: "s", Kind: KindCategorical, Values: []Value{Text("a"), Text("b"), Text("a"), Null}},
		&Column{Name: "t", Kind: KindDatetime, Values: []Value{
			Timestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), Null,
			Timestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), Timestamp(time.Date(2024, 1, 2, 12, 30, 0, 0, time.UTC)),
		}},
	)
}

func TestNumberNaNIsNull(t *testing.T) {
	if !Number(math.NaN()).IsNull() {
		t.Fatal("NaN should be null")
	}
}

func TestNewRejectsBadShape(t *testing.T) {
	a := &Column{Name: "a", Values: make([]Value, 2)}
	b := &Column{Name: "b", Values: make([]Value, 3)}
	if _, err := New(a, b); !errors.Is(err, ErrShape) {
		t.Fatalf("err = %v, want ErrShape", err)
	}
	if _, err := New(a, &Column{Name: "a", Values: make([]Value, 2)}); !errors.Is(err, ErrShape) {
		t.Fatalf("duplicate name err = %v", err)
	}
	if _, err := NewColumn("x", KindNumeric, []Value{Text("oops")}); err == nil {
		t.Fatal("expected kind mismatch error")
	}
}

func TestDuplicateMaskAndKeepRows(t *testing.T) {
	tb := sample()
	mask := tb.DuplicateMask()
	want := []bool{false, false, true, false}
	for i := range want {
		if mask[i] != want[i] {
			t.Fatalf("mask = %v, want %v", mask, want)
		}
	}
	kept := tb.KeepRows([]bool{true, false, false, true})
	if kept.NumRows() != 2 || kept.NumCols() != 3 {
		t.Fatalf("shape = %d x %d", kept.NumRows(), kept.NumCols())
	}
	if tb.NumRows() != 4 {
		t.Fatal("KeepRows modified the receiver")
	}
}

func TestDuplicateMaskTextWithSeparators(t *testing.T) {
	tb := MustNew(
		&Column{Name: "a", Kind: KindCategorical, Values: []Value{Text("x\x1fs:y"), Text("x")}},
		&Column{Name: "b", Kind: KindCategorical, Values: []Value{Text("z"), Text("y\x1fs:z")}},
	)
	if tb.RowKey(0) == tb.RowKey(1) {
		t.Fatalf("distinct rows share key %q", tb.RowKey(0))
	}
	if mask := tb.DuplicateMask(); mask[1] {
		t.Fatalf("mask = %v, want no duplicates", mask)
	}
	quoted := MustNew(
		&Column{Name: "a", Kind: KindCategorical, Values: []Value{Text(`p","s:q`), Text("p")}},
		&Column{Name: "b", Kind: KindCategorical, Values: []Value{Text("r"), Text(`q","s:r`)}},
	)
	if quoted.DuplicateMask()[1] {
		t.Fatal("quote characters in text merged two rows")
	}
}

func TestNegativeZeroEqualsZero(t *testing.T) {
	if Number(math.Copysign(0, -1)).Key() != Number(0).Key() {
		t.Fatal("-0 and 0 should share a key")
	}
	tb := MustNew(&Column{Name: "n", Kind: KindNumeric, Values: []Value{Number(0), Number(math.Copysign(0, -1))}})
	if d := tb.Column("n").Distinct(); d != 1 {
		t.Fatalf("distinct = %d, want 1", d)
	}
	if mask := tb.DuplicateMask(); !mask[1] {
		t.Fatalf("mask = %v, want second row duplicate", mask)
	}
}

func TestDropKeepsOrder(t *testing.T) {
	out := sample().Drop("s")
	names := out.Names()
	if len(names) != 2 || names[0] != "n" || names[1] != "t" {
		t.Fatalf("names = %v", names)
	}
	if empty := sample().Drop("n", "s", "t"); empty.NumRows() != 4 || empty.NumCols() != 0 {
		t.Fatalf("zero-column table lost its row count")
	}
}

func TestValueRendering(t *testing.T) {
	cases := map[string]Value{
		"1":                   Number(1),
		"2.5":                 Number(2.5),
		"+Inf":                Number(math.Inf(1)),
		"x":                   Text("x"),
		"2024-01-01":          Timestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		"2024-01-02 12:30:00": Timestamp(time.Date(2024, 1, 2, 12, 30, 0, 0, time.UTC)),
		"":                    Null,
	}
	for want, v := range cases {
		if got := v.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
	if Null.Interface() != nil || Number(2).Interface() != 2.0 {
		t.Error("Interface() mismatch")
	}
}

func TestJSONRoundTripKeepsKinds(t *testing.T) {
	tb := sample()
	b, err := json.Marshal(tb)
	if err != nil {
		t.Fatal(err)
	}
	var back Table
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back.NumRows() != tb.NumRows() {
		t.Fatalf("rows = %d", back.NumRows())
	}
	for i := 0; i < tb.NumRows(); i++ {
		if back.RowKey(i) != tb.RowKey(i) {
			t.Fatalf("row %d differs after round trip", i)
		}
	}
	for _, c := range tb.Columns() {
		if back.Column(c.Name).Kind != c.Kind {
			t.Fatalf("%s kind lost", c.Name)
		}
	}
}
