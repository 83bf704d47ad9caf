package loader

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/datalens-cli/internal/table"
)

const salesCSV = "\ufeffdate;amount;region\n" +
	"2024-01-01;1.000,5;north\n" +
	"2024-01-02;NA;south\n" +
	"2024-01-03;250,0;north\n"

func TestReadCSVWithLocaleAndDelimiter(t *testing.T) {
	opt := DefaultOptions()
	opt.Delimiter = ';'
	tb, err := Read("sales.csv", strings.NewReader(salesCSV), opt)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if r, c := tb.Shape(); r != 3 || c != 3 {
		t.Fatalf("shape = %d x %d", r, c)
	}
	if tb.Column("date") == nil {
		t.Fatalf("BOM not stripped from header: %v", tb.Names())
	}
	if tb.Column("date").Kind != table.KindDatetime || tb.Column("amount").Kind != table.KindNumeric {
		t.Fatalf("kinds = %s, %s", tb.Column("date").Kind, tb.Column("amount").Kind)
	}
	if f, _ := tb.Column("amount").Values[0].Float(); f != 1000.5 {
		t.Fatalf("amount[0] = %v", f)
	}
	if !tb.Column("amount").Values[1].IsNull() {
		t.Fatalf("NA should be null")
	}
}

func TestReadTSVAndMaxRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.tsv")
	if err := os.WriteFile(path, []byte("a\tb\n1\tx\n2\ty\n3\tz\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	opt := DefaultOptions()
	opt.MaxRows = 2
	tb, err := ReadFile(path, opt)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if tb.NumRows() != 2 || tb.NumCols() != 2 {
		t.Fatalf("shape = %d x %d", tb.NumRows(), tb.NumCols())
	}
}

func TestReadEmptyCSV(t *testing.T) {
	tb, err := Read("empty.csv", strings.NewReader(""), DefaultOptions())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tb.NumRows() != 0 || tb.NumCols() != 0 {
		t.Fatalf("shape = %d x %d", tb.NumRows(), tb.NumCols())
	}
}

func TestUnsupportedExtension(t *testing.T) {
	_, err := Read("notes.docx", strings.NewReader("x"), DefaultOptions())
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.pdf"), DefaultOptions()); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("ReadFile err = %v", err)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	tb, err := Read("in.csv", strings.NewReader("n,s,d\n1.5,a,2024-01-01\n,\"b,c\",\n"), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteCSVFile(path, tb); err != nil {
		t.Fatalf("WriteCSVFile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "n,s,d\n1.5,a,2024-01-01\n,\"b,c\",\n"
	if string(b) != want {
		t.Fatalf("csv = %q, want %q", b, want)
	}
}

func writeZip(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func workbookFixture(t *testing.T) []byte {
	return writeZip(t, map[string]string{
		"xl/workbook.xml": `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Notes" sheetId="1" r:id="rId1"/><sheet name="Data" sheetId="2" r:id="rId2"/></sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Target="worksheets/sheet1.xml"/><Relationship Id="rId2" Target="/xl/worksheets/sheet2.xml"/></Relationships>`,
		"xl/sharedStrings.xml": `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><si><t>city</t></si><si><t>score</t></si><si><r><t>Par</t></r><r><t>is</t></r></si><si><t>Lyon</t></si></sst>`,
		"xl/worksheets/sheet1.xml": `<worksheet><sheetData><row r="1"><c r="A1" t="inlineStr"><is><t>note</t></is></c></row></sheetData></worksheet>`,
		"xl/worksheets/sheet2.xml": `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
<row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>10.5</v></c></row>
<row r="3"><c r="B3"><v>7</v></c></row>
<row r="4"><c r="A4" t="s"><v>3</v></c></row>
</sheetData></worksheet>`,
	})
}

func TestReadXLSXSheetSelection(t *testing.T) {
	data := workbookFixture(t)

	opt := DefaultOptions()
	opt.SheetName = "data"
	byName, err := Read("book.xlsx", bytes.NewReader(data), opt)
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	opt = DefaultOptions()
	opt.SheetIndex = 2
	byIndex, err := Read("book.xlsx", bytes.NewReader(data), opt)
	if err != nil {
		t.Fatalf("by index: %v", err)
	}
	for _, tb := range []*table.Table{byName, byIndex} {
		if r, c := tb.Shape(); r != 3 || c != 2 {
			t.Fatalf("shape = %d x %d", r, c)
		}
		if s, _ := tb.Column("city").Values[0].Str(); s != "Paris" {
			t.Fatalf("rich text cell = %q", s)
		}
		if !tb.Column("city").Values[1].IsNull() || !tb.Column("score").Values[2].IsNull() {
			t.Fatalf("gaps should be null")
		}
		if tb.Column("score").Kind != table.KindNumeric {
			t.Fatalf("score kind = %s", tb.Column("score").Kind)
		}
	}

	first, err := Read("book.xlsx", bytes.NewReader(data), DefaultOptions())
	if err != nil {
		t.Fatalf("default sheet: %v", err)
	}
	if first.Column("note") == nil || first.NumRows() != 0 {
		t.Fatalf("default sheet = %v rows=%d", first.Names(), first.NumRows())
	}

	opt = DefaultOptions()
	opt.SheetName = "Missing"
	if _, err := Read("book.xlsx", bytes.NewReader(data), opt); err == nil || !strings.Contains(err.Error(), "Notes, Data") {
		t.Fatalf("missing sheet err = %v", err)
	}
}

func TestNormalizeRelPath(t *testing.T) {
	tests := []struct {
		input, expected string
	}{
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
	}
	for _, tt := range tests {
		if got := normalizeRelPath(tt.input); got != tt.expected {
			t.Errorf("normalizeRelPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
	if colIndexFromRef("AB12") != 27 || colIndexFromRef("A1") != 0 {
		t.Errorf("colIndexFromRef mismatch")
	}
}
