package loader

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/table"
)

// xlsxReader extracts one sheet of a workbook. The first row is the header.
// Only the parts needed for cell text are read: workbook, relationships,
// shared strings and the sheet itself.
type xlsxReader struct{}

func (xlsxReader) CanRead(name string) bool { return hasExt(name, ".xlsx") }

func (xlsxReader) Read(r io.Reader, name string, opt Options) (*table.Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	var wb workbook
	if err := decodePart(zr, "xl/workbook.xml", &wb); err != nil {
		return nil, err
	}
	var rels relationships
	if err := decodePart(zr, "xl/_rels/workbook.xml.rels", &rels); err != nil {
		return nil, err
	}
	target, err := resolveSheet(wb, rels, opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var sst sharedStrings
	if err := decodePart(zr, "xl/sharedStrings.xml", &sst); err != nil {
		return nil, err
	}
	var ws worksheet
	if err := decodePart(zr, target, &ws); err != nil {
		return nil, err
	}
	if len(ws.Rows) == 0 {
		return table.New()
	}
	shared := sst.texts()
	header := ws.Rows[0].cells(shared)
	var rows [][]string
	for _, row := range ws.Rows[1:] {
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			break
		}
		rows = append(rows, row.cells(shared))
	}
	return table.FromRecords(header, rows, opt.Infer)
}

type workbook struct {
	Sheets []struct {
		Name    string `xml:"name,attr"`
		SheetID int    `xml:"sheetId,attr"`
		RID     string `xml:"id,attr"` // r:id
	} `xml:"sheets>sheet"`
}

type relationships struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type richText struct {
	T    string `xml:"t"`
	Runs []struct {
		T string `xml:"t"`
	} `xml:"r"`
}

func (rt richText) text() string {
	if len(rt.Runs) == 0 {
		return rt.T
	}
	var sb strings.Builder
	sb.WriteString(rt.T)
	for _, r := range rt.Runs {
		sb.WriteString(r.T)
	}
	return sb.String()
}

type sharedStrings struct {
	Items []richText `xml:"si"`
}

func (s sharedStrings) texts() []string {
	out := make([]string, len(s.Items))
	for i, it := range s.Items {
		out[i] = it.text()
	}
	return out
}

type worksheet struct {
	Rows []sheetRow `xml:"sheetData>row"`
}

type sheetRow struct {
	Cells []struct {
		Ref    string   `xml:"r,attr"`
		Type   string   `xml:"t,attr"`
		V      string   `xml:"v"`
		Inline richText `xml:"is"`
	} `xml:"c"`
}

// cells lays out a row by cell reference, filling gaps with empty strings.
func (r sheetRow) cells(shared []string) []string {
	var out []string
	next := 0
	for _, c := range r.Cells {
		idx := next
		if c.Ref != "" {
			idx = colIndexFromRef(c.Ref)
		}
		next = idx + 1
		if idx < 0 {
			continue
		}
		for len(out) <= idx {
			out = append(out, "")
		}
		switch c.Type {
		case "s":
			n := atoiSafe(c.V)
			if n >= 0 && n < len(shared) {
				out[idx] = shared[n]
			}
		case "inlineStr":
			out[idx] = c.Inline.text()
		default:
			out[idx] = c.V
		}
	}
	return out
}

func resolveSheet(wb workbook, rels relationships, name string, index int) (string, error) {
	targets := make(map[string]string, len(rels.Rels))
	for _, r := range rels.Rels {
		targets[r.ID] = r.Target
	}
	if name != "" {
		available := make([]string, len(wb.Sheets))
		for i, s := range wb.Sheets {
			available[i] = s.Name
			if strings.EqualFold(s.Name, name) {
				if t, ok := targets[s.RID]; ok {
					return normalizeRelPath(t), nil
				}
			}
		}
		return "", fmt.Errorf("sheet %q not found; available sheets: %s", name, strings.Join(available, ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range wb.Sheets {
		if s.SheetID == index {
			if t, ok := targets[s.RID]; ok {
				return normalizeRelPath(t), nil
			}
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", index), nil
}

// decodePart unmarshals a workbook part. A missing part leaves v untouched.
func decodePart(zr *zip.Reader, name string, v any) error {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		if err := xml.NewDecoder(rc).Decode(v); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		return nil
	}
	return nil
}

// colIndexFromRef maps refs like "C12" to a 0-based column index.
func colIndexFromRef(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}

func atoiSafe(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// normalizeRelPath converts relationship targets to ZIP entry names.
// Targets may be absolute ("/xl/worksheets/sheet1.xml") or relative to xl/.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}
