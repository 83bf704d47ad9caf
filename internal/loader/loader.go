// Package loader reads delimited and spreadsheet files into tables and
// writes tables back out as CSV.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/table"
)

// ErrUnsupported indicates a file format no registered reader handles.
var ErrUnsupported = errors.New("unsupported file format")

// Options controls how a file becomes a table.
type Options struct {
	// Delimiter for delimited text. If 0, chosen by extension ('\t' for .tsv, ',' otherwise).
	Delimiter rune
	// Infer controls kind inference, null markers and number locale.
	Infer table.InferOptions
	// SheetName selects a workbook sheet by name (case-insensitive).
	SheetName string
	// SheetIndex selects a workbook sheet by 1-based index when SheetName is empty.
	SheetIndex int
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
}

// DefaultOptions parses dates and auto-detects delimiters and number locale.
func DefaultOptions() Options {
	return Options{Infer: table.DefaultInferOptions()}
}

// Reader turns the content of one file format into a table.
type Reader interface {
	CanRead(name string) bool
	Read(r io.Reader, name string, opt Options) (*table.Table, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

func init() {
	Register(delimitedReader{})
	Register(xlsxReader{})
}

// Supported reports whether a registered reader handles name.
func Supported(name string) bool {
	return lookup(name) != nil
}

func lookup(name string) Reader {
	for _, r := range registry {
		if r.CanRead(name) {
			return r
		}
	}
	return nil
}

// Read selects a reader by file name and parses r.
func Read(name string, r io.Reader, opt Options) (*table.Table, error) {
	rd := lookup(name)
	if rd == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, strings.ToLower(filepath.Ext(name)))
	}
	return rd.Read(r, name, opt)
}

// ReadFile opens path and parses it with the matching reader.
func ReadFile(path string, opt Options) (*table.Table, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, strings.ToLower(filepath.Ext(path)))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return Read(filepath.Base(path), f, opt)
}

func hasExt(name string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
