package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSafeWriteFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.csv")
	if err := SafeWriteFile(p, []byte("a,b\n")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "a,b\n" {
		t.Fatalf("read back %q, %v", b, err)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file should be gone")
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"rows": 3})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "\n  \"rows\": 3") {
		t.Fatalf("unexpected json %s", b)
	}
}

func TestOutputPath(t *testing.T) {
	got := OutputPath(filepath.Join("data", "sales.xlsx"), "", ".cleaned.csv")
	if got != filepath.Join("data", "sales.cleaned.csv") {
		t.Fatalf("got %q", got)
	}
	got = OutputPath("sales.csv", "out", ".summary.md")
	if got != filepath.Join("out", "sales.summary.md") {
		t.Fatalf("got %q", got)
	}
}
