package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/datalens-cli/internal/cleaning"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ListenAddr != ":5000" || c.MaxUploadMB != 16 || c.SessionBackend != "memory" || c.PreviewRows != 10 {
		t.Fatalf("defaults = %+v", c)
	}
	opt := c.CleaningOptions()
	d := cleaning.DefaultOptions()
	if opt.OutlierMethod != d.OutlierMethod || opt.OutlierCapQ != d.OutlierCapQ || opt.Missing.Method != d.Missing.Method || !opt.RemoveDuplicates {
		t.Fatalf("cleaning options = %+v", opt)
	}
	if filepath.Base(c.SessionDB) != "sessions.db" {
		t.Fatalf("session db = %q", c.SessionDB)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "outlier_method: zscore\nmissing_method: constant\nmissing_value: \"?\"\nlisten_addr: \":8080\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATALENS_LISTEN_ADDR", ":9090")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ListenAddr != ":9090" {
		t.Fatalf("env should win over file, got %q", c.ListenAddr)
	}
	opt := c.CleaningOptions()
	if opt.OutlierMethod != cleaning.OutlierZScore || opt.Missing.Value != "?" {
		t.Fatalf("options = %+v", opt)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	c.OutlierCap = true
	c.BatchJobs = 2
	if err := Save(c, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !back.OutlierCap || back.BatchJobs != 2 {
		t.Fatalf("reloaded = %+v", back)
	}
}
