package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "sqlplan")
	orig := configDirFunc
	configDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { configDirFunc = orig })
	return dir
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	useTempConfigDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	useTempConfigDir(t)

	want := Config{Format: "json", CompareThresholdPct: 5}
	if err := Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLoad_FillsUnsetFields(t *testing.T) {
	dir := useTempConfigDir(t)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte("format: json\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q", cfg.Format)
	}
	if cfg.CompareThresholdPct != 1.0 {
		t.Errorf("CompareThresholdPct = %f, want default 1.0", cfg.CompareThresholdPct)
	}
}

func TestLoad_BadYaml(t *testing.T) {
	dir := useTempConfigDir(t)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte("format: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestInit(t *testing.T) {
	dir := useTempConfigDir(t)

	path, err := Init(false)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if path != filepath.Join(dir, configFileName) {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "format: text") {
		t.Errorf("template missing format default:\n%s", data)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load after Init: %v", err)
	}
	if cfg != Default() {
		t.Errorf("template should parse to defaults, got %+v", cfg)
	}
}

func TestInit_ExistingFile(t *testing.T) {
	useTempConfigDir(t)

	if _, err := Init(false); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	if _, err := Init(false); err == nil {
		t.Fatal("expected error without --force")
	}
	if _, err := Init(true); err != nil {
		t.Fatalf("Init with force: %v", err)
	}
}
