package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "petcal.yaml")
	data := []byte("database: /var/lib/petcal/calendar.db\nrollover_time: \"04:30\"\nlog:\n  level: debug\n  file: petcal.log\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database != "/var/lib/petcal/calendar.db" {
		t.Fatalf("database = %q", cfg.Database)
	}
	if cfg.RolloverTime != "04:30" {
		t.Fatalf("rollover_time = %q", cfg.RolloverTime)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "petcal.log" {
		t.Fatalf("log = %+v", cfg.Log)
	}
	if cfg.Log.Console {
		t.Fatalf("console should stay off when a log file is set")
	}
}

func TestNormalizeFillsGaps(t *testing.T) {
	var cfg Config
	cfg.Normalize()

	want := DefaultConfig()
	if cfg != want {
		t.Fatalf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "petcal.yaml")
	if err := os.WriteFile(path, []byte("database: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("malformed config did not error")
	}
}

func TestDefaultPathHonorsEnv(t *testing.T) {
	t.Setenv("PETCAL_CONFIG", "/etc/petcal/config.yaml")
	if got := DefaultPath(); got != "/etc/petcal/config.yaml" {
		t.Fatalf("path = %q", got)
	}

	t.Setenv("PETCAL_CONFIG", "")
	if got := DefaultPath(); got != "petcal.yaml" {
		t.Fatalf("fallback path = %q", got)
	}
}
