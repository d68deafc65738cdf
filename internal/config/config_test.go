package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"lqsmatch/internal/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != missing {
		t.Fatalf("resolved path = %q, want %q", resolved, missing)
	}
	if cfg.Matching.AutoMatchMinScore != 75 || cfg.Matching.AutoMatchMinMargin != 20 {
		t.Fatalf("unexpected matching defaults: %+v", cfg.Matching)
	}
	if cfg.Matching.PremiumTolerance != 0.15 {
		t.Fatalf("premium tolerance default = %v, want 0.15", cfg.Matching.PremiumTolerance)
	}
	if cfg.Batch.Workers != 4 {
		t.Fatalf("batch workers default = %d, want 4", cfg.Batch.Workers)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"

[matching]
auto_match_min_score = 80

[logging]
format = "json"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Matching.AutoMatchMinScore != 80 {
		t.Fatalf("auto_match_min_score = %d, want 80", cfg.Matching.AutoMatchMinScore)
	}
	if cfg.Matching.AutoMatchMinMargin != 20 {
		t.Fatalf("auto_match_min_margin default lost: %d", cfg.Matching.AutoMatchMinMargin)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("logging format = %q, want json", cfg.Logging.Format)
	}
	if cfg.Paths.DataDir != filepath.Join(dir, "data") {
		t.Fatalf("data_dir = %q", cfg.Paths.DataDir)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[matching]\nbogus = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"defaults valid", func(*config.Config) {}, false},
		{"zero workers", func(c *config.Config) { c.Batch.Workers = 0 }, true},
		{"negative margin", func(c *config.Config) { c.Matching.AutoMatchMinMargin = -1 }, true},
		{"tolerance out of range", func(c *config.Config) { c.Matching.PremiumTolerance = 1.5 }, true},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config does not load: exists=%v err=%v", exists, err)
	}
}
