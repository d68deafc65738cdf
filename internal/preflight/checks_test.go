package preflight_test

import (
	"os"
	"path/filepath"
	"testing"

	"lqsmatch/internal/preflight"
	"lqsmatch/internal/testsupport"
)

func TestRunCreatesMissingDirectories(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	if err := preflight.Run(cfg); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("directory %s not created: %v", dir, err)
		}
	}
}

func TestRunRejectsFileAsDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	if err := os.MkdirAll(filepath.Dir(cfg.Paths.DataDir), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(cfg.Paths.DataDir, []byte("not a dir"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := preflight.Run(cfg); err == nil {
		t.Fatal("expected an error for a non-directory data path")
	}
}
