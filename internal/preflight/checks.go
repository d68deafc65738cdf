// Package preflight verifies the runtime environment before a batch run
// touches the database.
package preflight

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"lqsmatch/internal/config"
)

// Check is one verifiable precondition.
type Check struct {
	Name string
	Run  func(cfg *config.Config) error
}

// Checks returns the standard preflight checks in execution order.
func Checks() []Check {
	return []Check{
		{Name: "data directory", Run: checkDataDir},
		{Name: "log directory", Run: checkLogDir},
	}
}

// Run executes every check and returns the joined failures, or nil.
func Run(cfg *config.Config) error {
	var failures []error
	for _, check := range Checks() {
		if err := check.Run(cfg); err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", check.Name, err))
		}
	}
	return errors.Join(failures...)
}

func checkDataDir(cfg *config.Config) error {
	return checkWritableDir(cfg.Paths.DataDir)
}

func checkLogDir(cfg *config.Config) error {
	return checkWritableDir(cfg.Paths.LogDir)
}

// checkWritableDir confirms the directory exists (creating it if missing)
// and is traversable and writable by the current user.
func checkWritableDir(path string) error {
	if path == "" {
		return errors.New("path is not configured")
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("insufficient permissions on %s: %w", path, err)
	}
	return nil
}
