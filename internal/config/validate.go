package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration values and returns all problems joined into
// a single error so operators can fix a bad file in one pass.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		problems = append(problems, "paths.log_dir must not be empty")
	}

	if c.Matching.AutoMatchMinScore < 0 {
		problems = append(problems, "matching.auto_match_min_score must not be negative")
	}
	if c.Matching.AutoMatchMinMargin < 0 {
		problems = append(problems, "matching.auto_match_min_margin must not be negative")
	}
	if c.Matching.PremiumTolerance < 0 || c.Matching.PremiumTolerance >= 1 {
		problems = append(problems, "matching.premium_tolerance must be in [0, 1)")
	}

	if c.Batch.Workers < 1 {
		problems = append(problems, "batch.workers must be at least 1")
	}
	if c.Batch.RetryAttempts < 1 {
		problems = append(problems, "batch.retry_attempts must be at least 1")
	}
	if c.Batch.RetryBackoffMS < 0 {
		problems = append(problems, "batch.retry_backoff_ms must not be negative")
	}

	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format: unsupported value %q", c.Logging.Format))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}
