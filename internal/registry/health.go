package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Stats returns aggregate entity counts for diagnostics and CLI summaries.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM households GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("household stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status HouseholdStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, err
		}
		stats.Households += count
		switch status {
		case StatusLead:
			stats.Leads = count
		case StatusQuoted:
			stats.Quoted = count
		case StatusSold:
			stats.Sold = count
		}
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM quotes`).Scan(&stats.Quotes); err != nil {
		return Stats{}, fmt.Errorf("quote count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sales`).Scan(&stats.Sales); err != nil {
		return Stats{}, fmt.Errorf("sale count: %w", err)
	}
	if err := s.db.QueryRowContext(
		ctx, `SELECT COUNT(1) FROM review_cases WHERE status = ?`, CasePending,
	).Scan(&stats.PendingCases); err != nil {
		return Stats{}, fmt.Errorf("pending case count: %w", err)
	}
	return stats, nil
}

// ListHouseholds returns an agency's households, optionally filtered by
// status, ordered by creation.
func (s *Store) ListHouseholds(ctx context.Context, agencyID string, statuses ...HouseholdStatus) ([]*Household, error) {
	query := `SELECT ` + householdColumns + ` FROM households h WHERE h.agency_id = ?`
	args := []any{agencyID}
	if len(statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
		query += ` AND h.status IN (` + placeholders + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY h.created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list households: %w", err)
	}
	defer rows.Close()

	var households []*Household
	for rows.Next() {
		household, err := scanHousehold(rows)
		if err != nil {
			return nil, err
		}
		households = append(households, household)
	}
	return households, rows.Err()
}

// HouseholdByID fetches a household outside any transaction, for read-only
// CLI surfaces.
func (s *Store) HouseholdByID(ctx context.Context, id int64) (*Household, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+householdColumns+` FROM households h WHERE h.id = ?`, id)
	household, err := scanHousehold(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("household by id: %w", err)
	}
	return household, nil
}

var expectedTables = []string{"households", "quotes", "sales", "review_cases", "schema_version"}

// CheckHealth returns diagnostic information about the registry database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("registry database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat registry database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("registry database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping registry database: %w", err)
	}
	health.DatabaseReadable = true

	present := map[string]bool{}
	rows, err := s.db.QueryContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("scan table name: %w", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("iterate tables: %w", err)
	}
	for _, table := range expectedTables {
		if present[table] {
			health.TablesPresent = append(health.TablesPresent, table)
		} else {
			health.MissingTables = append(health.MissingTables, table)
		}
	}

	if present["households"] {
		if err := s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM households").Scan(&health.Households); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count households: %w", err)
		}
	}

	var integrityResult string
	if err := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}
