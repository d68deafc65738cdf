package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CreateReviewCase opens a pending manual review case for a sale with the
// ranked candidates serialized in order.
func (t *Tx) CreateReviewCase(agencyID string, saleID int64, candidates []ReviewCandidate) (*ReviewCase, error) {
	payload, err := json.Marshal(candidates)
	if err != nil {
		return nil, fmt.Errorf("marshal candidates: %w", err)
	}
	now := time.Now().UTC()
	res, err := t.tx.Exec(
		`INSERT INTO review_cases (agency_id, sale_id, candidates_json, status, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		agencyID, saleID, string(payload), CasePending, formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert review case: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &ReviewCase{
		ID:         id,
		AgencyID:   agencyID,
		SaleID:     saleID,
		Candidates: candidates,
		Status:     CasePending,
		CreatedAt:  now,
	}, nil
}

// ReviewCaseByID fetches a review case by identifier.
func (t *Tx) ReviewCaseByID(id int64) (*ReviewCase, error) {
	row := t.tx.QueryRow(`SELECT `+reviewColumns+` FROM review_cases WHERE id = ?`, id)
	reviewCase, err := scanReviewCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("review case by id: %w", err)
	}
	return reviewCase, nil
}

// PendingReviewCaseForSale returns the open case for a sale, if any.
// A replayed flagged sale row reuses its existing case instead of opening
// a second one.
func (t *Tx) PendingReviewCaseForSale(saleID int64) (*ReviewCase, error) {
	row := t.tx.QueryRow(
		`SELECT `+reviewColumns+` FROM review_cases WHERE sale_id = ? AND status = ? ORDER BY id LIMIT 1`,
		saleID, CasePending,
	)
	reviewCase, err := scanReviewCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pending case for sale: %w", err)
	}
	return reviewCase, nil
}

// MarkReviewCaseResolved transitions a case pending -> resolved exactly
// once. A second attempt returns ErrAlreadyResolved rather than silently
// succeeding.
func (t *Tx) MarkReviewCaseResolved(caseID int64, resolution string, resolvedAt time.Time) error {
	reviewCase, err := t.ReviewCaseByID(caseID)
	if err != nil {
		return err
	}
	if reviewCase.Status == CaseResolved {
		return fmt.Errorf("%w: case %d", ErrAlreadyResolved, caseID)
	}
	_, err = t.tx.Exec(
		`UPDATE review_cases SET status = ?, resolution = ?, resolved_at = ? WHERE id = ?`,
		CaseResolved, resolution, formatTime(resolvedAt), caseID,
	)
	if err != nil {
		return fmt.Errorf("resolve review case: %w", err)
	}
	return nil
}

// PendingReviewCases lists an agency's open cases ordered by creation.
func (s *Store) PendingReviewCases(ctx context.Context, agencyID string) ([]*ReviewCase, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+reviewColumns+` FROM review_cases WHERE agency_id = ? AND status = ? ORDER BY created_at`,
		agencyID, CasePending,
	)
	if err != nil {
		return nil, fmt.Errorf("pending review cases: %w", err)
	}
	defer rows.Close()

	var cases []*ReviewCase
	for rows.Next() {
		reviewCase, err := scanReviewCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, reviewCase)
	}
	return cases, rows.Err()
}

const reviewColumns = `id, agency_id, sale_id, candidates_json, status, created_at, resolved_at, resolution`

func scanReviewCase(scanner interface{ Scan(dest ...any) error }) (*ReviewCase, error) {
	var (
		c          ReviewCase
		payload    string
		statusStr  string
		createdRaw string
		resolved   sql.NullString
		resolution sql.NullString
	)
	if err := scanner.Scan(
		&c.ID,
		&c.AgencyID,
		&c.SaleID,
		&payload,
		&statusStr,
		&createdRaw,
		&resolved,
		&resolution,
	); err != nil {
		return nil, err
	}
	c.Status = CaseStatus(statusStr)
	c.Resolution = resolution.String
	if err := json.Unmarshal([]byte(payload), &c.Candidates); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	if parsed, err := parseTimeString(createdRaw); err == nil {
		c.CreatedAt = parsed
	}
	c.ResolvedAt = parseNullableTime(resolved)
	return &c, nil
}
