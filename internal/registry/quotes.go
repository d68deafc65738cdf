package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lqsmatch/internal/identity"
)

// InsertQuote persists a new quote and assigns its ID. Callers must check
// policy-number availability first via PolicyNumberInUse; the partial unique
// index backs that check up at the storage layer.
func (t *Tx) InsertQuote(q *Quote) error {
	now := time.Now().UTC()
	q.CreatedAt = now
	res, err := t.tx.Exec(
		`INSERT INTO quotes (
            agency_id, household_id, issued_policy_number, product_type,
            sub_producer_code, premium, production_date, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.AgencyID,
		q.HouseholdID,
		nullableString(q.IssuedPolicyNumber),
		string(q.ProductType),
		nullableString(q.SubProducerCode),
		q.Premium,
		formatTime(q.ProductionDate),
		formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	q.ID = id
	return nil
}

// FindQuoteByPolicyNumber returns the agency's quote holding the given
// issued policy number.
func (t *Tx) FindQuoteByPolicyNumber(agencyID, policyNumber string) (*Quote, error) {
	row := t.tx.QueryRow(
		`SELECT `+quoteColumns+` FROM quotes WHERE agency_id = ? AND issued_policy_number = ?`,
		agencyID, policyNumber,
	)
	quote, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("quote by policy number: %w", err)
	}
	return quote, nil
}

// FindQuoteByFingerprint locates an existing quote by its idempotency key:
// the household plus the normalized product, production date, and premium.
// Replayed quote rows resolve to the same record through this lookup.
func (t *Tx) FindQuoteByFingerprint(householdID int64, product identity.ProductType, productionDate time.Time, premium float64) (*Quote, error) {
	row := t.tx.QueryRow(
		`SELECT `+quoteColumns+` FROM quotes
         WHERE household_id = ? AND product_type = ? AND production_date = ? AND premium = ?`,
		householdID, string(product), formatTime(productionDate), premium,
	)
	quote, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("quote by fingerprint: %w", err)
	}
	return quote, nil
}

// PolicyNumberInUse reports whether any quote for the agency already holds
// the issued policy number.
func (t *Tx) PolicyNumberInUse(agencyID, policyNumber string) (bool, error) {
	var count int
	err := t.tx.QueryRow(
		`SELECT COUNT(1) FROM quotes WHERE agency_id = ? AND issued_policy_number = ?`,
		agencyID, policyNumber,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check policy number: %w", err)
	}
	return count > 0, nil
}

// SetQuotePolicyNumber records an issued policy number on a quote that does
// not have one yet. A quote's policy number is immutable once set.
func (t *Tx) SetQuotePolicyNumber(quoteID int64, policyNumber string) error {
	res, err := t.tx.Exec(
		`UPDATE quotes SET issued_policy_number = ? WHERE id = ? AND issued_policy_number IS NULL`,
		policyNumber, quoteID,
	)
	if err != nil {
		return fmt.Errorf("set quote policy number: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: quote %d", ErrPolicyNumberTaken, quoteID)
	}
	return nil
}

// QuotesForHousehold returns a household's quotes ordered by ID, giving the
// scorer a deterministic iteration order.
func (t *Tx) QuotesForHousehold(householdID int64) ([]*Quote, error) {
	rows, err := t.tx.Query(
		`SELECT `+quoteColumns+` FROM quotes WHERE household_id = ? ORDER BY id`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("quotes for household: %w", err)
	}
	defer rows.Close()

	var quotes []*Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)
	}
	return quotes, rows.Err()
}

const quoteColumns = `id, agency_id, household_id, issued_policy_number, product_type,
    sub_producer_code, premium, production_date, created_at`

func scanQuote(scanner interface{ Scan(dest ...any) error }) (*Quote, error) {
	var (
		q           Quote
		policy      sql.NullString
		productStr  string
		subProducer sql.NullString
		production  string
		createdRaw  string
	)
	if err := scanner.Scan(
		&q.ID,
		&q.AgencyID,
		&q.HouseholdID,
		&policy,
		&productStr,
		&subProducer,
		&q.Premium,
		&production,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	q.IssuedPolicyNumber = policy.String
	q.ProductType = identity.ProductType(productStr)
	q.SubProducerCode = subProducer.String
	if parsed, err := parseTimeString(production); err == nil {
		q.ProductionDate = parsed
	}
	if parsed, err := parseTimeString(createdRaw); err == nil {
		q.CreatedAt = parsed
	}
	return &q, nil
}
