package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lqsmatch/internal/identity"
)

// InsertSale persists a new sale and assigns its ID. HouseholdID may be
// zero when the sale is awaiting resolution.
func (t *Tx) InsertSale(s *Sale) error {
	now := time.Now().UTC()
	s.CreatedAt = now

	var householdID any
	if s.HouseholdID != 0 {
		householdID = s.HouseholdID
	}
	res, err := t.tx.Exec(
		`INSERT INTO sales (
            agency_id, household_id, policy_number, first_name, last_name,
            product_type, sub_producer_code, premium, issued_date, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.AgencyID,
		householdID,
		s.PolicyNumber,
		s.FirstName,
		s.LastName,
		string(s.ProductType),
		nullableString(s.SubProducerCode),
		s.Premium,
		formatTime(s.IssuedDate),
		formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	s.ID = id
	return nil
}

// FindSaleByPolicyNumber returns the agency's earliest sale carrying the
// policy number, used to detect replayed rows and duplicate claims.
func (t *Tx) FindSaleByPolicyNumber(agencyID, policyNumber string) (*Sale, error) {
	row := t.tx.QueryRow(
		`SELECT `+saleColumns+` FROM sales WHERE agency_id = ? AND policy_number = ? ORDER BY id LIMIT 1`,
		agencyID, policyNumber,
	)
	sale, err := scanSale(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sale by policy number: %w", err)
	}
	return sale, nil
}

// SaleByID fetches a sale by identifier.
func (t *Tx) SaleByID(id int64) (*Sale, error) {
	row := t.tx.QueryRow(`SELECT `+saleColumns+` FROM sales WHERE id = ?`, id)
	sale, err := scanSale(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sale by id: %w", err)
	}
	return sale, nil
}

// LinkSale attaches a sale to a household. Once set, household_id never
// changes: relinking to the same household is a no-op, any other household
// is ErrSaleAlreadyLinked.
func (t *Tx) LinkSale(saleID, householdID int64) error {
	sale, err := t.SaleByID(saleID)
	if err != nil {
		return err
	}
	if sale.Linked() {
		if sale.HouseholdID == householdID {
			return nil
		}
		return fmt.Errorf("%w: sale %d is linked to household %d", ErrSaleAlreadyLinked, saleID, sale.HouseholdID)
	}
	if _, err := t.tx.Exec(`UPDATE sales SET household_id = ? WHERE id = ?`, householdID, saleID); err != nil {
		return fmt.Errorf("link sale: %w", err)
	}
	return nil
}

// AttachSale links a sale to a household and marks the household sold as of
// issuedDate. A household that is already sold keeps its original milestone
// dates: a second policy sold into the same household only gains the link.
func (t *Tx) AttachSale(saleID, householdID int64, issuedDate time.Time) error {
	if err := t.LinkSale(saleID, householdID); err != nil {
		return err
	}
	household, err := t.HouseholdByID(householdID)
	if err != nil {
		return err
	}
	if household.Status == StatusSold {
		return nil
	}
	_, err = t.TransitionToSold(householdID, issuedDate)
	return err
}

const saleColumns = `id, agency_id, household_id, policy_number, first_name, last_name,
    product_type, sub_producer_code, premium, issued_date, created_at`

func scanSale(scanner interface{ Scan(dest ...any) error }) (*Sale, error) {
	var (
		s           Sale
		householdID sql.NullInt64
		productStr  string
		subProducer sql.NullString
		issuedRaw   string
		createdRaw  string
	)
	if err := scanner.Scan(
		&s.ID,
		&s.AgencyID,
		&householdID,
		&s.PolicyNumber,
		&s.FirstName,
		&s.LastName,
		&productStr,
		&subProducer,
		&s.Premium,
		&issuedRaw,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	s.HouseholdID = householdID.Int64
	s.ProductType = identity.ProductType(productStr)
	s.SubProducerCode = subProducer.String
	if parsed, err := parseTimeString(issuedRaw); err == nil {
		s.IssuedDate = parsed
	}
	if parsed, err := parseTimeString(createdRaw); err == nil {
		s.CreatedAt = parsed
	}
	return &s, nil
}
