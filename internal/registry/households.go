package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lqsmatch/internal/identity"
)

// LeadContact carries the household fields sourced from a lead row. Key is
// the precomputed household key for the contact.
type LeadContact struct {
	Key          string
	FirstName    string
	LastName     string
	Zip          string
	Phone        string
	Email        string
	Source       string
	ReceivedDate time.Time
}

// QuoteContact carries the household fields sourced from a quote row when
// the quote arrives before any lead.
type QuoteContact struct {
	Key       string
	FirstName string
	LastName  string
	Zip       string
}

// SaleContact carries the household fields for a one-call-close household
// created straight from a sale.
type SaleContact struct {
	FirstName string
	LastName  string
	Zip       string
}

// UpsertFromLead creates the household for a lead row, or refreshes the
// mutable contact fields (phone, email, lead source) when it already
// exists. Status and milestone dates never change on re-ingest. The second
// return reports whether a new household was created.
func (t *Tx) UpsertFromLead(agencyID string, lead LeadContact) (*Household, bool, error) {
	existing, err := t.HouseholdByKey(agencyID, lead.Key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	now := time.Now().UTC()

	if existing != nil {
		existing.Phone = lead.Phone
		existing.Email = lead.Email
		if lead.Source != "" {
			existing.LeadSource = lead.Source
		}
		existing.UpdatedAt = now
		if err := t.updateHouseholdContact(existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	household := &Household{
		AgencyID:         agencyID,
		Key:              lead.Key,
		LastName:         lead.LastName,
		FirstName:        lead.FirstName,
		Zip:              lead.Zip,
		Status:           StatusLead,
		LeadReceivedDate: lead.ReceivedDate,
		LeadSource:       lead.Source,
		Phone:            lead.Phone,
		Email:            lead.Email,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := t.insertHousehold(household); err != nil {
		return nil, false, err
	}
	return household, true, nil
}

// UpsertFromQuote ensures a household exists for a quote row. A missing
// household is born directly into quoted with lead_received_date equal to
// the quote date; an existing lead transitions to quoted and records its
// first quote date. Households already quoted or sold are left unchanged.
func (t *Tx) UpsertFromQuote(agencyID string, contact QuoteContact, quoteDate time.Time) (*Household, bool, error) {
	existing, err := t.HouseholdByKey(agencyID, contact.Key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	now := time.Now().UTC()

	if existing != nil {
		if existing.Status == StatusLead {
			existing.Status = StatusQuoted
			if existing.FirstQuoteDate == nil {
				quoted := quoteDate
				existing.FirstQuoteDate = &quoted
			}
			existing.UpdatedAt = now
			if err := t.updateHouseholdStatus(existing); err != nil {
				return nil, false, err
			}
		}
		return existing, false, nil
	}

	quoted := quoteDate
	household := &Household{
		AgencyID:         agencyID,
		Key:              contact.Key,
		LastName:         contact.LastName,
		FirstName:        contact.FirstName,
		Zip:              contact.Zip,
		Status:           StatusQuoted,
		LeadReceivedDate: quoteDate,
		FirstQuoteDate:   &quoted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := t.insertHousehold(household); err != nil {
		return nil, false, err
	}
	return household, true, nil
}

// TransitionToSold marks a household sold as of soldDate. Re-applying the
// same sold date is a no-op so replayed sale rows stay idempotent; a
// different sold date on an already-sold household is an invalid
// transition, because another sale committed it first.
func (t *Tx) TransitionToSold(householdID int64, soldDate time.Time) (*Household, error) {
	household, err := t.HouseholdByID(householdID)
	if err != nil {
		return nil, err
	}

	if household.Status == StatusSold {
		if household.SoldDate != nil && household.SoldDate.Equal(soldDate) {
			return household, nil
		}
		return nil, fmt.Errorf("%w: household %d already sold on %s",
			ErrInvalidTransition, householdID, formatTime(deref(household.SoldDate)))
	}

	sold := soldDate
	household.Status = StatusSold
	household.SoldDate = &sold
	household.UpdatedAt = time.Now().UTC()
	if err := t.updateHouseholdStatus(household); err != nil {
		return nil, err
	}
	return household, nil
}

// CreateSoldHousehold creates a brand-new household already in sold status
// (one-call close): all three milestone dates equal the sale date and the
// lead source records that no lead or quote history exists.
func (t *Tx) CreateSoldHousehold(agencyID string, contact SaleContact, saleDate time.Time) (*Household, error) {
	now := time.Now().UTC()
	date := saleDate
	household := &Household{
		AgencyID:         agencyID,
		Key:              identity.HouseholdKey(contact.LastName, contact.FirstName, contact.Zip),
		LastName:         contact.LastName,
		FirstName:        contact.FirstName,
		Zip:              contact.Zip,
		Status:           StatusSold,
		LeadReceivedDate: saleDate,
		FirstQuoteDate:   &date,
		SoldDate:         &date,
		LeadSource:       LeadSourceDirect,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := t.insertHousehold(household); err != nil {
		return nil, err
	}
	return household, nil
}

// CandidatesByLastName returns the agency's households whose surname
// matches case-insensitively, restricted to households with at least one
// quote on record. Any status qualifies; ordering is stable by ID.
func (t *Tx) CandidatesByLastName(agencyID, lastName string) ([]*Household, error) {
	norm := identity.NormalizeLastName(lastName)
	rows, err := t.tx.Query(
		`SELECT `+householdColumns+` FROM households h
         WHERE h.agency_id = ? AND h.last_name_norm = ?
           AND EXISTS (SELECT 1 FROM quotes q WHERE q.household_id = h.id)
         ORDER BY h.id`,
		agencyID, norm,
	)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
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

// HouseholdByKey fetches a household by its agency-scoped key.
func (t *Tx) HouseholdByKey(agencyID, key string) (*Household, error) {
	row := t.tx.QueryRow(
		`SELECT `+householdColumns+` FROM households h WHERE h.agency_id = ? AND h.household_key = ?`,
		agencyID, key,
	)
	household, err := scanHousehold(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("household by key: %w", err)
	}
	return household, nil
}

// HouseholdByID fetches a household by identifier.
func (t *Tx) HouseholdByID(id int64) (*Household, error) {
	row := t.tx.QueryRow(`SELECT `+householdColumns+` FROM households h WHERE h.id = ?`, id)
	household, err := scanHousehold(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("household by id: %w", err)
	}
	return household, nil
}

func (t *Tx) insertHousehold(h *Household) error {
	res, err := t.tx.Exec(
		`INSERT INTO households (
            agency_id, household_key, last_name, first_name, zip, last_name_norm,
            status, lead_received_date, first_quote_date, sold_date, lead_source,
            phone, email, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.AgencyID,
		h.Key,
		h.LastName,
		h.FirstName,
		h.Zip,
		identity.NormalizeLastName(h.LastName),
		h.Status,
		formatTime(h.LeadReceivedDate),
		nullableTime(h.FirstQuoteDate),
		nullableTime(h.SoldDate),
		nullableString(h.LeadSource),
		nullableString(h.Phone),
		nullableString(h.Email),
		formatTime(h.CreatedAt),
		formatTime(h.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert household: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	h.ID = id
	return nil
}

func (t *Tx) updateHouseholdContact(h *Household) error {
	_, err := t.tx.Exec(
		`UPDATE households SET phone = ?, email = ?, lead_source = ?, updated_at = ? WHERE id = ?`,
		nullableString(h.Phone),
		nullableString(h.Email),
		nullableString(h.LeadSource),
		formatTime(h.UpdatedAt),
		h.ID,
	)
	if err != nil {
		return fmt.Errorf("update household contact: %w", err)
	}
	return nil
}

func (t *Tx) updateHouseholdStatus(h *Household) error {
	_, err := t.tx.Exec(
		`UPDATE households SET status = ?, first_quote_date = ?, sold_date = ?, updated_at = ? WHERE id = ?`,
		h.Status,
		nullableTime(h.FirstQuoteDate),
		nullableTime(h.SoldDate),
		formatTime(h.UpdatedAt),
		h.ID,
	)
	if err != nil {
		return fmt.Errorf("update household status: %w", err)
	}
	return nil
}

const householdColumns = `h.id, h.agency_id, h.household_key, h.last_name, h.first_name, h.zip,
    h.status, h.lead_received_date, h.first_quote_date, h.sold_date, h.lead_source,
    h.phone, h.email, h.created_at, h.updated_at`

func scanHousehold(scanner interface{ Scan(dest ...any) error }) (*Household, error) {
	var (
		h            Household
		statusStr    string
		leadReceived string
		firstQuote   sql.NullString
		soldDate     sql.NullString
		leadSource   sql.NullString
		phone        sql.NullString
		email        sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(
		&h.ID,
		&h.AgencyID,
		&h.Key,
		&h.LastName,
		&h.FirstName,
		&h.Zip,
		&statusStr,
		&leadReceived,
		&firstQuote,
		&soldDate,
		&leadSource,
		&phone,
		&email,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	h.Status = HouseholdStatus(statusStr)
	h.LeadSource = leadSource.String
	h.Phone = phone.String
	h.Email = email.String
	if parsed, err := parseTimeString(leadReceived); err == nil {
		h.LeadReceivedDate = parsed
	}
	h.FirstQuoteDate = parseNullableTime(firstQuote)
	h.SoldDate = parseNullableTime(soldDate)
	if parsed, err := parseTimeString(createdRaw); err == nil {
		h.CreatedAt = parsed
	}
	if parsed, err := parseTimeString(updatedRaw); err == nil {
		h.UpdatedAt = parsed
	}
	return &h, nil
}

func deref(value *time.Time) time.Time {
	if value == nil {
		return time.Time{}
	}
	return *value
}
