package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date carried on input rows. It unmarshals from either
// "2006-01-02" or an RFC 3339 timestamp and always marshals as the former.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(dateLayout, raw); err == nil {
		d.Time = parsed.UTC()
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	d.Time = parsed.UTC()
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.Format(dateLayout))
}

// LeadRow is one raw lead record from an upstream export.
type LeadRow struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Zip          string `json:"zip"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Source       string `json:"source,omitempty"`
	ReceivedDate Date   `json:"received_date"`
}

// Validate reports why the row cannot be ingested, or nil.
func (r LeadRow) Validate() error {
	var problems []string
	if strings.TrimSpace(r.LastName) == "" {
		problems = append(problems, "last_name is required")
	}
	if strings.TrimSpace(r.FirstName) == "" {
		problems = append(problems, "first_name is required")
	}
	if strings.TrimSpace(r.Zip) == "" {
		problems = append(problems, "zip is required")
	}
	if r.ReceivedDate.IsZero() {
		problems = append(problems, "received_date is required")
	}
	return joinProblems(problems)
}

// QuoteRow is one raw quote record from an upstream export.
type QuoteRow struct {
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	Zip                string  `json:"zip"`
	ProductType        string  `json:"product_type,omitempty"`
	SubProducerCode    string  `json:"sub_producer_code,omitempty"`
	Premium            float64 `json:"premium"`
	ProductionDate     Date    `json:"production_date"`
	IssuedPolicyNumber string  `json:"issued_policy_number,omitempty"`
}

// Validate reports why the row cannot be ingested, or nil.
func (r QuoteRow) Validate() error {
	var problems []string
	if strings.TrimSpace(r.LastName) == "" {
		problems = append(problems, "last_name is required")
	}
	if strings.TrimSpace(r.FirstName) == "" {
		problems = append(problems, "first_name is required")
	}
	if strings.TrimSpace(r.Zip) == "" {
		problems = append(problems, "zip is required")
	}
	if r.ProductionDate.IsZero() {
		problems = append(problems, "production_date is required")
	}
	if r.Premium <= 0 {
		problems = append(problems, "premium must be positive")
	}
	return joinProblems(problems)
}

// SaleRow is one raw issued-policy record from an upstream export.
type SaleRow struct {
	PolicyNumber    string  `json:"policy_number"`
	FirstName       string  `json:"first_name,omitempty"`
	LastName        string  `json:"last_name"`
	Zip             string  `json:"zip,omitempty"`
	ProductType     string  `json:"product_type,omitempty"`
	SubProducerCode string  `json:"sub_producer_code,omitempty"`
	Premium         float64 `json:"premium"`
	IssuedDate      Date    `json:"issued_date"`
}

// Validate reports why the row cannot be ingested, or nil.
func (r SaleRow) Validate() error {
	var problems []string
	if strings.TrimSpace(r.PolicyNumber) == "" {
		problems = append(problems, "policy_number is required")
	}
	if strings.TrimSpace(r.LastName) == "" {
		problems = append(problems, "last_name is required")
	}
	if r.IssuedDate.IsZero() {
		problems = append(problems, "issued_date is required")
	}
	if r.Premium <= 0 {
		problems = append(problems, "premium must be positive")
	}
	return joinProblems(problems)
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return errors.New(strings.Join(problems, "; "))
}
