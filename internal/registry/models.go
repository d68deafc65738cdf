package registry

import (
	"strings"
	"time"

	"lqsmatch/internal/identity"
)

// HouseholdStatus represents the lifecycle of a household. Transitions are
// monotonic: lead -> quoted -> sold, and sold is terminal. A household may
// be born directly into quoted (quote with no prior lead) or sold (one-call
// close).
type HouseholdStatus string

const (
	StatusLead   HouseholdStatus = "lead"
	StatusQuoted HouseholdStatus = "quoted"
	StatusSold   HouseholdStatus = "sold"
)

// statusRank orders statuses so transition checks can reject regressions.
var statusRank = map[HouseholdStatus]int{
	StatusLead:   0,
	StatusQuoted: 1,
	StatusSold:   2,
}

// ParseHouseholdStatus converts a string into a known HouseholdStatus.
func ParseHouseholdStatus(value string) (HouseholdStatus, bool) {
	normalized := HouseholdStatus(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusRank[normalized]
	return normalized, ok
}

// LeadSourceDirect is the lead source recorded for one-call-close households
// created straight from a sale with no quote history.
const LeadSourceDirect = "Direct/Unknown"

// Household is the canonical identity of a prospect within one agency.
type Household struct {
	ID               int64
	AgencyID         string
	Key              string
	LastName         string
	FirstName        string
	Zip              string
	Status           HouseholdStatus
	LeadReceivedDate time.Time
	FirstQuoteDate   *time.Time
	SoldDate         *time.Time
	LeadSource       string
	Phone            string
	Email            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Quote is a quote event tied to one household.
type Quote struct {
	ID                 int64
	AgencyID           string
	HouseholdID        int64
	IssuedPolicyNumber string // empty means none issued
	ProductType        identity.ProductType
	SubProducerCode    string
	Premium            float64
	ProductionDate     time.Time
	CreatedAt          time.Time
}

// Sale is an issued policy event. HouseholdID is zero until the sale is
// resolved; once linked it never changes.
type Sale struct {
	ID              int64
	AgencyID        string
	HouseholdID     int64
	PolicyNumber    string
	FirstName       string
	LastName        string
	ProductType     identity.ProductType
	SubProducerCode string
	Premium         float64
	IssuedDate      time.Time
	CreatedAt       time.Time
}

// Linked reports whether the sale has been attached to a household.
func (s *Sale) Linked() bool { return s.HouseholdID != 0 }

// CaseStatus is the lifecycle of a manual review case.
type CaseStatus string

const (
	CasePending  CaseStatus = "pending"
	CaseResolved CaseStatus = "resolved"
)

// ResolutionNew is the resolution value recorded when a reviewer decides the
// sale belongs to a brand-new household.
const ResolutionNew = "new"

// ReviewCandidate is one ranked household option on a review case.
type ReviewCandidate struct {
	HouseholdID int64    `json:"household_id"`
	QuoteID     int64    `json:"quote_id,omitempty"`
	Score       int      `json:"score"`
	Reasons     []string `json:"reasons,omitempty"`
}

// ReviewCase holds an ambiguous sale-to-household decision awaiting a human.
type ReviewCase struct {
	ID         int64
	AgencyID   string
	SaleID     int64
	Candidates []ReviewCandidate
	Status     CaseStatus
	CreatedAt  time.Time
	ResolvedAt *time.Time
	Resolution string
}

// Stats aggregates registry counts for diagnostics and the CLI.
type Stats struct {
	Households   int
	Leads        int
	Quoted       int
	Sold         int
	Quotes       int
	Sales        int
	PendingCases int
}

// DatabaseHealth captures diagnostic information about the database file.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TablesPresent    []string
	MissingTables    []string
	IntegrityCheck   bool
	Households       int
	Error            string
}
