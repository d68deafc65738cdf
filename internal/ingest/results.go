package ingest

// RowStatus is the audit outcome of one ingested row.
type RowStatus string

const (
	// StatusCreated means the row produced a new primary record: a new
	// household for leads, a new quote for quotes, a one-call-close
	// household for sales.
	StatusCreated RowStatus = "created"
	// StatusUpdated means the row refreshed an existing record.
	StatusUpdated RowStatus = "updated"
	// StatusMatched means the row resolved to an existing record: a
	// replayed quote, or a sale linked to a household.
	StatusMatched RowStatus = "matched"
	// StatusFlagged means the row opened (or rejoined) a manual review
	// case instead of committing a decision.
	StatusFlagged RowStatus = "flagged"
	// StatusSkippedInvalid means the row failed validation and wrote
	// nothing.
	StatusSkippedInvalid RowStatus = "skipped-invalid"
	// StatusFailed means processing errored after validation.
	StatusFailed RowStatus = "failed"
)

// RowResult is the per-row audit record a batch run reports.
type RowResult struct {
	Index       int       `json:"index"`
	Status      RowStatus `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	HouseholdID int64     `json:"household_id,omitempty"`
	QuoteID     int64     `json:"quote_id,omitempty"`
	SaleID      int64     `json:"sale_id,omitempty"`
	CaseID      int64     `json:"case_id,omitempty"`
	Warnings    []string  `json:"warnings,omitempty"`
}

// Reason strings recorded on sale results so the audit trail explains which
// resolver step decided the row.
const (
	ReasonPolicyNumber     = "policy_number"
	ReasonScoredMatch      = "scored_match"
	ReasonSoleCandidate    = "sole_candidate"
	ReasonOneCallClose     = "one_call_close"
	ReasonAmbiguous        = "ambiguous_candidates"
	ReasonPolicyConflict   = "policy_number_conflict"
	ReasonReplay           = "replay"
	ReasonPendingReview    = "pending_review"
	ReasonValidation       = "validation"
	ReasonProcessingFailed = "processing_error"
)

// BatchReport summarizes one batch run.
type BatchReport struct {
	RunID    string      `json:"run_id"`
	AgencyID string      `json:"agency_id"`
	Kind     string      `json:"kind"`
	Results  []RowResult `json:"results"`
}

// Count returns how many rows finished with the given status.
func (r *BatchReport) Count(status RowStatus) int {
	n := 0
	for _, result := range r.Results {
		if result.Status == status {
			n++
		}
	}
	return n
}

// Total returns the number of rows in the run.
func (r *BatchReport) Total() int { return len(r.Results) }

func invalidResult(index int, err error) RowResult {
	return RowResult{Index: index, Status: StatusSkippedInvalid, Reason: ReasonValidation, Warnings: []string{err.Error()}}
}

func failedResult(index int, err error) RowResult {
	return RowResult{Index: index, Status: StatusFailed, Reason: ReasonProcessingFailed, Warnings: []string{err.Error()}}
}
