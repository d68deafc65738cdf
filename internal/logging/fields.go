package logging

// Standardized attribute keys used across the engine so log queries can rely
// on consistent field names.
const (
	FieldComponent = "component"
	FieldAgencyID  = "agency_id"
	FieldRunID     = "run_id"
	FieldRowIndex  = "row_index"
	FieldOutcome   = "outcome"
	FieldHousehold = "household_id"
	FieldCaseID    = "case_id"
	FieldEventType = "event_type"
)
