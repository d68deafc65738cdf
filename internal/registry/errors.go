package registry

import "errors"

var (
	// ErrNotFound signals the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition signals an attempt to move a household backward
	// through its lifecycle, or to re-sell a household with a conflicting
	// sold date. This is a programming-contract violation for the row that
	// triggered it, not a batch-fatal condition.
	ErrInvalidTransition = errors.New("invalid household status transition")

	// ErrSaleAlreadyLinked signals an attempt to relink a sale to a
	// different household; household_id is immutable once set.
	ErrSaleAlreadyLinked = errors.New("sale already linked to a household")

	// ErrAlreadyResolved signals a second resolution attempt on a closed
	// review case. Rejected rather than ignored so duplicate submissions
	// from a review surface stay visible.
	ErrAlreadyResolved = errors.New("review case already resolved")

	// ErrPolicyNumberTaken signals that a non-null issued policy number is
	// already held by another quote for the agency.
	ErrPolicyNumberTaken = errors.New("issued policy number already recorded")
)
