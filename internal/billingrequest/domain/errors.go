package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by ledger operations. Callers branch on kind via
// errors.Is; the kind is never swallowed inside the ledger.
var (
	ErrValidation        = errors.New("validation_error")
	ErrNotFound          = errors.New("request_not_found")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrOwnership         = errors.New("ownership_violation")
	// ErrConflict means the precondition read was valid but a concurrent
	// transition won the write. Distinct from ErrInvalidTransition so
	// callers can retry instead of treating the call as misuse.
	ErrConflict   = errors.New("transition_conflict")
	ErrDependency = errors.New("dependency_failure")
)

var (
	ErrInvalidAmount   = fmt.Errorf("%w: requested amount must be at least 0.01", ErrValidation)
	ErrInvalidPlatform = fmt.Errorf("%w: platform not in configured set", ErrValidation)
	ErrMissingActor    = fmt.Errorf("%w: no actor on request context", ErrValidation)
	// ErrNoFiscalData rejects invoice rendering before calculation.
	ErrNoFiscalData = fmt.Errorf("%w: request has no fiscal data yet", ErrValidation)
)
