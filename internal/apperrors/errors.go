package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidTenant indicates that a tenant context could not be constructed
// because the tenant identifier was missing or non-positive. It is fatal at
// construction time and is never defaulted away.
var ErrInvalidTenant = errors.New("invalid tenant context")

// ErrCurrencyMismatch indicates an attempt to add or subtract amounts tagged
// with different currencies. Conversion is a distinct, explicit operation.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// ErrInvalidRate indicates a non-positive (or otherwise unusable) exchange
// rate. Such a rate is always rejected and never persisted.
var ErrInvalidRate = errors.New("invalid exchange rate")

// ErrRateProvider indicates a failure talking to the external FX data source:
// a network/remote error or a response with no usable rate.
var ErrRateProvider = errors.New("rate provider error")

// ErrStrictModeViolation indicates that a raw query touching a tenant-owned
// table carried no recognizable tenant predicate. The operation is aborted;
// the violation is never swallowed or retried with an injected predicate.
var ErrStrictModeViolation = errors.New("strict mode violation")

// StrictModeViolationError carries the audit payload for a rejected raw
// query. It unwraps to ErrStrictModeViolation so callers can match it with
// errors.Is.
type StrictModeViolationError struct {
	TenantID int64
	SQL      string // truncated query text, safe for audit logging
}

func (e *StrictModeViolationError) Error() string {
	return fmt.Sprintf("strict mode violation for tenant %d: raw query lacks tenant predicate", e.TenantID)
}

func (e *StrictModeViolationError) Unwrap() error {
	return ErrStrictModeViolation
}
