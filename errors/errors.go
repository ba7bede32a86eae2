// Package errors provides error handling for verigraph.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrIntegrity) {
//	    // handle tampering
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint      = crdb.WithHint
	WithHintf     = crdb.WithHintf
	WithDetail    = crdb.WithDetail
	WithDetailf   = crdb.WithDetailf
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions and panics
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the ledger error taxonomy.
// Every commit-gate and resolver failure wraps exactly one of these, so
// callers can handle each kind exhaustively with errors.Is().
var (
	// ErrIntegrity indicates a content-hash mismatch (tampering or a bug)
	ErrIntegrity = New("integrity violation")

	// ErrChainBreak indicates a dangling predecessor reference
	ErrChainBreak = New("chain break")

	// ErrGenesis indicates a missing, duplicate, or malformed bootstrap cell
	ErrGenesis = New("genesis violation")

	// ErrTemporal indicates non-monotonic record time
	ErrTemporal = New("temporal violation")

	// ErrGraphMismatch indicates a cross-ledger contamination attempt
	ErrGraphMismatch = New("graph binding violation")

	// ErrAccessDenied indicates the requester holds no authorization for the namespace
	ErrAccessDenied = New("access denied")

	// ErrBridgeRequired indicates cross-namespace access with no bridge in place
	ErrBridgeRequired = New("bridge required")

	// ErrBridgeInvalid indicates a bridge exists but is defective:
	// revoked, outside its validity window, or missing a required signature
	ErrBridgeInvalid = New("bridge invalid")

	// ErrValidation indicates a malformed field rejected at construction time
	ErrValidation = New("field validation failed")

	// ErrNotFound indicates the requested cell or resource does not exist
	ErrNotFound = New("not found")
)

// IsIntegrityError checks if an error is or wraps ErrIntegrity
func IsIntegrityError(err error) bool {
	return err != nil && Is(err, ErrIntegrity)
}

// IsGateError reports whether err is one of the commit-gate rejections.
func IsGateError(err error) bool {
	return err != nil && IsAny(err,
		ErrIntegrity, ErrChainBreak, ErrGenesis, ErrTemporal, ErrGraphMismatch)
}

// IsAuthorizationError reports whether err is a visibility rejection.
func IsAuthorizationError(err error) bool {
	return err != nil && IsAny(err, ErrAccessDenied, ErrBridgeRequired, ErrBridgeInvalid)
}

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// NewValidationError creates a field-validation error with a formatted message
func NewValidationError(format string, args ...interface{}) error {
	return Wrap(ErrValidation, Newf(format, args...).Error())
}

// NewIntegrityError creates an integrity error with a formatted message.
// The message must carry both the computed and the stored value so an
// auditor can see why the check failed without re-deriving it.
func NewIntegrityError(format string, args ...interface{}) error {
	return Wrap(ErrIntegrity, Newf(format, args...).Error())
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}
