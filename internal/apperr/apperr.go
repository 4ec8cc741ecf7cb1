// Package apperr defines the closed error taxonomy surfaced by the
// service layer. Handlers map kinds to HTTP status codes with a lookup
// table; raw store errors never cross this boundary.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidInput
	KindConflict
	KindUnauthorized
	KindForbidden
	KindStoreFailure
)

// Error couples a stable kind with a caller-facing message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Store wraps an unexpected persistence error as a StoreFailure.
func Store(op string, err error) *Error {
	return &Error{Kind: KindStoreFailure, Msg: op + " failed", Err: err}
}

// KindOf extracts the kind from err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the caller-facing message of err, or a generic fallback.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}

var (
	ErrCustomerNotFound     = New(KindNotFound, "customer not found")
	ErrProductNotFound      = New(KindNotFound, "product not found")
	ErrSubscriptionNotFound = New(KindNotFound, "subscription not found")

	ErrInvalidID          = New(KindInvalidInput, "invalid identifier format")
	ErrInvalidDateFormat  = New(KindInvalidInput, "invalid date format, use ISO 8601 (YYYY-MM-DDTHH:MM:SS)")
	ErrInvalidPrice       = New(KindInvalidInput, "price must be a positive number")
	ErrInvalidPeriodicity = New(KindInvalidInput, "periodicity must be monthly or annually")

	ErrDuplicateName           = New(KindConflict, "product with this name already exists")
	ErrDuplicateEmail          = New(KindConflict, "customer with this email already exists")
	ErrDuplicateActive         = New(KindConflict, "customer already has an active subscription for this product")
	ErrExpirationInPast        = New(KindConflict, "expiration date cannot be in the past")
	ErrMissingCustomization    = New(KindConflict, "product is customizable, customization data is required")
	ErrUnexpectedCustomization = New(KindConflict, "product is not customizable, customization data not allowed")
	ErrIncompleteProductData   = New(KindConflict, "product is missing price or periodicity data")
	ErrNotCustomizable         = New(KindConflict, "product associated with this subscription is not customizable")

	ErrInvalidCredentials = New(KindUnauthorized, "invalid credentials")
	ErrNotOwner           = New(KindForbidden, "subscription belongs to another customer")
)
