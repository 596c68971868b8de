package domain

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	switch {
	case e.Field != "" && e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	default:
		return "validation error"
	}
}

func (e ValidationError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// AuthorizationError is returned when the caller does not own the booking.
type AuthorizationError struct {
	Msg string
}

func (e AuthorizationError) Error() string {
	if e.Msg == "" {
		return "forbidden"
	}
	return e.Msg
}

// ConflictError reports an invalid state transition or a uniqueness clash.
type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// RouteDataIncompleteError means a schedule was found but one of the
// consecutive station pairs along it has no recorded distance.
type RouteDataIncompleteError struct {
	FromStationID string
	ToStationID   string
}

func (e RouteDataIncompleteError) Error() string {
	return fmt.Sprintf("incomplete route data: no distance between %s and %s", e.FromStationID, e.ToStationID)
}

// SchedulerTransientError wraps a failure of a single sweep iteration.
type SchedulerTransientError struct {
	Op  string
	Err error
}

func (e SchedulerTransientError) Error() string {
	return fmt.Sprintf("sweep %s: %v", e.Op, e.Err)
}

func (e SchedulerTransientError) Unwrap() error { return e.Err }

var (
	ErrInvalidRoute     = ValidationError{Field: "route", Msg: "from station must come before to station on this schedule"}
	ErrRouteNotFound    = NotFoundError{Resource: "route"}
	ErrAlreadyConfirmed = ConflictError{Resource: "booking", Msg: "booking is not pending"}
	ErrAlreadyCancelled = ConflictError{Resource: "booking", Msg: "booking is already cancelled"}
	ErrRefundExists     = ConflictError{Resource: "refund", Msg: "refund already exists for payment"}
	ErrSeatTaken        = ConflictError{Resource: "seat", Msg: "seat is already booked on this schedule"}
	ErrNotOwner         = AuthorizationError{Msg: "booking belongs to another user"}
)

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsAuthorization(err error) bool {
	var target AuthorizationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsRouteDataIncomplete(err error) bool {
	var target RouteDataIncompleteError
	return errors.As(err, &target)
}
