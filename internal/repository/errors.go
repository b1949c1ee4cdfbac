package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrRideNotPending is returned when an atomic status transition finds
	// a ride that is no longer in the state it requires, e.g. a match
	// candidate claimed by a concurrent request.
	ErrRideNotPending = errors.New("ride no longer pending")
)
