package service

import "errors"

var (
	// ErrNoMatchFound is returned when no compatible pending ride exists.
	ErrNoMatchFound = errors.New("no compatible ride found")

	// ErrInvalidSender is returned when the inbound sender address is empty.
	ErrInvalidSender = errors.New("invalid sender address")
)
