package services

import "errors"

var (
	// ErrNotFound is returned when a referenced user or post does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSelfSubscription is returned when a user tries to follow themselves.
	ErrSelfSubscription = errors.New("cannot subscribe to yourself")
	// ErrInvalidField is returned for oversized or empty post fields and malformed registration input.
	ErrInvalidField = errors.New("invalid field")
	// ErrDuplicate is returned when a unique value such as a username is taken.
	ErrDuplicate = errors.New("already exists")
	// ErrUnauthenticated is returned when an operation needs a caller identity and none was resolved.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrBadCredentials is returned when a username/password pair does not match.
	ErrBadCredentials = errors.New("bad credentials")
)
