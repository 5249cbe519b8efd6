// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the booking coordinator to distinguish between failure
// scenarios without string matching.
package repository

import "errors"

// ErrEmailExists is returned when registration would violate the email
// uniqueness of an identity partition. Handlers translate it into 409.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when a user registration reuses an
// existing username. Handlers translate it into 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrSessionNotFound is returned when a session id does not exist, or
// when it exists but does not belong to the event the caller named.
// Handlers translate it into 404.
var ErrSessionNotFound = errors.New("session not found")

// ErrEventNotFound is returned when an event id does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrAlreadyBooked is returned when a non-cancelled booking already
// exists for the (identity, session) pair, either from the in-transaction
// existence check or from the unique-key backstop on insert. Handlers
// translate it into 409.
var ErrAlreadyBooked = errors.New("session already booked")

// ErrNonceNotFound is returned when an OAuth callback presents a state
// whose nonce was never stored, already consumed, or expired. Handlers
// translate it into 400 (login session expired).
var ErrNonceNotFound = errors.New("nonce not found")
