package session

import "errors"

// Misuse errors returned when an operation is invalid for the current
// session state. They are reported synchronously to the caller and as an
// error event; they never change state and never tear the session down.
var (
	ErrAlreadyConnected     = errors.New("already connected")
	ErrNotConnected         = errors.New("not connected")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrAlreadyAuthenticated = errors.New("already authenticated")
)
