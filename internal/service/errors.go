package service

import "errors"

var (
	// ErrValidation indicates empty or invalid input caught before any remote call.
	ErrValidation = errors.New("invalid input")
	// ErrAuthentication indicates the remote API rejected the session credential.
	ErrAuthentication = errors.New("not authenticated")
	// ErrNotFound indicates an operation referenced an identifier the store does not know.
	ErrNotFound = errors.New("not found")
	// ErrRejected indicates any other structured rejection from the remote API.
	ErrRejected = errors.New("rejected")
	// ErrTransport indicates no structured response reached the client.
	ErrTransport = errors.New("transport failure")
)
