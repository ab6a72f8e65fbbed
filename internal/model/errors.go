package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrUnavailable is returned when the backing data source can't be reached.
	ErrUnavailable = errors.New("data source unavailable")
	// ErrDenied is returned when an authentication attempt is not allowed.
	ErrDenied = errors.New("access denied")
	// ErrDecrypt is returned when a sealed credential blob can't be opened.
	ErrDecrypt = errors.New("could not decrypt")
)
