package store

import "errors"

var (
	// ErrNotFound means the lookup target does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSelfTarget means a user tried to add themselves as a contact.
	ErrSelfTarget = errors.New("cannot target yourself")

	// ErrAlreadyExists means the contact relationship is already present.
	ErrAlreadyExists = errors.New("already exists")
)
