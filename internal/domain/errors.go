package domain

import "errors"

var (
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrNotFound       = errors.New("not found")
	ErrNoRowsAffected = errors.New("no rows affected")
)

// DuplicateEntryError names the unique key that rejected an insert.
type DuplicateEntryError struct {
	Key string
}

func (e *DuplicateEntryError) Error() string {
	return "duplicate entry for key " + e.Key
}

func (e *DuplicateEntryError) Unwrap() error {
	return ErrDuplicateEntry
}
