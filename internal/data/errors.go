package data

import "errors"

var (
	// ErrNotFound means no document matched.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the document exists but belongs to someone else.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicate means a unique index rejected the write.
	ErrDuplicate = errors.New("already exists")
)
