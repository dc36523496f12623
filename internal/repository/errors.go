package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist in the database.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when an insert hits a unique constraint the caller asked to respect.
var ErrAlreadyExists = errors.New("already exists")
