package database

import "errors"

// ErrNotFound is returned when no scan has the requested id.
var ErrNotFound = errors.New("scan not found")
