package repository

import "errors"

// ErrVersionConflict is returned by versioned writes when another writer
// updated the record after it was read
var ErrVersionConflict = errors.New("record was modified concurrently")
