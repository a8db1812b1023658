package reference

import "errors"

// ErrMissingColumn is returned when a reference table lacks a column needed for lookups
var ErrMissingColumn = errors.New("reference table is missing a required column")
