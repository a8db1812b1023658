package pipeline

import "errors"

var (
	// ErrInvalidInput is returned when neither or both of a row and latest are requested
	ErrInvalidInput = errors.New("specify exactly one of a submission row (2 or more) or latest")

	// ErrNoSubmissions is returned for latest when the form responses sheet has no data rows
	ErrNoSubmissions = errors.New("form responses sheet has no submissions")
)
