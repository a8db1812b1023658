package certificate

import (
	"errors"
	"fmt"
)

var (
	// ErrBlankImage is returned when a rendered certificate has no content
	ErrBlankImage = errors.New("rendered certificate is blank")

	// ErrImageTooSmall is returned when a rendered certificate is narrower than configured
	ErrImageTooSmall = errors.New("rendered certificate is too small")

	// ErrInspectionUnavailable is returned when image inspection is not compiled in
	ErrInspectionUnavailable = errors.New("image inspection not available (build with -tags imaging)")

	// ErrNoTemplate is returned when no slide template is configured
	ErrNoTemplate = errors.New("no certificate slide template configured")
)

// RenderError wraps a failure to produce one row's certificate
type RenderError struct {
	Row  int
	Club string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("certificate for %q (row %d): %v", e.Club, e.Row, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
