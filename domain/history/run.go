// Package history describes the record kept of each processed submission.
package history

import (
	"context"
	"errors"
	"time"
)

// ErrRunNotFound is returned when a run ID is unknown
var ErrRunNotFound = errors.New("run not found")

// Outcome is how a run ended
type Outcome string

const (
	// OutcomeNotified means verification passed and certificate emails were dispatched
	OutcomeNotified Outcome = "notified"
	// OutcomeHeld means verification failed and a failure report was sent instead
	OutcomeHeld Outcome = "held"
	// OutcomeAborted means the run stopped before verification
	OutcomeAborted Outcome = "aborted"
)

// Run is one processed submission
type Run struct {
	ID             string
	SubmissionRow  int
	SpreadsheetURL string
	Clubs          int
	Certificates   int
	EmailsSent     int
	Outcome        Outcome
	// Defects are the verification defects, or the abort reason
	Defects    []string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Recorder stores runs
type Recorder interface {
	Record(ctx context.Context, run *Run) error
}

// Reader lists stored runs
type Reader interface {
	Recent(ctx context.Context, limit int) ([]Run, error)
	Get(ctx context.Context, id string) (*Run, error)
}
