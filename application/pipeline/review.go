package pipeline

import (
	"context"
	"fmt"

	"club-incentives/domain/enrichment"
	"club-incentives/domain/incentive"
	"club-incentives/domain/sheet"
	"club-incentives/domain/verification"
)

// Submission is a submission spreadsheet written by an earlier run
type Submission struct {
	Ref           sheet.Ref
	Headers       []string
	Rows          []*enrichment.Row
	IncentiveType incentive.Type
}

// LoadSubmission reads back a submission spreadsheet. The incentive type is
// taken from the first row.
func LoadSubmission(ctx context.Context, store sheet.Store, ref sheet.Ref) (*Submission, error) {
	table, err := store.ReadAll(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read submission spreadsheet %s: %w", ref, err)
	}
	rows := enrichment.RowsFromTable(table)

	sub := &Submission{
		Ref:     ref,
		Headers: table.Headers,
		Rows:    rows,
	}
	if len(rows) > 0 {
		sub.IncentiveType = rows[0].IncentiveType
	}
	return sub, nil
}

// Verify re-runs the gate over the stored rows, expecting one certificate per row
func (s *Submission) Verify(requiredBase []string) verification.Result {
	if len(requiredBase) == 0 {
		requiredBase = verification.DefaultBaseColumns
	}
	return verification.Verify(verification.Input{
		Schema:          s.Headers,
		Rows:            records(s.Rows),
		ExpectedCount:   len(s.Rows),
		RequiredColumns: verification.RequiredColumns(requiredBase, s.IncentiveType),
	})
}

// Select returns the rows at the given 1-based sheet rows, or every row when none are given
func (s *Submission) Select(sheetRows ...int) ([]*enrichment.Row, error) {
	if len(sheetRows) == 0 {
		return s.Rows, nil
	}
	out := make([]*enrichment.Row, 0, len(sheetRows))
	for _, n := range sheetRows {
		idx := n - 2
		if idx < 0 || idx >= len(s.Rows) {
			return nil, fmt.Errorf("%w: row %d (spreadsheet has %d data rows)", sheet.ErrRowOutOfRange, n, len(s.Rows))
		}
		out = append(out, s.Rows[idx])
	}
	return out, nil
}
