package submission

import (
	"strings"

	"club-incentives/domain/incentive"
	"club-incentives/domain/sheet"
)

// Record is one parsed form submission
type Record struct {
	ClubNames     []string
	IncentiveType incentive.Type

	// Headers and Values are the raw submission row, aligned by position
	Headers []string
	Values  []any

	clubColumn int
}

// ClubColumn is the 0-based position of the club names column in Headers
func (r *Record) ClubColumn() int {
	return r.clubColumn
}

// Value returns the raw submission value for a column, or nil if the column is absent
func (r *Record) Value(column string) any {
	return sheet.CellAt(r.Values, sheet.IndexOf(r.Headers, column))
}

// Parse extracts the club list and incentive type from one submission row.
//
// A textual club cell is split on commas; pieces are trimmed and empty pieces dropped,
// keeping order and duplicates. Any other cell value (number, nil) becomes the
// single club name as rendered text. A cell with no club names at all yields one
// empty club so the row still reaches verification.
func Parse(headers []string, row []any) (*Record, error) {
	clubIdx := sheet.IndexOf(headers, incentive.ColumnClubNames)
	if clubIdx == -1 {
		return nil, &SchemaError{Column: incentive.ColumnClubNames}
	}
	typeIdx := sheet.IndexOf(headers, incentive.ColumnIncentiveType)
	if typeIdx == -1 {
		return nil, &SchemaError{Column: incentive.ColumnIncentiveType}
	}

	values := make([]any, len(headers))
	copy(values, row)

	return &Record{
		ClubNames:     splitClubs(sheet.CellAt(row, clubIdx)),
		IncentiveType: incentive.ParseType(sheet.Text(sheet.CellAt(row, typeIdx))),
		Headers:       append([]string(nil), headers...),
		Values:        values,
		clubColumn:    clubIdx,
	}, nil
}

func splitClubs(cell any) []string {
	raw, ok := cell.(string)
	if !ok {
		return []string{sheet.Text(cell)}
	}

	var clubs []string
	for _, piece := range strings.Split(raw, ",") {
		if club := strings.TrimSpace(piece); club != "" {
			clubs = append(clubs, club)
		}
	}
	if len(clubs) == 0 {
		return []string{""}
	}
	return clubs
}
