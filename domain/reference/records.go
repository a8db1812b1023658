package reference

import (
	"fmt"
	"strings"

	"club-incentives/domain/sheet"
)

// Officer table columns
const (
	ColumnClubName = "Club Name"
	ColumnOffice   = "Office"
	ColumnEmail    = "Email Address"
	ColumnDivision = "Division"
	ColumnArea     = "Area"
)

// District leader table columns (Division, Area and Email Address are shared with the officer table)
const (
	ColumnName = "Name"
	ColumnRole = "Role"
)

// District leader role markers
const (
	MarkerDivisionDirector = "Division Director"
	MarkerAreaDirector     = "Area Director"
	MarkerFinanceDirector  = "Finance Director"
)

// OfficerRecord is one row of the club officer table
type OfficerRecord struct {
	ClubName string
	Office   string
	Email    string
	Division string
	Area     string
}

// LeaderRecord is one row of the district leader table
type LeaderRecord struct {
	Name     string
	Role     string
	Division string
	Area     string
	Email    string
}

// OfficersFromTable converts the officer sheet into records.
// Division and Area are optional columns.
func OfficersFromTable(t *sheet.Table) ([]OfficerRecord, error) {
	cols, err := requireColumns(t, ColumnClubName, ColumnOffice, ColumnEmail)
	if err != nil {
		return nil, fmt.Errorf("officer table: %w", err)
	}
	divCol, areaCol := t.Column(ColumnDivision), t.Column(ColumnArea)

	records := make([]OfficerRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, OfficerRecord{
			ClubName: cellText(row, cols[0]),
			Office:   cellText(row, cols[1]),
			Email:    cellText(row, cols[2]),
			Division: cellText(row, divCol),
			Area:     cellText(row, areaCol),
		})
	}
	return records, nil
}

// LeadersFromTable converts the district leader sheet into records
func LeadersFromTable(t *sheet.Table) ([]LeaderRecord, error) {
	cols, err := requireColumns(t, ColumnRole, ColumnDivision, ColumnArea, ColumnEmail)
	if err != nil {
		return nil, fmt.Errorf("district leader table: %w", err)
	}
	nameCol := t.Column(ColumnName)

	records := make([]LeaderRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, LeaderRecord{
			Name:     cellText(row, nameCol),
			Role:     cellText(row, cols[0]),
			Division: cellText(row, cols[1]),
			Area:     cellText(row, cols[2]),
			Email:    cellText(row, cols[3]),
		})
	}
	return records, nil
}

func requireColumns(t *sheet.Table, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		idx[i] = t.Column(name)
		if idx[i] == -1 {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	return idx, nil
}

// cellText coerces a cell to trimmed text so "3" and 3.0 compare equal
func cellText(row []any, i int) string {
	return strings.TrimSpace(sheet.Text(sheet.CellAt(row, i)))
}
