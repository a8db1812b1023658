// Package verification checks a fanned-out, certificate-annotated submission
// before any notification is sent.
package verification

import (
	"fmt"
	"strings"

	"club-incentives/domain/incentive"
	"club-incentives/domain/sheet"
)

// DefaultBaseColumns are the submission columns every enriched row must fill
var DefaultBaseColumns = []string{
	incentive.ColumnClubNames,
	incentive.ColumnIncentiveType,
	incentive.ColumnAwardName,
}

// RequiredColumns returns base followed by the officer email columns for the type.
// An unknown type requires the officer columns shared by every known type, which
// its schema will not contain.
func RequiredColumns(base []string, t incentive.Type) []string {
	roles := incentive.OfficerRoles(t)
	if !t.Known() {
		roles = incentive.CommonOfficerRoles
	}
	cols := make([]string, 0, len(base)+len(roles))
	cols = append(cols, base...)
	return append(cols, incentive.RoleColumns(roles)...)
}

// Record is one row under verification
type Record interface {
	Value(column string) (any, bool)
}

// Input is everything the gate inspects
type Input struct {
	// Schema is the header row of the enriched table
	Schema          []string
	Rows            []Record
	ExpectedCount   int
	RequiredColumns []string
	// FailedRenders names the clubs whose certificate rendering failed, if known
	FailedRenders []string
}

// Result is the gate's decision. Defects are ordered by detection:
// row count, missing columns, per-row gaps in row order, certificate count.
type Result struct {
	Passed  bool
	Defects []string
}

// Verify runs every check and never performs I/O
func Verify(in Input) Result {
	var defects []string

	if len(in.Rows) != in.ExpectedCount {
		defects = append(defects, fmt.Sprintf("expected %d rows, found %d", in.ExpectedCount, len(in.Rows)))
	}

	var present, missing []string
	for _, col := range in.RequiredColumns {
		if sheet.IndexOf(in.Schema, col) == -1 {
			missing = append(missing, col)
			continue
		}
		present = append(present, col)
	}
	if len(missing) > 0 {
		defects = append(defects, fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	for _, row := range in.Rows {
		var empty []string
		for _, col := range present {
			v, ok := row.Value(col)
			if !ok || sheet.IsBlank(v) {
				empty = append(empty, col)
			}
		}
		if len(empty) > 0 {
			defects = append(defects, fmt.Sprintf("club %q has empty required fields: %s", clubName(row), strings.Join(empty, ", ")))
		}
	}

	certificates := 0
	for _, row := range in.Rows {
		if v, ok := row.Value(incentive.ColumnCertificate); ok && !sheet.IsBlank(v) {
			certificates++
		}
	}
	if certificates != in.ExpectedCount {
		msg := fmt.Sprintf("expected %d certificates, found %d", in.ExpectedCount, certificates)
		if len(in.FailedRenders) > 0 {
			msg += fmt.Sprintf(" (rendering failed for: %s)", strings.Join(in.FailedRenders, ", "))
		}
		defects = append(defects, msg)
	}

	return Result{
		Passed:  len(defects) == 0,
		Defects: defects,
	}
}

func clubName(row Record) string {
	v, ok := row.Value(incentive.ColumnClubNames)
	if !ok || sheet.IsBlank(v) {
		return "Unknown"
	}
	return strings.TrimSpace(sheet.Text(v))
}
