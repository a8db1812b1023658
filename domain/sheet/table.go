package sheet

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the single date format used on certificates and in emails,
// e.g. "Saturday, 14-06-2025".
const DateLayout = "Monday, 02-01-2006"

// Ref identifies one sheet (tab) inside a spreadsheet
type Ref struct {
	SpreadsheetID string
	SheetName     string
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%s", r.SpreadsheetID, r.SheetName)
}

// Table is the full contents of a sheet: a header row and positional data rows.
// Cell values are string, float64, bool, time.Time or nil.
type Table struct {
	Headers []string
	Rows    [][]any
}

// Column returns the 0-based index of the named column, or -1
func (t *Table) Column(name string) int {
	return IndexOf(t.Headers, name)
}

// Row returns the data row at the given 1-based sheet row number (row 1 is the header row).
func (t *Table) Row(sheetRow int) ([]any, error) {
	idx := sheetRow - 2
	if idx < 0 || idx >= len(t.Rows) {
		return nil, fmt.Errorf("%w: row %d (table has %d data rows)", ErrRowOutOfRange, sheetRow, len(t.Rows))
	}
	return t.Rows[idx], nil
}

// LastRow returns the 1-based sheet row number of the last data row, or 0 if there is none
func (t *Table) LastRow() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows) + 1
}

// Store is the tabular storage port
type Store interface {
	// ReadAll returns the header row and every data row of the sheet
	ReadAll(ctx context.Context, ref Ref) (*Table, error)

	// AppendRow appends a row after the last non-empty row
	AppendRow(ctx context.Context, ref Ref, row []any) error

	// WriteCell writes one value at a 1-based row in the named column,
	// creating the column at the end of the header row if it is absent
	WriteCell(ctx context.Context, ref Ref, row int, column string, value any) error

	// EnsureColumn adds the column to the header row if missing and returns its 0-based index
	EnsureColumn(ctx context.Context, ref Ref, column string) (int, error)
}

// Creator creates new spreadsheets for per-submission output
type Creator interface {
	CreateSpreadsheet(ctx context.Context, title string) (Ref, string, error)
}

// IndexOf returns the position of name in headers, or -1
func IndexOf(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

// CellAt returns the value at position i, treating short rows as padded with nil
func CellAt(row []any, i int) any {
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}

// Text renders a cell value as text. Dates use DateLayout; nil is the empty string.
func Text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format(DateLayout)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// IsBlank reports whether a cell is nil or only whitespace once rendered
func IsBlank(v any) bool {
	return strings.TrimSpace(Text(v)) == ""
}
