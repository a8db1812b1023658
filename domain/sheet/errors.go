package sheet

import "errors"

var (
	// ErrRowOutOfRange is returned when a sheet row number does not address a data row
	ErrRowOutOfRange = errors.New("row out of range")

	// ErrSheetNotFound is returned when the named sheet does not exist in the spreadsheet
	ErrSheetNotFound = errors.New("sheet not found")
)
