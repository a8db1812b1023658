// Package sheets adapts the Google Sheets API to the tabular store port.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"club-incentives/domain/sheet"

	"golang.org/x/text/unicode/norm"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsService defines the interface for Google Sheets API operations
// This allows mocking the Google Sheets API in tests
type SheetsService interface {
	GetValues(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
	AppendValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error
	UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error
	CreateSpreadsheet(ctx context.Context, spreadsheet *sheets.Spreadsheet) (*sheets.Spreadsheet, error)
}

// GoogleSheetsService is the production implementation using the Google Sheets API
type GoogleSheetsService struct {
	service *sheets.Service
}

// GetValues reads raw cell values; dates come back as serial numbers
func (s *GoogleSheetsService) GetValues(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	r, err := s.service.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return r.Values, nil
}

// AppendValues appends rows after the last non-empty row of the range
func (s *GoogleSheetsService) AppendValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	_, err := s.service.Spreadsheets.Values.Append(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// UpdateValues overwrites the cells of the range
func (s *GoogleSheetsService) UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	_, err := s.service.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// CreateSpreadsheet creates a new spreadsheet
func (s *GoogleSheetsService) CreateSpreadsheet(ctx context.Context, spreadsheet *sheets.Spreadsheet) (*sheets.Spreadsheet, error) {
	return s.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
}

// Client implements sheet.Store and sheet.Creator using Google Sheets API
type Client struct {
	sheetsService SheetsService
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithSheetsService sets a custom sheets service (for testing)
func WithSheetsService(svc SheetsService) ClientOption {
	return func(c *Client) {
		c.sheetsService = svc
	}
}

// NewClient creates a new Google Sheets client
func NewClient(ctx context.Context, httpClient *http.Client, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.sheetsService == nil {
		srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("unable to create sheets service: %w", err)
		}
		c.sheetsService = &GoogleSheetsService{service: srv}
	}

	return c, nil
}

// ReadAll implements sheet.Store. Strings are NFC-normalised and serial numbers
// in date columns become times.
func (c *Client) ReadAll(ctx context.Context, ref sheet.Ref) (*sheet.Table, error) {
	values, err := c.sheetsService.GetValues(ctx, ref.SpreadsheetID, quoteSheet(ref.SheetName))
	if err != nil {
		return nil, wrapErr(ref, err)
	}

	t := &sheet.Table{}
	if len(values) == 0 {
		return t, nil
	}

	t.Headers = make([]string, len(values[0]))
	for i, h := range values[0] {
		t.Headers[i] = strings.TrimSpace(norm.NFC.String(sheet.Text(h)))
	}

	t.Rows = make([][]any, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := make([]any, len(raw))
		for i, v := range raw {
			var header string
			if i < len(t.Headers) {
				header = t.Headers[i]
			}
			row[i] = fromCell(v, header)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// AppendRow implements sheet.Store
func (c *Client) AppendRow(ctx context.Context, ref sheet.Ref, row []any) error {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = toCell(v)
	}
	if err := c.sheetsService.AppendValues(ctx, ref.SpreadsheetID, quoteSheet(ref.SheetName), [][]interface{}{cells}); err != nil {
		return wrapErr(ref, err)
	}
	return nil
}

// EnsureColumn implements sheet.Store
func (c *Client) EnsureColumn(ctx context.Context, ref sheet.Ref, column string) (int, error) {
	header, err := c.sheetsService.GetValues(ctx, ref.SpreadsheetID, quoteSheet(ref.SheetName)+"!1:1")
	if err != nil {
		return -1, wrapErr(ref, err)
	}

	var headers []string
	if len(header) > 0 {
		for _, h := range header[0] {
			headers = append(headers, strings.TrimSpace(norm.NFC.String(sheet.Text(h))))
		}
	}
	if i := sheet.IndexOf(headers, column); i != -1 {
		return i, nil
	}

	idx := len(headers)
	if err := c.sheetsService.UpdateValues(ctx, ref.SpreadsheetID, cellRange(ref.SheetName, 1, idx), [][]interface{}{{column}}); err != nil {
		return -1, wrapErr(ref, err)
	}
	return idx, nil
}

// WriteCell implements sheet.Store
func (c *Client) WriteCell(ctx context.Context, ref sheet.Ref, row int, column string, value any) error {
	if row < 1 {
		return fmt.Errorf("%w: row %d", sheet.ErrRowOutOfRange, row)
	}
	idx, err := c.EnsureColumn(ctx, ref, column)
	if err != nil {
		return err
	}
	if err := c.sheetsService.UpdateValues(ctx, ref.SpreadsheetID, cellRange(ref.SheetName, row, idx), [][]interface{}{{toCell(value)}}); err != nil {
		return wrapErr(ref, err)
	}
	return nil
}

// CreateSpreadsheet implements sheet.Creator
func (c *Client) CreateSpreadsheet(ctx context.Context, title string) (sheet.Ref, string, error) {
	created, err := c.sheetsService.CreateSpreadsheet(ctx, &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: DefaultSheetName}},
		},
	})
	if err != nil {
		return sheet.Ref{}, "", fmt.Errorf("failed to create spreadsheet %q: %w", title, err)
	}

	name := DefaultSheetName
	if len(created.Sheets) > 0 && created.Sheets[0].Properties != nil {
		name = created.Sheets[0].Properties.Title
	}
	return sheet.Ref{SpreadsheetID: created.SpreadsheetId, SheetName: name}, created.SpreadsheetUrl, nil
}

// DefaultSheetName is the tab created in new spreadsheets
const DefaultSheetName = "Sheet1"

// fromCell converts an API value to a table cell
func fromCell(v interface{}, header string) any {
	switch val := v.(type) {
	case string:
		return norm.NFC.String(val)
	case float64:
		if sheet.IsDateColumn(header) {
			return sheet.FromSerial(val)
		}
		return val
	default:
		return val
	}
}

// toCell converts a table cell to a value the API accepts
func toCell(v any) interface{} {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		return val.Format(sheet.DateLayout)
	default:
		return val
	}
}

// quoteSheet quotes a sheet name for A1 notation
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// cellRange is the A1 range of one cell; row is 1-based, col 0-based
func cellRange(sheetName string, row, col int) string {
	return fmt.Sprintf("%s!%s%d", quoteSheet(sheetName), ColumnLetter(col), row)
}

// ColumnLetter converts a 0-based column index to its A1 letters
func ColumnLetter(col int) string {
	var letters []byte
	for col >= 0 {
		letters = append([]byte{byte('A' + col%26)}, letters...)
		col = col/26 - 1
	}
	return string(letters)
}

// wrapErr maps a missing sheet to sheet.ErrSheetNotFound
func wrapErr(ref sheet.Ref, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range") {
		return fmt.Errorf("%w: %s", sheet.ErrSheetNotFound, ref)
	}
	return fmt.Errorf("sheet %s: %w", ref, err)
}

// Ensure Client implements the sheet ports
var (
	_ sheet.Store   = (*Client)(nil)
	_ sheet.Creator = (*Client)(nil)
)
