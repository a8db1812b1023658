package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	appnotif "club-incentives/application/notification"
	"club-incentives/domain/certificate"
	"club-incentives/domain/distribution"
	"club-incentives/domain/enrichment"
	"club-incentives/domain/history"
	"club-incentives/domain/incentive"
	"club-incentives/domain/reference"
	"club-incentives/domain/sheet"
	"club-incentives/domain/submission"

	"github.com/stretchr/testify/require"
)

// --- Mock implementations for testing ---

// memStore is an in-memory sheet.Store and sheet.Creator
type memStore struct {
	tables    map[sheet.Ref]*sheet.Table
	created   int
	writeErrs map[string]error // keyed by column name
	appendErr error
}

func newMemStore() *memStore {
	return &memStore{
		tables:    make(map[sheet.Ref]*sheet.Table),
		writeErrs: make(map[string]error),
	}
}

func (m *memStore) ReadAll(ctx context.Context, ref sheet.Ref) (*sheet.Table, error) {
	t, ok := m.tables[ref]
	if !ok {
		return nil, sheet.ErrSheetNotFound
	}
	return t, nil
}

func (m *memStore) AppendRow(ctx context.Context, ref sheet.Ref, row []any) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	t, ok := m.tables[ref]
	if !ok {
		return sheet.ErrSheetNotFound
	}
	if len(t.Headers) == 0 {
		for _, v := range row {
			t.Headers = append(t.Headers, sheet.Text(v))
		}
		return nil
	}
	t.Rows = append(t.Rows, row)
	return nil
}

func (m *memStore) WriteCell(ctx context.Context, ref sheet.Ref, row int, column string, value any) error {
	if err := m.writeErrs[column]; err != nil {
		return err
	}
	col, err := m.EnsureColumn(ctx, ref, column)
	if err != nil {
		return err
	}
	t := m.tables[ref]
	for len(t.Rows) < row-1 {
		t.Rows = append(t.Rows, nil)
	}
	r := t.Rows[row-2]
	for len(r) <= col {
		r = append(r, nil)
	}
	r[col] = value
	t.Rows[row-2] = r
	return nil
}

func (m *memStore) EnsureColumn(ctx context.Context, ref sheet.Ref, column string) (int, error) {
	t, ok := m.tables[ref]
	if !ok {
		return 0, sheet.ErrSheetNotFound
	}
	if i := t.Column(column); i != -1 {
		return i, nil
	}
	t.Headers = append(t.Headers, column)
	return len(t.Headers) - 1, nil
}

func (m *memStore) CreateSpreadsheet(ctx context.Context, title string) (sheet.Ref, string, error) {
	m.created++
	ref := sheet.Ref{SpreadsheetID: fmt.Sprintf("sub-%d", m.created), SheetName: "Sheet1"}
	m.tables[ref] = &sheet.Table{}
	return ref, "https://sheets.example/" + ref.SpreadsheetID, nil
}

// mockFiles only records sharing
type mockFiles struct {
	shared   map[string]distribution.Access
	shareErr error
}

func (m *mockFiles) FolderByName(ctx context.Context, name, parentID string) (string, error) {
	return "", errors.New("not used")
}

func (m *mockFiles) CopyFile(ctx context.Context, fileID, name, folderID string) (string, error) {
	return "", errors.New("not used")
}

func (m *mockFiles) SaveFile(ctx context.Context, req distribution.SaveRequest) (*distribution.File, error) {
	return nil, errors.New("not used")
}

func (m *mockFiles) Share(ctx context.Context, fileID string, access distribution.Access) error {
	if m.shared == nil {
		m.shared = make(map[string]distribution.Access)
	}
	m.shared[fileID] = access
	return m.shareErr
}

func (m *mockFiles) Trash(ctx context.Context, fileID string) error {
	return nil
}

type staticReferences struct {
	dir *reference.Directory
	err error
}

func (s *staticReferences) Load(ctx context.Context) (*reference.Directory, error) {
	return s.dir, s.err
}

// mockCertificates succeeds for every club not listed in fail
type mockCertificates struct {
	fail  map[string]bool
	calls []string
}

func (m *mockCertificates) Generate(ctx context.Context, headers []string, row *enrichment.Row) certificate.Outcome {
	m.calls = append(m.calls, row.ClubName)
	out := certificate.Outcome{SheetRow: row.SheetRow, Club: row.ClubName}
	if m.fail[row.ClubName] {
		out.Err = &certificate.RenderError{Row: row.SheetRow, Club: row.ClubName, Err: errors.New("slides unavailable")}
		return out
	}
	out.URL = "https://drive.example/" + row.ClubName
	return out
}

type mockNotifier struct {
	certificateClubs []string
	failureReports   [][]string
	reportErr        error
}

func (m *mockNotifier) SendCertificates(ctx context.Context, headers []string, rows []*enrichment.Row) appnotif.Summary {
	for _, r := range rows {
		m.certificateClubs = append(m.certificateClubs, r.ClubName)
	}
	return appnotif.Summary{Sent: len(rows)}
}

func (m *mockNotifier) SendFailureReport(ctx context.Context, submissionRow int, spreadsheetURL string, defects []string) error {
	m.failureReports = append(m.failureReports, defects)
	return m.reportErr
}

type mockRecorder struct {
	runs []*history.Run
}

func (m *mockRecorder) Record(ctx context.Context, run *history.Run) error {
	m.runs = append(m.runs, run)
	return nil
}

// --- Fixtures ---

var formRef = sheet.Ref{SpreadsheetID: "form", SheetName: "Form Responses 1"}

var formHeaders = []string{"Timestamp", "Club Names", "Incentive Type", "Award Name", "Award Date"}

func submissionRow(clubs, typ string) []any {
	return []any{"14/06/2025 10:00:00", clubs, typ, "Smedley Award", time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)}
}

func directory() *reference.Directory {
	officers := []reference.OfficerRecord{
		{ClubName: "Rotary", Office: "Club VP Membership", Email: "vpm@rotary.org", Division: "B", Area: "3"},
		{ClubName: "Rotary", Office: "Club Treasurer", Email: "treas@rotary.org", Division: "B", Area: "3"},
		{ClubName: "Rotary", Office: "Club President", Email: "pres@rotary.org", Division: "B", Area: "3"},
		{ClubName: "Kiwanis", Office: "Club VP Membership", Email: "vpm@kiwanis.org", Division: "C", Area: "1"},
		{ClubName: "Kiwanis", Office: "Club Treasurer", Email: "treas@kiwanis.org", Division: "C", Area: "1"},
		{ClubName: "Kiwanis", Office: "Club President", Email: "pres@kiwanis.org", Division: "C", Area: "1"},
	}
	leaders := []reference.LeaderRecord{
		{Name: "Dana", Role: "Division Director", Division: "B", Email: "dana@district.org"},
		{Name: "Ari", Role: "Area Director", Division: "B", Area: "3", Email: "ari@district.org"},
		{Name: "Fin", Role: "Finance Director", Email: "fin@district.org"},
	}
	return reference.NewDirectory(officers, leaders, reference.Policy{
		DirectorEmails: map[incentive.Type]string{incentive.ClubGrowth: "growth@district.org"},
		SharedMailbox:  "team@district.org",
	})
}

type harness struct {
	store    *memStore
	files    *mockFiles
	certs    *mockCertificates
	notifier *mockNotifier
	recorder *mockRecorder
	output   *bytes.Buffer
	svc      *Service
}

func newHarness(t *testing.T, rows ...[]any) *harness {
	t.Helper()
	h := &harness{
		store:    newMemStore(),
		files:    &mockFiles{},
		certs:    &mockCertificates{fail: map[string]bool{}},
		notifier: &mockNotifier{},
		recorder: &mockRecorder{},
		output:   &bytes.Buffer{},
	}
	h.store.tables[formRef] = &sheet.Table{Headers: append([]string(nil), formHeaders...), Rows: rows}
	clock := time.Date(2025, time.June, 14, 10, 0, 0, 0, time.UTC)
	h.svc = NewService(h.store, h.store, h.files, &staticReferences{dir: directory()}, h.certs, h.notifier, formRef, h.output,
		WithRecorder(h.recorder),
		WithClock(func() time.Time { return clock }),
	)
	return h
}

// --- Tests ---

func TestProcess_PassSendsCertificateEmails(t *testing.T) {
	h := newHarness(t, submissionRow("Rotary, Kiwanis", "CGD"))

	res, err := h.svc.Process(context.Background(), Input{Row: 2})
	require.NoError(t, err)

	require.True(t, res.Verification.Passed, "defects: %v", res.Verification.Defects)
	require.Equal(t, 2, res.SubmissionRow)
	require.Equal(t, "https://sheets.example/sub-1", res.SpreadsheetURL)
	require.Equal(t, []string{"Rotary", "Kiwanis"}, h.notifier.certificateClubs)
	require.Empty(t, h.notifier.failureReports)

	out := h.store.tables[sheet.Ref{SpreadsheetID: "sub-1", SheetName: "Sheet1"}]
	require.Len(t, out.Rows, 2)
	require.Equal(t, "https://drive.example/Rotary", sheet.CellAt(out.Rows[0], out.Column("Certificate")))
	require.Equal(t, "Unclaimed", sheet.CellAt(out.Rows[1], out.Column("Claimed Status")))
	require.Equal(t, "ari@district.org", sheet.CellAt(out.Rows[0], out.Column("Area Director Email")))
	require.Equal(t, "", sheet.CellAt(out.Rows[1], out.Column("Area Director Email")))
	require.Equal(t, "growth@district.org", sheet.CellAt(out.Rows[1], out.Column("Incentives Director Email")))

	form := h.store.tables[formRef]
	require.Equal(t, "https://sheets.example/sub-1", sheet.CellAt(form.Rows[0], form.Column("Final Certificates")))
	require.Equal(t, distribution.AccessEdit, h.files.shared["sub-1"])

	require.Len(t, h.recorder.runs, 1)
	run := h.recorder.runs[0]
	require.Equal(t, history.OutcomeNotified, run.Outcome)
	require.Equal(t, 2, run.Clubs)
	require.Equal(t, 2, run.Certificates)
	require.Equal(t, 2, run.EmailsSent)
	require.Contains(t, h.output.String(), "[8/8] Sending emails...")
}

func TestProcess_RotaryLionsHeldForMissingOfficers(t *testing.T) {
	h := newHarness(t, submissionRow("Rotary,Lions", "CGD"))

	res, err := h.svc.Process(context.Background(), Input{Row: 2})
	require.NoError(t, err)

	require.Len(t, res.Rows, 2)
	require.Equal(t, []string{"vpm@rotary.org", "treas@rotary.org", "pres@rotary.org"}, res.Rows[0].OfficerEmails())
	require.Equal(t, []string{"", "", ""}, res.Rows[1].OfficerEmails())

	require.False(t, res.Verification.Passed)
	require.Equal(t, []string{
		`club "Lions" has empty required fields: VP-Membership Email, Treasurer Email, President Email`,
	}, res.Verification.Defects)

	require.Empty(t, h.notifier.certificateClubs)
	require.Equal(t, [][]string{res.Verification.Defects}, h.notifier.failureReports)
	require.Equal(t, history.OutcomeHeld, h.recorder.runs[0].Outcome)
	require.Contains(t, h.output.String(), "club-incentives send-email --spreadsheet sub-1")
}

func TestProcess_BlankClubCellIsHeld(t *testing.T) {
	tests := []struct {
		name string
		cell any
	}{
		{"empty string", ""},
		{"whitespace", "   "},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, []any{"ts", tt.cell, "CGD", "Smedley Award", "x"})

			res, err := h.svc.Process(context.Background(), Input{Row: 2})
			require.NoError(t, err)

			require.Len(t, res.Rows, 1)
			require.False(t, res.Verification.Passed)
			require.Equal(t, []string{
				`club "Unknown" has empty required fields: Club Names, VP-Membership Email, Treasurer Email, President Email`,
			}, res.Verification.Defects)
			require.Empty(t, h.notifier.certificateClubs)
			require.Equal(t, history.OutcomeHeld, h.recorder.runs[0].Outcome)
		})
	}
}

func TestProcess_RenderFailureIsIsolated(t *testing.T) {
	h := newHarness(t, submissionRow("Rotary,Kiwanis", "CGD"))
	h.certs.fail["Rotary"] = true

	res, err := h.svc.Process(context.Background(), Input{Row: 2})
	require.NoError(t, err)

	require.Equal(t, []string{"Rotary", "Kiwanis"}, h.certs.calls)
	require.Equal(t, []string{"Rotary"}, res.Certificates.Failed())
	require.Equal(t, []string{
		"expected 2 certificates, found 1 (rendering failed for: Rotary)",
	}, res.Verification.Defects)
	require.Len(t, h.notifier.failureReports, 1)
	require.Equal(t, 1, h.recorder.runs[0].Certificates)
}

func TestProcess_CertificateLinkWriteFailureCountsAsFailed(t *testing.T) {
	h := newHarness(t, submissionRow("Rotary", "CGD"))
	h.store.writeErrs["Certificate"] = errors.New("quota exceeded")

	res, err := h.svc.Process(context.Background(), Input{Row: 2})
	require.NoError(t, err)

	require.Equal(t, "", res.Rows[0].Certificate)
	require.Equal(t, []string{"Rotary"}, res.Certificates.Failed())
	require.False(t, res.Verification.Passed)
}

func TestProcess_NonFatalSetupFailures(t *testing.T) {
	h := newHarness(t, submissionRow("Rotary", "CGD"))
	h.files.shareErr = errors.New("sharing disabled")
	h.store.writeErrs["Final Certificates"] = errors.New("protected range")
	h.notifier.reportErr = errors.New("unused")

	res, err := h.svc.Process(context.Background(), Input{Row: 2})
	require.NoError(t, err)
	require.True(t, res.Verification.Passed)
	require.Contains(t, h.output.String(), "Link not written")
}

func TestProcess_FailureReportErrorIsNotReturned(t *testing.T) {
	h := newHarness(t, submissionRow("Lions", "CGD"))
	h.notifier.reportErr = errors.New("gmail down")

	res, err := h.svc.Process(context.Background(), Input{Row: 2})
	require.NoError(t, err)
	require.False(t, res.Verification.Passed)
	require.Equal(t, 0, h.recorder.runs[0].EmailsSent)
}

func TestProcess_Latest(t *testing.T) {
	h := newHarness(t,
		submissionRow("Lions", "CGD"),
		submissionRow("Kiwanis", "CGD"),
	)

	res, err := h.svc.Process(context.Background(), Input{Latest: true})
	require.NoError(t, err)
	require.Equal(t, 3, res.SubmissionRow)
	require.Equal(t, "Kiwanis", res.Rows[0].ClubName)
	require.Equal(t, "Club Incentive - Submission 3", SpreadsheetTitle(res.SubmissionRow))
}

func TestProcess_Aborts(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]any
		input   Input
		mutate  func(h *harness)
		check   func(t *testing.T, err error)
		journal bool
	}{
		{
			name:  "neither row nor latest",
			input: Input{},
			check: func(t *testing.T, err error) { require.ErrorIs(t, err, ErrInvalidInput) },
		},
		{
			name:  "both row and latest",
			input: Input{Row: 2, Latest: true},
			check: func(t *testing.T, err error) { require.ErrorIs(t, err, ErrInvalidInput) },
		},
		{
			name:  "latest with no submissions",
			input: Input{Latest: true},
			check: func(t *testing.T, err error) { require.ErrorIs(t, err, ErrNoSubmissions) },
		},
		{
			name:  "row beyond the sheet",
			rows:  [][]any{submissionRow("Rotary", "CGD")},
			input: Input{Row: 9},
			check: func(t *testing.T, err error) { require.ErrorIs(t, err, sheet.ErrRowOutOfRange) },
		},
		{
			name:  "club names column missing",
			rows:  [][]any{submissionRow("Rotary", "CGD")},
			input: Input{Row: 2},
			mutate: func(h *harness) {
				h.store.tables[formRef].Headers[1] = "Clubs"
			},
			check: func(t *testing.T, err error) {
				var schemaErr *submission.SchemaError
				require.ErrorAs(t, err, &schemaErr)
				require.Equal(t, "Club Names", schemaErr.Column)
			},
		},
		{
			name:  "reference tables unavailable",
			rows:  [][]any{submissionRow("Rotary", "CGD")},
			input: Input{Row: 2},
			mutate: func(h *harness) {
				h.svc.references = &staticReferences{err: sheet.ErrSheetNotFound}
			},
			check: func(t *testing.T, err error) { require.ErrorIs(t, err, sheet.ErrSheetNotFound) },
		},
		{
			name:  "rows cannot be written",
			rows:  [][]any{submissionRow("Rotary", "CGD")},
			input: Input{Row: 2},
			mutate: func(h *harness) {
				h.store.appendErr = errors.New("read only")
			},
			check: func(t *testing.T, err error) { require.ErrorContains(t, err, "read only") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.rows...)
			if tt.mutate != nil {
				tt.mutate(h)
			}

			res, err := h.svc.Process(context.Background(), tt.input)
			require.Error(t, err)
			require.Nil(t, res)
			tt.check(t, err)

			require.Empty(t, h.certs.calls)
			require.Empty(t, h.notifier.certificateClubs)
			require.Empty(t, h.notifier.failureReports)
			require.Len(t, h.recorder.runs, 1)
			require.Equal(t, history.OutcomeAborted, h.recorder.runs[0].Outcome)
			require.Len(t, h.recorder.runs[0].Defects, 1)
		})
	}
}
