// Package pipeline runs one form submission end to end: parse, fan out,
// certificates, verification and notification.
package pipeline

import (
	"context"
	"fmt"
	"io"
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
	"club-incentives/domain/verification"

	"go.uber.org/zap"
)

// ReferenceLoader provides a snapshot of the officer and district leader tables
type ReferenceLoader interface {
	Load(ctx context.Context) (*reference.Directory, error)
}

// CertificateGenerator produces one row's certificate
type CertificateGenerator interface {
	Generate(ctx context.Context, headers []string, row *enrichment.Row) certificate.Outcome
}

// Notifier dispatches the emails that follow verification
type Notifier interface {
	SendCertificates(ctx context.Context, headers []string, rows []*enrichment.Row) appnotif.Summary
	SendFailureReport(ctx context.Context, submissionRow int, spreadsheetURL string, defects []string) error
}

// Service orchestrates the complete submission workflow
type Service struct {
	store        sheet.Store
	creator      sheet.Creator
	files        distribution.FileStore
	references   ReferenceLoader
	certificates CertificateGenerator
	notifier     Notifier
	source       sheet.Ref
	output       io.Writer

	recorder     history.Recorder
	requiredBase []string
	logger       *zap.Logger
	now          func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithRecorder journals every run
func WithRecorder(r history.Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithRequiredColumns replaces the base columns every enriched row must fill
func WithRequiredColumns(cols []string) Option {
	return func(s *Service) {
		if len(cols) > 0 {
			s.requiredBase = cols
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock sets the clock used for run timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new pipeline service reading submissions from source
func NewService(
	store sheet.Store,
	creator sheet.Creator,
	files distribution.FileStore,
	references ReferenceLoader,
	certificates CertificateGenerator,
	notifier Notifier,
	source sheet.Ref,
	output io.Writer,
	opts ...Option,
) *Service {
	if output == nil {
		output = io.Discard
	}
	s := &Service{
		store:        store,
		creator:      creator,
		files:        files,
		references:   references,
		certificates: certificates,
		notifier:     notifier,
		source:       source,
		output:       output,
		requiredBase: verification.DefaultBaseColumns,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Input selects the submission to process
type Input struct {
	Row    int  // 1-based row in the form responses sheet
	Latest bool // process the last submission instead of Row
}

// Result contains the results of a completed run
type Result struct {
	SubmissionRow  int
	SpreadsheetURL string
	Headers        []string
	Rows           []*enrichment.Row
	Certificates   certificate.Report
	Verification   verification.Result
	Emails         appnotif.Summary
}

const totalSteps = 8

// SpreadsheetTitle names the spreadsheet created for a submission row
func SpreadsheetTitle(submissionRow int) string {
	return fmt.Sprintf("Club Incentive - Submission %d", submissionRow)
}

// Process runs the workflow for one submission. Parse and setup failures abort the
// run and are returned; per-row certificate and email failures are logged and the
// run continues. A failed verification is reported in the Result, not as an error.
func (s *Service) Process(ctx context.Context, in Input) (*Result, error) {
	run := &history.Run{StartedAt: s.now()}

	res, err := s.process(ctx, in, run)
	if err != nil {
		run.Outcome = history.OutcomeAborted
		run.Defects = []string{err.Error()}
		s.logger.Error("submission aborted",
			zap.Int("submission_row", run.SubmissionRow),
			zap.Error(err),
		)
	}
	run.FinishedAt = s.now()
	s.record(ctx, run)

	if err != nil {
		return nil, err
	}
	fmt.Fprintf(s.output, "Done! Completed in %s\n", formatDuration(run.FinishedAt.Sub(run.StartedAt)))
	return res, nil
}

func (s *Service) process(ctx context.Context, in Input, run *history.Run) (*Result, error) {
	if in.Latest == (in.Row >= 2) {
		return nil, ErrInvalidInput
	}

	// Step 1: Read and parse the submission
	fmt.Fprintf(s.output, "[1/%d] Reading submission...\n", totalSteps)
	rec, rowNum, err := s.readSubmission(ctx, in, run)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(s.output, "      Row %d: %d club(s), incentive %s\n\n", rowNum, len(rec.ClubNames), rec.IncentiveType)
	if !rec.IncentiveType.Known() {
		s.logger.Warn("unrecognised incentive type",
			zap.Int("submission_row", rowNum),
			zap.String("incentive_type", string(rec.IncentiveType)),
		)
	}

	// Step 2: Create the submission spreadsheet
	fmt.Fprintf(s.output, "[2/%d] Creating submission spreadsheet...\n", totalSteps)
	headers := enrichment.WithCertificateColumn(enrichment.ComposeHeaders(rec.Headers, rec.IncentiveType))
	target, url, err := s.createSpreadsheet(ctx, rowNum, headers)
	if err != nil {
		return nil, err
	}
	run.SpreadsheetURL = url
	fmt.Fprintf(s.output, "      Created: %s\n\n", url)

	// Step 3: Load reference tables
	fmt.Fprintf(s.output, "[3/%d] Loading reference tables...\n", totalSteps)
	dir, err := s.references.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference tables: %w", err)
	}
	if dups := dir.DuplicateKeys(); len(dups) > 0 {
		fmt.Fprintf(s.output, "      Warning: %d duplicate reference keys (first occurrence used)\n", len(dups))
	}
	fmt.Fprintln(s.output)

	// Step 4: Fan out and enrich
	fmt.Fprintf(s.output, "[4/%d] Enriching clubs...\n", totalSteps)
	rows := enrichment.FanOut(rec, dir)
	for _, row := range rows {
		place := dir.ResolveClubDivisionArea(row.ClubName)
		row.SetDistrictLeaders(dir.ResolveDistrictLeaders(place.Division, place.Area, rec.IncentiveType).Emails())
		if err := s.store.AppendRow(ctx, target, row.Values(headers)); err != nil {
			return nil, fmt.Errorf("failed to write row for %q: %w", row.ClubName, err)
		}
		fmt.Fprintf(s.output, "      %s (division %q, area %q)\n", row.ClubName, place.Division, place.Area)
	}
	fmt.Fprintln(s.output)

	// Step 5: Link the submission spreadsheet from the form responses
	fmt.Fprintf(s.output, "[5/%d] Linking submission...\n", totalSteps)
	if err := s.store.WriteCell(ctx, s.source, rowNum, incentive.ColumnFinalSheet, url); err != nil {
		s.logger.Error("failed to write submission link",
			zap.Int("submission_row", rowNum),
			zap.Error(err),
		)
		fmt.Fprintf(s.output, "      Link not written: %v\n\n", err)
	} else {
		fmt.Fprintf(s.output, "      Row %d -> %s\n\n", rowNum, url)
	}

	// Step 6: Certificates, one row at a time
	fmt.Fprintf(s.output, "[6/%d] Generating certificates...\n", totalSteps)
	report := s.generateCertificates(ctx, target, headers, rows)
	run.Certificates = report.Succeeded()
	fmt.Fprintln(s.output)

	// Step 7: Verification gate
	fmt.Fprintf(s.output, "[7/%d] Verifying...\n", totalSteps)
	result := verification.Verify(verification.Input{
		Schema:          headers,
		Rows:            records(rows),
		ExpectedCount:   len(rec.ClubNames),
		RequiredColumns: verification.RequiredColumns(s.requiredBase, rec.IncentiveType),
		FailedRenders:   report.Failed(),
	})
	run.Defects = result.Defects
	printVerification(s.output, result)

	// Step 8: Notify
	fmt.Fprintf(s.output, "[8/%d] Sending emails...\n", totalSteps)
	var sum appnotif.Summary
	if result.Passed {
		run.Outcome = history.OutcomeNotified
		sum = s.notifier.SendCertificates(ctx, headers, rows)
		run.EmailsSent = sum.Sent
		fmt.Fprintf(s.output, "      Sent %d, skipped %d, failed %d\n\n", sum.Sent, sum.Skipped, sum.Failed)
	} else {
		run.Outcome = history.OutcomeHeld
		if err := s.notifier.SendFailureReport(ctx, rowNum, url, result.Defects); err != nil {
			s.logger.Error("failure report not sent",
				zap.Int("submission_row", rowNum),
				zap.Error(err),
			)
			fmt.Fprintf(s.output, "      Failure report not sent: %v\n", err)
		} else {
			run.EmailsSent = 1
			fmt.Fprintf(s.output, "      Certificate emails held; failure report sent\n")
		}
		s.showRecoveryCommands(target)
	}

	return &Result{
		SubmissionRow:  rowNum,
		SpreadsheetURL: url,
		Headers:        headers,
		Rows:           rows,
		Certificates:   report,
		Verification:   result,
		Emails:         sum,
	}, nil
}

func (s *Service) readSubmission(ctx context.Context, in Input, run *history.Run) (*submission.Record, int, error) {
	if _, err := s.store.EnsureColumn(ctx, s.source, incentive.ColumnFinalSheet); err != nil {
		return nil, 0, fmt.Errorf("failed to prepare form responses %s: %w", s.source, err)
	}
	table, err := s.store.ReadAll(ctx, s.source)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read form responses %s: %w", s.source, err)
	}

	rowNum := in.Row
	if in.Latest {
		rowNum = table.LastRow()
		if rowNum == 0 {
			return nil, 0, ErrNoSubmissions
		}
	}
	run.SubmissionRow = rowNum

	values, err := table.Row(rowNum)
	if err != nil {
		return nil, 0, err
	}
	rec, err := submission.Parse(table.Headers, values)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse submission row %d: %w", rowNum, err)
	}
	run.Clubs = len(rec.ClubNames)
	return rec, rowNum, nil
}

func (s *Service) createSpreadsheet(ctx context.Context, rowNum int, headers []string) (sheet.Ref, string, error) {
	target, url, err := s.creator.CreateSpreadsheet(ctx, SpreadsheetTitle(rowNum))
	if err != nil {
		return sheet.Ref{}, "", fmt.Errorf("failed to create submission spreadsheet: %w", err)
	}

	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := s.store.AppendRow(ctx, target, headerRow); err != nil {
		return sheet.Ref{}, "", fmt.Errorf("failed to write headers: %w", err)
	}

	if err := s.files.Share(ctx, target.SpreadsheetID, distribution.AccessEdit); err != nil {
		s.logger.Warn("failed to share submission spreadsheet",
			zap.String("spreadsheet_id", target.SpreadsheetID),
			zap.Error(err),
		)
	}
	return target, url, nil
}

// generateCertificates renders every row, writing the link and claim status of each
// success. A row whose link cannot be written counts as failed.
func (s *Service) generateCertificates(ctx context.Context, target sheet.Ref, headers []string, rows []*enrichment.Row) certificate.Report {
	report := make(certificate.Report, 0, len(rows))
	for _, row := range rows {
		outcome := s.certificates.Generate(ctx, headers, row)
		if outcome.OK() {
			if err := s.recordCertificate(ctx, target, row, outcome.URL); err != nil {
				s.logger.Error("failed to record certificate link",
					zap.Int("row", row.SheetRow),
					zap.String("club", row.ClubName),
					zap.Error(err),
				)
				outcome.URL = ""
				outcome.Err = &certificate.RenderError{Row: row.SheetRow, Club: row.ClubName, Err: err}
			}
		}
		report = append(report, outcome)

		if outcome.OK() {
			fmt.Fprintf(s.output, "      Created: %s\n", row.ClubName)
		} else {
			fmt.Fprintf(s.output, "      Failed:  %s (%v)\n", row.ClubName, outcome.Err)
		}
	}
	return report
}

func (s *Service) recordCertificate(ctx context.Context, target sheet.Ref, row *enrichment.Row, url string) error {
	if err := s.store.WriteCell(ctx, target, row.SheetRow, incentive.ColumnCertificate, url); err != nil {
		return err
	}
	if err := s.store.WriteCell(ctx, target, row.SheetRow, incentive.ColumnClaimStatus, string(enrichment.Unclaimed)); err != nil {
		return err
	}
	row.Certificate = url
	row.ClaimStatus = enrichment.Unclaimed
	return nil
}

func (s *Service) record(ctx context.Context, run *history.Run) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warn("failed to journal run",
			zap.Int("submission_row", run.SubmissionRow),
			zap.Error(err),
		)
	}
}

func (s *Service) showRecoveryCommands(target sheet.Ref) {
	fmt.Fprintln(s.output)
	fmt.Fprintln(s.output, "To complete manually once the sheet is fixed:")
	fmt.Fprintf(s.output, "  1. Verify:     club-incentives verify --spreadsheet %s\n", target.SpreadsheetID)
	fmt.Fprintf(s.output, "  2. Email:      club-incentives send-email --spreadsheet %s\n", target.SpreadsheetID)
	fmt.Fprintln(s.output)
}

func records(rows []*enrichment.Row) []verification.Record {
	out := make([]verification.Record, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

func printVerification(w io.Writer, result verification.Result) {
	if result.Passed {
		fmt.Fprintf(w, "      Passed\n\n")
		return
	}
	fmt.Fprintf(w, "      Failed with %d defect(s):\n", len(result.Defects))
	for _, d := range result.Defects {
		fmt.Fprintf(w, "      - %s\n", d)
	}
	fmt.Fprintln(w)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	sec := (d % time.Minute) / time.Second
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}
