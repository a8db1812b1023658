//go:build integration

package steps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"club-incentives/application/pipeline"
	"club-incentives/cmd"
	"club-incentives/domain/incentive"
	"club-incentives/domain/notification"
	"club-incentives/domain/sheet"
	"club-incentives/infrastructure/config"
	"club-incentives/infrastructure/gmail"
	"club-incentives/infrastructure/journal"
	"club-incentives/infrastructure/sheets"

	"github.com/cucumber/godog"
	"go.uber.org/zap"
)

const (
	formID      = "form-responses"
	formSheet   = "Form Responses 1"
	officersID  = "officers"
	leadersID   = "district-leaders"
	submissions = "Sheet1"
)

var formHeaders = []interface{}{"Timestamp", "Club Names", "Incentive Type", "Award Name", "Award Date"}

// pipelineContext holds test state for process, verify, send-email and history scenarios
type pipelineContext struct {
	cfg     *config.Config
	tempDir string
	image   *httptest.Server

	sheets *fakeSheets
	drive  *fakeDrive
	slides *fakeSlides
	gmail  *fakeGmail

	journal *journal.Store
}

// SharedPipelineContext is reset before each scenario via Before hook
var SharedPipelineContext *pipelineContext

func InitializePipelineScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "pipeline-test-*")
		if err != nil {
			return c, err
		}
		image := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("\x89PNG rendered certificate"))
		}))

		store, err := journal.Open(c, filepath.Join(tempDir, "journal.db"))
		if err != nil {
			image.Close()
			return c, err
		}

		p := &pipelineContext{
			tempDir: tempDir,
			image:   image,
			sheets:  newFakeSheets(),
			drive:   newFakeDrive(),
			slides:  &fakeSlides{imageURL: image.URL + "/thumb.png", failFor: map[string]bool{}},
			gmail:   &fakeGmail{},
			journal: store,
		}
		p.cfg = &config.Config{
			Google: config.GoogleConfig{CredentialsFile: "credentials.json", AuthMode: config.AuthModeOAuth},
			Sheets: config.SheetsConfig{
				FormResponses:   config.SheetRef{SpreadsheetID: formID, SheetName: formSheet},
				Officers:        config.SheetRef{SpreadsheetID: officersID, SheetName: "Officers"},
				DistrictLeaders: config.SheetRef{SpreadsheetID: leadersID, SheetName: "Leaders"},
			},
			Certificate: config.CertificateConfig{SlideTemplateID: "template-1"},
			Email: config.EmailConfig{
				FromName:    "District Incentives",
				FromAddress: "incentives@district.org",
				FailureRecipients: []config.RecipientConfig{
					{Key: "ops", Name: "Ops", Address: "ops@district.org"},
				},
			},
			Incentives: config.IncentivesConfig{
				SharedMailbox: "team@district.org",
				Directors: map[string]config.DirectorConfig{
					"CGD": {Name: "Grace Growth", Title: "Club Growth Director", Address: "growth@district.org"},
					"PQD": {Name: "Quinn Quality", Title: "Program Quality Director", Address: "quality@district.org"},
				},
			},
		}
		p.sheets.put(formID, formSheet, [][]interface{}{formHeaders})
		SharedPipelineContext = p
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		p := SharedPipelineContext
		if p != nil {
			p.journal.Close()
			p.image.Close()
			os.RemoveAll(p.tempDir)
		}
		SharedPipelineContext = nil
		return c, nil
	})

	ctx.Step(`^the officer directory:$`, theOfficerDirectory)
	ctx.Step(`^the district leaders:$`, theDistrictLeaders)
	ctx.Step(`^a form submission for clubs "([^"]*)" with incentive "([^"]*)"$`, aFormSubmission)
	ctx.Step(`^certificate rendering fails for "([^"]*)"$`, certificateRenderingFailsFor)
	ctx.Step(`^no failure recipients are configured$`, noFailureRecipientsAreConfigured)

	ctx.Step(`^I process the latest submission$`, iProcessTheLatestSubmission)
	ctx.Step(`^I process submission row (\d+)$`, iProcessSubmissionRow)
	ctx.Step(`^I verify the submission spreadsheet$`, iVerifyTheSubmissionSpreadsheet)
	ctx.Step(`^I send emails for the submission spreadsheet$`, func() error { return iSendEmails(false, false) })
	ctx.Step(`^I send emails for the submission spreadsheet with --force$`, func() error { return iSendEmails(false, true) })
	ctx.Step(`^I preview emails for the submission spreadsheet$`, func() error { return iSendEmails(true, false) })
	ctx.Step(`^I show the run history$`, iShowTheRunHistory)
	ctx.Step(`^the officers of "([^"]*)" are filled in on the submission spreadsheet$`, theOfficersAreFilledIn)

	ctx.Step(`^the submission spreadsheet should have (\d+) club rows$`, theSubmissionSpreadsheetShouldHaveClubRows)
	ctx.Step(`^the submission spreadsheet should be shared for editing$`, theSubmissionSpreadsheetShouldBeShared)
	ctx.Step(`^the "([^"]*)" row should have "([^"]*)" set to "([^"]*)"$`, theRowShouldHaveColumn)
	ctx.Step(`^the form row should link the submission spreadsheet$`, theFormRowShouldLinkTheSubmission)
	ctx.Step(`^(\d+) certificates? should be uploaded$`, certificatesShouldBeUploaded)
	ctx.Step(`^the certificate placeholders should include "([^"]*)"$`, theCertificatePlaceholdersShouldInclude)
	ctx.Step(`^(\d+) certificate emails? should be sent$`, certificateEmailsShouldBeSent)
	ctx.Step(`^an email to "([^"]*)" should be sent$`, anEmailToShouldBeSent)
	ctx.Step(`^an email cc "([^"]*)" should be sent$`, anEmailCcShouldBeSent)
	ctx.Step(`^no email should be sent$`, noEmailShouldBeSent)
	ctx.Step(`^a failure report should be sent to "([^"]*)"$`, aFailureReportShouldBeSentTo)
	ctx.Step(`^the run journal should record outcome "([^"]*)"$`, theRunJournalShouldRecordOutcome)
}

func tableRows(table *godog.Table) [][]interface{} {
	rows := make([][]interface{}, 0, len(table.Rows))
	for _, r := range table.Rows {
		row := make([]interface{}, len(r.Cells))
		for i, c := range r.Cells {
			row[i] = c.Value
		}
		rows = append(rows, row)
	}
	return rows
}

// --- Given ---

func theOfficerDirectory(table *godog.Table) error {
	SharedPipelineContext.sheets.put(officersID, "Officers", tableRows(table))
	return nil
}

func theDistrictLeaders(table *godog.Table) error {
	SharedPipelineContext.sheets.put(leadersID, "Leaders", tableRows(table))
	return nil
}

func aFormSubmission(clubs, incentiveType string) error {
	p := SharedPipelineContext
	rows := p.sheets.grid(formID, formSheet)
	rows = append(rows, []interface{}{"14/06/2025 10:00:00", clubs, incentiveType, "Smedley Award", "Saturday, 14-06-2025"})
	p.sheets.put(formID, formSheet, rows)
	return nil
}

func certificateRenderingFailsFor(club string) error {
	SharedPipelineContext.slides.failFor[club] = true
	return nil
}

func noFailureRecipientsAreConfigured() error {
	SharedPipelineContext.cfg.Email.FailureRecipients = nil
	return nil
}

// --- When ---

func (p *pipelineContext) services() cmd.Services {
	return cmd.Services{
		Sheets: p.sheets,
		Drive:  p.drive,
		Slides: p.slides,
		Gmail:  p.gmail,
	}
}

func runProcess(input pipeline.Input) error {
	p := SharedPipelineContext
	last.err = cmd.RunProcessWithDependencies(context.Background(), p.cfg, p.services(), p.journal, zap.NewNop(), input, last.output)
	return nil
}

func iProcessTheLatestSubmission() error {
	return runProcess(pipeline.Input{Latest: true})
}

func iProcessSubmissionRow(row int) error {
	return runProcess(pipeline.Input{Row: row})
}

// submissionID is the spreadsheet created by the most recent run
func (p *pipelineContext) submissionID() string {
	return fmt.Sprintf("submission-%d", p.sheets.created)
}

func iVerifyTheSubmissionSpreadsheet() error {
	p := SharedPipelineContext
	store, err := p.sheetStore()
	if err != nil {
		return err
	}
	last.err = cmd.RunVerifyWithDependencies(context.Background(), p.cfg, store, p.submissionRef(), last.output)
	return nil
}

func iSendEmails(preview, force bool) error {
	p := SharedPipelineContext
	store, err := p.sheetStore()
	if err != nil {
		return err
	}
	sender, err := p.emailSender()
	if err != nil {
		return err
	}
	last.err = cmd.RunSendEmailWithDependencies(context.Background(), p.cfg, store, sender, zap.NewNop(),
		p.submissionRef(), nil, preview, force, last.output)
	return nil
}

func iShowTheRunHistory() error {
	last.err = cmd.RunHistoryWithDependencies(context.Background(), SharedPipelineContext.journal, "", 10, last.output)
	return nil
}

// theOfficersAreFilledIn stands in for an operator fixing the spreadsheet by hand
func theOfficersAreFilledIn(club string) error {
	p := SharedPipelineContext
	rows := p.sheets.grid(p.submissionID(), submissions)
	if len(rows) == 0 {
		return fmt.Errorf("submission spreadsheet is empty")
	}
	headers := rows[0]
	clubCol := columnIndex(headers, incentive.ColumnClubNames)
	slug := strings.ToLower(club)
	for _, row := range rows[1:] {
		if fmt.Sprint(row[clubCol]) != club {
			continue
		}
		for _, role := range incentive.OfficerRoles(incentive.ParseType(fmt.Sprint(row[columnIndex(headers, incentive.ColumnIncentiveType)]))) {
			col := columnIndex(headers, role.Column())
			row[col] = fmt.Sprintf("%s@%s.org", strings.ToLower(strings.ReplaceAll(string(role), "-", "")), slug)
		}
		return nil
	}
	return fmt.Errorf("club %q not found on submission spreadsheet", club)
}

// --- Then ---

func columnIndex(headers []interface{}, name string) int {
	for i, h := range headers {
		if fmt.Sprint(h) == name {
			return i
		}
	}
	return -1
}

func cell(row []interface{}, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return fmt.Sprint(row[col])
}

func theSubmissionSpreadsheetShouldHaveClubRows(n int) error {
	p := SharedPipelineContext
	rows := p.sheets.grid(p.submissionID(), submissions)
	if got := len(rows) - 1; got != n {
		return fmt.Errorf("expected %d club rows, got %d", n, got)
	}
	return nil
}

func theSubmissionSpreadsheetShouldBeShared() error {
	p := SharedPipelineContext
	if role := p.drive.permissions[p.submissionID()]; role != "writer" {
		return fmt.Errorf("expected submission spreadsheet shared as writer, got %q", role)
	}
	return nil
}

func theRowShouldHaveColumn(club, column, value string) error {
	p := SharedPipelineContext
	rows := p.sheets.grid(p.submissionID(), submissions)
	if len(rows) == 0 {
		return fmt.Errorf("submission spreadsheet is empty")
	}
	clubCol := columnIndex(rows[0], incentive.ColumnClubNames)
	col := columnIndex(rows[0], column)
	if col == -1 {
		return fmt.Errorf("column %q not found in %v", column, rows[0])
	}
	for _, row := range rows[1:] {
		if cell(row, clubCol) == club {
			if got := cell(row, col); got != value {
				return fmt.Errorf("%s %q = %q, want %q", club, column, got, value)
			}
			return nil
		}
	}
	return fmt.Errorf("club %q not found", club)
}

func theFormRowShouldLinkTheSubmission() error {
	p := SharedPipelineContext
	rows := p.sheets.grid(formID, formSheet)
	col := columnIndex(rows[0], incentive.ColumnFinalSheet)
	if col == -1 {
		return fmt.Errorf("form responses have no %q column", incentive.ColumnFinalSheet)
	}
	want := "https://docs.google.com/spreadsheets/d/" + p.submissionID()
	if got := cell(rows[len(rows)-1], col); got != want {
		return fmt.Errorf("link = %q, want %q", got, want)
	}
	return nil
}

func certificatesShouldBeUploaded(n int) error {
	if got := len(SharedPipelineContext.drive.uploads); got != n {
		return fmt.Errorf("expected %d uploads, got %d: %v", n, got, SharedPipelineContext.drive.uploads)
	}
	return nil
}

func theCertificatePlaceholdersShouldInclude(value string) error {
	for _, subs := range SharedPipelineContext.slides.replaced {
		for _, v := range subs {
			if v == value {
				return nil
			}
		}
	}
	return fmt.Errorf("no certificate was rendered with %q", value)
}

// certificateEmails are the sent messages that are not failure reports
func certificateEmails() []sentMessage {
	var out []sentMessage
	for _, m := range SharedPipelineContext.gmail.sent {
		if !strings.Contains(m.Subject, "failed verification") {
			out = append(out, m)
		}
	}
	return out
}

func certificateEmailsShouldBeSent(n int) error {
	if got := len(certificateEmails()); got != n {
		return fmt.Errorf("expected %d certificate emails, got %d", n, got)
	}
	return nil
}

func anEmailToShouldBeSent(address string) error {
	for _, m := range certificateEmails() {
		if strings.Contains(m.To, address) {
			return nil
		}
	}
	return fmt.Errorf("no certificate email to %s", address)
}

func anEmailCcShouldBeSent(address string) error {
	for _, m := range certificateEmails() {
		if strings.Contains(m.Cc, address) {
			return nil
		}
	}
	return fmt.Errorf("no certificate email cc %s", address)
}

func noEmailShouldBeSent() error {
	if n := len(SharedPipelineContext.gmail.sent); n != 0 {
		return fmt.Errorf("expected no email, got %d", n)
	}
	return nil
}

func aFailureReportShouldBeSentTo(address string) error {
	for _, m := range SharedPipelineContext.gmail.sent {
		if strings.Contains(m.Subject, "failed verification") && strings.Contains(m.To, address) {
			return nil
		}
	}
	return fmt.Errorf("no failure report to %s", address)
}

func theRunJournalShouldRecordOutcome(outcome string) error {
	runs, err := SharedPipelineContext.journal.Recent(context.Background(), 1)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("no run recorded")
	}
	if got := string(runs[0].Outcome); got != outcome {
		return fmt.Errorf("outcome = %q, want %q (defects: %v)", got, outcome, runs[0].Defects)
	}
	return nil
}

func (p *pipelineContext) submissionRef() sheet.Ref {
	return sheet.Ref{SpreadsheetID: p.submissionID(), SheetName: submissions}
}

func (p *pipelineContext) sheetStore() (sheet.Store, error) {
	return sheets.NewClient(context.Background(), nil, sheets.WithSheetsService(p.sheets))
}

func (p *pipelineContext) emailSender() (notification.EmailSender, error) {
	return gmail.NewClient(context.Background(), nil, p.cfg.Sender(), gmail.WithGmailService(p.gmail))
}
