package notification

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	"club-incentives/domain/sheet"
)

// DefaultTemplate is the certificate email used when no template file is configured.
// Placeholders are {{Column Name}} for any enriched column plus the extras in RenderHTML.
//
//go:embed default_template.html
var DefaultTemplate string

// Director is the Incentives Director who signs certificate emails
type Director struct {
	Name    string
	Title   string
	Address string
}

// FirstName is the first word of the director's name
func (d Director) FirstName() string {
	if fields := strings.Fields(d.Name); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// signature is the name with the title on a second line
func (d Director) signature() string {
	name := escapeHTML(d.Name)
	if d.Title == "" {
		return name
	}
	return name + "<br>" + escapeHTML(d.Title)
}

// TemplateData contains everything a certificate email template can reference
type TemplateData struct {
	Headers  []string
	Row      Record
	Director Director
	Now      time.Time
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// RenderHTML substitutes {{Header}} with the row's escaped text for every header,
// then {{CURRENT_DATE}}, {{CURRENT_YEAR}}, {{Incentives Director Name}} and
// {{Incentives Director First Name}}. Unknown placeholders are left in place.
func RenderHTML(tmpl string, data TemplateData) string {
	out := tmpl
	for _, h := range data.Headers {
		v, _ := data.Row.Value(h)
		out = strings.ReplaceAll(out, "{{"+h+"}}", escapeHTML(sheet.Text(v)))
	}
	return strings.NewReplacer(
		"{{CURRENT_DATE}}", data.Now.Format(sheet.DateLayout),
		"{{CURRENT_YEAR}}", strconv.Itoa(data.Now.Year()),
		"{{Incentives Director Name}}", data.Director.signature(),
		"{{Incentives Director First Name}}", escapeHTML(data.Director.FirstName()),
	).Replace(out)
}

// Subject is the certificate email subject line
func Subject(club, award string) string {
	return fmt.Sprintf("Congratulations %s 🎉 Claim Your %s Incentive – Celebrate Your Success!", club, award)
}

// FailureSubject is the subject of a verification failure report
func FailureSubject(submissionRow int) string {
	return fmt.Sprintf("Club Incentive submission %d failed verification", submissionRow)
}

// FailureReport builds the email that tells operators a submission was held back
func FailureReport(submissionRow int, spreadsheetURL string, defects []string, to []Recipient) *Email {
	var body strings.Builder
	body.WriteString("<!DOCTYPE html>\n<html>\n<body>\n")
	fmt.Fprintf(&body, "<p>Submission row %d failed verification. No certificate emails were sent.</p>\n", submissionRow)
	if spreadsheetURL != "" {
		fmt.Fprintf(&body, "<p>Submission spreadsheet: <a href=\"%s\">%s</a></p>\n", escapeHTML(spreadsheetURL), escapeHTML(spreadsheetURL))
	}
	body.WriteString("<ul>\n")
	for _, d := range defects {
		fmt.Fprintf(&body, "  <li>%s</li>\n", escapeHTML(d))
	}
	body.WriteString("</ul>\n</body>\n</html>\n")

	return &Email{
		To:       to,
		Subject:  FailureSubject(submissionRow),
		HTMLBody: body.String(),
	}
}

// Preview renders an email as text for a dry run
func Preview(e *Email) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TO:      %s\n", joinAddresses(e.To))
	fmt.Fprintf(&b, "CC:      %s\n", joinAddresses(e.CC))
	fmt.Fprintf(&b, "BCC:     %s\n", joinAddresses(e.BCC))
	fmt.Fprintf(&b, "SUBJECT: %s\n\n", e.Subject)
	b.WriteString(e.HTMLBody)
	return b.String()
}

func joinAddresses(rs []Recipient) string {
	addrs := make([]string, len(rs))
	for i, r := range rs {
		addrs[i] = r.Address
	}
	return strings.Join(addrs, ", ")
}
