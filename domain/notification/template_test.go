package notification

import (
	"strings"
	"testing"
	"time"
)

func TestRenderHTML(t *testing.T) {
	data := TemplateData{
		Headers: []string{"Club Names", "Award Name", "Award Date", "Certificate"},
		Row: mapRecord{
			"Club Names":  "Tom & Jerry <Speakers>",
			"Award Name":  "Smedley",
			"Award Date":  time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
			"Certificate": "https://drive.google.com/file/d/abc/view",
		},
		Director: Director{Name: "Lynne Gayer", Title: "Club Growth Director"},
		Now:      time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC),
	}
	tmpl := "<h2>Hello {{Club Names}}</h2><p>{{Award Name}} on {{Award Date}}</p>" +
		`<a href="{{Certificate}}">x</a><p>{{Club Names}}</p>` +
		"<p>{{Incentives Director First Name}}</p><p>{{Incentives Director Name}}</p>" +
		"<p>{{CURRENT_YEAR}} {{CURRENT_DATE}}</p><p>{{Expiry Date}}</p>"

	got := RenderHTML(tmpl, data)

	want := "<h2>Hello Tom &amp; Jerry &lt;Speakers&gt;</h2><p>Smedley on Saturday, 14-06-2025</p>" +
		`<a href="https://drive.google.com/file/d/abc/view">x</a><p>Tom &amp; Jerry &lt;Speakers&gt;</p>` +
		"<p>Lynne</p><p>Lynne Gayer<br>Club Growth Director</p>" +
		"<p>2025 Monday, 16-06-2025</p><p>{{Expiry Date}}</p>"
	if got != want {
		t.Errorf("RenderHTML() =\n%s\nwant\n%s", got, want)
	}
}

func TestDefaultTemplate_HasPlaceholders(t *testing.T) {
	for _, p := range []string{"{{Club Names}}", "{{Award Name}}", "{{Certificate}}", "{{Incentives Director Name}}", "{{CURRENT_YEAR}}"} {
		if !strings.Contains(DefaultTemplate, p) {
			t.Errorf("DefaultTemplate missing %s", p)
		}
	}
}

func TestDirector_FirstName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Seema Menon", "Seema"},
		{"  Cher ", "Cher"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := (Director{Name: tt.name}).FirstName(); got != tt.want {
			t.Errorf("FirstName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSubjects(t *testing.T) {
	if got, want := Subject("Rotary", "Smedley"), "Congratulations Rotary 🎉 Claim Your Smedley Incentive – Celebrate Your Success!"; got != want {
		t.Errorf("Subject() = %q, want %q", got, want)
	}
	if got, want := FailureSubject(7), "Club Incentive submission 7 failed verification"; got != want {
		t.Errorf("FailureSubject() = %q, want %q", got, want)
	}
}

func TestFailureReport(t *testing.T) {
	to := []Recipient{{Name: "Ops", Address: "ops@district.org"}}
	email := FailureReport(7, "https://docs.google.com/spreadsheets/d/abc", []string{
		"expected 2 rows, found 1",
		`club "A&B" has empty required fields: President Email`,
	}, to)

	if err := email.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	for _, want := range []string{
		"<li>expected 2 rows, found 1</li>",
		`<li>club "A&amp;B" has empty required fields: President Email</li>`,
		"https://docs.google.com/spreadsheets/d/abc",
		"row 7",
	} {
		if !strings.Contains(email.HTMLBody, want) {
			t.Errorf("HTMLBody missing %q:\n%s", want, email.HTMLBody)
		}
	}
}

func TestPreview(t *testing.T) {
	got := Preview(&Email{
		To:       []Recipient{{Address: "a@x.org"}, {Address: "b@x.org"}},
		BCC:      []Recipient{{Address: "c@x.org"}},
		Subject:  "Hi",
		HTMLBody: "<p>body</p>",
	})
	for _, want := range []string{"TO:      a@x.org, b@x.org\n", "CC:      \n", "BCC:     c@x.org\n", "SUBJECT: Hi\n\n<p>body</p>"} {
		if !strings.Contains(got, want) {
			t.Errorf("Preview() missing %q:\n%s", want, got)
		}
	}
}
