package certificate

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type mapRecord map[string]any

func (m mapRecord) Value(column string) (any, bool) {
	v, ok := m[column]
	return v, ok
}

func TestSubstitutions(t *testing.T) {
	rec := mapRecord{
		"Club Names": "Rotary",
		"Award Date": time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		"Amount":     float64(50),
	}
	got := Substitutions([]string{"Club Names", "Award Date", "Amount", "Missing"}, rec)
	want := map[string]string{
		"<<Club Names>>": "Rotary",
		"<<Award Date>>": "Saturday, 14-06-2025",
		"<<Amount>>":     "50",
		"<<Missing>>":    "",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Substitutions() mismatch (-want +got):\n%s", diff)
	}
}

func TestFolderName(t *testing.T) {
	rec := mapRecord{
		"Award Name": " Smedley ",
		"Award Date": time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
	}
	if got, want := FolderName(rec), "Smedley - Saturday, 14-06-2025"; got != want {
		t.Errorf("FolderName() = %q, want %q", got, want)
	}
}

func TestNames(t *testing.T) {
	if got := FileName("Rotary"); got != "Rotary Certificate.png" {
		t.Errorf("FileName() = %q", got)
	}
	if got := SlideName("Rotary"); got != "Rotary Certificate" {
		t.Errorf("SlideName() = %q", got)
	}
}

func TestInspection_Check(t *testing.T) {
	tests := []struct {
		name     string
		in       Inspection
		minWidth int
		wantErr  error
	}{
		{"ok", Inspection{Width: 1600, Height: 900}, 800, nil},
		{"width check disabled", Inspection{Width: 10, Height: 10}, 0, nil},
		{"blank", Inspection{Width: 1600, Height: 900, Blank: true}, 800, ErrBlankImage},
		{"too small", Inspection{Width: 400, Height: 300}, 800, ErrImageTooSmall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Check(tt.minWidth)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Check() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReport(t *testing.T) {
	boom := errors.New("boom")
	report := Report{
		{SheetRow: 2, Club: "Rotary", URL: "https://drive/rotary"},
		{SheetRow: 3, Club: "Lions", Err: &RenderError{Row: 3, Club: "Lions", Err: boom}},
		{SheetRow: 4, Club: "Kiwanis"},
	}
	if diff := cmp.Diff([]string{"Lions", "Kiwanis"}, report.Failed()); diff != "" {
		t.Errorf("Failed() mismatch (-want +got):\n%s", diff)
	}
	if got := report.Succeeded(); got != 1 {
		t.Errorf("Succeeded() = %d, want 1", got)
	}
	if !errors.Is(report[1].Err, boom) {
		t.Error("RenderError should unwrap to its cause")
	}
}
