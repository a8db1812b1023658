package certificate

import (
	"context"
	"errors"
	"testing"
	"time"

	"club-incentives/domain/certificate"
	"club-incentives/domain/distribution"
	"club-incentives/domain/enrichment"
	"club-incentives/domain/incentive"
	"club-incentives/domain/submission"

	"github.com/google/go-cmp/cmp"
)

var headers = []string{"Club Names", "Incentive Type", "Award Name", "Award Date"}

type noOfficers struct{}

func (noOfficers) ResolveOfficerEmails(club string, t incentive.Type) []string {
	return make([]string, len(incentive.OfficerRoles(t)))
}

func rotaryRow(t *testing.T) *enrichment.Row {
	t.Helper()
	date := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)
	rec, err := submission.Parse(headers, []any{"Rotary", "CGD", " Growth Award ", date})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return enrichment.FanOut(rec, noOfficers{})[0]
}

type mockRenderer struct {
	png  []byte
	err  error
	subs map[string]string
}

func (m *mockRenderer) RenderImage(ctx context.Context, templateID string, subs map[string]string) ([]byte, error) {
	m.subs = subs
	return m.png, m.err
}

type mockFiles struct {
	folderName string
	folderErr  error
	saved      []distribution.SaveRequest
	saveErr    error
	shared     map[string]distribution.Access
	shareErr   error
}

func (m *mockFiles) FolderByName(ctx context.Context, name, parentID string) (string, error) {
	m.folderName = name
	return "folder-1", m.folderErr
}

func (m *mockFiles) CopyFile(ctx context.Context, fileID, name, folderID string) (string, error) {
	return "", errors.New("not used")
}

func (m *mockFiles) SaveFile(ctx context.Context, req distribution.SaveRequest) (*distribution.File, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.saved = append(m.saved, req)
	return &distribution.File{ID: "file-1", Name: req.Name, URL: "https://drive.example/file-1"}, nil
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

type mockInspector struct {
	inspection certificate.Inspection
	err        error
}

func (m *mockInspector) Inspect(png []byte) (certificate.Inspection, error) {
	return m.inspection, m.err
}

func TestGenerate_Success(t *testing.T) {
	renderer := &mockRenderer{png: []byte("png")}
	files := &mockFiles{}
	svc := NewService(renderer, files, "template-1")

	out := svc.Generate(context.Background(), headers, rotaryRow(t))

	if !out.OK() {
		t.Fatalf("Generate() outcome = %+v, want success", out)
	}
	if out.URL != "https://drive.example/file-1" || out.Club != "Rotary" || out.SheetRow != 2 {
		t.Errorf("outcome = %+v", out)
	}
	if files.folderName != "Growth Award - Saturday, 14-06-2025" {
		t.Errorf("folder name = %q", files.folderName)
	}
	want := []distribution.SaveRequest{{
		FolderID: "folder-1",
		Name:     "Rotary Certificate.png",
		MimeType: "image/png",
		Content:  []byte("png"),
	}}
	if diff := cmp.Diff(want, files.saved); diff != "" {
		t.Errorf("saved files mismatch (-want +got):\n%s", diff)
	}
	if files.shared["file-1"] != distribution.AccessView {
		t.Errorf("share access = %q, want view", files.shared["file-1"])
	}
	if got := renderer.subs["<<Club Names>>"]; got != "Rotary" {
		t.Errorf("<<Club Names>> = %q", got)
	}
	if got := renderer.subs["<<Award Date>>"]; got != "Saturday, 14-06-2025" {
		t.Errorf("<<Award Date>> = %q", got)
	}
}

func TestGenerate_Failures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		template  string
		renderer  *mockRenderer
		files     *mockFiles
		inspector *mockInspector
		wantErr   error
	}{
		{
			name:     "no template",
			renderer: &mockRenderer{},
			files:    &mockFiles{},
			wantErr:  certificate.ErrNoTemplate,
		},
		{
			name:     "folder lookup fails",
			template: "t",
			renderer: &mockRenderer{png: []byte("png")},
			files:    &mockFiles{folderErr: boom},
			wantErr:  boom,
		},
		{
			name:     "render fails",
			template: "t",
			renderer: &mockRenderer{err: boom},
			files:    &mockFiles{},
			wantErr:  boom,
		},
		{
			name:      "blank image",
			template:  "t",
			renderer:  &mockRenderer{png: []byte("png")},
			files:     &mockFiles{},
			inspector: &mockInspector{inspection: certificate.Inspection{Width: 1600, Blank: true}},
			wantErr:   certificate.ErrBlankImage,
		},
		{
			name:      "image too small",
			template:  "t",
			renderer:  &mockRenderer{png: []byte("png")},
			files:     &mockFiles{},
			inspector: &mockInspector{inspection: certificate.Inspection{Width: 200}},
			wantErr:   certificate.ErrImageTooSmall,
		},
		{
			name:     "save fails",
			template: "t",
			renderer: &mockRenderer{png: []byte("png")},
			files:    &mockFiles{saveErr: boom},
			wantErr:  boom,
		},
		{
			name:     "share fails",
			template: "t",
			renderer: &mockRenderer{png: []byte("png")},
			files:    &mockFiles{shareErr: boom},
			wantErr:  boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.inspector != nil {
				opts = append(opts, WithInspector(tt.inspector, 800))
			}
			svc := NewService(tt.renderer, tt.files, tt.template, opts...)

			out := svc.Generate(context.Background(), headers, rotaryRow(t))

			if out.OK() {
				t.Fatal("Generate() succeeded, want failure")
			}
			if out.URL != "" {
				t.Errorf("URL = %q, want empty", out.URL)
			}
			var renderErr *certificate.RenderError
			if !errors.As(out.Err, &renderErr) {
				t.Fatalf("error %T is not a RenderError", out.Err)
			}
			if renderErr.Club != "Rotary" || renderErr.Row != 2 {
				t.Errorf("RenderError = %+v", renderErr)
			}
			if !errors.Is(out.Err, tt.wantErr) {
				t.Errorf("error = %v, want %v", out.Err, tt.wantErr)
			}
		})
	}
}

func TestGenerate_InspectorPasses(t *testing.T) {
	files := &mockFiles{}
	svc := NewService(&mockRenderer{png: []byte("png")}, files, "t",
		WithInspector(&mockInspector{inspection: certificate.Inspection{Width: 1600, Height: 900}}, 800),
		WithParentFolder("parent"),
	)

	if out := svc.Generate(context.Background(), headers, rotaryRow(t)); !out.OK() {
		t.Fatalf("Generate() failed: %v", out.Err)
	}
	if len(files.saved) != 1 {
		t.Errorf("saved %d files, want 1", len(files.saved))
	}
}
