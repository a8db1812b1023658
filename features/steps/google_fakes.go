//go:build integration

package steps

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	googledrive "google.golang.org/api/drive/v3"
	googlegmail "google.golang.org/api/gmail/v1"
	googlesheets "google.golang.org/api/sheets/v4"
	googleslides "google.golang.org/api/slides/v1"
)

// fakeSheets keeps spreadsheets as grids keyed by spreadsheet ID and sheet name
type fakeSheets struct {
	mu      sync.Mutex
	grids   map[string]map[string][][]interface{}
	created int
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{grids: make(map[string]map[string][][]interface{})}
}

func (f *fakeSheets) put(id, name string, rows [][]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grids[id] == nil {
		f.grids[id] = make(map[string][][]interface{})
	}
	f.grids[id][name] = rows
}

func (f *fakeSheets) grid(id, name string) [][]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grids[id][name]
}

// parseRange splits 'Sheet'!A1 notation into the sheet name and the range part
func parseRange(rng string) (string, string) {
	if !strings.HasPrefix(rng, "'") {
		name, rest, _ := strings.Cut(rng, "!")
		return name, rest
	}
	end := strings.Index(rng[1:], "'") + 1
	name := rng[1:end]
	return name, strings.TrimPrefix(rng[end+1:], "!")
}

// parseCell converts "C12" to a 0-based column and 1-based row
func parseCell(a1 string) (int, int, error) {
	i := 0
	col := 0
	for i < len(a1) && a1[i] >= 'A' && a1[i] <= 'Z' {
		col = col*26 + int(a1[i]-'A'+1)
		i++
	}
	row, err := strconv.Atoi(a1[i:])
	if err != nil || i == 0 {
		return 0, 0, fmt.Errorf("unsupported range %q", a1)
	}
	return col - 1, row, nil
}

func (f *fakeSheets) GetValues(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, part := parseRange(rng)
	sheetsByName, ok := f.grids[spreadsheetID]
	if !ok {
		return nil, fmt.Errorf("spreadsheet %s not found", spreadsheetID)
	}
	rows, ok := sheetsByName[name]
	if !ok {
		return nil, fmt.Errorf("unable to parse range: %s", rng)
	}
	if part == "1:1" {
		if len(rows) == 0 {
			return nil, nil
		}
		return rows[:1], nil
	}
	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		out[i] = append([]interface{}(nil), r...)
	}
	return out, nil
}

func (f *fakeSheets) AppendValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, _ := parseRange(rng)
	f.grids[spreadsheetID][name] = append(f.grids[spreadsheetID][name], values...)
	return nil
}

func (f *fakeSheets) UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, part := parseRange(rng)
	col, row, err := parseCell(part)
	if err != nil {
		return err
	}
	rows := f.grids[spreadsheetID][name]
	for len(rows) < row {
		rows = append(rows, nil)
	}
	r := rows[row-1]
	for len(r) <= col {
		r = append(r, "")
	}
	r[col] = values[0][0]
	rows[row-1] = r
	f.grids[spreadsheetID][name] = rows
	return nil
}

func (f *fakeSheets) CreateSpreadsheet(ctx context.Context, s *googlesheets.Spreadsheet) (*googlesheets.Spreadsheet, error) {
	f.mu.Lock()
	f.created++
	id := fmt.Sprintf("submission-%d", f.created)
	f.mu.Unlock()

	name := s.Sheets[0].Properties.Title
	f.put(id, name, nil)
	return &googlesheets.Spreadsheet{
		SpreadsheetId:  id,
		SpreadsheetUrl: "https://docs.google.com/spreadsheets/d/" + id,
		Properties:     s.Properties,
		Sheets:         s.Sheets,
	}, nil
}

// fakeDrive records folders, uploads and permissions
type fakeDrive struct {
	mu          sync.Mutex
	next        int
	folders     map[string]string
	uploads     []string
	trashed     []string
	permissions map[string]string
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		folders:     make(map[string]string),
		permissions: make(map[string]string),
	}
}

func (f *fakeDrive) id(prefix string) string {
	f.next++
	return fmt.Sprintf("%s-%d", prefix, f.next)
}

func (f *fakeDrive) ListFiles(ctx context.Context, query string, fields string) ([]*googledrive.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*googledrive.File
	for name, id := range f.folders {
		if strings.Contains(query, "name = '"+name+"'") {
			out = append(out, &googledrive.File{Id: id, Name: name})
		}
	}
	return out, nil
}

func (f *fakeDrive) CreateFile(ctx context.Context, file *googledrive.File, media io.Reader) (*googledrive.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if media == nil {
		id := f.id("folder")
		f.folders[file.Name] = id
		return &googledrive.File{Id: id, Name: file.Name}, nil
	}
	if _, err := io.ReadAll(media); err != nil {
		return nil, err
	}
	id := f.id("file")
	f.uploads = append(f.uploads, file.Name)
	return &googledrive.File{Id: id, Name: file.Name, WebViewLink: "https://drive.google.com/file/d/" + id + "/view"}, nil
}

func (f *fakeDrive) CopyFile(ctx context.Context, fileID string, file *googledrive.File) (*googledrive.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &googledrive.File{Id: f.id("copy"), Name: file.Name}, nil
}

func (f *fakeDrive) UpdateFile(ctx context.Context, fileID string, file *googledrive.File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if file.Trashed {
		f.trashed = append(f.trashed, fileID)
	}
	return nil
}

func (f *fakeDrive) CreatePermission(ctx context.Context, fileID string, permission *googledrive.Permission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permissions[fileID] = permission.Role
	return nil
}

// fakeSlides points every thumbnail at imageURL
type fakeSlides struct {
	imageURL string
	failFor  map[string]bool
	mu       sync.Mutex
	replaced []map[string]string
}

func (f *fakeSlides) FirstSlideID(ctx context.Context, presentationID string) (string, error) {
	return "p1", nil
}

func (f *fakeSlides) BatchUpdate(ctx context.Context, presentationID string, requests []*googleslides.Request) error {
	subs := make(map[string]string, len(requests))
	for _, r := range requests {
		if r.ReplaceAllText != nil {
			subs[r.ReplaceAllText.ContainsText.Text] = r.ReplaceAllText.ReplaceText
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range subs {
		if f.failFor[v] {
			return fmt.Errorf("slides backend error")
		}
	}
	f.replaced = append(f.replaced, subs)
	return nil
}

func (f *fakeSlides) ThumbnailURL(ctx context.Context, presentationID, pageID string) (string, error) {
	return f.imageURL, nil
}

// sentMessage is a decoded outgoing email
type sentMessage struct {
	To      string
	Cc      string
	Subject string
}

// fakeGmail decodes the headers of every sent message
type fakeGmail struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeGmail) SendMessage(ctx context.Context, userID string, message *googlegmail.Message) (*googlegmail.Message, error) {
	raw, err := base64.URLEncoding.DecodeString(message.Raw)
	if err != nil {
		return nil, err
	}
	var msg sentMessage
	head, _, _ := strings.Cut(string(raw), "\r\n\r\n")
	for _, line := range strings.Split(head, "\r\n") {
		key, value, _ := strings.Cut(line, ": ")
		switch key {
		case "To":
			msg.To = value
		case "Cc":
			msg.Cc = value
		case "Subject":
			msg.Subject = value
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return &googlegmail.Message{Id: fmt.Sprintf("msg-%d", len(f.sent))}, nil
}
