package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"club-incentives/domain/distribution"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveService defines the interface for Google Drive API operations
// This allows mocking the Google Drive API in tests
type DriveService interface {
	ListFiles(ctx context.Context, query string, fields string) ([]*drive.File, error)
	CreateFile(ctx context.Context, file *drive.File, media io.Reader) (*drive.File, error)
	CopyFile(ctx context.Context, fileID string, file *drive.File) (*drive.File, error)
	UpdateFile(ctx context.Context, fileID string, file *drive.File) error
	CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error
}

// GoogleDriveService is the production implementation using the Google Drive API
type GoogleDriveService struct {
	service *drive.Service
}

// ListFiles lists files matching the query
func (s *GoogleDriveService) ListFiles(ctx context.Context, query string, fields string) ([]*drive.File, error) {
	r, err := s.service.Files.List().
		Q(query).
		Fields(googleapi.Field("files(" + fields + ")")).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return r.Files, nil
}

// CreateFile creates a file, uploading media when it is non-nil
func (s *GoogleDriveService) CreateFile(ctx context.Context, file *drive.File, media io.Reader) (*drive.File, error) {
	call := s.service.Files.Create(file).
		Fields("id, name, webViewLink").
		SupportsAllDrives(true).
		Context(ctx)
	if media != nil {
		call = call.Media(media)
	}
	return call.Do()
}

// CopyFile copies a file
func (s *GoogleDriveService) CopyFile(ctx context.Context, fileID string, file *drive.File) (*drive.File, error) {
	return s.service.Files.Copy(fileID, file).
		Fields("id, name").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
}

// UpdateFile patches file metadata
func (s *GoogleDriveService) UpdateFile(ctx context.Context, fileID string, file *drive.File) error {
	_, err := s.service.Files.Update(fileID, file).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	return err
}

// CreatePermission adds a permission to a file
func (s *GoogleDriveService) CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error {
	_, err := s.service.Permissions.Create(fileID, permission).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	return err
}

// Client implements distribution.FileStore using Google Drive API
type Client struct {
	driveService DriveService
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithDriveService sets a custom drive service (for testing)
func WithDriveService(svc DriveService) ClientOption {
	return func(c *Client) {
		c.driveService = svc
	}
}

// NewClient creates a new Google Drive client
// If no options are provided, it initializes a real Google Drive service over httpClient
func NewClient(ctx context.Context, httpClient *http.Client, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	// If no custom drive service was provided, create a real one
	if c.driveService == nil {
		srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("unable to create drive service: %w", err)
		}
		c.driveService = &GoogleDriveService{service: srv}
	}

	return c, nil
}

// FolderByName implements distribution.FileStore
func (c *Client) FolderByName(ctx context.Context, name, parentID string) (string, error) {
	query := fmt.Sprintf("mimeType = '%s' and name = '%s' and trashed = false",
		distribution.MimeTypeFolder, escapeQuery(name))
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", escapeQuery(parentID))
	}

	files, err := c.driveService.ListFiles(ctx, query, "id, name")
	if err != nil {
		return "", fmt.Errorf("failed to find folder %q: %w", name, err)
	}
	for _, f := range files {
		// the query matches on name already; guard against API-side normalisation
		if f.Name == name {
			return f.Id, nil
		}
	}

	folder := &drive.File{Name: name, MimeType: distribution.MimeTypeFolder}
	if parentID != "" {
		folder.Parents = []string{parentID}
	}
	created, err := c.driveService.CreateFile(ctx, folder, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create folder %q: %w", name, err)
	}
	return created.Id, nil
}

// CopyFile implements distribution.FileStore
func (c *Client) CopyFile(ctx context.Context, fileID, name, folderID string) (string, error) {
	file := &drive.File{Name: name}
	if folderID != "" {
		file.Parents = []string{folderID}
	}
	copied, err := c.driveService.CopyFile(ctx, fileID, file)
	if err != nil {
		return "", fmt.Errorf("failed to copy %s: %w", fileID, err)
	}
	return copied.Id, nil
}

// SaveFile implements distribution.FileStore
func (c *Client) SaveFile(ctx context.Context, req distribution.SaveRequest) (*distribution.File, error) {
	if len(req.Content) == 0 {
		return nil, distribution.ErrEmptyContent
	}

	file := &drive.File{Name: req.Name, MimeType: req.MimeType}
	if req.FolderID != "" {
		file.Parents = []string{req.FolderID}
	}

	created, err := c.driveService.CreateFile(ctx, file, bytes.NewReader(req.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to save %q: %w", req.Name, err)
	}

	url := created.WebViewLink
	if url == "" {
		url = fileURL(created.Id)
	}
	return &distribution.File{ID: created.Id, Name: created.Name, URL: url}, nil
}

// Share implements distribution.FileStore
func (c *Client) Share(ctx context.Context, fileID string, access distribution.Access) error {
	perm := &drive.Permission{Type: "anyone", Role: string(access)}
	if err := c.driveService.CreatePermission(ctx, fileID, perm); err != nil {
		return fmt.Errorf("failed to share %s: %w", fileID, err)
	}
	return nil
}

// Trash implements distribution.FileStore
func (c *Client) Trash(ctx context.Context, fileID string) error {
	if err := c.driveService.UpdateFile(ctx, fileID, &drive.File{Trashed: true}); err != nil {
		return fmt.Errorf("failed to trash %s: %w", fileID, err)
	}
	return nil
}

// fileURL is the shareable view link for a file ID
func fileURL(id string) string {
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view?usp=sharing", id)
}

// escapeQuery escapes a value for use inside a single-quoted Drive query string
func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

// Ensure Client implements distribution.FileStore
var _ distribution.FileStore = (*Client)(nil)
