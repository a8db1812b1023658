package distribution

import "context"

// FileStore defines the interface for the file storage that holds certificates
// and submission spreadsheets.
// This is a port that can be implemented by different infrastructure adapters
type FileStore interface {
	// FolderByName returns the ID of the folder with exactly this name under parentID,
	// creating it if none exists. An empty parentID means the storage root.
	FolderByName(ctx context.Context, name, parentID string) (string, error)

	// CopyFile copies fileID into folderID under a new name and returns the copy's ID
	CopyFile(ctx context.Context, fileID, name, folderID string) (string, error)

	// SaveFile stores content as a new file in folderID
	SaveFile(ctx context.Context, req SaveRequest) (*File, error)

	// Share grants anyone holding the link the given access to a file
	Share(ctx context.Context, fileID string, access Access) error

	// Trash moves a file to the trash
	Trash(ctx context.Context, fileID string) error
}

// SaveRequest contains the parameters needed to store a new file
type SaveRequest struct {
	FolderID string
	Name     string
	MimeType string
	Content  []byte
}

// File is a stored file and its public link
type File struct {
	ID   string
	Name string
	URL  string
}

// Access is the permission granted through a shared link
type Access string

const (
	AccessView Access = "reader"
	AccessEdit Access = "writer"
)

// MIME type constants for stored files
const (
	MimeTypePNG    = "image/png"
	MimeTypeFolder = "application/vnd.google-apps.folder"
)
