// Package certificate renders, files and shares one certificate per enriched row.
package certificate

import (
	"context"
	"fmt"

	"club-incentives/domain/certificate"
	"club-incentives/domain/distribution"
	"club-incentives/domain/enrichment"

	"go.uber.org/zap"
)

// Service produces certificate images and stores them in award folders
type Service struct {
	renderer       certificate.Renderer
	files          distribution.FileStore
	inspector      certificate.Inspector
	templateID     string
	parentFolderID string
	minWidth       int
	logger         *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithParentFolder files award folders under the given folder instead of the storage root
func WithParentFolder(folderID string) Option {
	return func(s *Service) {
		s.parentFolderID = folderID
	}
}

// WithInspector checks every rendered image before it is saved
func WithInspector(inspector certificate.Inspector, minWidth int) Option {
	return func(s *Service) {
		s.inspector = inspector
		s.minWidth = minWidth
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a certificate service for a slide template
func NewService(renderer certificate.Renderer, files distribution.FileStore, templateID string, opts ...Option) *Service {
	s := &Service{
		renderer:   renderer,
		files:      files,
		templateID: templateID,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate renders the certificate for one row and returns its outcome.
// A failure is logged and carried in the outcome as a *certificate.RenderError;
// it never stops the caller from moving on to the next row.
func (s *Service) Generate(ctx context.Context, headers []string, row *enrichment.Row) certificate.Outcome {
	out := certificate.Outcome{SheetRow: row.SheetRow, Club: row.ClubName}

	url, err := s.generate(ctx, headers, row)
	if err != nil {
		out.Err = &certificate.RenderError{Row: row.SheetRow, Club: row.ClubName, Err: err}
		s.logger.Error("certificate generation failed",
			zap.Int("row", row.SheetRow),
			zap.String("club", row.ClubName),
			zap.Error(err),
		)
		return out
	}

	out.URL = url
	s.logger.Info("certificate generated",
		zap.Int("row", row.SheetRow),
		zap.String("club", row.ClubName),
		zap.String("url", url),
	)
	return out
}

func (s *Service) generate(ctx context.Context, headers []string, row *enrichment.Row) (string, error) {
	if s.templateID == "" {
		return "", certificate.ErrNoTemplate
	}

	folderID, err := s.files.FolderByName(ctx, certificate.FolderName(row), s.parentFolderID)
	if err != nil {
		return "", fmt.Errorf("failed to get award folder: %w", err)
	}

	png, err := s.renderer.RenderImage(ctx, s.templateID, certificate.Substitutions(headers, row))
	if err != nil {
		return "", fmt.Errorf("failed to render: %w", err)
	}

	if s.inspector != nil {
		inspection, err := s.inspector.Inspect(png)
		if err != nil {
			return "", fmt.Errorf("failed to inspect image: %w", err)
		}
		if err := inspection.Check(s.minWidth); err != nil {
			return "", err
		}
	}

	file, err := s.files.SaveFile(ctx, distribution.SaveRequest{
		FolderID: folderID,
		Name:     certificate.FileName(row.ClubName),
		MimeType: distribution.MimeTypePNG,
		Content:  png,
	})
	if err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	if err := s.files.Share(ctx, file.ID, distribution.AccessView); err != nil {
		return "", fmt.Errorf("failed to share image: %w", err)
	}

	return file.URL, nil
}
