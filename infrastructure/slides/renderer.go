// Package slides renders certificates from a Google Slides template.
package slides

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"club-incentives/domain/certificate"
	"club-incentives/domain/distribution"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/slides/v1"
)

// ErrNoSlides is returned when the template presentation has no slides
var ErrNoSlides = errors.New("presentation has no slides")

// SlidesService defines the interface for Google Slides API operations
// This allows mocking the Google Slides API in tests
type SlidesService interface {
	FirstSlideID(ctx context.Context, presentationID string) (string, error)
	BatchUpdate(ctx context.Context, presentationID string, requests []*slides.Request) error
	ThumbnailURL(ctx context.Context, presentationID, pageID string) (string, error)
}

// GoogleSlidesService is the production implementation using the Google Slides API
type GoogleSlidesService struct {
	service *slides.Service
}

// FirstSlideID returns the object ID of the first slide
func (s *GoogleSlidesService) FirstSlideID(ctx context.Context, presentationID string) (string, error) {
	p, err := s.service.Presentations.Get(presentationID).
		Fields(googleapi.Field("slides(objectId)")).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if len(p.Slides) == 0 {
		return "", ErrNoSlides
	}
	return p.Slides[0].ObjectId, nil
}

// BatchUpdate applies requests to a presentation
func (s *GoogleSlidesService) BatchUpdate(ctx context.Context, presentationID string, requests []*slides.Request) error {
	_, err := s.service.Presentations.BatchUpdate(presentationID, &slides.BatchUpdatePresentationRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}

// ThumbnailURL renders a page to PNG and returns the short-lived content URL
func (s *GoogleSlidesService) ThumbnailURL(ctx context.Context, presentationID, pageID string) (string, error) {
	th, err := s.service.Presentations.Pages.GetThumbnail(presentationID, pageID).
		ThumbnailPropertiesMimeType("PNG").
		ThumbnailPropertiesThumbnailSize("LARGE").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	return th.ContentUrl, nil
}

// Renderer implements certificate.Renderer. Each render works on a throwaway copy of
// the template, which is trashed afterwards.
type Renderer struct {
	slidesService SlidesService
	files         distribution.FileStore
	httpClient    *http.Client
	logger        *zap.Logger
}

// RendererOption is a functional option for configuring Renderer
type RendererOption func(*Renderer)

// WithSlidesService sets a custom slides service (for testing)
func WithSlidesService(svc SlidesService) RendererOption {
	return func(r *Renderer) {
		r.slidesService = svc
	}
}

// WithLogger sets the logger used for cleanup warnings
func WithLogger(logger *zap.Logger) RendererOption {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// NewRenderer creates a renderer that copies templates through files and
// downloads thumbnails with httpClient
func NewRenderer(ctx context.Context, httpClient *http.Client, files distribution.FileStore, opts ...RendererOption) (*Renderer, error) {
	r := &Renderer{
		files:      files,
		httpClient: httpClient,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.slidesService == nil {
		srv, err := slides.NewService(ctx, option.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("unable to create slides service: %w", err)
		}
		r.slidesService = &GoogleSlidesService{service: srv}
	}
	if r.httpClient == nil {
		r.httpClient = http.DefaultClient
	}

	return r, nil
}

// RenderImage implements certificate.Renderer
func (r *Renderer) RenderImage(ctx context.Context, templateID string, substitutions map[string]string) ([]byte, error) {
	if templateID == "" {
		return nil, certificate.ErrNoTemplate
	}

	copyID, err := r.files.CopyFile(ctx, templateID, "certificate render", "")
	if err != nil {
		return nil, fmt.Errorf("failed to copy template: %w", err)
	}
	defer func() {
		if err := r.files.Trash(context.WithoutCancel(ctx), copyID); err != nil {
			r.logger.Warn("failed to trash rendered slide copy", zap.String("file_id", copyID), zap.Error(err))
		}
	}()

	pageID, err := r.slidesService.FirstSlideID(ctx, copyID)
	if err != nil {
		return nil, fmt.Errorf("failed to read template slides: %w", err)
	}

	if reqs := replaceRequests(pageID, substitutions); len(reqs) > 0 {
		if err := r.slidesService.BatchUpdate(ctx, copyID, reqs); err != nil {
			return nil, fmt.Errorf("failed to substitute placeholders: %w", err)
		}
	}

	url, err := r.slidesService.ThumbnailURL(ctx, copyID, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to render thumbnail: %w", err)
	}

	return r.download(ctx, url)
}

func (r *Renderer) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download thumbnail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download thumbnail: HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// replaceRequests builds one ReplaceAllText request per placeholder, in a stable order
func replaceRequests(pageID string, substitutions map[string]string) []*slides.Request {
	keys := make([]string, 0, len(substitutions))
	for k := range substitutions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	reqs := make([]*slides.Request, 0, len(keys))
	for _, k := range keys {
		reqs = append(reqs, &slides.Request{
			ReplaceAllText: &slides.ReplaceAllTextRequest{
				ContainsText:  &slides.SubstringMatchCriteria{Text: k, MatchCase: true},
				ReplaceText:   substitutions[k],
				PageObjectIds: []string{pageID},
				// an empty replacement must still be sent to clear the placeholder
				ForceSendFields: []string{"ReplaceText"},
			},
		})
	}
	return reqs
}

// Ensure Renderer implements certificate.Renderer
var _ certificate.Renderer = (*Renderer)(nil)
