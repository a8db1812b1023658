package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	appcert "club-incentives/application/certificate"
	appnotif "club-incentives/application/notification"
	"club-incentives/application/pipeline"
	appref "club-incentives/application/reference"
	"club-incentives/domain/history"
	"club-incentives/domain/notification"
	"club-incentives/infrastructure/config"
	"club-incentives/infrastructure/drive"
	"club-incentives/infrastructure/gmail"
	"club-incentives/infrastructure/googleauth"
	"club-incentives/infrastructure/imaging"
	"club-incentives/infrastructure/journal"
	"club-incentives/infrastructure/sheets"
	"club-incentives/infrastructure/slides"

	"go.uber.org/zap"
)

// Services are the low-level Google API services behind every adapter.
// A nil service is built from HTTPClient; tests substitute mocks.
type Services struct {
	HTTPClient *http.Client
	Sheets     sheets.SheetsService
	Drive      drive.DriveService
	Slides     slides.SlidesService
	Gmail      gmail.GmailService
}

// adapters are the port implementations built from Services
type adapters struct {
	sheets *sheets.Client
	drive  *drive.Client
	slides *slides.Renderer
	gmail  *gmail.Client
}

// productionServices authorises one HTTP client for every Google API
func productionServices(ctx context.Context, c *config.Config) (Services, error) {
	httpClient, err := googleauth.HTTPClient(ctx, googleauth.Options{
		CredentialsFile: c.Google.CredentialsFile,
		TokenFile:       c.Google.TokenFile,
		Mode:            c.Google.AuthMode,
		Output:          os.Stderr,
	})
	if err != nil {
		return Services{}, fmt.Errorf("failed to authorise Google APIs: %w", err)
	}
	return Services{HTTPClient: httpClient}, nil
}

func buildAdapters(ctx context.Context, c *config.Config, svc Services, log *zap.Logger) (*adapters, error) {
	var sheetOpts []sheets.ClientOption
	if svc.Sheets != nil {
		sheetOpts = append(sheetOpts, sheets.WithSheetsService(svc.Sheets))
	}
	sheetsClient, err := sheets.NewClient(ctx, svc.HTTPClient, sheetOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets client: %w", err)
	}

	var driveOpts []drive.ClientOption
	if svc.Drive != nil {
		driveOpts = append(driveOpts, drive.WithDriveService(svc.Drive))
	}
	driveClient, err := drive.NewClient(ctx, svc.HTTPClient, driveOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Drive client: %w", err)
	}

	slideOpts := []slides.RendererOption{slides.WithLogger(log)}
	if svc.Slides != nil {
		slideOpts = append(slideOpts, slides.WithSlidesService(svc.Slides))
	}
	renderer, err := slides.NewRenderer(ctx, svc.HTTPClient, driveClient, slideOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Slides renderer: %w", err)
	}

	var gmailOpts []gmail.ClientOption
	if svc.Gmail != nil {
		gmailOpts = append(gmailOpts, gmail.WithGmailService(svc.Gmail))
	}
	gmailClient, err := gmail.NewClient(ctx, svc.HTTPClient, c.Sender(), gmailOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail client: %w", err)
	}

	return &adapters{
		sheets: sheetsClient,
		drive:  driveClient,
		slides: renderer,
		gmail:  gmailClient,
	}, nil
}

func newCertificateService(c *config.Config, a *adapters, log *zap.Logger) *appcert.Service {
	opts := []appcert.Option{
		appcert.WithParentFolder(c.Certificate.ParentFolderID),
		appcert.WithLogger(log),
	}
	if c.Certificate.InspectImages {
		if imaging.Available() {
			opts = append(opts, appcert.WithInspector(imaging.NewInspector(), c.Certificate.MinWidth))
		} else {
			log.Warn("certificate.inspect_images is set but image inspection is not compiled in; rebuild with -tags imaging")
		}
	}
	return appcert.NewService(a.slides, a.drive, c.Certificate.SlideTemplateID, opts...)
}

// newNotifier builds the notification service; a non-nil preview writer replaces sending
func newNotifier(c *config.Config, sender notification.EmailSender, log *zap.Logger, preview io.Writer) (*appnotif.Service, error) {
	opts := []appnotif.Option{
		appnotif.WithFailureRecipients(c.FailureRecipients()),
		appnotif.WithLogger(log),
	}
	if c.Email.TemplateFile != "" {
		b, err := os.ReadFile(c.Email.TemplateFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read email template: %w", err)
		}
		opts = append(opts, appnotif.WithTemplate(string(b)))
	}
	if preview != nil {
		opts = append(opts, appnotif.WithPreview(preview))
	}
	return appnotif.NewService(sender, c, opts...), nil
}

func newPipeline(ctx context.Context, c *config.Config, svc Services, recorder history.Recorder, log *zap.Logger, output io.Writer) (*pipeline.Service, error) {
	a, err := buildAdapters(ctx, c, svc, log)
	if err != nil {
		return nil, err
	}
	notifier, err := newNotifier(c, a.gmail, log, nil)
	if err != nil {
		return nil, err
	}

	loader := appref.NewLoader(a.sheets, c.Sheets.Officers.Ref(), c.Sheets.DistrictLeaders.Ref(), c.Policy(), log)
	opts := []pipeline.Option{
		pipeline.WithLogger(log),
		pipeline.WithRequiredColumns(c.Incentives.RequiredColumns),
	}
	if recorder != nil {
		opts = append(opts, pipeline.WithRecorder(recorder))
	}

	return pipeline.NewService(
		a.sheets,
		a.sheets,
		a.drive,
		loader,
		newCertificateService(c, a, log),
		notifier,
		c.Sheets.FormResponses.Ref(),
		output,
		opts...,
	), nil
}

// openJournal opens the run journal; a journal that cannot be opened is logged and skipped
func openJournal(ctx context.Context, c *config.Config, log *zap.Logger) (history.Recorder, func()) {
	store, err := journal.Open(ctx, c.Journal.Path)
	if err != nil {
		log.Warn("run journal unavailable", zap.String("path", c.Journal.Path), zap.Error(err))
		return nil, func() {}
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close run journal", zap.Error(err))
		}
	}
}
