package notification

import (
	"context"
	"fmt"
	"io"
	"time"

	"club-incentives/domain/enrichment"
	"club-incentives/domain/incentive"
	"club-incentives/domain/notification"

	"go.uber.org/zap"
)

// Directors looks up who signs the emails for an incentive type
type Directors interface {
	Director(t incentive.Type) notification.Director
}

// Service composes and dispatches certificate and failure emails
type Service struct {
	sender            notification.EmailSender
	directors         Directors
	failureRecipients []notification.Recipient
	template          string
	logger            *zap.Logger
	preview           io.Writer
	now               func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithTemplate replaces the embedded certificate email template
func WithTemplate(tmpl string) Option {
	return func(s *Service) {
		if tmpl != "" {
			s.template = tmpl
		}
	}
}

// WithFailureRecipients sets who receives verification failure reports
func WithFailureRecipients(rs []notification.Recipient) Option {
	return func(s *Service) {
		s.failureRecipients = rs
	}
}

// WithPreview writes every email to w instead of sending it
func WithPreview(w io.Writer) Option {
	return func(s *Service) {
		s.preview = w
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock sets the time used for {{CURRENT_DATE}} and {{CURRENT_YEAR}}
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new notification service
func NewService(sender notification.EmailSender, directors Directors, opts ...Option) *Service {
	s := &Service{
		sender:    sender,
		directors: directors,
		template:  notification.DefaultTemplate,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summary counts what happened to each row's certificate email
type Summary struct {
	Sent    int
	Skipped int
	Failed  int
}

// Compose builds the certificate email for one row.
// It returns notification.ErrNoRecipients when the row has no club officer address.
func (s *Service) Compose(headers []string, row *enrichment.Row) (*notification.Email, error) {
	recipients := notification.RecipientsForRow(row, row.IncentiveType)
	if len(recipients.To) == 0 {
		return nil, fmt.Errorf("%w: no officer address for %q", notification.ErrNoRecipients, row.ClubName)
	}

	body := notification.RenderHTML(s.template, notification.TemplateData{
		Headers:  headers,
		Row:      row,
		Director: s.directors.Director(row.IncentiveType),
		Now:      s.now(),
	})

	return &notification.Email{
		To:       recipients.To,
		CC:       recipients.CC,
		BCC:      recipients.BCC,
		Subject:  notification.Subject(row.ClubName, row.Text(incentive.ColumnAwardName)),
		HTMLBody: body,
	}, nil
}

// SendCertificates sends one email per row. Rows without officer addresses are
// skipped and send failures are logged; neither stops the remaining rows.
func (s *Service) SendCertificates(ctx context.Context, headers []string, rows []*enrichment.Row) Summary {
	var sum Summary
	for _, row := range rows {
		email, err := s.Compose(headers, row)
		if err != nil {
			sum.Skipped++
			s.logger.Warn("skipping certificate email",
				zap.Int("row", row.SheetRow),
				zap.String("club", row.ClubName),
				zap.Error(err),
			)
			continue
		}

		if err := s.dispatch(ctx, email); err != nil {
			sum.Failed++
			s.logger.Error("certificate email failed",
				zap.Int("row", row.SheetRow),
				zap.String("club", row.ClubName),
				zap.Error(err),
			)
			continue
		}
		sum.Sent++
		s.logger.Info("certificate email sent",
			zap.Int("row", row.SheetRow),
			zap.String("club", row.ClubName),
			zap.Int("to", len(email.To)),
		)
	}
	return sum
}

// SendFailureReport tells the configured failure recipients that a submission was held back
func (s *Service) SendFailureReport(ctx context.Context, submissionRow int, spreadsheetURL string, defects []string) error {
	if len(s.failureRecipients) == 0 {
		return fmt.Errorf("%w: no failure recipients configured", notification.ErrNoRecipients)
	}
	email := notification.FailureReport(submissionRow, spreadsheetURL, defects, s.failureRecipients)
	if err := s.dispatch(ctx, email); err != nil {
		return err
	}
	s.logger.Info("failure report sent",
		zap.Int("submission_row", submissionRow),
		zap.Int("defects", len(defects)),
	)
	return nil
}

func (s *Service) dispatch(ctx context.Context, email *notification.Email) error {
	if s.preview != nil {
		if err := email.Validate(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(s.preview, "%s\n\n", notification.Preview(email))
		return err
	}
	return s.sender.Send(ctx, email)
}
