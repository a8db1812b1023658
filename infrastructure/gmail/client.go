package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"club-incentives/domain/notification"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailService defines the interface for Gmail API operations
// This allows mocking the Gmail API in tests
type GmailService interface {
	SendMessage(ctx context.Context, userID string, message *gmail.Message) (*gmail.Message, error)
}

// GoogleGmailService is the production implementation using the Gmail API
type GoogleGmailService struct {
	service *gmail.Service
}

// SendMessage sends an email via Gmail API
func (s *GoogleGmailService) SendMessage(ctx context.Context, userID string, message *gmail.Message) (*gmail.Message, error) {
	return s.service.Users.Messages.Send(userID, message).Context(ctx).Do()
}

// Client implements notification.EmailSender using Gmail API
type Client struct {
	gmailService GmailService
	from         notification.Recipient
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithGmailService sets a custom Gmail service (for testing)
func WithGmailService(svc GmailService) ClientOption {
	return func(c *Client) {
		c.gmailService = svc
	}
}

// NewClient creates a new Gmail client sending as from
func NewClient(ctx context.Context, httpClient *http.Client, from notification.Recipient, opts ...ClientOption) (*Client, error) {
	c := &Client{from: from}

	for _, opt := range opts {
		opt(c)
	}

	if c.gmailService == nil {
		srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("unable to create gmail service: %w", err)
		}
		c.gmailService = &GoogleGmailService{service: srv}
	}

	return c, nil
}

// Send sends an email using the Gmail API
func (c *Client) Send(ctx context.Context, email *notification.Email) error {
	if err := email.Validate(); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	message := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(c.buildMIMEMessage(email))),
	}

	if _, err := c.gmailService.SendMessage(ctx, "me", message); err != nil {
		return fmt.Errorf("%w: %v", notification.ErrSendFailed, err)
	}

	return nil
}

// buildMIMEMessage builds a RFC 2822 MIME message with a single HTML part
func (c *Client) buildMIMEMessage(email *notification.Email) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: %s\r\n", formatAddress(c.from)))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", formatAddresses(email.To)))
	if len(email.CC) > 0 {
		msg.WriteString(fmt.Sprintf("Cc: %s\r\n", formatAddresses(email.CC)))
	}
	// Gmail removes the Bcc header before delivery
	if len(email.BCC) > 0 {
		msg.WriteString(fmt.Sprintf("Bcc: %s\r\n", formatAddresses(email.BCC)))
	}

	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", email.Subject)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	msg.WriteString(wrapBase64(base64.StdEncoding.EncodeToString([]byte(email.HTMLBody))))

	return msg.String()
}

func formatAddress(r notification.Recipient) string {
	if r.Name == "" {
		return r.Address
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", r.Name), r.Address)
}

func formatAddresses(rs []notification.Recipient) string {
	addrs := make([]string, len(rs))
	for i, r := range rs {
		addrs[i] = formatAddress(r)
	}
	return strings.Join(addrs, ", ")
}

// wrapBase64 splits encoded content into 76-character lines
func wrapBase64(s string) string {
	var b strings.Builder
	for len(s) > 76 {
		b.WriteString(s[:76])
		b.WriteString("\r\n")
		s = s[76:]
	}
	b.WriteString(s)
	b.WriteString("\r\n")
	return b.String()
}

// Ensure Client implements notification.EmailSender
var _ notification.EmailSender = (*Client)(nil)
