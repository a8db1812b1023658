package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"net/mail"
	"strings"
	"testing"

	"club-incentives/domain/notification"

	"google.golang.org/api/gmail/v1"
)

// mockGmailService is a mock implementation for testing
type mockGmailService struct {
	sentMessages []*gmail.Message
	shouldFail   bool
	failError    error
}

func (m *mockGmailService) SendMessage(ctx context.Context, userID string, message *gmail.Message) (*gmail.Message, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	m.sentMessages = append(m.sentMessages, message)
	return &gmail.Message{Id: "test-message-id"}, nil
}

func newTestClient(t *testing.T, mock *mockGmailService) *Client {
	t.Helper()
	from := notification.Recipient{Name: "District Incentives Team", Address: "incentives@district.org"}
	c, err := NewClient(context.Background(), nil, from, WithGmailService(mock))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func certificateEmail() *notification.Email {
	return &notification.Email{
		To: []notification.Recipient{
			{Address: "president@rotary.org"},
			{Name: "Tina Treasurer", Address: "treasurer@rotary.org"},
		},
		CC:       []notification.Recipient{{Address: "division@district.org"}},
		BCC:      []notification.Recipient{{Address: "mailbox@district.org"}},
		Subject:  notification.Subject("Rotary", "Smedley"),
		HTMLBody: "<h2>Hello Rotary,</h2>",
	}
}

func TestClient_Send(t *testing.T) {
	mock := &mockGmailService{}
	client := newTestClient(t, mock)

	if err := client.Send(context.Background(), certificateEmail()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(mock.sentMessages) != 1 {
		t.Fatalf("expected 1 message sent, got %d", len(mock.sentMessages))
	}

	rawBytes, err := decodeBase64URL(mock.sentMessages[0].Raw)
	if err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}

	msg, err := mail.ReadMessage(strings.NewReader(string(rawBytes)))
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	headers := map[string]string{
		"From": "District Incentives Team <incentives@district.org>",
		"To":   "president@rotary.org, Tina Treasurer <treasurer@rotary.org>",
		"Cc":   "division@district.org",
		"Bcc":  "mailbox@district.org",
	}
	for key, want := range headers {
		if got := msg.Header.Get(key); got != want {
			t.Errorf("header %s = %q, want %q", key, got, want)
		}
	}

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	if err != nil {
		t.Fatalf("DecodeHeader() error = %v", err)
	}
	if subject != notification.Subject("Rotary", "Smedley") {
		t.Errorf("Subject = %q", subject)
	}

	encoded, err := io.ReadAll(msg.Body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	body, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	if err != nil {
		t.Fatalf("body decode error = %v", err)
	}
	if string(body) != "<h2>Hello Rotary,</h2>" {
		t.Errorf("body = %q", body)
	}
}

func TestClient_Send_NoCCorBCC(t *testing.T) {
	mock := &mockGmailService{}
	client := newTestClient(t, mock)

	email := certificateEmail()
	email.CC = nil
	email.BCC = nil
	if err := client.Send(context.Background(), email); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	rawBytes, _ := decodeBase64URL(mock.sentMessages[0].Raw)
	raw := string(rawBytes)
	if strings.Contains(raw, "Cc:") || strings.Contains(raw, "Bcc:") {
		t.Errorf("message should not carry Cc/Bcc headers:\n%s", raw)
	}
}

func TestClient_Send_ValidationError(t *testing.T) {
	mock := &mockGmailService{}
	client := newTestClient(t, mock)

	email := certificateEmail()
	email.To = nil

	err := client.Send(context.Background(), email)
	if !errors.Is(err, notification.ErrNoRecipients) {
		t.Fatalf("Send() error = %v, want ErrNoRecipients", err)
	}
	if len(mock.sentMessages) != 0 {
		t.Error("no message should be sent for an invalid email")
	}
}

func TestClient_Send_APIError(t *testing.T) {
	mock := &mockGmailService{shouldFail: true, failError: errors.New("quota exceeded")}
	client := newTestClient(t, mock)

	err := client.Send(context.Background(), certificateEmail())
	if !errors.Is(err, notification.ErrSendFailed) {
		t.Errorf("Send() error = %v, want ErrSendFailed", err)
	}
}

func TestWrapBase64(t *testing.T) {
	in := strings.Repeat("a", 160)
	lines := strings.Split(strings.TrimSuffix(wrapBase64(in), "\r\n"), "\r\n")
	if len(lines) != 3 || len(lines[0]) != 76 || len(lines[2]) != 8 {
		t.Errorf("wrapBase64 lines = %d (%d, %d)", len(lines), len(lines[0]), len(lines[len(lines)-1]))
	}
}

// decodeBase64URL decodes a base64 URL encoded string
func decodeBase64URL(s string) ([]byte, error) {
	return base64.URLEncoding.DecodeString(s)
}
