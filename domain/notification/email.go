package notification

import "context"

// Recipient represents an email recipient with name and address
type Recipient struct {
	Name    string
	Address string
}

// Email is a rendered message ready for dispatch
type Email struct {
	To      []Recipient // Primary recipients
	CC      []Recipient // Carbon copy recipients
	BCC     []Recipient // Blind carbon copy recipients
	Subject string
	// HTMLBody is the full HTML document
	HTMLBody string
}

// Validate checks that the email has all required fields
func (e *Email) Validate() error {
	if len(e.To) == 0 {
		return ErrNoRecipients
	}
	for _, group := range [][]Recipient{e.To, e.CC, e.BCC} {
		for _, r := range group {
			if r.Address == "" {
				return ErrInvalidRecipient
			}
		}
	}
	if e.Subject == "" {
		return ErrNoSubject
	}
	return nil
}

// EmailSender defines the interface for sending emails
type EmailSender interface {
	Send(ctx context.Context, email *Email) error
}
