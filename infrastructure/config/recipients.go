package config

import (
	"club-incentives/domain/incentive"
	"club-incentives/domain/notification"
	"club-incentives/domain/reference"
	"club-incentives/domain/sheet"
)

// Ref converts the configured location to a sheet reference
func (r SheetRef) Ref() sheet.Ref {
	return sheet.Ref{SpreadsheetID: r.SpreadsheetID, SheetName: r.SheetName}
}

// Policy builds the configured role addresses used when resolving district leaders
func (c *Config) Policy() reference.Policy {
	emails := make(map[incentive.Type]string, len(c.Incentives.Directors))
	for code, d := range c.Incentives.Directors {
		emails[incentive.ParseType(code)] = d.Address
	}
	return reference.Policy{
		DirectorEmails: emails,
		SharedMailbox:  c.Incentives.SharedMailbox,
	}
}

// Director returns who signs certificate emails for an incentive type.
// A type without a configured director yields a zero Director.
func (c *Config) Director(t incentive.Type) notification.Director {
	for code, d := range c.Incentives.Directors {
		if incentive.ParseType(code) == t {
			return notification.Director{Name: d.Name, Title: d.Title, Address: d.Address}
		}
	}
	return notification.Director{}
}

// FailureRecipients returns who receives verification failure reports
func (c *Config) FailureRecipients() []notification.Recipient {
	out := make([]notification.Recipient, 0, len(c.Email.FailureRecipients))
	for _, rc := range c.Email.FailureRecipients {
		if rc.Address == "" {
			continue
		}
		out = append(out, notification.Recipient{Name: rc.Name, Address: rc.Address})
	}
	return out
}

// Sender returns the From identity for outgoing email
func (c *Config) Sender() notification.Recipient {
	return notification.Recipient{Name: c.Email.FromName, Address: c.Email.FromAddress}
}
