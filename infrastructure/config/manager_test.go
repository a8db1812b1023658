package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestManager(t *testing.T) (*ConfigManager, *Config, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &Config{}
	return NewConfigManager(cfg, path), cfg, path
}

func TestConfigManager_DirectorCRUD(t *testing.T) {
	m, cfg, path := newTestManager(t)

	if err := m.AddDirector("cgd", "Lynne Gayer", "Club Growth Director", "cgd@district.org"); err != nil {
		t.Fatalf("AddDirector() error = %v", err)
	}
	if err := m.AddDirector("CGD", "Someone Else", "", "x@district.org"); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("AddDirector() duplicate error = %v, want ErrDuplicateKey", err)
	}
	if err := m.AddDirector("XYZ", "Name", "", "x@district.org"); !errors.Is(err, ErrUnknownIncentive) {
		t.Errorf("AddDirector() unknown code error = %v, want ErrUnknownIncentive", err)
	}
	if err := m.AddDirector("PQD", "Name", "", "not-an-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("AddDirector() invalid email error = %v, want ErrInvalidEmail", err)
	}

	d, err := m.GetDirector("cgd")
	if err != nil {
		t.Fatalf("GetDirector() error = %v", err)
	}
	if d.Code != "CGD" || d.Name != "Lynne Gayer" {
		t.Errorf("GetDirector() = %+v", d)
	}

	if err := m.UpdateDirector("CGD", "", "Growth Lead", ""); err != nil {
		t.Fatalf("UpdateDirector() error = %v", err)
	}
	if got := cfg.Incentives.Directors["CGD"]; got.Title != "Growth Lead" || got.Name != "Lynne Gayer" {
		t.Errorf("after update = %+v", got)
	}

	// persisted
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reloaded.Incentives.Directors["CGD"].Title != "Growth Lead" {
		t.Errorf("reloaded director = %+v", reloaded.Incentives.Directors["CGD"])
	}

	if got := len(m.ListDirectors()); got != 1 {
		t.Errorf("ListDirectors() len = %d, want 1", got)
	}
	if err := m.RemoveDirector("cgd"); err != nil {
		t.Fatalf("RemoveDirector() error = %v", err)
	}
	if _, err := m.GetDirector("CGD"); !errors.Is(err, ErrDirectorNotFound) {
		t.Errorf("GetDirector() after remove error = %v", err)
	}
	if err := m.UpdateDirector("CGD", "x", "", ""); !errors.Is(err, ErrDirectorNotFound) {
		t.Errorf("UpdateDirector() missing error = %v", err)
	}
}

func TestConfigManager_FailureRecipientCRUD(t *testing.T) {
	m, cfg, _ := newTestManager(t)

	if err := m.AddFailureRecipient("Ops", "Ops Desk", "ops@district.org"); err != nil {
		t.Fatalf("AddFailureRecipient() error = %v", err)
	}
	if err := m.AddFailureRecipient("ops", "Again", "again@district.org"); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("duplicate error = %v, want ErrDuplicateKey", err)
	}
	if err := m.AddFailureRecipient("lead", "Lead", "lead@"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("invalid email error = %v, want ErrInvalidEmail", err)
	}
	if err := m.AddFailureRecipient("lead", "Team Lead", "lead@district.org"); err != nil {
		t.Fatalf("AddFailureRecipient() error = %v", err)
	}

	list := m.ListFailureRecipients()
	if len(list) != 2 || list[0].Key != "ops" || list[1].Key != "lead" {
		t.Errorf("ListFailureRecipients() = %+v", list)
	}

	if err := m.UpdateFailureRecipient("OPS", "", "desk@district.org"); err != nil {
		t.Fatalf("UpdateFailureRecipient() error = %v", err)
	}
	if cfg.Email.FailureRecipients[0].Address != "desk@district.org" || cfg.Email.FailureRecipients[0].Name != "Ops Desk" {
		t.Errorf("after update = %+v", cfg.Email.FailureRecipients[0])
	}

	if err := m.RemoveFailureRecipient("ops"); err != nil {
		t.Fatalf("RemoveFailureRecipient() error = %v", err)
	}
	if _, _, err := m.GetFailureRecipient("ops"); !errors.Is(err, ErrRecipientNotFound) {
		t.Errorf("GetFailureRecipient() after remove error = %v", err)
	}
	if len(cfg.Email.FailureRecipients) != 1 || cfg.Email.FailureRecipients[0].Key != "lead" {
		t.Errorf("remaining = %+v", cfg.Email.FailureRecipients)
	}
}

func TestConfigManager_SetSharedMailbox(t *testing.T) {
	m, cfg, _ := newTestManager(t)
	if err := m.SetSharedMailbox("bad"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("SetSharedMailbox(bad) error = %v", err)
	}
	if err := m.SetSharedMailbox(" box@district.org "); err != nil {
		t.Fatalf("SetSharedMailbox() error = %v", err)
	}
	if cfg.Incentives.SharedMailbox != "box@district.org" {
		t.Errorf("SharedMailbox = %q", cfg.Incentives.SharedMailbox)
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@b.org", true},
		{"", false},
		{"@b.org", false},
		{"a@b", false},
		{"a@.org", false},
		{"a@b.", false},
	}
	for _, tt := range tests {
		if got := isValidEmail(tt.email); got != tt.want {
			t.Errorf("isValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}
