package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"club-incentives/domain/incentive"
)

// Errors for config management
var (
	ErrDirectorNotFound  = errors.New("director not found")
	ErrRecipientNotFound = errors.New("failure recipient not found")
	ErrDuplicateKey      = errors.New("key already exists")
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrUnknownIncentive  = errors.New("unknown incentive code")
	ErrMissingSetting    = errors.New("missing required setting")
	ErrInvalidSetting    = errors.New("invalid setting")
)

// ConfigManager provides CRUD operations for config entries
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Director represents an incentives director entry
type Director struct {
	Code    string
	Name    string
	Title   string
	Address string
}

// Recipient represents a failure recipient entry
type Recipient struct {
	Key     string
	Name    string
	Address string
}

// --- Director CRUD ---

func directorCode(code string) (string, error) {
	t := incentive.ParseType(code)
	if !t.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownIncentive, code)
	}
	return string(t), nil
}

// AddDirector sets the director for an incentive code that has none yet
func (m *ConfigManager) AddDirector(code, name, title, email string) error {
	code, err := directorCode(code)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	title = strings.TrimSpace(title)
	email = strings.TrimSpace(email)

	if name == "" {
		return fmt.Errorf("director name is required")
	}
	if !isValidEmail(email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	if m.config.Incentives.Directors == nil {
		m.config.Incentives.Directors = make(map[string]DirectorConfig)
	}

	if _, exists := m.config.Incentives.Directors[code]; exists {
		return fmt.Errorf("%w: director %q", ErrDuplicateKey, code)
	}

	m.config.Incentives.Directors[code] = DirectorConfig{Name: name, Title: title, Address: email}
	return Save(m.config, m.configPath)
}

// ListDirectors returns all directors ordered by code
func (m *ConfigManager) ListDirectors() []Director {
	result := make([]Director, 0, len(m.config.Incentives.Directors))
	for code, dc := range m.config.Incentives.Directors {
		result = append(result, Director{
			Code:    code,
			Name:    dc.Name,
			Title:   dc.Title,
			Address: dc.Address,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result
}

// GetDirector gets the director for a code (case-insensitive)
func (m *ConfigManager) GetDirector(code string) (Director, error) {
	key := strings.ToUpper(strings.TrimSpace(code))
	if dc, exists := m.config.Incentives.Directors[key]; exists {
		return Director{Code: key, Name: dc.Name, Title: dc.Title, Address: dc.Address}, nil
	}
	return Director{}, fmt.Errorf("%w: %q", ErrDirectorNotFound, key)
}

// RemoveDirector removes the director for a code
func (m *ConfigManager) RemoveDirector(code string) error {
	key := strings.ToUpper(strings.TrimSpace(code))
	if _, exists := m.config.Incentives.Directors[key]; !exists {
		return fmt.Errorf("%w: %q", ErrDirectorNotFound, key)
	}

	delete(m.config.Incentives.Directors, key)
	return Save(m.config, m.configPath)
}

// UpdateDirector updates a director's name, title and/or email
func (m *ConfigManager) UpdateDirector(code, name, title, email string) error {
	key := strings.ToUpper(strings.TrimSpace(code))

	dc, exists := m.config.Incentives.Directors[key]
	if !exists {
		return fmt.Errorf("%w: %q", ErrDirectorNotFound, key)
	}

	// Update only provided values
	if name = strings.TrimSpace(name); name != "" {
		dc.Name = name
	}
	if title = strings.TrimSpace(title); title != "" {
		dc.Title = title
	}
	if email = strings.TrimSpace(email); email != "" {
		if !isValidEmail(email) {
			return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
		}
		dc.Address = email
	}

	m.config.Incentives.Directors[key] = dc
	return Save(m.config, m.configPath)
}

// --- Failure recipient CRUD ---

// AddFailureRecipient adds a recipient of verification failure reports
func (m *ConfigManager) AddFailureRecipient(key, name, email string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if key == "" {
		return fmt.Errorf("recipient key is required")
	}
	if name == "" {
		return fmt.Errorf("recipient name is required")
	}
	if !isValidEmail(email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	if _, _, err := m.GetFailureRecipient(key); err == nil {
		return fmt.Errorf("%w: failure recipient %q", ErrDuplicateKey, key)
	}

	m.config.Email.FailureRecipients = append(m.config.Email.FailureRecipients, RecipientConfig{
		Key:     key,
		Name:    name,
		Address: email,
	})
	return Save(m.config, m.configPath)
}

// ListFailureRecipients returns all failure recipients in configured order
func (m *ConfigManager) ListFailureRecipients() []Recipient {
	result := make([]Recipient, 0, len(m.config.Email.FailureRecipients))
	for _, rc := range m.config.Email.FailureRecipients {
		result = append(result, Recipient{
			Key:     rc.Key,
			Name:    rc.Name,
			Address: rc.Address,
		})
	}
	return result
}

// GetFailureRecipient gets a failure recipient and its position by key (case-insensitive)
func (m *ConfigManager) GetFailureRecipient(key string) (Recipient, int, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for i, rc := range m.config.Email.FailureRecipients {
		if strings.ToLower(rc.Key) == key {
			return Recipient{Key: rc.Key, Name: rc.Name, Address: rc.Address}, i, nil
		}
	}
	return Recipient{}, -1, fmt.Errorf("%w: %q", ErrRecipientNotFound, key)
}

// RemoveFailureRecipient removes a failure recipient by key
func (m *ConfigManager) RemoveFailureRecipient(key string) error {
	_, idx, err := m.GetFailureRecipient(key)
	if err != nil {
		return err
	}

	m.config.Email.FailureRecipients = append(
		m.config.Email.FailureRecipients[:idx],
		m.config.Email.FailureRecipients[idx+1:]...,
	)
	return Save(m.config, m.configPath)
}

// UpdateFailureRecipient updates a failure recipient's name and/or email
func (m *ConfigManager) UpdateFailureRecipient(key, name, email string) error {
	_, idx, err := m.GetFailureRecipient(key)
	if err != nil {
		return err
	}

	rc := m.config.Email.FailureRecipients[idx]

	// Update only provided values
	if name = strings.TrimSpace(name); name != "" {
		rc.Name = name
	}
	if email = strings.TrimSpace(email); email != "" {
		if !isValidEmail(email) {
			return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
		}
		rc.Address = email
	}

	m.config.Email.FailureRecipients[idx] = rc
	return Save(m.config, m.configPath)
}

// SetSharedMailbox sets the address copied on every certificate email
func (m *ConfigManager) SetSharedMailbox(email string) error {
	email = strings.TrimSpace(email)
	if !isValidEmail(email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	m.config.Incentives.SharedMailbox = email
	return Save(m.config, m.configPath)
}

// isValidEmail performs basic email validation
func isValidEmail(email string) bool {
	if email == "" {
		return false
	}
	// Basic check: contains @ and at least one . after @
	atIdx := strings.Index(email, "@")
	if atIdx < 1 {
		return false
	}
	domain := email[atIdx+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	return true
}

// SuggestAddDirectorCommand returns the command to add a missing director
func SuggestAddDirectorCommand(code string) string {
	return fmt.Sprintf(`club-incentives config add director --code %s --name "Director Name" --title "Director Title" --email "email@example.com"`, code)
}

// SuggestAddFailureRecipientCommand returns the command to add a failure recipient
func SuggestAddFailureRecipientCommand(key string) string {
	return fmt.Sprintf(`club-incentives config add failure-recipient --key %s --name "Recipient Name" --email "email@example.com"`, key)
}
