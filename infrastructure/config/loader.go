package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the config file is looked up when --config is not given
const DefaultPath = "config/config.yaml"

// Config represents the complete application configuration
type Config struct {
	Google      GoogleConfig      `yaml:"google"`
	Sheets      SheetsConfig      `yaml:"sheets"`
	Certificate CertificateConfig `yaml:"certificate"`
	Email       EmailConfig       `yaml:"email"`
	Incentives  IncentivesConfig  `yaml:"incentives"`
	Journal     JournalConfig     `yaml:"journal"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
}

// Auth modes for Google APIs
const (
	AuthModeOAuth          = "oauth"
	AuthModeServiceAccount = "service_account"
)

// GoogleConfig contains Google API settings
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	// AuthMode is "oauth" (default) or "service_account"
	AuthMode string `yaml:"auth_mode"`
}

// SheetRef names one sheet inside a spreadsheet
type SheetRef struct {
	SpreadsheetID string `yaml:"spreadsheet_id"`
	SheetName     string `yaml:"sheet_name"`
}

// SheetsConfig locates the form responses and reference tables
type SheetsConfig struct {
	FormResponses   SheetRef `yaml:"form_responses"`
	Officers        SheetRef `yaml:"officers"`
	DistrictLeaders SheetRef `yaml:"district_leaders"`
}

// CertificateConfig contains certificate rendering settings
type CertificateConfig struct {
	SlideTemplateID string `yaml:"slide_template_id"`
	ParentFolderID  string `yaml:"parent_folder_id,omitempty"`
	InspectImages   bool   `yaml:"inspect_images"`
	MinWidth        int    `yaml:"min_width,omitempty"`
}

// EmailConfig contains email notification settings
type EmailConfig struct {
	FromName          string            `yaml:"from_name"`
	FromAddress       string            `yaml:"from_address"`
	TemplateFile      string            `yaml:"template_file,omitempty"`
	FailureRecipients []RecipientConfig `yaml:"failure_recipients"`
}

// RecipientConfig represents an email recipient
type RecipientConfig struct {
	Key     string `yaml:"key,omitempty"`
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

// DirectorConfig is the Incentives Director responsible for one incentive code
type DirectorConfig struct {
	Name    string `yaml:"name"`
	Title   string `yaml:"title"`
	Address string `yaml:"address"`
}

// IncentivesConfig holds the role addresses that are not looked up from sheets
type IncentivesConfig struct {
	SharedMailbox string `yaml:"shared_mailbox"`
	// Directors is keyed by incentive code (CGD, PQD)
	Directors map[string]DirectorConfig `yaml:"directors"`
	// RequiredColumns overrides the base columns every verified row must fill
	RequiredColumns []string `yaml:"required_columns,omitempty"`
}

// JournalConfig locates the run journal
type JournalConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig contains the submission webhook settings
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// Token, when set, must accompany every trigger request
	Token string `yaml:"token,omitempty"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads and parses the configuration from the specified YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Google.AuthMode == "" {
		c.Google.AuthMode = AuthModeOAuth
	}
	if c.Google.TokenFile == "" {
		c.Google.TokenFile = "config/token.json"
	}
	if c.Journal.Path == "" {
		c.Journal.Path = "club-incentives.db"
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate reports the first setting a pipeline run cannot do without
func (c *Config) Validate() error {
	switch {
	case c.Google.CredentialsFile == "":
		return fmt.Errorf("%w: google.credentials_file", ErrMissingSetting)
	case c.Google.AuthMode != AuthModeOAuth && c.Google.AuthMode != AuthModeServiceAccount:
		return fmt.Errorf("%w: google.auth_mode %q", ErrInvalidSetting, c.Google.AuthMode)
	case c.Sheets.FormResponses.SpreadsheetID == "":
		return fmt.Errorf("%w: sheets.form_responses.spreadsheet_id", ErrMissingSetting)
	case c.Sheets.Officers.SpreadsheetID == "":
		return fmt.Errorf("%w: sheets.officers.spreadsheet_id", ErrMissingSetting)
	case c.Sheets.DistrictLeaders.SpreadsheetID == "":
		return fmt.Errorf("%w: sheets.district_leaders.spreadsheet_id", ErrMissingSetting)
	case c.Certificate.SlideTemplateID == "":
		return fmt.Errorf("%w: certificate.slide_template_id", ErrMissingSetting)
	case c.Email.FromAddress == "":
		return fmt.Errorf("%w: email.from_address", ErrMissingSetting)
	}
	return nil
}
