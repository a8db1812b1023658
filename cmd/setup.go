package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"club-incentives/domain/incentive"
	"club-incentives/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

var errPromptCancelled = errors.New("prompt cancelled")

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command walks through Google credentials, the form responses and
reference sheets, the certificate template, the sender identity, the
incentives directors and the failure report recipients.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, cfgFile, os.Stdout)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out io.Writer) error {
	if configPath == "" {
		configPath = config.DefaultPath
	}
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm(filepath.Base(configPath)+" already exists. Overwrite?", false)
		if err != nil {
			return errPromptCancelled
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to club-incentives setup!")
	fmt.Fprintln(out)

	cfg := &config.Config{}
	steps := []func(Prompter, *config.Config) error{
		promptGoogle,
		promptSheets,
		promptCertificate,
		promptEmail,
		promptDirectors,
		promptFailureRecipients,
	}
	for _, step := range steps {
		if err := step(prompter, cfg); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	if cfg.Google.AuthMode == config.AuthModeOAuth {
		fmt.Fprintln(out, "Next, run 'club-incentives auth' to authorise Google access.")
	}
	return nil
}

// ask prompts for a value; an empty answer falls back to def, and is an error when required
func ask(prompter Prompter, message, def string, required bool) (string, error) {
	v, err := prompter.Input(message, def)
	if err != nil {
		return "", errPromptCancelled
	}
	if v == "" {
		v = def
	}
	if v == "" && required {
		return "", fmt.Errorf("%s is required", message)
	}
	return v, nil
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	credentials, err := ask(prompter, "Path to Google credentials file?", "credentials.json", true)
	if err != nil {
		return err
	}
	cfg.Google.CredentialsFile = credentials

	mode, err := prompter.Select("How should Google APIs be authorised?",
		[]string{config.AuthModeOAuth, config.AuthModeServiceAccount}, config.AuthModeOAuth)
	if err != nil {
		return errPromptCancelled
	}
	cfg.Google.AuthMode = mode

	if mode == config.AuthModeOAuth {
		token, err := ask(prompter, "Where should the OAuth token be stored?", "config/token.json", true)
		if err != nil {
			return err
		}
		cfg.Google.TokenFile = token
	}
	return nil
}

func promptSheetRef(prompter Prompter, label, defaultSheet string) (config.SheetRef, error) {
	id, err := ask(prompter, label+" spreadsheet ID?", "", true)
	if err != nil {
		return config.SheetRef{}, err
	}
	name, err := ask(prompter, "  Sheet name:", defaultSheet, true)
	if err != nil {
		return config.SheetRef{}, err
	}
	return config.SheetRef{SpreadsheetID: id, SheetName: name}, nil
}

func promptSheets(prompter Prompter, cfg *config.Config) error {
	var err error
	if cfg.Sheets.FormResponses, err = promptSheetRef(prompter, "Form responses", "Form Responses 1"); err != nil {
		return err
	}
	if cfg.Sheets.Officers, err = promptSheetRef(prompter, "Club officers", "Officers"); err != nil {
		return err
	}
	if cfg.Sheets.DistrictLeaders, err = promptSheetRef(prompter, "District leaders", "District Leaders"); err != nil {
		return err
	}
	return nil
}

func promptCertificate(prompter Prompter, cfg *config.Config) error {
	template, err := ask(prompter, "Google Slides certificate template ID?", "", true)
	if err != nil {
		return err
	}
	cfg.Certificate.SlideTemplateID = template

	parent, err := ask(prompter, "Drive folder ID for certificate folders? (blank for My Drive)", "", false)
	if err != nil {
		return err
	}
	cfg.Certificate.ParentFolderID = parent
	return nil
}

func promptEmail(prompter Prompter, cfg *config.Config) error {
	fromName, err := ask(prompter, "Display name for outgoing emails?", "", true)
	if err != nil {
		return err
	}
	cfg.Email.FromName = fromName

	fromAddress, err := ask(prompter, "Gmail address to send from?", "", true)
	if err != nil {
		return err
	}
	cfg.Email.FromAddress = fromAddress

	mailbox, err := ask(prompter, "Shared incentives mailbox copied on every email?", "", false)
	if err != nil {
		return err
	}
	cfg.Incentives.SharedMailbox = mailbox
	return nil
}

func promptDirectors(prompter Prompter, cfg *config.Config) error {
	cfg.Incentives.Directors = make(map[string]config.DirectorConfig)
	for _, t := range []incentive.Type{incentive.ClubGrowth, incentive.ProgramQuality} {
		name, err := ask(prompter, fmt.Sprintf("%s director full name?", t), "", true)
		if err != nil {
			return err
		}
		title, err := ask(prompter, "  Title:", "", false)
		if err != nil {
			return err
		}
		address, err := ask(prompter, "  Email:", "", true)
		if err != nil {
			return err
		}
		cfg.Incentives.Directors[string(t)] = config.DirectorConfig{Name: name, Title: title, Address: address}
	}
	return nil
}

func promptFailureRecipients(prompter Prompter, cfg *config.Config) error {
	cfg.Email.FailureRecipients = []config.RecipientConfig{}
	for {
		more, err := prompter.Confirm("Add a failure report recipient?", len(cfg.Email.FailureRecipients) == 0)
		if err != nil {
			return errPromptCancelled
		}
		if !more {
			return nil
		}

		key, err := ask(prompter, "  Key:", "", true)
		if err != nil {
			return err
		}
		name, err := ask(prompter, "  Full name:", "", true)
		if err != nil {
			return err
		}
		address, err := ask(prompter, "  Email:", "", true)
		if err != nil {
			return err
		}
		cfg.Email.FailureRecipients = append(cfg.Email.FailureRecipients, config.RecipientConfig{
			Key:     key,
			Name:    name,
			Address: address,
		})
	}
}
