//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"club-incentives/cmd"
	"club-incentives/infrastructure/config"

	"github.com/cucumber/godog"
)

type setupContext struct {
	tempDir         string
	configPath      string
	originalContent string
}

var SharedSetupContext = &setupContext{}

// MockPrompter implements cmd.Prompter for testing
type MockPrompter struct {
	inputResponses   []string
	confirmResponses []bool
	selectResponse   string
	inputIndex       int
	confirmIndex     int
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		if defaultValue != "" {
			return defaultValue, nil
		}
		return "", fmt.Errorf("no more input responses available for message: %s", message)
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return false, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

func (m *MockPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	if m.selectResponse == "" {
		return defaultValue, nil
	}
	return m.selectResponse, nil
}

var _ cmd.Prompter = (*MockPrompter)(nil)

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedSetupContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config", "config.yaml")
		testCtx.originalContent = ""
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a config file already exists for setup$`, testCtx.aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run setup with auth mode "([^"]*)" and inputs:$`, testCtx.iRunSetupWithInputs)
	ctx.Step(`^I run setup and decline to overwrite$`, testCtx.iRunSetupAndDeclineToOverwrite)
	ctx.Step(`^the setup config should have form responses "([^"]*)" on sheet "([^"]*)"$`, testCtx.theSetupConfigShouldHaveFormResponses)
	ctx.Step(`^the setup config should have director "([^"]*)" at "([^"]*)"$`, testCtx.theSetupConfigShouldHaveDirector)
	ctx.Step(`^the setup config should have auth mode "([^"]*)"$`, testCtx.theSetupConfigShouldHaveAuthMode)
	ctx.Step(`^the existing config should be unchanged$`, testCtx.theExistingConfigShouldBeUnchanged)
}

func (s *setupContext) aConfigFileAlreadyExistsForSetup() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}
	s.originalContent = "email:\n  from_name: Existing\n"
	return os.WriteFile(s.configPath, []byte(s.originalContent), 0644)
}

func (s *setupContext) iRunSetupWithInputs(mode string, table *godog.Table) error {
	var inputs []string
	for _, row := range table.Rows {
		inputs = append(inputs, row.Cells[0].Value)
	}
	prompter := &MockPrompter{inputResponses: inputs, selectResponse: mode}
	last.err = cmd.RunSetupWithPrompter(prompter, s.configPath, last.output)
	return nil
}

func (s *setupContext) iRunSetupAndDeclineToOverwrite() error {
	prompter := &MockPrompter{confirmResponses: []bool{false}}
	last.err = cmd.RunSetupWithPrompter(prompter, s.configPath, last.output)
	return nil
}

func (s *setupContext) load() (*config.Config, error) {
	return config.Load(s.configPath)
}

func (s *setupContext) theSetupConfigShouldHaveFormResponses(id, sheetName string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	got := cfg.Sheets.FormResponses
	if got.SpreadsheetID != id || got.SheetName != sheetName {
		return fmt.Errorf("form responses = %+v, want %s/%s", got, id, sheetName)
	}
	return nil
}

func (s *setupContext) theSetupConfigShouldHaveDirector(code, email string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if got := cfg.Incentives.Directors[code].Address; got != email {
		return fmt.Errorf("director %s = %q, want %q", code, got, email)
	}
	return nil
}

func (s *setupContext) theSetupConfigShouldHaveAuthMode(mode string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Google.AuthMode != mode {
		return fmt.Errorf("auth mode = %q, want %q", cfg.Google.AuthMode, mode)
	}
	return nil
}

func (s *setupContext) theExistingConfigShouldBeUnchanged() error {
	b, err := os.ReadFile(s.configPath)
	if err != nil {
		return err
	}
	if string(b) != s.originalContent {
		return fmt.Errorf("config was modified:\n%s", b)
	}
	return nil
}
