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

type configContext struct {
	tempDir    string
	configPath string
	config     *config.Config
}

var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config.yaml")
		testCtx.config = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a config file with director "([^"]*)" named "([^"]*)" at "([^"]*)"$`, testCtx.aConfigFileWithDirector)
	ctx.Step(`^I run config add director "([^"]*)" named "([^"]*)" titled "([^"]*)" at "([^"]*)"$`, testCtx.iRunConfigAddDirector)
	ctx.Step(`^I run config update director "([^"]*)" with email "([^"]*)"$`, testCtx.iRunConfigUpdateDirectorEmail)
	ctx.Step(`^I run config remove director "([^"]*)"$`, testCtx.iRunConfigRemoveDirector)
	ctx.Step(`^I run config add failure-recipient "([^"]*)" named "([^"]*)" at "([^"]*)"$`, testCtx.iRunConfigAddFailureRecipient)
	ctx.Step(`^I run config remove failure-recipient "([^"]*)"$`, testCtx.iRunConfigRemoveFailureRecipient)
	ctx.Step(`^I run config list ([a-z-]+)$`, testCtx.iRunConfigList)
	ctx.Step(`^I run config set shared-mailbox "([^"]*)"$`, testCtx.iRunConfigSetSharedMailbox)

	ctx.Step(`^the saved config should have director "([^"]*)" at "([^"]*)"$`, testCtx.theSavedConfigShouldHaveDirector)
	ctx.Step(`^the saved config should not have director "([^"]*)"$`, testCtx.theSavedConfigShouldNotHaveDirector)
	ctx.Step(`^the saved config should have (\d+) failure recipients?$`, testCtx.theSavedConfigShouldHaveFailureRecipients)
	ctx.Step(`^the saved config should have shared mailbox "([^"]*)"$`, testCtx.theSavedConfigShouldHaveSharedMailbox)
}

func (c *configContext) aConfigFileWithDirector(code, name, email string) error {
	c.config = &config.Config{
		Email: config.EmailConfig{FromName: "District Incentives", FromAddress: "incentives@district.org"},
		Incentives: config.IncentivesConfig{
			Directors: map[string]config.DirectorConfig{
				code: {Name: name, Title: "Director", Address: email},
			},
		},
	}
	return config.Save(c.config, c.configPath)
}

func (c *configContext) iRunConfigAddDirector(code, name, title, email string) error {
	last.err = cmd.RunConfigAddWithDependencies(c.config, c.configPath, "director", code, name, title, email, last.output)
	return nil
}

func (c *configContext) iRunConfigUpdateDirectorEmail(code, email string) error {
	last.err = cmd.RunConfigUpdateWithDependencies(c.config, c.configPath, "director", code, "", "", email, last.output)
	return nil
}

func (c *configContext) iRunConfigRemoveDirector(code string) error {
	last.err = cmd.RunConfigRemoveWithDependencies(c.config, c.configPath, "director", code, last.output)
	return nil
}

func (c *configContext) iRunConfigAddFailureRecipient(key, name, email string) error {
	last.err = cmd.RunConfigAddWithDependencies(c.config, c.configPath, "failure-recipient", key, name, "", email, last.output)
	return nil
}

func (c *configContext) iRunConfigRemoveFailureRecipient(key string) error {
	last.err = cmd.RunConfigRemoveWithDependencies(c.config, c.configPath, "failure-recipient", key, last.output)
	return nil
}

func (c *configContext) iRunConfigList(entityType string) error {
	last.err = cmd.RunConfigListWithDependencies(c.config, c.configPath, entityType, last.output)
	return nil
}

func (c *configContext) iRunConfigSetSharedMailbox(email string) error {
	last.err = cmd.RunConfigSetWithDependencies(c.config, c.configPath, "shared-mailbox", email, last.output)
	return nil
}

func (c *configContext) saved() (*config.Config, error) {
	return config.Load(c.configPath)
}

func (c *configContext) theSavedConfigShouldHaveDirector(code, email string) error {
	cfg, err := c.saved()
	if err != nil {
		return err
	}
	d, ok := cfg.Incentives.Directors[code]
	if !ok {
		return fmt.Errorf("director %s not in saved config", code)
	}
	if d.Address != email {
		return fmt.Errorf("director %s address = %q, want %q", code, d.Address, email)
	}
	return nil
}

func (c *configContext) theSavedConfigShouldNotHaveDirector(code string) error {
	cfg, err := c.saved()
	if err != nil {
		return err
	}
	if _, ok := cfg.Incentives.Directors[code]; ok {
		return fmt.Errorf("director %s still in saved config", code)
	}
	return nil
}

func (c *configContext) theSavedConfigShouldHaveFailureRecipients(n int) error {
	cfg, err := c.saved()
	if err != nil {
		return err
	}
	if got := len(cfg.Email.FailureRecipients); got != n {
		return fmt.Errorf("failure recipients = %d, want %d", got, n)
	}
	return nil
}

func (c *configContext) theSavedConfigShouldHaveSharedMailbox(email string) error {
	cfg, err := c.saved()
	if err != nil {
		return err
	}
	if cfg.Incentives.SharedMailbox != email {
		return fmt.Errorf("shared mailbox = %q, want %q", cfg.Incentives.SharedMailbox, email)
	}
	return nil
}
