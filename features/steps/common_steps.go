//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// commandResult is what the last command in a scenario produced
type commandResult struct {
	output *bytes.Buffer
	err    error
}

// last is reset before each scenario
var last = &commandResult{output: &bytes.Buffer{}}

// InitializeCommonScenario registers the assertions shared by every feature
func InitializeCommonScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		last = &commandResult{output: &bytes.Buffer{}}
		return c, nil
	})

	ctx.Step(`^the command should succeed$`, theCommandShouldSucceed)
	ctx.Step(`^the command should fail with "([^"]*)"$`, theCommandShouldFailWith)
	ctx.Step(`^the output should contain "([^"]*)"$`, theOutputShouldContain)
	ctx.Step(`^the output should not contain "([^"]*)"$`, theOutputShouldNotContain)
}

func theCommandShouldSucceed() error {
	if last.err != nil {
		return fmt.Errorf("expected success, got error: %v\noutput:\n%s", last.err, last.output.String())
	}
	return nil
}

func theCommandShouldFailWith(msg string) error {
	if last.err == nil {
		return fmt.Errorf("expected error containing %q, got success", msg)
	}
	if !strings.Contains(last.err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got: %v", msg, last.err)
	}
	return nil
}

func theOutputShouldContain(text string) error {
	if !strings.Contains(last.output.String(), text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, last.output.String())
	}
	return nil
}

func theOutputShouldNotContain(text string) error {
	if strings.Contains(last.output.String(), text) {
		return fmt.Errorf("expected output not to contain %q, got:\n%s", text, last.output.String())
	}
	return nil
}
