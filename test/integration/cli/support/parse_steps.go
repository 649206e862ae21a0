package support

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// RegisterParseSteps wires the step definitions used by the parse feature.
func (testCtx *TestContext) RegisterParseSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run scaleread with "([^"]*)"$`, testCtx.RunCommand)
	sc.Step(`^the command should succeed$`, testCtx.commandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.commandShouldFail)
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.outputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, testCtx.outputShouldNotContain)
	sc.Step(`^the output should contain:$`, testCtx.outputShouldContainDocString)
}

func (testCtx *TestContext) commandShouldSucceed() error {
	if testCtx.LastError != nil {
		return fmt.Errorf("expected %v to succeed, got: %w\noutput:\n%s",
			testCtx.LastArgs, testCtx.LastError, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) commandShouldFail() error {
	if testCtx.LastError == nil {
		return fmt.Errorf("expected %v to fail, but it succeeded\noutput:\n%s",
			testCtx.LastArgs, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) outputShouldContain(expected string) error {
	if !strings.Contains(testCtx.LastOutput, expected) {
		return fmt.Errorf("output does not contain %q:\n%s", expected, testCtx.LastOutput)
	}
	return nil
}

// outputShouldContainDocString checks output against a docstring, which can
// hold substrings with embedded quotes (JSON fields in particular).
func (testCtx *TestContext) outputShouldContainDocString(doc *godog.DocString) error {
	return testCtx.outputShouldContain(strings.TrimSpace(doc.Content))
}

func (testCtx *TestContext) outputShouldNotContain(unexpected string) error {
	if strings.Contains(testCtx.LastOutput, unexpected) {
		return fmt.Errorf("output unexpectedly contains %q:\n%s", unexpected, testCtx.LastOutput)
	}
	return nil
}
