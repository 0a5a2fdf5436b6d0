package support

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// RegisterCommonSteps registers command execution and output assertions.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^I run "([^"]*)" with input:$`, testCtx.iRunCommandWithInput)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, testCtx.theOutputShouldNotContain)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the JSON should contain "([^"]*)"$`, testCtx.theJSONShouldContain)
	sc.Step(`^the JSON field "([^"]*)" should be (\d+)$`, testCtx.theJSONFieldShouldBe)
	sc.Step(`^the JSON array should have (\d+) elements?$`, testCtx.theJSONArrayShouldHaveElements)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
}

// iRunCommand executes a command and stores the result.
func (testCtx *TestContext) iRunCommand(command string) error {
	return testCtx.runCommand(command, nil)
}

func (testCtx *TestContext) iRunCommandWithInput(command string, input *godog.DocString) error {
	return testCtx.runCommand(command, strings.NewReader(input.Content+"\n"))
}

func (testCtx *TestContext) runCommand(command string, stdin io.Reader) error {
	command = testCtx.substituteCommandVariables(command)

	testCtx.LastCommand = command
	testCtx.LastStartTime = time.Now()

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errors.New("empty command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Dir = testCtx.WorkingDir
	cmd.Env = append(os.Environ(), testCtx.EnvVars...)
	cmd.Stdin = stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	testCtx.LastStdout = stdout.String()
	testCtx.LastOutput = stdout.String() + stderr.String()
	testCtx.LastError = err
	testCtx.LastDuration = time.Since(testCtx.LastStartTime)

	if err != nil {
		exitError := &exec.ExitError{}
		if errors.As(err, &exitError) {
			testCtx.LastExitCode = exitError.ExitCode()
		} else {
			testCtx.LastExitCode = -1
		}
	} else {
		testCtx.LastExitCode = 0
	}

	return nil
}

// theCommandShouldSucceed verifies the command succeeded.
func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("command failed with exit code %d: %w\nOutput: %s",
			testCtx.LastExitCode, testCtx.LastError, testCtx.LastOutput)
	}
	return nil
}

// theCommandShouldFail verifies the command failed.
func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("command succeeded when it should have failed\nOutput: %s", testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldContain verifies the output contains specific text.
func (testCtx *TestContext) theOutputShouldContain(expectedText string) error {
	expectedText = testCtx.substituteCommandVariables(expectedText)
	if !strings.Contains(testCtx.LastOutput, expectedText) {
		return fmt.Errorf("output does not contain '%s'\nActual output: %s", expectedText, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldNotContain(text string) error {
	if strings.Contains(testCtx.LastOutput, text) {
		return fmt.Errorf("output unexpectedly contains '%s'\nActual output: %s", text, testCtx.LastOutput)
	}
	return nil
}

// decodeJSON parses the command's stdout.
func (testCtx *TestContext) decodeJSON() (any, error) {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(testCtx.LastStdout)), &v); err != nil {
		return nil, fmt.Errorf("output is not valid JSON: %w\nOutput: %s", err, testCtx.LastStdout)
	}
	return v, nil
}

// theOutputShouldBeValidJSON verifies stdout is valid JSON.
func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	_, err := testCtx.decodeJSON()
	return err
}

// theJSONShouldContain verifies the JSON object contains a (dotted) field.
func (testCtx *TestContext) theJSONShouldContain(field string) error {
	_, err := testCtx.jsonField(field)
	return err
}

func (testCtx *TestContext) theJSONFieldShouldBe(field string, want int) error {
	v, err := testCtx.jsonField(field)
	if err != nil {
		return err
	}
	n, ok := v.(float64)
	if !ok || int(n) != want {
		return fmt.Errorf("field %s is %v, want %d", field, v, want)
	}
	return nil
}

func (testCtx *TestContext) jsonField(field string) (any, error) {
	v, err := testCtx.decodeJSON()
	if err != nil {
		return nil, err
	}
	for _, part := range strings.Split(field, ".") {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("cannot navigate into non-object at '%s'", part)
		}
		if v, ok = obj[part]; !ok {
			return nil, fmt.Errorf("field '%s' not found in JSON", field)
		}
	}
	return v, nil
}

func (testCtx *TestContext) theJSONArrayShouldHaveElements(n int) error {
	v, err := testCtx.decodeJSON()
	if err != nil {
		return err
	}
	arr, ok := v.([]any)
	if !ok {
		return fmt.Errorf("output is not a JSON array: %s", testCtx.LastStdout)
	}
	if len(arr) != n {
		return fmt.Errorf("JSON array has %d elements, want %d", len(arr), n)
	}
	return nil
}

// theErrorShouldMention verifies the error output contains specific text.
func (testCtx *TestContext) theErrorShouldMention(errorText string) error {
	if testCtx.LastError == nil && testCtx.LastExitCode == 0 {
		return fmt.Errorf("no error occurred, but expected error containing '%s'", errorText)
	}

	fullErrorText := testCtx.LastOutput
	if testCtx.LastError != nil {
		fullErrorText += " " + testCtx.LastError.Error()
	}

	if !strings.Contains(strings.ToLower(fullErrorText), strings.ToLower(errorText)) {
		return fmt.Errorf("error does not contain '%s'\nActual error: %s", errorText, fullErrorText)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldExist(name string) error {
	path := testCtx.substituteCommandVariables(name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("expected file %s: %w", path, err)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldContain(name, text string) error {
	path := testCtx.substituteCommandVariables(name)
	data, err := os.ReadFile(path) //nolint:gosec // G304: test artifact
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !strings.Contains(string(data), text) {
		return fmt.Errorf("file %s does not contain '%s'\nContent: %s", path, text, data)
	}
	return nil
}
