package support

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/pobar/cmd/pobar/cmd"
	"github.com/MeKo-Tech/pobar/internal/engine"
)

// run executes pobar in-process against the scenario engine.
func (testCtx *TestContext) run(command, stdin string) error {
	command = testCtx.substituteCommandVariables(command)
	testCtx.LastCommand = command

	parts := strings.Fields(command)
	if len(parts) == 0 || parts[0] != "pobar" {
		return fmt.Errorf("only pobar commands are supported: %q", command)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	root := cmd.NewRootCommandWithEngine(func() (engine.Native, error) { return testCtx.Engine, nil })
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(parts[1:])

	testCtx.LastError = root.ExecuteContext(ctx)
	testCtx.LastOutput = out.String()
	testCtx.LastStderr = errOut.String()
	testCtx.LastExitCode = 0
	if testCtx.LastError != nil {
		testCtx.LastExitCode = 1
	}
	return nil
}

func (testCtx *TestContext) iRunCommand(command string) error {
	return testCtx.run(command, "")
}

func (testCtx *TestContext) iRunCommandAndType(command string, input *godog.DocString) error {
	return testCtx.run(command, input.Content+"\n")
}

func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("command failed with exit code %d: %w\nOutput: %s\nStderr: %s",
			testCtx.LastExitCode, testCtx.LastError, testCtx.LastOutput, testCtx.LastStderr)
	}
	return nil
}

func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("command succeeded when it should have failed\nOutput: %s", testCtx.LastOutput)
	}
	return nil
}

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

func (testCtx *TestContext) theOutputShouldContainLines(doc *godog.DocString) error {
	return testCtx.theOutputShouldContain(doc.Content)
}

func (testCtx *TestContext) theErrorOutputShouldContain(expectedText string) error {
	expectedText = testCtx.substituteCommandVariables(expectedText)
	if !strings.Contains(testCtx.LastStderr, expectedText) {
		return fmt.Errorf("stderr does not contain '%s'\nActual stderr: %s", expectedText, testCtx.LastStderr)
	}
	return nil
}

func (testCtx *TestContext) theErrorShouldMention(errorText string) error {
	if testCtx.LastError == nil {
		return fmt.Errorf("no error occurred, but expected error containing '%s'", errorText)
	}
	if !strings.Contains(strings.ToLower(testCtx.LastError.Error()), strings.ToLower(errorText)) {
		return fmt.Errorf("error does not contain '%s'\nActual error: %v", errorText, testCtx.LastError)
	}
	return nil
}

// resultDocument mirrors the structured output written by pobar.
type resultDocument struct {
	Files []struct {
		File     string `json:"file"`
		Barcodes []struct {
			Format string `json:"format"`
			Text   string `json:"text"`
		} `json:"barcodes"`
		Error string `json:"error"`
	} `json:"files"`
	Stats struct {
		Total        int `json:"total_images"`
		WithBarcodes int `json:"images_with_barcodes"`
		Failed       int `json:"failed"`
		Barcodes     int `json:"total_barcodes"`
	} `json:"stats"`
}

func (testCtx *TestContext) parseJSON(data string) (*resultDocument, error) {
	var doc resultDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w\nOutput: %s", err, data)
	}
	return &doc, nil
}

func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	_, err := testCtx.parseJSON(testCtx.LastOutput)
	return err
}

func (testCtx *TestContext) theJSONShouldReportFilesWithBarcodes(total, withBarcodes int) error {
	doc, err := testCtx.parseJSON(testCtx.LastOutput)
	if err != nil {
		return err
	}
	if doc.Stats.Total != total || doc.Stats.WithBarcodes != withBarcodes {
		return fmt.Errorf("stats = %d total / %d with barcodes, want %d / %d",
			doc.Stats.Total, doc.Stats.WithBarcodes, total, withBarcodes)
	}
	return nil
}

func (testCtx *TestContext) theJSONShouldContainBarcodeText(text string) error {
	doc, err := testCtx.parseJSON(testCtx.LastOutput)
	if err != nil {
		return err
	}
	for _, f := range doc.Files {
		for _, b := range f.Barcodes {
			if b.Text == text {
				return nil
			}
		}
	}
	return fmt.Errorf("no barcode with text %q in output", text)
}

func (testCtx *TestContext) theOutputShouldBeValidCSVWithRows(rows int) error {
	records, err := csv.NewReader(strings.NewReader(testCtx.LastOutput)).ReadAll()
	if err != nil {
		return fmt.Errorf("invalid CSV: %w", err)
	}
	if len(records) == 0 || records[0][0] != "file" {
		return errors.New("CSV has no header row")
	}
	if got := len(records) - 1; got != rows {
		return fmt.Errorf("CSV has %d data rows, want %d", got, rows)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldExist(rel string) error {
	if _, err := os.Stat(testCtx.Path(rel)); err != nil {
		return fmt.Errorf("file %s does not exist: %w", rel, err)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldNotExist(rel string) error {
	if _, err := os.Stat(testCtx.Path(rel)); err == nil {
		return fmt.Errorf("file %s exists", rel)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldContain(rel, expected string) error {
	data, err := os.ReadFile(testCtx.Path(rel))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", rel, err)
	}
	if !strings.Contains(string(data), expected) {
		return fmt.Errorf("file %s does not contain '%s'\nContent: %s", rel, expected, data)
	}
	return nil
}

func (testCtx *TestContext) theEnvironmentVariableIsSetTo(name, value string) error {
	testCtx.SetEnv(name, value)
	return nil
}

func (testCtx *TestContext) aConfigFileContaining(rel string, doc *godog.DocString) error {
	return testCtx.aFileWithContent(rel, doc.Content+"\n")
}

// RegisterCommonSteps registers command execution and output assertion steps.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^I run "([^"]*)" and type:$`, testCtx.iRunCommandAndType)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)

	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, testCtx.theOutputShouldNotContain)
	sc.Step(`^the output should contain:$`, testCtx.theOutputShouldContainLines)
	sc.Step(`^the error output should contain "([^"]*)"$`, testCtx.theErrorOutputShouldContain)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)

	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the JSON should report (\d+) files? with (\d+) containing barcodes$`, testCtx.theJSONShouldReportFilesWithBarcodes)
	sc.Step(`^the JSON should contain a barcode with text "([^"]*)"$`, testCtx.theJSONShouldContainBarcodeText)
	sc.Step(`^the output should be valid CSV with (\d+) rows?$`, testCtx.theOutputShouldBeValidCSVWithRows)

	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should not exist$`, testCtx.theFileShouldNotExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
	sc.Step(`^the environment variable "([^"]*)" is set to "([^"]*)"$`, testCtx.theEnvironmentVariableIsSetTo)
	sc.Step(`^a config file "([^"]*)" containing:$`, testCtx.aConfigFileContaining)
}
