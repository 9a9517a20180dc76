package support

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cucumber/godog"
	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/pobar/internal/engine"
	"github.com/MeKo-Tech/pobar/internal/engine/enginetest"
)

// writeImage writes a small real image so overlay rendering can decode it.
func (testCtx *TestContext) writeImage(rel string) (string, error) {
	path := testCtx.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	img := imaging.New(160, 160, color.White)
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("failed to write image %s: %w", rel, err)
	}
	return path, nil
}

// script registers outcome under every spelling a command may pass to the engine.
func (testCtx *TestContext) script(rel string, outcome enginetest.Outcome) {
	testCtx.Engine.Results[rel] = outcome
	testCtx.Engine.Results[filepath.FromSlash(rel)] = outcome
	testCtx.Engine.Results[testCtx.Path(rel)] = outcome
}

func (testCtx *TestContext) anImageContainingAQRCode(rel, text string) error {
	if _, err := testCtx.writeImage(rel); err != nil {
		return err
	}
	testCtx.script(rel, enginetest.Outcome{Barcodes: []engine.Barcode{enginetest.QR(text)}})
	return nil
}

func (testCtx *TestContext) anImageContainingBarcodes(rel string, table *godog.Table) error {
	if _, err := testCtx.writeImage(rel); err != nil {
		return err
	}
	var barcodes []engine.Barcode
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		if len(row.Cells) < 2 {
			return fmt.Errorf("row %d: want format and text columns", i)
		}
		b := enginetest.QR(row.Cells[1].Value)
		b.Format = row.Cells[0].Value
		barcodes = append(barcodes, b)
	}
	testCtx.script(rel, enginetest.Outcome{Barcodes: barcodes})
	return nil
}

func (testCtx *TestContext) anImageWithNoBarcode(rel string) error {
	if _, err := testCtx.writeImage(rel); err != nil {
		return err
	}
	testCtx.script(rel, enginetest.Outcome{})
	return nil
}

func (testCtx *TestContext) anImageTheEngineReturnsNothingFor(rel string) error {
	if _, err := testCtx.writeImage(rel); err != nil {
		return err
	}
	testCtx.script(rel, enginetest.Outcome{Null: true})
	return nil
}

func (testCtx *TestContext) aFileWithContent(rel, content string) error {
	path := testCtx.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func (testCtx *TestContext) anEmptyDirectory(rel string) error {
	return os.MkdirAll(testCtx.Path(rel), 0o755)
}

func (testCtx *TestContext) theLicenseKeyIsRejectedWithCode(code string) error {
	n, err := strconv.Atoi(code)
	if err != nil {
		return fmt.Errorf("invalid license code %q: %w", code, err)
	}
	testCtx.Engine.LicenseCode = n
	return nil
}

func (testCtx *TestContext) theEngineCannotCreateAnInstance() error {
	testCtx.Engine.FailCreate = true
	return nil
}

// RegisterImageSteps registers fixture and engine scripting steps.
func (testCtx *TestContext) RegisterImageSteps(sc *godog.ScenarioContext) {
	sc.Step(`^an image "([^"]*)" containing a QR code "([^"]*)"$`, testCtx.anImageContainingAQRCode)
	sc.Step(`^an image "([^"]*)" containing the barcodes:$`, testCtx.anImageContainingBarcodes)
	sc.Step(`^an image "([^"]*)" with no barcode$`, testCtx.anImageWithNoBarcode)
	sc.Step(`^an image "([^"]*)" the engine returns nothing for$`, testCtx.anImageTheEngineReturnsNothingFor)
	sc.Step(`^a file "([^"]*)" containing "([^"]*)"$`, testCtx.aFileWithContent)
	sc.Step(`^an empty directory "([^"]*)"$`, testCtx.anEmptyDirectory)
	sc.Step(`^the license key is rejected with code (-?\d+)$`, testCtx.theLicenseKeyIsRejectedWithCode)
	sc.Step(`^the engine cannot create an instance$`, testCtx.theEngineCannotCreateAnInstance)
}
