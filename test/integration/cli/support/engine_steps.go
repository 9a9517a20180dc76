package support

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/pobar/internal/config"
	"github.com/MeKo-Tech/pobar/internal/engine/enginetest"
)

func (testCtx *TestContext) everyEngineResultShouldHaveBeenReleased() error {
	f := testCtx.Engine
	if v := f.Violations(); len(v) > 0 {
		return fmt.Errorf("engine contract violations: %s", strings.Join(v, "; "))
	}
	if f.Released() != f.NonNullResults() {
		return fmt.Errorf("released %d of %d results", f.Released(), f.NonNullResults())
	}
	if n := f.LiveInstances(); n != 0 {
		return fmt.Errorf("%d engine instances still alive", n)
	}
	return nil
}

func (testCtx *TestContext) theEngineShouldHaveCreatedInstances(n int) error {
	if got := testCtx.Engine.Count(enginetest.CallCreateInstance); got != n {
		return fmt.Errorf("engine created %d instances, want %d", got, n)
	}
	return nil
}

func (testCtx *TestContext) theLicenseShouldHaveBeenInitializedTimes(n int) error {
	if got := testCtx.Engine.Count(enginetest.CallInitLicense); got != n {
		return fmt.Errorf("license initialized %d times, want %d", got, n)
	}
	return nil
}

func (testCtx *TestContext) theLicenseKeyShouldBe(key string) error {
	keys := testCtx.Engine.Licenses()
	if len(keys) == 0 {
		return errors.New("license was never initialized")
	}
	for _, k := range keys {
		if k != key {
			return fmt.Errorf("license key %q used, want %q", k, key)
		}
	}
	return nil
}

func (testCtx *TestContext) theEngineShouldNotHaveDecoded(rel string) error {
	for _, p := range testCtx.Engine.Decoded() {
		if p == rel || p == testCtx.Path(rel) {
			return fmt.Errorf("engine decoded %s", p)
		}
	}
	return nil
}

func (testCtx *TestContext) theEngineShouldHaveDecodedFiles(n int) error {
	if got := len(testCtx.Engine.Decoded()); got != n {
		return fmt.Errorf("engine decoded %d files (%v), want %d", got, testCtx.Engine.Decoded(), n)
	}
	return nil
}

// RegisterEngineSteps registers assertions on the engine boundary calls.
func (testCtx *TestContext) RegisterEngineSteps(sc *godog.ScenarioContext) {
	sc.Step(`^every engine result should have been released$`, testCtx.everyEngineResultShouldHaveBeenReleased)
	sc.Step(`^the engine should have created (\d+) instances?$`, testCtx.theEngineShouldHaveCreatedInstances)
	sc.Step(`^the license should have been initialized (\d+) times?$`, testCtx.theLicenseShouldHaveBeenInitializedTimes)
	sc.Step(`^the license key "([^"]*)" should have been used$`, testCtx.theLicenseKeyShouldBe)
	sc.Step(`^the trial license key should have been used$`, func() error {
		return testCtx.theLicenseKeyShouldBe(config.TrialLicenseKey)
	})
	sc.Step(`^the engine should not have decoded "([^"]*)"$`, testCtx.theEngineShouldNotHaveDecoded)
	sc.Step(`^the engine should have decoded (\d+) files?$`, testCtx.theEngineShouldHaveDecodedFiles)
}
