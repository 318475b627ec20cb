package conformance

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TestDataDir holds the scenario fixtures, relative to this package.
const TestDataDir = "testdata"

// LoadedScenario pairs a parsed Scenario with the file it came from, for
// readable subtest names.
type LoadedScenario struct {
	File     string
	Scenario Scenario
}

// LoadAllScenarios walks TestDataDir and parses every *.yaml fixture.
func LoadAllScenarios() ([]LoadedScenario, error) {
	abs, err := filepath.Abs(TestDataDir)
	if err != nil {
		return nil, err
	}

	var loaded []LoadedScenario
	err = filepath.Walk(abs, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		var sc Scenario
		if err := yaml.Unmarshal(data, &sc); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}

		relPath, _ := filepath.Rel(abs, path)
		loaded = append(loaded, LoadedScenario{File: relPath, Scenario: sc})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loaded, nil
}
