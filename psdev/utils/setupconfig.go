package utils

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SetupConfig is the optional bootstrap.yaml manifest at the workspace root.
// It lists external tools the workspace needs and extra setup steps to run
// after dependency installation.
type SetupConfig struct {
	// Requires names binaries that must be present on the PATH.
	Requires []string `yaml:"requires,omitempty" json:"requires,omitempty"`

	// Steps are run in order after the requirements install.
	Steps []SetupStep `yaml:"steps,omitempty" json:"steps,omitempty"`
}

type SetupStep struct {
	Name    string   `yaml:"name" json:"name" jsonschema:"required"`
	Command []string `yaml:"command" json:"command" jsonschema:"required"`
}

// ParseSetupConfig reads and validates the manifest at configFilePath.
func ParseSetupConfig(configFilePath string) (*SetupConfig, error) {
	bytes, err := os.ReadFile(configFilePath)
	if err != nil {
		return nil, err
	}

	var config SetupConfig
	err = yaml.Unmarshal(bytes, &config)
	if err != nil {
		return nil, err
	}

	for i, step := range config.Steps {
		if step.Name == "" {
			return nil, fmt.Errorf("setup step %d is missing a name", i)
		}

		if len(step.Command) == 0 {
			return nil, fmt.Errorf("setup step '%s' is missing a command", step.Name)
		}
	}

	return &config, nil
}
