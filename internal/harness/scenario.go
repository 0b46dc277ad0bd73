package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a named sequence of store operations.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config overrides the store configuration for this run.
	Config *ConfigOverrides `yaml:"config,omitempty"`

	// Steps run in order against a single store.
	Steps []Step `yaml:"steps"`
}

// ConfigOverrides are the configuration fields a scenario may change.
type ConfigOverrides struct {
	ReadOnly       bool `yaml:"readOnly"`
	FlowFilePretty bool `yaml:"flowFilePretty"`

	// Extensions replaces the implicit extension policy when set.
	Extensions map[string][]string `yaml:"extensions,omitempty"`
}

// Step is one store operation.
type Step struct {
	Op string `yaml:"op"`

	// Name is the logical settings name (save_setting, get_setting, history).
	Name string `yaml:"name,omitempty"`

	// Type and Path address a library entry (save_entry, get_entry).
	Type string `yaml:"type,omitempty"`
	Path string `yaml:"path,omitempty"`

	// Value is the settings value to save.
	Value any `yaml:"value,omitempty"`

	// Meta and Body are the library entry content to save.
	Meta map[string]any `yaml:"meta,omitempty"`
	Body *string        `yaml:"body,omitempty"`

	// Expect is compared against the step's result. Absent means unchecked.
	Expect any `yaml:"expect,omitempty"`

	// ExpectError is a substring the step's error must contain.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step operations.
const (
	OpSaveSetting = "save_setting"
	OpGetSetting  = "get_setting"
	OpHistory     = "history"
	OpSaveEntry   = "save_entry"
	OpGetEntry    = "get_entry"
)

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML. Unknown fields are rejected so a
// misspelled key fails loudly instead of being ignored.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step *Step) error {
	switch step.Op {
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	case OpSaveSetting:
		if step.Name == "" {
			return fmt.Errorf("steps[%d]: name is required for %s", index, step.Op)
		}
		if step.Value == nil {
			return fmt.Errorf("steps[%d]: value is required for %s", index, step.Op)
		}
	case OpGetSetting, OpHistory:
		if step.Name == "" {
			return fmt.Errorf("steps[%d]: name is required for %s", index, step.Op)
		}
	case OpSaveEntry, OpGetEntry:
		// An empty type is allowed so scenarios can exercise its rejection.
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}

	if step.Op != OpSaveSetting && step.Value != nil {
		return fmt.Errorf("steps[%d]: value is only valid for %s", index, OpSaveSetting)
	}
	if step.Op != OpSaveEntry && (step.Meta != nil || step.Body != nil) {
		return fmt.Errorf("steps[%d]: meta and body are only valid for %s", index, OpSaveEntry)
	}
	return nil
}
