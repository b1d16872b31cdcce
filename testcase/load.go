package testcase

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotYAMLFile is returned when the file path does not end in .yaml or .yml.
var ErrNotYAMLFile = errors.New("file path does not refer to a YAML file")

// Load reads a test case file, validates it against the required schema and
// returns the parsed definition. Validation happens before any caller can
// touch the network, so a malformed file never produces a partial remote
// mutation.
func Load(path string) (*TestCase, error) {
	if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
		return nil, fmt.Errorf("%w: %s", ErrNotYAMLFile, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test case file: %w", err)
	}

	return Parse(data)
}

// Parse validates and decodes a raw test case document.
func Parse(data []byte) (*TestCase, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse test case YAML: %w", err)
	}

	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	var tc TestCase
	if err := yaml.Unmarshal(data, &tc); err != nil {
		return nil, fmt.Errorf("failed to decode test case: %w", err)
	}

	// An empty sequence decodes to a nil slice; the document check above
	// already proved the key exists, so normalize to empty.
	if tc.Preconditions == nil {
		tc.Preconditions = []string{}
	}
	if tc.Steps == nil {
		tc.Steps = []string{}
	}
	if tc.ExpectedResults == nil {
		tc.ExpectedResults = []string{}
	}

	if err := tc.Validate(); err != nil {
		return nil, err
	}

	return &tc, nil
}

// validateDocument enforces the test case schema on the raw document:
// all four keys present, title a string, the rest lists of strings.
func validateDocument(doc map[string]interface{}) error {
	if doc == nil {
		return fmt.Errorf("%w: %q", ErrMissingField, FieldTitle)
	}

	title, ok := doc[FieldTitle]
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingField, FieldTitle)
	}
	if _, ok := title.(string); !ok {
		return fmt.Errorf("%w: %q must be a string", ErrInvalidFieldType, FieldTitle)
	}

	for _, key := range []string{FieldPreconditions, FieldSteps, FieldExpectedResults} {
		value, ok := doc[key]
		if !ok {
			return fmt.Errorf("%w: %q", ErrMissingField, key)
		}
		if err := validateStringList(key, value); err != nil {
			return err
		}
	}

	return nil
}

func validateStringList(key string, value interface{}) error {
	if value == nil {
		// Explicit null. The key exists but carries no list; an empty
		// list must be written as `[]` or simply contain no items.
		return fmt.Errorf("%w: %q must be a list of strings", ErrInvalidFieldType, key)
	}

	items, ok := value.([]interface{})
	if !ok {
		return fmt.Errorf("%w: %q must be a list of strings", ErrInvalidFieldType, key)
	}

	for i, item := range items {
		if _, ok := item.(string); !ok {
			return fmt.Errorf("%w: %q item %d must be a string", ErrInvalidFieldType, key, i)
		}
	}

	return nil
}
