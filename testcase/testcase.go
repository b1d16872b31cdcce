package testcase

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a required top-level key is absent.
	ErrMissingField = errors.New("required field is missing")

	// ErrInvalidFieldType is returned when a field has the wrong YAML type.
	ErrInvalidFieldType = errors.New("field has the wrong type")

	// ErrEmptyTitle is returned when the title is present but blank.
	ErrEmptyTitle = errors.New("test case title must not be empty")
)

// Required top-level keys of a test case document.
const (
	FieldTitle           = "title"
	FieldPreconditions   = "preconditions"
	FieldSteps           = "steps"
	FieldExpectedResults = "expected results"
)

// TestCase is a locally authored test case definition. It is read from a
// YAML file once per synchronization attempt and never mutated by the tool.
type TestCase struct {
	Title           string   `yaml:"title"`
	Preconditions   []string `yaml:"preconditions"`
	Steps           []string `yaml:"steps"`
	ExpectedResults []string `yaml:"expected results"`
}

// Validate checks that all four fields exist. The list fields may be empty
// but must be non-nil, so that an empty list survives a round trip through
// the remote service distinctly from a missing one.
func (tc *TestCase) Validate() error {
	if tc.Title == "" {
		return ErrEmptyTitle
	}
	if tc.Preconditions == nil {
		return fmt.Errorf("%w: %q", ErrMissingField, FieldPreconditions)
	}
	if tc.Steps == nil {
		return fmt.Errorf("%w: %q", ErrMissingField, FieldSteps)
	}
	if tc.ExpectedResults == nil {
		return fmt.Errorf("%w: %q", ErrMissingField, FieldExpectedResults)
	}
	return nil
}
