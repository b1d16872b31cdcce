package testcase

import (
	"errors"
	"fmt"
)

var (
	// ErrTitleTooLong is returned when the title exceeds the maximum length.
	ErrTitleTooLong = errors.New("title exceeds maximum length")

	// ErrTooManyLines is returned when a list field has too many entries.
	ErrTooManyLines = errors.New("too many entries")

	// ErrLineTooLong is returned when a single entry exceeds the maximum length.
	ErrLineTooLong = errors.New("entry exceeds maximum length")
)

// ValidationLimits defines the size limits for test case validation.
type ValidationLimits struct {
	MaxTitleLength int
	MaxLineLength  int
	MaxLineCount   int
}

// DefaultValidationLimits returns the limits the remote service accepts.
func DefaultValidationLimits() ValidationLimits {
	return ValidationLimits{
		MaxTitleLength: 255,
		MaxLineLength:  2000,
		MaxLineCount:   200,
	}
}

// ValidateWithLimits runs basic validation plus size checks. The remote
// service rejects oversized payloads anyway; checking locally keeps a
// too-large document from reaching the network at all.
func ValidateWithLimits(tc *TestCase, limits ValidationLimits) error {
	if err := tc.Validate(); err != nil {
		return err
	}

	if len(tc.Title) > limits.MaxTitleLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrTitleTooLong, len(tc.Title), limits.MaxTitleLength)
	}

	fields := map[string][]string{
		FieldPreconditions:   tc.Preconditions,
		FieldSteps:           tc.Steps,
		FieldExpectedResults: tc.ExpectedResults,
	}
	for key, lines := range fields {
		if len(lines) > limits.MaxLineCount {
			return fmt.Errorf("%w: %q has %d entries (max %d)", ErrTooManyLines, key, len(lines), limits.MaxLineCount)
		}
		for i, line := range lines {
			if len(line) > limits.MaxLineLength {
				return fmt.Errorf("%w: %q entry %d is %d characters (max %d)", ErrLineTooLong, key, i, len(line), limits.MaxLineLength)
			}
		}
	}

	return nil
}
