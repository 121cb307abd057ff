package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("reason", "must be between 10 and 500 characters", "short")

	if err.Field != "reason" {
		t.Errorf("Expected field to be 'reason', got '%s'", err.Field)
	}

	if err.Value != "short" {
		t.Errorf("Expected value to be 'short', got '%v'", err.Value)
	}

	expected := "validation error on field 'reason': must be between 10 and 500 characters"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("answers", "missing answers for questions", []int{3}))
	expected := "validation failed: answers missing answers for questions"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationErrorWithRule("elapsed_seconds", "must be at most 7200", "max", 9000))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
	if errs[1].Rule != "max" {
		t.Errorf("Expected rule to be 'max', got '%s'", errs[1].Rule)
	}
}

func TestIncompleteAnswerSetError(t *testing.T) {
	err := &IncompleteAnswerSetError{VersionID: "hmi-v1", Expected: 36, Received: 36, Missing: []int{4}, Extra: []int{37}}

	expected := "incomplete answer set: expected 36 answers, received 36, missing [4], extra [37]"
	if err.Error() != expected {
		t.Errorf("Expected '%s', got '%s'", expected, err.Error())
	}

	fieldErrs := err.ValidationErrors()
	if len(fieldErrs) != 2 {
		t.Fatalf("Expected 2 field errors, got %d", len(fieldErrs))
	}
	if fieldErrs[0].Rule != "missing_questions" || fieldErrs[1].Rule != "extra_questions" {
		t.Errorf("Unexpected rules %q and %q", fieldErrs[0].Rule, fieldErrs[1].Rule)
	}
}

func TestConfigurationError(t *testing.T) {
	cause := stderrors.New("no rows")
	err := fmt.Errorf("failed to load catalog: %w", NewConfigurationError("catalog", "no active questionnaire version", cause))

	if !IsConfigurationError(err) {
		t.Fatal("Expected wrapped configuration error to be detected")
	}
	if !stderrors.Is(err, cause) {
		t.Error("Expected configuration error to unwrap to its cause")
	}
	if IsConfigurationError(cause) {
		t.Error("Plain error must not be reported as configuration error")
	}
}
