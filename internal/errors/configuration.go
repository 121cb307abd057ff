package errors

import (
	stderrors "errors"
	"fmt"
)

// ConfigurationError marks a data-seeding defect (missing active questionnaire,
// uncovered lookup pair). It is never the caller's fault.
type ConfigurationError struct {
	Component string `json:"component"`
	Message   string `json:"message"`
	Err       error  `json:"-"`
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error in %s: %s: %v", e.Component, e.Message, e.Err)
	}
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func NewConfigurationError(component, message string, err error) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return stderrors.As(err, &ce)
}
