package validator

import (
	stderrors "errors"

	"github.com/SAP-F-2025/suggestibility-service/internal/errors"
	"github.com/go-playground/validator/v10"
)

type ValidationError = errors.ValidationError
type ValidationErrors = errors.ValidationErrors
type IncompleteAnswerSetError = errors.IncompleteAnswerSetError

// ToValidationErrors flattens any validation failure this package produces into
// field errors. It returns nil for errors of other kinds.
func ToValidationErrors(err error) ValidationErrors {
	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) {
		return errors.ToValidationErrors(fieldErrs)
	}

	var incomplete *IncompleteAnswerSetError
	if stderrors.As(err, &incomplete) {
		return incomplete.ValidationErrors()
	}

	var ve ValidationErrors
	if stderrors.As(err, &ve) {
		return ve
	}

	var single *ValidationError
	if stderrors.As(err, &single) {
		return ValidationErrors{*single}
	}

	return nil
}
