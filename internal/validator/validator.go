package validator

import (
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/SAP-F-2025/suggestibility-service/internal/review"
	"github.com/go-playground/validator/v10"
)

const (
	MinElapsedSeconds = 0
	MaxElapsedSeconds = 7200
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator *validator.Validate
	answerValidator *AnswerValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		answerValidator: NewAnswerValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and reports failures as ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Answers returns the answer set validator
func (v *Validator) Answers() *AnswerValidator {
	return v.answerValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("review_state", validateReviewState)
	validate.RegisterValidation("question_category", validateQuestionCategory)
	validate.RegisterValidation("scoring_polarity", validateScoringPolarity)

	validate.RegisterValidation("flag_reason", validateFlagReason)
	validate.RegisterValidation("review_notes", validateReviewNotes)
	validate.RegisterValidation("elapsed_seconds", validateElapsedSeconds)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateUserRole(fl validator.FieldLevel) bool {
	return models.UserRole(fl.Field().String()).IsValid()
}

func validateReviewState(fl validator.FieldLevel) bool {
	switch models.ReviewState(fl.Field().String()) {
	case models.ReviewSubmitted, models.ReviewFlagged, models.ReviewApproved, models.ReviewRejected:
		return true
	}
	return false
}

func validateQuestionCategory(fl validator.FieldLevel) bool {
	switch models.QuestionCategory(fl.Field().String()) {
	case models.CategoryPhysical, models.CategoryEmotional:
		return true
	}
	return false
}

func validateScoringPolarity(fl validator.FieldLevel) bool {
	switch models.ScoringPolarity(fl.Field().String()) {
	case models.PolarityYes, models.PolarityNo:
		return true
	}
	return false
}

func validateFlagReason(fl validator.FieldLevel) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(fl.Field().String()))
	return n >= review.MinFlagReasonLength && n <= review.MaxFlagReasonLength
}

func validateReviewNotes(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(fl.Field().String()) <= review.MaxReviewNotesLength
}

func validateElapsedSeconds(fl validator.FieldLevel) bool {
	v := fl.Field().Int()
	return v >= MinElapsedSeconds && v <= MaxElapsedSeconds
}
