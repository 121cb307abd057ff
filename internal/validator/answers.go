package validator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/suggestibility-service/internal/catalog"
	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/SAP-F-2025/suggestibility-service/internal/scoring"
)

// AnswerValidator turns a raw JSON answer object into an AnswerSet. Keys are
// question numbers, written either as "12" or "q12"; values must be booleans.
type AnswerValidator struct{}

func NewAnswerValidator() *AnswerValidator {
	return &AnswerValidator{}
}

// Parse decodes and checks the shape of the answers without a questionnaire.
// Every problem found is reported, not just the first.
func (v *AnswerValidator) Parse(raw json.RawMessage) (models.AnswerSet, error) {
	var errs ValidationErrors

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, ValidationErrors{{Field: "answers", Message: "must be a JSON object", Rule: "answer_format"}}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ValidationErrors{{Field: "answers", Message: "must be a JSON object", Rule: "answer_format"}}
	}

	answers := models.AnswerSet{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, ValidationErrors{{Field: "answers", Message: "malformed JSON object", Rule: "answer_format"}}
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, ValidationErrors{{Field: "answers", Message: "malformed JSON object", Rule: "answer_format"}}
		}

		number, ok := parseQuestionKey(key)
		if !ok {
			errs = append(errs, ValidationError{
				Field:   "answers." + key,
				Message: "is not a question number",
				Value:   key,
				Rule:    "question_number",
			})
			continue
		}

		field := fmt.Sprintf("answers.%d", number)
		var answer bool
		if err := json.Unmarshal(value, &answer); err != nil || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "must be a boolean",
				Value:   string(value),
				Rule:    "boolean",
			})
			continue
		}

		if _, dup := answers[number]; dup {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "is answered more than once",
				Value:   number,
				Rule:    "duplicate_question",
			})
			continue
		}
		answers[number] = answer
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return answers, nil
}

// ParseFor parses the answers and checks they cover exactly the questions of c
func (v *AnswerValidator) ParseFor(raw json.RawMessage, c *catalog.Catalog) (models.AnswerSet, error) {
	answers, err := v.Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := scoring.CheckAnswerSet(answers, c); err != nil {
		return nil, err
	}
	return answers, nil
}

func parseQuestionKey(key string) (int, bool) {
	trimmed := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(key)), "q")
	n, err := strconv.Atoi(trimmed)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
