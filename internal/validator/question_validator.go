package validator

import (
	"fmt"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

// QuestionValidator handles question-specific validation
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateAnswerKey checks that key carries exactly what questionType needs.
func (v *QuestionValidator) ValidateAnswerKey(questionType models.QuestionType, key models.AnswerKey) error {
	switch questionType.Base() {
	case models.QuestionSingle:
		if len(key.Options) != 1 {
			return fmt.Errorf("single choice needs exactly 1 correct option, got %d", len(key.Options))
		}
		return v.validateOptionIDs(key.Options)
	case models.QuestionMultiple:
		if len(key.Options) == 0 {
			return fmt.Errorf("multiple choice needs at least 1 correct option")
		}
		return v.validateOptionIDs(key.Options)
	case models.QuestionInteger:
		if key.Integer == nil {
			return fmt.Errorf("integer question needs an integer answer")
		}
		return nil
	case models.QuestionNumericRange:
		if key.RangeStart == nil || key.RangeEnd == nil {
			return fmt.Errorf("numeric range question needs both range bounds")
		}
		if *key.RangeStart > *key.RangeEnd {
			return fmt.Errorf("range start %.4g is above range end %.4g", *key.RangeStart, *key.RangeEnd)
		}
		return nil
	default:
		return fmt.Errorf("unsupported question type: %s", questionType)
	}
}

// ValidateQuestion validates a bank question before it is published
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.SubTopicID == "" {
		return fmt.Errorf("question sub topic is required")
	}
	if question.Level < models.LevelEasy || question.Level > models.LevelHard {
		return fmt.Errorf("question level must be between %d and %d", models.LevelEasy, models.LevelHard)
	}
	if question.Type.IsLinked() && question.LinkID == nil {
		return fmt.Errorf("linked question needs a link id")
	}
	return v.ValidateAnswerKey(question.Type, question.AnswerKey.Data())
}

// ValidateBatch validates multiple questions
func (v *QuestionValidator) ValidateBatch(questions []*models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}

	for i, question := range questions {
		if err := v.ValidateQuestion(question); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}

	return nil
}

func (v *QuestionValidator) validateOptionIDs(options []string) error {
	seen := make(map[string]bool, len(options))
	for _, id := range options {
		if id == "" {
			return fmt.Errorf("option id cannot be empty")
		}
		if seen[id] {
			return fmt.Errorf("duplicate option id: %s", id)
		}
		seen[id] = true
	}
	return nil
}
