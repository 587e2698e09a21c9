package validator

import (
	"fmt"

	"github.com/SAP-F-2025/assessment-engine/internal/errors"
	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

// BusinessValidator checks rules that span several fields or records.
type BusinessValidator struct {
	questions *QuestionValidator
}

func NewBusinessValidator(questions *QuestionValidator) *BusinessValidator {
	return &BusinessValidator{questions: questions}
}

// Validate dispatches on the value type. Unknown types have no business rules.
func (v *BusinessValidator) Validate(s interface{}) ValidationErrors {
	switch t := s.(type) {
	case *models.AssessmentCore:
		return v.ValidateCore(t)
	case *models.PracticeSession:
		return v.ValidateSessionConfig(t)
	default:
		return nil
	}
}

// ValidateCore checks answer keys, question groups and bonus references.
func (v *BusinessValidator) ValidateCore(core *models.AssessmentCore) ValidationErrors {
	var errs ValidationErrors
	if len(core.Sections) == 0 {
		errs = append(errs, *errors.NewValidationErrorWithRule("sections", "must contain at least one section", "min", nil))
	}

	ids := make(map[uint]bool)
	for si, section := range core.Sections {
		for qi, q := range section.Questions {
			ids[q.QuestionID] = true
			if err := v.questions.ValidateAnswerKey(q.Type, q.AnswerKey); err != nil {
				field := fmt.Sprintf("sections[%d].questions[%d].answer_key", si, qi)
				errs = append(errs, *errors.NewValidationErrorWithRule(field, err.Error(), "answer_key", nil))
			}
		}
	}

	for gi, g := range core.QuestionGroups {
		field := fmt.Sprintf("question_groups[%d]", gi)
		if g.Section < 0 || g.Section >= len(core.Sections) {
			errs = append(errs, *errors.NewValidationErrorWithRule(field, "references a missing section", "question_group", g.Section))
			continue
		}
		n := len(core.Sections[g.Section].Questions)
		for _, idx := range g.Questions {
			if idx < 0 || idx >= n {
				errs = append(errs, *errors.NewValidationErrorWithRule(field, "references a missing question", "question_group", idx))
			}
		}
		if g.Limit < 1 || g.Limit > len(g.Questions) {
			errs = append(errs, *errors.NewValidationErrorWithRule(field+".limit",
				fmt.Sprintf("must be between 1 and %d", len(g.Questions)), "question_group", g.Limit))
		}
	}

	for id := range core.Bonus.Data() {
		if !ids[id] {
			errs = append(errs, *errors.NewValidationErrorWithRule("bonus", "references a question outside the core", "bonus", id))
		}
	}
	return errs
}

// ValidateSessionConfig checks that a session can be served by its strategy.
func (v *BusinessValidator) ValidateSessionConfig(session *models.PracticeSession) ValidationErrors {
	var errs ValidationErrors
	cfg := session.Config.Data()
	if len(session.Filters) == 0 && cfg.LinkID == nil {
		errs = append(errs, *errors.NewValidationErrorWithRule("filters", "must contain at least one filter", "min", nil))
	}
	if cfg.QuestionCount < 0 {
		errs = append(errs, *errors.NewValidationErrorWithRule("config.question_count", "must not be negative", "min", cfg.QuestionCount))
	}
	return errs
}
