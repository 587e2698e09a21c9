package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator   *validator.Validate
	businessValidator *BusinessValidator
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	questionValidator := NewQuestionValidator()
	return &Validator{
		structValidator:   structValidator,
		businessValidator: NewBusinessValidator(questionValidator),
		questionValidator: questionValidator,
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// ValidateBusiness validates business rules only
func (v *Validator) ValidateBusiness(s interface{}) ValidationErrors {
	return v.businessValidator.Validate(s)
}

// Validate performs complete validation (struct + business rules)
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}

	if errs := v.ValidateBusiness(s); len(errs) > 0 {
		return errs
	}

	return nil
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// Business returns the business validator
func (v *Validator) Business() *BusinessValidator {
	return v.businessValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("question_level", validateQuestionLevel)
	validate.RegisterValidation("selector_strategy", validateSelectorStrategy)
	validate.RegisterValidation("criteria_kind", validateCriteriaKind)

	validate.RegisterStructValidation(validateSelectionCriteria, models.SelectionCriteria{})

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func oneOf[T ~string](value string, valid ...T) bool {
	for _, v := range valid {
		if string(v) == value {
			return true
		}
	}
	return false
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return oneOf(fl.Field().String(),
		models.QuestionSingle,
		models.QuestionMultiple,
		models.QuestionInteger,
		models.QuestionNumericRange,
		models.QuestionLinkedSingle,
		models.QuestionLinkedMultiple,
		models.QuestionLinkedInteger,
	)
}

func validateQuestionLevel(fl validator.FieldLevel) bool {
	level := fl.Field().Int()
	return level >= int64(models.LevelEasy) && level <= int64(models.LevelHard)
}

// validateSelectorStrategy accepts the empty name, which selects the default
// strategy.
func validateSelectorStrategy(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || oneOf(value,
		models.SelectorDefault,
		models.SelectorNucleus,
		models.SelectorDemo,
		models.SelectorTopicAdaptive,
		models.SelectorSuperAdaptive,
	)
}

func validateCriteriaKind(fl validator.FieldLevel) bool {
	return oneOf(fl.Field().String(),
		models.CriteriaSingleLevel,
		models.CriteriaLevelSet,
		models.CriteriaConceptSet,
	)
}

// validateSelectionCriteria checks the fields each criteria kind requires.
func validateSelectionCriteria(sl validator.StructLevel) {
	c := sl.Current().Interface().(models.SelectionCriteria)
	switch c.Kind {
	case models.CriteriaSingleLevel:
		if c.Level == 0 {
			sl.ReportError(c.Level, "level", "Level", "required_for_kind", string(c.Kind))
		}
	case models.CriteriaLevelSet:
		if len(c.Levels) == 0 {
			sl.ReportError(c.Levels, "levels", "Levels", "required_for_kind", string(c.Kind))
		}
	case models.CriteriaConceptSet:
		if len(c.Concepts) == 0 {
			sl.ReportError(c.Concepts, "concepts", "Concepts", "required_for_kind", string(c.Kind))
		}
	}
}
