package models

// ExportRequest selects the analysis to export. Exactly one id is set.
type ExportRequest struct {
	CoreID           *uint  `json:"core_id" validate:"required_without=WrapperID,excluded_with=WrapperID"`
	WrapperID        *uint  `json:"wrapper_id" validate:"required_without=CoreID"`
	Format           string `json:"format" validate:"omitempty,oneof=xlsx"`
	IncludeMarks     bool   `json:"include_marks"`
	IncludeQuestions bool   `json:"include_questions"`
}

// AllModels lists every persisted model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&SubTopic{},
		&Question{},
		&PracticeSession{},
		&Attempt{},
		&UserConceptStat{},
		&SelectionLog{},
		&AssessmentCore{},
		&AssessmentWrapper{},
		&Submission{},
		&WrapperAnalysis{},
		&CoreAnalysis{},
	}
}
