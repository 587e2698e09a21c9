package repositories

import (
	"errors"
)

// ErrVersionConflict is returned when an optimistic write lost a race with a
// concurrent writer. Callers reload and retry.
var ErrVersionConflict = errors.New("record was modified concurrently")

// ===== SHARED FILTER STRUCTS =====

type SubmissionFilters struct {
	WrapperID *uint `json:"wrapper_id"`
	CoreID    *uint `json:"core_id"`
	Graded    *bool `json:"graded"`
	Limit     int   `json:"limit"`
	Offset    int   `json:"offset"`
}

type AttemptFilters struct {
	QuestionID   *uint `json:"question_id"`
	SessionID    *uint `json:"session_id"`
	UserID       *uint `json:"user_id"`
	OnlyAnswered bool  `json:"only_answered"`
	Limit        int   `json:"limit"`
}

// ===== SHARED STATISTICS STRUCTS =====

// AttemptSummary is the accuracy view of a question's attempts.
type AttemptSummary struct {
	Answered int64 `json:"answered"`
	Correct  int64 `json:"correct"`
}

// Accuracy is the share of answered attempts that were correct.
func (s AttemptSummary) Accuracy() float64 {
	if s.Answered == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Answered)
}
