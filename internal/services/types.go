package services

import (
	"time"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

// ===== SELECTION =====

type StartSessionRequest struct {
	UserID  uint                       `json:"user_id" validate:"required"`
	Filters []models.SelectionCriteria `json:"filters" validate:"dive"`
	Config  models.SessionConfig       `json:"config"`
}

type NextQuestionResponse struct {
	SessionID   uint                 `json:"session_id"`
	Position    int                  `json:"position"`
	Question    *models.Question     `json:"question"`
	FilterIndex int                  `json:"filter_index"`
	Tier        models.SelectionTier `json:"tier"`
	Concept     string               `json:"concept,omitempty"`
}

type RecordAttemptRequest struct {
	SessionID  *uint         `json:"session_id"`
	UserID     uint          `json:"user_id" validate:"required"`
	QuestionID uint          `json:"question_id" validate:"required"`
	Answer     models.Answer `json:"answer"`
	// Time is the attempt duration in milliseconds.
	Time      int64      `json:"time" validate:"min=0"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

type AttemptResult struct {
	Attempt       *models.Attempt `json:"attempt"`
	Outcome       models.Outcome  `json:"outcome"`
	Speed         models.Speed    `json:"speed,omitempty"`
	AttemptsCount int             `json:"attempts_count"`
	Recalibrated  bool            `json:"recalibrated"`
}

// ===== CALIBRATION =====

type RecalibrationResult struct {
	QuestionID    uint                      `json:"question_id"`
	PreviousLevel models.QuestionLevel      `json:"previous_level"`
	Level         models.QuestionLevel      `json:"level"`
	Attempts      int                       `json:"attempts"`
	Statistics    models.QuestionStatistics `json:"statistics"`
}

// ===== GRADING =====

type BonusRequest struct {
	QuestionIDs []uint `json:"question_ids" validate:"required,min=1,dive,required"`
}

type RegradeResult struct {
	CoreID      uint    `json:"core_id"`
	Submissions int     `json:"submissions"`
	Wrappers    int     `json:"wrappers"`
	MaxMarks    float64 `json:"max_marks"`
}

// RankingScope names the analysis a score is ranked against. Exactly one id
// is set.
type RankingScope struct {
	WrapperID *uint `json:"wrapper_id"`
	CoreID    *uint `json:"core_id"`
}
