package models

import (
	"time"

	"gorm.io/datatypes"
)

type AnswerKind string

const (
	AnswerOption  AnswerKind = "option"
	AnswerOptions AnswerKind = "options"
	AnswerInteger AnswerKind = "integer"
	AnswerNumeric AnswerKind = "numeric"
)

// Answer is a learner response. Kind selects which value field is meaningful;
// an empty Kind means the question was left unanswered.
type Answer struct {
	Kind    AnswerKind `json:"kind,omitempty" validate:"omitempty,oneof=option options integer numeric"`
	Option  string     `json:"option,omitempty"`
	Options []string   `json:"options,omitempty"`
	Integer int64      `json:"integer,omitempty"`
	Numeric float64    `json:"numeric,omitempty"`
}

func OptionAnswer(id string) Answer {
	return Answer{Kind: AnswerOption, Option: id}
}

func OptionsAnswer(ids ...string) Answer {
	return Answer{Kind: AnswerOptions, Options: ids}
}

func IntegerAnswer(v int64) Answer {
	return Answer{Kind: AnswerInteger, Integer: v}
}

func NumericAnswer(v float64) Answer {
	return Answer{Kind: AnswerNumeric, Numeric: v}
}

// IsEmpty reports an unanswered response.
func (a Answer) IsEmpty() bool {
	switch a.Kind {
	case AnswerOption:
		return a.Option == ""
	case AnswerOptions:
		return len(a.Options) == 0
	case AnswerInteger, AnswerNumeric:
		return false
	default:
		return true
	}
}

type Speed string

const (
	SpeedFast    Speed = "fast"
	SpeedPerfect Speed = "perfect"
	SpeedSlow    Speed = "slow"
)

// Attempt is one learner interaction with one question.
type Attempt struct {
	ID         uint                       `json:"id" gorm:"primaryKey"`
	UserID     uint                       `json:"user_id" gorm:"not null;index"`
	QuestionID uint                       `json:"question_id" gorm:"not null;index"`
	SessionID  *uint                      `json:"session_id" gorm:"index"`
	Answer     datatypes.JSONType[Answer] `json:"answer" gorm:"type:jsonb"`
	IsAnswered bool                       `json:"is_answered" gorm:"default:false"`
	IsCorrect  bool                       `json:"is_correct" gorm:"default:false"`
	Time       int64                      `json:"time" gorm:"not null;default:0"` // milliseconds
	Speed      Speed                      `json:"speed" gorm:"size:16"`
	StartTime  *time.Time                 `json:"start_time"`
	EndTime    *time.Time                 `json:"end_time"`
	CreatedAt  time.Time                  `json:"created_at"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// Seconds is the attempt duration in seconds.
func (a *Attempt) Seconds() float64 {
	return float64(a.Time) / 1000
}
