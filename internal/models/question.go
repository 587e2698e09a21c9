package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type QuestionLevel = int

const (
	LevelEasy   QuestionLevel = 1
	LevelMedium QuestionLevel = 2
	LevelHard   QuestionLevel = 3
)

// Levels lists every difficulty level in ascending order.
var Levels = []QuestionLevel{LevelEasy, LevelMedium, LevelHard}

type QuestionType string

const (
	QuestionSingle         QuestionType = "single"
	QuestionMultiple       QuestionType = "multiple"
	QuestionInteger        QuestionType = "integer"
	QuestionNumericRange   QuestionType = "numeric_range"
	QuestionLinkedSingle   QuestionType = "linked_single"
	QuestionLinkedMultiple QuestionType = "linked_multiple"
	QuestionLinkedInteger  QuestionType = "linked_integer"
)

const linkedPrefix = "linked_"

// IsLinked reports whether the question belongs to a shared-context group.
func (t QuestionType) IsLinked() bool {
	return strings.HasPrefix(string(t), linkedPrefix)
}

// Base strips the linked variant so correctness can be decided uniformly.
func (t QuestionType) Base() QuestionType {
	return QuestionType(strings.TrimPrefix(string(t), linkedPrefix))
}

// AnswerKey is the stored correct answer. Only the fields relevant to the
// question type are set.
type AnswerKey struct {
	Options    []string `json:"options,omitempty"`
	Integer    *int64   `json:"integer,omitempty"`
	RangeStart *float64 `json:"range_start,omitempty"`
	RangeEnd   *float64 `json:"range_end,omitempty"`
}

// QuestionStatistics is recomputed as attempts accumulate.
type QuestionStatistics struct {
	PerfectTimeMin  float64    `json:"perfect_time_min" gorm:"default:0"`
	PerfectTimeMax  float64    `json:"perfect_time_max" gorm:"default:0"`
	MedianTime      float64    `json:"median_time" gorm:"default:0"`
	AverageAccuracy float64    `json:"average_accuracy" gorm:"default:0"`
	DemoRank        int        `json:"demo_rank" gorm:"default:0"`
	CalibratedAt    *time.Time `json:"calibrated_at"`
}

// Calibrated reports whether a perfect-time window has been stored.
func (s QuestionStatistics) Calibrated() bool {
	return s.CalibratedAt != nil && s.PerfectTimeMax > 0
}

type Question struct {
	ID         uint          `json:"id" gorm:"primaryKey"`
	TopicID    string        `json:"topic_id" gorm:"not null;size:64;index"`
	SubTopicID string        `json:"sub_topic_id" gorm:"not null;size:64;index:idx_question_selection,priority:1"`
	Level      QuestionLevel `json:"level" gorm:"not null;index:idx_question_selection,priority:2" validate:"required,question_level"`
	Type       QuestionType  `json:"type" gorm:"not null;size:32" validate:"required,question_type"`

	// Linked questions share a passage; LinkOrder is their position in it.
	LinkID    *uint `json:"link_id" gorm:"index"`
	LinkOrder int   `json:"link_order" gorm:"default:0"`

	Concepts  datatypes.JSONSlice[string]   `json:"concepts" gorm:"type:jsonb"`
	AnswerKey datatypes.JSONType[AnswerKey] `json:"answer_key" gorm:"type:jsonb"`

	AttemptsCount int  `json:"attempts_count" gorm:"default:0;index:idx_question_selection,priority:3"`
	IsPublished   bool `json:"is_published" gorm:"default:false;index"`
	IsArchived    bool `json:"is_archived" gorm:"default:false;index"`
	Fixed         bool `json:"fixed" gorm:"default:false"`

	Statistics QuestionStatistics `json:"statistics" gorm:"embedded;embeddedPrefix:stats_"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// Eligible reports whether the question may be served organically.
func (q *Question) Eligible() bool {
	return q.IsPublished && !q.IsArchived
}

// HasConcept reports whether concept is tagged on the question.
func (q *Question) HasConcept(concept string) bool {
	for _, c := range q.Concepts {
		if c == concept {
			return true
		}
	}
	return false
}
