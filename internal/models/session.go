package models

import (
	"time"

	"gorm.io/datatypes"
)

type SelectorName string

const (
	SelectorDefault       SelectorName = "default"
	SelectorNucleus       SelectorName = "nucleus"
	SelectorDemo          SelectorName = "demo"
	SelectorTopicAdaptive SelectorName = "topicAdaptive"
	SelectorSuperAdaptive SelectorName = "superAdaptive"
)

type CriteriaKind string

const (
	CriteriaSingleLevel CriteriaKind = "single_level"
	CriteriaLevelSet    CriteriaKind = "level_set"
	CriteriaConceptSet  CriteriaKind = "concept_set"
)

// SelectionCriteria is one configured filter of a session.
//
//	single_level: SubTopic + Level
//	level_set:    SubTopic + Levels
//	concept_set:  SubTopic + Concepts, optionally narrowed by Levels
type SelectionCriteria struct {
	Kind     CriteriaKind    `json:"kind" validate:"required,criteria_kind"`
	SubTopic string          `json:"sub_topic" validate:"required"`
	Level    QuestionLevel   `json:"level,omitempty" validate:"omitempty,question_level"`
	Levels   []QuestionLevel `json:"levels,omitempty" validate:"omitempty,dive,question_level"`
	Concepts []string        `json:"concepts,omitempty" validate:"omitempty,dive,required"`
}

// LevelSet returns the levels the criteria admits. An empty result means
// any level.
func (c SelectionCriteria) LevelSet() []QuestionLevel {
	switch c.Kind {
	case CriteriaSingleLevel:
		return []QuestionLevel{c.Level}
	default:
		return c.Levels
	}
}

// WithLevel returns a single-level copy of the criteria.
func (c SelectionCriteria) WithLevel(level QuestionLevel) SelectionCriteria {
	return SelectionCriteria{Kind: CriteriaSingleLevel, SubTopic: c.SubTopic, Level: level}
}

type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	OutcomePartial   Outcome = "partial"
	OutcomeSkipped   Outcome = "skipped"
)

// SessionQuestion is a question already served in a session.
type SessionQuestion struct {
	QuestionID  uint          `json:"question_id"`
	SubTopic    string        `json:"sub_topic"`
	Level       QuestionLevel `json:"level"`
	FilterIndex int           `json:"filter_index"`
	Concept     string        `json:"concept,omitempty"`
	Outcome     Outcome       `json:"outcome"`
	AttemptID   *uint         `json:"attempt_id,omitempty"`
	ServedAt    time.Time     `json:"served_at"`
}

// Answered reports whether the learner has responded (skips excluded).
func (q SessionQuestion) Answered() bool {
	return q.Outcome == OutcomeCorrect || q.Outcome == OutcomeIncorrect || q.Outcome == OutcomePartial
}

type SessionConfig struct {
	Selector      SelectorName `json:"selector" validate:"selector_strategy"`
	QuestionCount int          `json:"question_count" validate:"min=0,max=500"`
	LinkID        *uint        `json:"link_id,omitempty"`
}

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

type PracticeSession struct {
	ID        uint                                   `json:"id" gorm:"primaryKey"`
	UserID    uint                                   `json:"user_id" gorm:"not null;index"`
	Filters   datatypes.JSONSlice[SelectionCriteria] `json:"filters" gorm:"type:jsonb"`
	Questions datatypes.JSONSlice[SessionQuestion]   `json:"questions" gorm:"type:jsonb"`
	Config    datatypes.JSONType[SessionConfig]      `json:"config" gorm:"type:jsonb"`
	Status    SessionStatus                          `json:"status" gorm:"size:16;default:active;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PracticeSession) TableName() string {
	return "practice_sessions"
}

// ServedIDs returns the ids of every question already served.
func (s *PracticeSession) ServedIDs() []uint {
	ids := make([]uint, 0, len(s.Questions))
	for _, q := range s.Questions {
		ids = append(ids, q.QuestionID)
	}
	return ids
}

// Full reports whether the configured question count has been reached.
func (s *PracticeSession) Full() bool {
	limit := s.Config.Data().QuestionCount
	return limit > 0 && len(s.Questions) >= limit
}
