package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubTopic carries the metadata the selector biases on.
type SubTopic struct {
	ID        string                      `json:"id" gorm:"primaryKey;size:64"`
	TopicID   string                      `json:"topic_id" gorm:"size:64;index"`
	Name      string                      `json:"name" gorm:"size:200"`
	DataLevel float64                     `json:"data_level" gorm:"default:1"`
	Concepts  datatypes.JSONSlice[string] `json:"concepts" gorm:"type:jsonb"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

func (SubTopic) TableName() string {
	return "sub_topics"
}

// ConceptProgress tracks one learner's answers for one concept.
type ConceptProgress struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

// Mastered requires at least three answers with 70% or more correct.
func (p ConceptProgress) Mastered() bool {
	return p.Answered >= 3 && 10*p.Correct >= 7*p.Answered
}

// UserConceptStat is created lazily on first concept-based selection.
type UserConceptStat struct {
	ID          uint                                           `json:"id" gorm:"primaryKey"`
	UserID      uint                                           `json:"user_id" gorm:"not null;uniqueIndex:idx_user_sub_topic"`
	SubTopicID  string                                         `json:"sub_topic_id" gorm:"not null;size:64;uniqueIndex:idx_user_sub_topic"`
	Concepts    datatypes.JSONType[map[string]ConceptProgress] `json:"concepts" gorm:"type:jsonb"`
	LastConcept string                                         `json:"last_concept" gorm:"size:128"`
	UpdatedAt   time.Time                                      `json:"updated_at"`
}

func (UserConceptStat) TableName() string {
	return "user_concept_stats"
}

// Progress returns the progress recorded for concept.
func (s *UserConceptStat) Progress(concept string) ConceptProgress {
	return s.Concepts.Data()[concept]
}
