package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

// EventType represents different types of engine events
type EventType string

const (
	// Selection events
	EventSelectionLogged EventType = "selection.logged"

	// Grading events
	EventSubmissionGraded EventType = "submission.graded"
	EventWrapperGraded    EventType = "wrapper.graded"
	EventCoreRegraded     EventType = "core.regraded"

	// Calibration events
	EventQuestionRecalibrated EventType = "question.recalibrated"
)

const (
	eventSource  = "assessment-engine"
	eventVersion = "1.0"
)

// Event is the envelope of every published engine event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent wraps data in a fresh envelope.
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// Event payloads

type SelectionLoggedEvent struct {
	Logs []models.SelectionLog `json:"logs"`
}

type SubmissionGradedEvent struct {
	SubmissionID uint    `json:"submission_id"`
	WrapperID    uint    `json:"wrapper_id"`
	CoreID       uint    `json:"core_id"`
	UserID       uint    `json:"user_id"`
	Marks        float64 `json:"marks"`
	MaxMarks     float64 `json:"max_marks"`
	Percent      float64 `json:"percent"`
	Percentile   float64 `json:"percentile"`
	Rank         int     `json:"rank"`
}

type WrapperGradedEvent struct {
	WrapperID uint `json:"wrapper_id"`
	CoreID    uint `json:"core_id"`
	Graded    int  `json:"graded"`
	Failed    int  `json:"failed"`
}

type CoreRegradedEvent struct {
	CoreID      uint   `json:"core_id"`
	Submissions int    `json:"submissions"`
	Wrappers    int    `json:"wrappers"`
	Reason      string `json:"reason"`
}

type QuestionRecalibratedEvent struct {
	QuestionID     uint    `json:"question_id"`
	PreviousLevel  int     `json:"previous_level"`
	Level          int     `json:"level"`
	PerfectTimeMin float64 `json:"perfect_time_min"`
	PerfectTimeMax float64 `json:"perfect_time_max"`
	MedianTime     float64 `json:"median_time"`
	Attempts       int     `json:"attempts"`
}
