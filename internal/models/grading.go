package models

import (
	"time"

	"gorm.io/datatypes"
)

// ResponseQuestion is the raw answer to one core question. Time is in seconds.
type ResponseQuestion struct {
	Answer Answer  `json:"answer"`
	Time   float64 `json:"time"`
}

type ResponseSection struct {
	Questions []ResponseQuestion `json:"questions"`
}

type SubmissionResponse struct {
	Sections []ResponseSection `json:"sections"`
}

type FlowAction string

const (
	FlowVisit    FlowAction = "visit"
	FlowResponse FlowAction = "response"
)

// FlowEvent is one entry of the behavioural log. At is seconds since start.
type FlowEvent struct {
	Section  int        `json:"section"`
	Question int        `json:"question"`
	Action   FlowAction `json:"action"`
	Answer   *Answer    `json:"answer,omitempty"`
	At       float64    `json:"at"`
}

// QuestionMeta is the graded result of one question.
type QuestionMeta struct {
	QuestionID uint          `json:"question_id"`
	Level      QuestionLevel `json:"level"`
	Outcome    Outcome       `json:"outcome"`
	Mark       float64       `json:"mark"`
	Time       float64       `json:"time"`
	Bonus      bool          `json:"bonus,omitempty"`
	// Counted is false for answered questions dropped by a question group.
	Counted bool `json:"counted"`
}

// Attempted reports whether the question contributed an answer.
func (q QuestionMeta) Attempted() bool {
	return q.Outcome != OutcomeSkipped && q.Outcome != OutcomePending
}

type SectionMeta struct {
	Marks       float64        `json:"marks"`
	MaxMarks    float64        `json:"max_marks"`
	MarksGained float64        `json:"marks_gained"`
	MarksLost   float64        `json:"marks_lost"`
	Correct     int            `json:"correct"`
	Incorrect   int            `json:"incorrect"`
	Partial     int            `json:"partial"`
	Attempted   int            `json:"attempted"`
	Time        float64        `json:"time"`
	Questions   []QuestionMeta `json:"questions"`
}

// DifficultyBucket aggregates questions of one level.
type DifficultyBucket struct {
	Correct       int     `json:"correct"`
	Incorrect     int     `json:"incorrect"`
	Time          float64 `json:"time"`
	TotalAttempts int     `json:"total_attempts"`
	Questions     int     `json:"questions"`
}

type DifficultyMeta struct {
	Easy   DifficultyBucket `json:"easy"`
	Medium DifficultyBucket `json:"medium"`
	Hard   DifficultyBucket `json:"hard"`
}

// Bucket returns a pointer to the bucket for level; unknown levels map to medium.
func (d *DifficultyMeta) Bucket(level QuestionLevel) *DifficultyBucket {
	switch level {
	case LevelEasy:
		return &d.Easy
	case LevelHard:
		return &d.Hard
	default:
		return &d.Medium
	}
}

// PickingAbility counts how a learner chose between easy and tough questions.
type PickingAbility struct {
	EasySkipped    int `json:"easy_skipped"`
	EasyAttempted  int `json:"easy_attempted"`
	ToughSkipped   int `json:"tough_skipped"`
	ToughAttempted int `json:"tough_attempted"`
}

// RoadmapStep is one visit reconstructed from the flow log.
type RoadmapStep struct {
	Section  int     `json:"section"`
	Question int     `json:"question"`
	Dwell    float64 `json:"dwell"`
	Outcome  Outcome `json:"outcome"`
}

// SubmissionMeta is the full grading result of a submission.
type SubmissionMeta struct {
	Marks             float64        `json:"marks"`
	MaxMarks          float64        `json:"max_marks"`
	Percent           float64        `json:"percent"`
	Percentile        float64        `json:"percentile"`
	Rank              int            `json:"rank"`
	MarksGained       float64        `json:"marks_gained"`
	MarksLost         float64        `json:"marks_lost"`
	Attempted         int            `json:"attempted"`
	Correct           int            `json:"correct"`
	Incorrect         int            `json:"incorrect"`
	Partial           int            `json:"partial"`
	Accuracy          float64        `json:"accuracy"`
	Time              float64        `json:"time"`
	FirstSeenAccuracy float64        `json:"first_seen_accuracy"`
	Sections          []SectionMeta  `json:"sections"`
	Difficulty        DifficultyMeta `json:"difficulty"`
	PickingAbility    PickingAbility `json:"picking_ability"`
	Roadmap           []RoadmapStep  `json:"roadmap,omitempty"`
}

// Submission is one learner's response to one wrapper.
type Submission struct {
	ID        uint                                   `json:"id" gorm:"primaryKey"`
	UserID    uint                                   `json:"user_id" gorm:"not null;index"`
	WrapperID uint                                   `json:"wrapper_id" gorm:"not null;index"`
	CoreID    uint                                   `json:"core_id" gorm:"not null;index"`
	Response  datatypes.JSONType[SubmissionResponse] `json:"response" gorm:"type:jsonb"`
	Flow      datatypes.JSONSlice[FlowEvent]         `json:"flow" gorm:"type:jsonb"`
	Meta      datatypes.JSONType[SubmissionMeta]     `json:"meta" gorm:"type:jsonb"`
	Graded    bool                                   `json:"graded" gorm:"default:false;index"`
	GradedAt  *time.Time                             `json:"graded_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Submission) TableName() string {
	return "submissions"
}
