package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/assessment-engine/internal/stats"
)

// HistogramBins is the bin count of every marks histogram.
const HistogramBins = 20

// MarkEntry is one folded submission's score.
type MarkEntry struct {
	UserID       uint    `json:"user_id"`
	SubmissionID uint    `json:"submission_id"`
	Marks        float64 `json:"marks"`
}

// QuestionStats aggregates every folded response to one question.
type QuestionStats struct {
	CorrectAttempts int       `json:"correct_attempts"`
	TotalAttempts   int       `json:"total_attempts"`
	SumTime         float64   `json:"sum_time"`
	SumSqTime       float64   `json:"sum_sq_time"`
	Times           []float64 `json:"times"`
}

// Accuracy is the share of attempts answered correctly.
func (q QuestionStats) Accuracy() float64 {
	if q.TotalAttempts == 0 {
		return 0
	}
	return float64(q.CorrectAttempts) / float64(q.TotalAttempts)
}

type SectionStats struct {
	SumMarks  float64         `json:"sum_marks"`
	MaxMarks  float64         `json:"max_marks"`
	Correct   int             `json:"correct"`
	Incorrect int             `json:"incorrect"`
	SumTime   float64         `json:"sum_time"`
	Hist      stats.Histogram `json:"hist"`
	Questions []QuestionStats `json:"questions"`
}

// DifficultyStats is the core-level timing bucket for one level.
type DifficultyStats struct {
	Correct       int       `json:"correct"`
	Incorrect     int       `json:"incorrect"`
	Time          float64   `json:"time"`
	TotalAttempts int       `json:"total_attempts"`
	CorrectTimes  []float64 `json:"correct_times"`
}

type DifficultyAnalysis struct {
	Easy   DifficultyStats `json:"easy"`
	Medium DifficultyStats `json:"medium"`
	Hard   DifficultyStats `json:"hard"`
}

// Bucket returns a pointer to the stats of level; unknown levels map to medium.
func (d *DifficultyAnalysis) Bucket(level QuestionLevel) *DifficultyStats {
	switch level {
	case LevelEasy:
		return &d.Easy
	case LevelHard:
		return &d.Hard
	default:
		return &d.Medium
	}
}

// Analysis is the running aggregate over folded submissions. It is treated
// as a value: updates produce a new Analysis.
type Analysis struct {
	MaxMarks      float64            `json:"max_marks"`
	Marks         []MarkEntry        `json:"marks"`
	Hist          stats.Histogram    `json:"hist"`
	SumMarks      float64            `json:"sum_marks"`
	SumSqMarks    float64            `json:"sum_sq_marks"`
	SumAccuracy   float64            `json:"sum_accuracy"`
	SumSqAccuracy float64            `json:"sum_sq_accuracy"`
	Sections      []SectionStats     `json:"sections"`
	Submissions   []uint             `json:"submissions"`
	Difficulty    DifficultyAnalysis `json:"difficulty"`
}

// Includes reports whether a submission has already been folded.
func (a *Analysis) Includes(submissionID uint) bool {
	for _, id := range a.Submissions {
		if id == submissionID {
			return true
		}
	}
	return false
}

// Samples returns the folded marks as a sample set.
func (a *Analysis) Samples() []stats.Sample {
	out := make([]stats.Sample, len(a.Marks))
	for i, m := range a.Marks {
		out[i] = stats.Sample{Value: m.Marks}
	}
	return out
}

// WrapperAnalysis persists the aggregate of one wrapper.
type WrapperAnalysis struct {
	ID        uint                         `json:"id" gorm:"primaryKey"`
	WrapperID uint                         `json:"wrapper_id" gorm:"not null;uniqueIndex"`
	CoreID    uint                         `json:"core_id" gorm:"not null;index"`
	Analysis  datatypes.JSONType[Analysis] `json:"analysis" gorm:"type:jsonb"`
	Version   int                          `json:"version" gorm:"not null;default:1"`
	UpdatedAt time.Time                    `json:"updated_at"`
}

func (WrapperAnalysis) TableName() string {
	return "wrapper_analyses"
}

// CoreAnalysis persists the aggregate shared by every wrapper of a core.
type CoreAnalysis struct {
	ID        uint                         `json:"id" gorm:"primaryKey"`
	CoreID    uint                         `json:"core_id" gorm:"not null;uniqueIndex"`
	Analysis  datatypes.JSONType[Analysis] `json:"analysis" gorm:"type:jsonb"`
	Version   int                          `json:"version" gorm:"not null;default:1"`
	UpdatedAt time.Time                    `json:"updated_at"`
}

func (CoreAnalysis) TableName() string {
	return "core_analyses"
}
