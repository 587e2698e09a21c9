package models

import (
	"sort"
	"time"

	"gorm.io/datatypes"
)

type MarkingSchemeKind string

const (
	MarkingStandard MarkingSchemeKind = "standard"
	MarkingPartial  MarkingSchemeKind = "partial"
)

// MarkingScheme decides how multi-correct answers are credited. Under the
// partial scheme every selected option of a strict correct subset earns
// PartialMark.
type MarkingScheme struct {
	Kind        MarkingSchemeKind `json:"kind" validate:"omitempty,oneof=standard partial"`
	PartialMark float64           `json:"partial_mark" validate:"min=0"`
}

// BonusMap maps a question id to the time it was made a bonus question.
type BonusMap map[uint]time.Time

// CoreQuestion is a question as it appears inside a core, with the fields
// grading needs denormalized from the question bank.
type CoreQuestion struct {
	QuestionID    uint          `json:"question_id" validate:"required"`
	Level         QuestionLevel `json:"level" validate:"required,question_level"`
	Type          QuestionType  `json:"type" validate:"required,question_type"`
	AnswerKey     AnswerKey     `json:"answer_key"`
	CorrectMark   float64       `json:"correct_mark"`
	IncorrectMark float64       `json:"incorrect_mark"`
	Topic         string        `json:"topic"`
	SubTopic      string        `json:"sub_topic"`
}

type CoreSection struct {
	Name      string         `json:"name"`
	Questions []CoreQuestion `json:"questions" validate:"dive"`
}

// MaxMarks is the sum of every question's correct mark.
func (s CoreSection) MaxMarks() float64 {
	return s.MaxMarksWithin(nil)
}

// MaxMarksWithin sums correct marks, counting only the Limit highest of each
// question group. Group indices outside the section are ignored.
func (s CoreSection) MaxMarksWithin(groups []QuestionGroup) float64 {
	grouped := make(map[int]bool)
	var total float64
	for _, g := range groups {
		marks := make([]float64, 0, len(g.Questions))
		for _, idx := range g.Questions {
			if idx < 0 || idx >= len(s.Questions) || grouped[idx] {
				continue
			}
			grouped[idx] = true
			marks = append(marks, s.Questions[idx].CorrectMark)
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(marks)))
		for i := 0; i < len(marks) && i < g.Limit; i++ {
			total += marks[i]
		}
	}
	for i, q := range s.Questions {
		if !grouped[i] {
			total += q.CorrectMark
		}
	}
	return total
}

// QuestionGroup is an "attempt any Limit of these" block inside a section.
type QuestionGroup struct {
	Section   int   `json:"section" validate:"min=0"`
	Questions []int `json:"questions" validate:"min=1"`
	Limit     int   `json:"limit" validate:"min=1"`
}

type AssessmentCore struct {
	ID             uint                               `json:"id" gorm:"primaryKey"`
	Title          string                             `json:"title" gorm:"size:200"`
	Sections       datatypes.JSONSlice[CoreSection]   `json:"sections" gorm:"type:jsonb"`
	MarkingScheme  datatypes.JSONType[MarkingScheme]  `json:"marking_scheme" gorm:"type:jsonb"`
	Bonus          datatypes.JSONType[BonusMap]       `json:"bonus" gorm:"type:jsonb"`
	QuestionGroups datatypes.JSONSlice[QuestionGroup] `json:"question_groups" gorm:"type:jsonb"`
	Duration       int                                `json:"duration" gorm:"default:0"` // seconds
	IsArchived     bool                               `json:"is_archived" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AssessmentCore) TableName() string {
	return "assessment_cores"
}

// MaxMarks is the sum of every section's maximum, honoring question groups.
func (c *AssessmentCore) MaxMarks() float64 {
	var total float64
	for i := range c.Sections {
		total += c.SectionMaxMarks(i)
	}
	return total
}

// SectionMaxMarks is the maximum of one section under its question groups.
func (c *AssessmentCore) SectionMaxMarks(section int) float64 {
	return c.Sections[section].MaxMarksWithin(c.GroupsFor(section))
}

// GroupsFor returns the question groups declared for a section.
func (c *AssessmentCore) GroupsFor(section int) []QuestionGroup {
	var out []QuestionGroup
	for _, g := range c.QuestionGroups {
		if g.Section == section {
			out = append(out, g)
		}
	}
	return out
}

// AssessmentWrapper is one schedulable sitting of a core.
type AssessmentWrapper struct {
	ID            uint                        `json:"id" gorm:"primaryKey"`
	CoreID        uint                        `json:"core_id" gorm:"not null;index"`
	Title         string                      `json:"title" gorm:"size:200"`
	AvailableFrom *time.Time                  `json:"available_from"`
	AvailableTill *time.Time                  `json:"available_till"`
	Phases        datatypes.JSONSlice[string] `json:"phases" gorm:"type:jsonb"`
	Graded        bool                        `json:"graded" gorm:"default:false"`
	IsArchived    bool                        `json:"is_archived" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AssessmentWrapper) TableName() string {
	return "assessment_wrappers"
}
