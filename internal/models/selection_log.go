package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SelectionTier names the fallback stage that produced (or failed) a pick.
type SelectionTier string

const (
	TierUnderTarget   SelectionTier = "under-target"
	TierOverTarget    SelectionTier = "over-target"
	TierAnyFilter     SelectionTier = "any-filter"
	TierAnyFilterFree SelectionTier = "any-filter-unfixed"
	TierConcept       SelectionTier = "concept"
	TierAdaptiveLevel SelectionTier = "adaptive-level"
	TierLink          SelectionTier = "link"
)

// SelectionLog records one fallback stage of one selection for offline tuning.
type SelectionLog struct {
	ID              uuid.UUID                             `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID       uint                                  `json:"session_id" gorm:"index"`
	Strategy        SelectorName                          `json:"strategy" gorm:"size:32"`
	Criteria        datatypes.JSONType[SelectionCriteria] `json:"criteria" gorm:"type:jsonb"`
	DataLevelFactor float64                               `json:"data_level_factor"`
	PoissonDraw     int                                   `json:"poisson_draw"`
	DataLevel       int                                   `json:"data_level"`
	Tier            SelectionTier                         `json:"tier" gorm:"size:32"`
	Found           bool                                  `json:"found"`
	QuestionID      *uint                                 `json:"question_id"`
	CreatedAt       time.Time                             `json:"created_at"`
}

func (SelectionLog) TableName() string {
	return "selection_logs"
}
