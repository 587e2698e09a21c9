package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

// TopicRepository interface for sub topic metadata
type TopicRepository interface {
	GetSubTopic(ctx context.Context, tx *gorm.DB, id string) (*models.SubTopic, error)
	Upsert(ctx context.Context, tx *gorm.DB, subTopic *models.SubTopic) error
}

// UserStatRepository interface for per-user concept mastery
type UserStatRepository interface {
	// GetOrCreate returns the stat row, inserting an empty one on first use.
	GetOrCreate(ctx context.Context, tx *gorm.DB, userID uint, subTopicID string) (*models.UserConceptStat, error)
	// RecordAnswer adds one answer to a concept and marks it as the last one served.
	RecordAnswer(ctx context.Context, tx *gorm.DB, userID uint, subTopicID, concept string, correct bool) error
}
