package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/selector"
)

// QuestionRepository interface for question bank operations
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Question, error)

	// Selection queries. FindOne returns nil, nil when nothing matches.
	FindOne(ctx context.Context, tx *gorm.DB, query selector.Query) (*models.Question, error)
	GetByLink(ctx context.Context, tx *gorm.DB, linkID uint) ([]models.Question, error)

	// IncrementAttempts bumps attempts_count atomically and returns the new value.
	IncrementAttempts(ctx context.Context, tx *gorm.DB, id uint) (int, error)
	UpdateCalibration(ctx context.Context, tx *gorm.DB, id uint, level models.QuestionLevel, stats models.QuestionStatistics) error
}
