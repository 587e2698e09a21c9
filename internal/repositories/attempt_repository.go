package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

// AttemptRepository interface for practice attempt operations
type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error)
	List(ctx context.Context, tx *gorm.DB, filters AttemptFilters) ([]models.Attempt, error)

	// Statistics
	GetSummary(ctx context.Context, tx *gorm.DB, questionID uint) (*AttemptSummary, error)
}
