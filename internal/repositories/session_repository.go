package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

// SessionRepository interface for practice sessions
type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.PracticeSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PracticeSession, error)
	// GetByIDForUpdate locks the session row until tx ends.
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.PracticeSession, error)
	Update(ctx context.Context, tx *gorm.DB, session *models.PracticeSession) error
}

// SelectionLogRepository stores selector diagnostics.
type SelectionLogRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, logs []models.SelectionLog) error
}
