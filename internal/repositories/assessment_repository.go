package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

// AssessmentRepository interface for cores and their wrappers
type AssessmentRepository interface {
	// Cores
	CreateCore(ctx context.Context, tx *gorm.DB, core *models.AssessmentCore) error
	GetCore(ctx context.Context, tx *gorm.DB, id uint) (*models.AssessmentCore, error)
	// GetCoreForUpdate locks the core row until tx ends.
	GetCoreForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.AssessmentCore, error)
	UpdateBonus(ctx context.Context, tx *gorm.DB, id uint, bonus models.BonusMap) error

	// Wrappers
	CreateWrapper(ctx context.Context, tx *gorm.DB, wrapper *models.AssessmentWrapper) error
	GetWrapper(ctx context.Context, tx *gorm.DB, id uint) (*models.AssessmentWrapper, error)
	ListWrappersByCore(ctx context.Context, tx *gorm.DB, coreID uint) ([]models.AssessmentWrapper, error)
	MarkWrapperGraded(ctx context.Context, tx *gorm.DB, id uint) error
}

// SubmissionRepository interface for submission operations
type SubmissionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error)
	List(ctx context.Context, tx *gorm.DB, filters SubmissionFilters) ([]models.Submission, error)
	SaveMeta(ctx context.Context, tx *gorm.DB, id uint, meta models.SubmissionMeta, gradedAt time.Time) error
}

// AnalysisRepository persists running aggregates with optimistic versioning.
// Get methods return nil, nil when no analysis exists yet; Save methods
// return ErrVersionConflict when the stored version moved on.
type AnalysisRepository interface {
	GetWrapperAnalysis(ctx context.Context, tx *gorm.DB, wrapperID uint) (*models.WrapperAnalysis, error)
	SaveWrapperAnalysis(ctx context.Context, tx *gorm.DB, analysis *models.WrapperAnalysis) error
	GetCoreAnalysis(ctx context.Context, tx *gorm.DB, coreID uint) (*models.CoreAnalysis, error)
	SaveCoreAnalysis(ctx context.Context, tx *gorm.DB, analysis *models.CoreAnalysis) error
}
