package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
)

type AnalysisPostgreSQL struct {
	*SharedHelpers
}

func NewAnalysisPostgreSQL(db *gorm.DB) repositories.AnalysisRepository {
	return &AnalysisPostgreSQL{SharedHelpers: NewSharedHelpers(db)}
}

func (a *AnalysisPostgreSQL) GetWrapperAnalysis(ctx context.Context, tx *gorm.DB, wrapperID uint) (*models.WrapperAnalysis, error) {
	var analysis models.WrapperAnalysis
	if err := a.getDB(tx).WithContext(ctx).Where("wrapper_id = ?", wrapperID).First(&analysis).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis, nil
}

func (a *AnalysisPostgreSQL) SaveWrapperAnalysis(ctx context.Context, tx *gorm.DB, analysis *models.WrapperAnalysis) error {
	db := a.getDB(tx).WithContext(ctx)
	if analysis.ID == 0 {
		analysis.Version = 1
		return translateConflict(db.Create(analysis).Error)
	}

	result := db.Model(&models.WrapperAnalysis{}).
		Where("id = ? AND version = ?", analysis.ID, analysis.Version).
		Updates(map[string]interface{}{
			"analysis":   analysis.Analysis,
			"version":    analysis.Version + 1,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrVersionConflict
	}
	analysis.Version++
	return nil
}

func (a *AnalysisPostgreSQL) GetCoreAnalysis(ctx context.Context, tx *gorm.DB, coreID uint) (*models.CoreAnalysis, error) {
	var analysis models.CoreAnalysis
	if err := a.getDB(tx).WithContext(ctx).Where("core_id = ?", coreID).First(&analysis).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis, nil
}

func (a *AnalysisPostgreSQL) SaveCoreAnalysis(ctx context.Context, tx *gorm.DB, analysis *models.CoreAnalysis) error {
	db := a.getDB(tx).WithContext(ctx)
	if analysis.ID == 0 {
		analysis.Version = 1
		return translateConflict(db.Create(analysis).Error)
	}

	result := db.Model(&models.CoreAnalysis{}).
		Where("id = ? AND version = ?", analysis.ID, analysis.Version).
		Updates(map[string]interface{}{
			"analysis":   analysis.Analysis,
			"version":    analysis.Version + 1,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrVersionConflict
	}
	analysis.Version++
	return nil
}

// translateConflict maps a unique-index violation on first insert to a
// version conflict. Requires TranslateError on the gorm config.
func translateConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repositories.ErrVersionConflict
	}
	return err
}
