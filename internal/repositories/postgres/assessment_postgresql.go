package postgres

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
)

type AssessmentPostgreSQL struct {
	*SharedHelpers
}

func NewAssessmentPostgreSQL(db *gorm.DB) repositories.AssessmentRepository {
	return &AssessmentPostgreSQL{SharedHelpers: NewSharedHelpers(db)}
}

func (a *AssessmentPostgreSQL) CreateCore(ctx context.Context, tx *gorm.DB, core *models.AssessmentCore) error {
	return a.getDB(tx).WithContext(ctx).Create(core).Error
}

func (a *AssessmentPostgreSQL) GetCore(ctx context.Context, tx *gorm.DB, id uint) (*models.AssessmentCore, error) {
	var core models.AssessmentCore
	if err := a.getDB(tx).WithContext(ctx).First(&core, id).Error; err != nil {
		return nil, err
	}
	return &core, nil
}

func (a *AssessmentPostgreSQL) GetCoreForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.AssessmentCore, error) {
	var core models.AssessmentCore
	if err := forUpdate(a.getDB(tx).WithContext(ctx)).First(&core, id).Error; err != nil {
		return nil, err
	}
	return &core, nil
}

func (a *AssessmentPostgreSQL) UpdateBonus(ctx context.Context, tx *gorm.DB, id uint, bonus models.BonusMap) error {
	result := a.getDB(tx).WithContext(ctx).Model(&models.AssessmentCore{}).
		Where("id = ?", id).
		Update("bonus", datatypes.NewJSONType(bonus))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (a *AssessmentPostgreSQL) CreateWrapper(ctx context.Context, tx *gorm.DB, wrapper *models.AssessmentWrapper) error {
	return a.getDB(tx).WithContext(ctx).Create(wrapper).Error
}

func (a *AssessmentPostgreSQL) GetWrapper(ctx context.Context, tx *gorm.DB, id uint) (*models.AssessmentWrapper, error) {
	var wrapper models.AssessmentWrapper
	if err := a.getDB(tx).WithContext(ctx).First(&wrapper, id).Error; err != nil {
		return nil, err
	}
	return &wrapper, nil
}

func (a *AssessmentPostgreSQL) ListWrappersByCore(ctx context.Context, tx *gorm.DB, coreID uint) ([]models.AssessmentWrapper, error) {
	var wrappers []models.AssessmentWrapper
	if err := a.getDB(tx).WithContext(ctx).
		Where("core_id = ? AND is_archived = ?", coreID, false).
		Order("id ASC").
		Find(&wrappers).Error; err != nil {
		return nil, err
	}
	return wrappers, nil
}

func (a *AssessmentPostgreSQL) MarkWrapperGraded(ctx context.Context, tx *gorm.DB, id uint) error {
	return a.getDB(tx).WithContext(ctx).Model(&models.AssessmentWrapper{}).
		Where("id = ?", id).
		Update("graded", true).Error
}
