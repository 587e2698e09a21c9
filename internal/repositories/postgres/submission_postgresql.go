package postgres

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
)

type SubmissionPostgreSQL struct {
	*SharedHelpers
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{SharedHelpers: NewSharedHelpers(db)}
}

func (s *SubmissionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	return s.getDB(tx).WithContext(ctx).Create(submission).Error
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	var submission models.Submission
	if err := s.getDB(tx).WithContext(ctx).First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// List returns submissions in creation order.
func (s *SubmissionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]models.Submission, error) {
	var submissions []models.Submission

	query := s.getDB(tx).WithContext(ctx).Model(&models.Submission{})
	if filters.WrapperID != nil {
		query = query.Where("wrapper_id = ?", *filters.WrapperID)
	}
	if filters.CoreID != nil {
		query = query.Where("core_id = ?", *filters.CoreID)
	}
	if filters.Graded != nil {
		query = query.Where("graded = ?", *filters.Graded)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("id ASC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (s *SubmissionPostgreSQL) SaveMeta(ctx context.Context, tx *gorm.DB, id uint, meta models.SubmissionMeta, gradedAt time.Time) error {
	result := s.getDB(tx).WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"meta":      datatypes.NewJSONType(meta),
			"graded":    true,
			"graded_at": gradedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
