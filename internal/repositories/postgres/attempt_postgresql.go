package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
)

type AttemptPostgreSQL struct {
	*SharedHelpers
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{SharedHelpers: NewSharedHelpers(db)}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	return a.getDB(tx).WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.getDB(tx).WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// List returns attempts newest first.
func (a *AttemptPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AttemptFilters) ([]models.Attempt, error) {
	var attempts []models.Attempt

	query := a.getDB(tx).WithContext(ctx).Model(&models.Attempt{})
	query = a.applyFiltersAttempt(query, filters)
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	if err := query.Order("id DESC").Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) GetSummary(ctx context.Context, tx *gorm.DB, questionID uint) (*repositories.AttemptSummary, error) {
	var summary repositories.AttemptSummary
	if err := a.getDB(tx).WithContext(ctx).Model(&models.Attempt{}).
		Select("COUNT(*) AS answered, COUNT(*) FILTER (WHERE is_correct) AS correct").
		Where("question_id = ? AND is_answered = ?", questionID, true).
		Scan(&summary).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

func (a *AttemptPostgreSQL) applyFiltersAttempt(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.QuestionID != nil {
		query = query.Where("question_id = ?", *filters.QuestionID)
	}
	if filters.SessionID != nil {
		query = query.Where("session_id = ?", *filters.SessionID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.OnlyAnswered {
		query = query.Where("is_answered = ?", true)
	}
	return query
}
