package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
)

type SessionPostgreSQL struct {
	*SharedHelpers
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{SharedHelpers: NewSharedHelpers(db)}
}

func (s *SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.PracticeSession) error {
	if session.Status == "" {
		session.Status = models.SessionActive
	}
	return s.getDB(tx).WithContext(ctx).Create(session).Error
}

func (s *SessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PracticeSession, error) {
	var session models.PracticeSession
	if err := s.getDB(tx).WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.PracticeSession, error) {
	var session models.PracticeSession
	if err := forUpdate(s.getDB(tx).WithContext(ctx)).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, session *models.PracticeSession) error {
	return s.getDB(tx).WithContext(ctx).Save(session).Error
}

type SelectionLogPostgreSQL struct {
	*SharedHelpers
}

func NewSelectionLogPostgreSQL(db *gorm.DB) repositories.SelectionLogRepository {
	return &SelectionLogPostgreSQL{SharedHelpers: NewSharedHelpers(db)}
}

const selectionLogBatchSize = 100

func (s *SelectionLogPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, logs []models.SelectionLog) error {
	if len(logs) == 0 {
		return nil
	}
	return s.getDB(tx).WithContext(ctx).CreateInBatches(logs, selectionLogBatchSize).Error
}
