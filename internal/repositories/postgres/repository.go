package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
)

type repository struct {
	db *gorm.DB

	question     repositories.QuestionRepository
	attempt      repositories.AttemptRepository
	session      repositories.SessionRepository
	selectionLog repositories.SelectionLogRepository
	assessment   repositories.AssessmentRepository
	submission   repositories.SubmissionRepository
	analysis     repositories.AnalysisRepository
	topic        repositories.TopicRepository
	userStat     repositories.UserStatRepository
}

// NewRepository wires every PostgreSQL repository over one connection.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:           db,
		question:     NewQuestionPostgreSQL(db),
		attempt:      NewAttemptPostgreSQL(db),
		session:      NewSessionPostgreSQL(db),
		selectionLog: NewSelectionLogPostgreSQL(db),
		assessment:   NewAssessmentPostgreSQL(db),
		submission:   NewSubmissionPostgreSQL(db),
		analysis:     NewAnalysisPostgreSQL(db),
		topic:        NewTopicPostgreSQL(db),
		userStat:     NewUserStatPostgreSQL(db),
	}
}

func (r *repository) Question() repositories.QuestionRepository         { return r.question }
func (r *repository) Attempt() repositories.AttemptRepository           { return r.attempt }
func (r *repository) Session() repositories.SessionRepository           { return r.session }
func (r *repository) SelectionLog() repositories.SelectionLogRepository { return r.selectionLog }
func (r *repository) Assessment() repositories.AssessmentRepository     { return r.assessment }
func (r *repository) Submission() repositories.SubmissionRepository     { return r.submission }
func (r *repository) Analysis() repositories.AnalysisRepository         { return r.analysis }
func (r *repository) Topic() repositories.TopicRepository               { return r.topic }
func (r *repository) UserStat() repositories.UserStatRepository         { return r.userStat }

func (r *repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
