package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository groups every store the engine uses and the transaction boundary
// that spans them.
type Repository interface {
	Question() QuestionRepository
	Attempt() AttemptRepository
	Session() SessionRepository
	SelectionLog() SelectionLogRepository
	Assessment() AssessmentRepository
	Submission() SubmissionRepository
	Analysis() AnalysisRepository
	Topic() TopicRepository
	UserStat() UserStatRepository

	// Transaction runs fn inside a database transaction. The tx handed to fn
	// is passed on to every repository call that must join it.
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// IsNotFoundError reports whether err means the requested row does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
