package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/assessment-engine/internal/calibration"
	"github.com/SAP-F-2025/assessment-engine/internal/events"
	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
)

type CalibrationService interface {
	// RecalibrateQuestion recomputes the perfect-time window, accuracy and
	// level of a question from its answered attempts.
	RecalibrateQuestion(ctx context.Context, questionID uint) (*RecalibrationResult, error)
}

type calibrationService struct {
	repo        repositories.Repository
	publisher   events.EventPublisher
	logger      *ServiceLogger
	minAttempts int
	now         func() time.Time
}

// NewCalibrationService reclassifies levels only once a question has at
// least minAttempts answered attempts; the timing window is always refreshed.
func NewCalibrationService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, minAttempts int) CalibrationService {
	return &calibrationService{
		repo:        repo,
		publisher:   publisher,
		logger:      NewServiceLogger(logger, LogConfig{Service: "engine", Component: "calibration"}),
		minAttempts: minAttempts,
		now:         time.Now,
	}
}

func (s *calibrationService) RecalibrateQuestion(ctx context.Context, questionID uint) (result *RecalibrationResult, err error) {
	op := s.logger.WithOperation(ctx, "recalibrate_question", 0)
	defer func() { op.LogResult(questionID, "question", err) }()

	question, err := s.repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	attempts, err := s.repo.Attempt().List(ctx, nil, repositories.AttemptFilters{
		QuestionID:   &questionID,
		OnlyAnswered: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	summary, err := s.repo.Attempt().GetSummary(ctx, nil, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize attempts: %w", err)
	}

	timings := make([]calibration.Attempt, len(attempts))
	for i := range attempts {
		timings[i] = calibration.Attempt{Seconds: attempts[i].Seconds(), Correct: attempts[i].IsCorrect}
	}

	window := calibration.PerfectTime(timings, question.Level)
	level := question.Level
	if len(timings) >= s.minAttempts {
		level = calibration.ReclassifyLevel(timings, window.Min, question.Level)
	}

	now := s.now()
	statistics := question.Statistics
	statistics.PerfectTimeMin = window.Min
	statistics.PerfectTimeMax = window.Max
	statistics.MedianTime = window.MedianTime
	statistics.AverageAccuracy = summary.Accuracy()
	statistics.CalibratedAt = &now

	if err := s.repo.Question().UpdateCalibration(ctx, nil, questionID, level, statistics); err != nil {
		return nil, fmt.Errorf("failed to update question calibration: %w", err)
	}

	result = &RecalibrationResult{
		QuestionID:    questionID,
		PreviousLevel: question.Level,
		Level:         level,
		Attempts:      len(attempts),
		Statistics:    statistics,
	}

	publish(ctx, s.publisher, s.logger, events.EventQuestionRecalibrated, events.QuestionRecalibratedEvent{
		QuestionID:     questionID,
		PreviousLevel:  question.Level,
		Level:          level,
		PerfectTimeMin: window.Min,
		PerfectTimeMax: window.Max,
		MedianTime:     window.MedianTime,
		Attempts:       len(attempts),
	})
	return result, nil
}

// publish sends an event without failing the calling operation.
func publish(ctx context.Context, publisher events.EventPublisher, logger *ServiceLogger, eventType events.EventType, data interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishEvent(ctx, events.NewEvent(eventType, data)); err != nil {
		logger.logger.Warn("Failed to publish event", "event_type", eventType, "error", err)
	}
}

// speedOf classifies an answered attempt against the question's stored
// window, or the level priors before the first calibration.
func speedOf(question *models.Question, seconds float64) models.Speed {
	window := calibration.Priors(question.Level)
	if question.Statistics.Calibrated() {
		window = calibration.Window{
			Min:        question.Statistics.PerfectTimeMin,
			Max:        question.Statistics.PerfectTimeMax,
			MedianTime: question.Statistics.MedianTime,
		}
	}
	return models.Speed(calibration.ClassifySpeed(seconds, window))
}
