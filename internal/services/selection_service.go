package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-engine/internal/calibration"
	"github.com/SAP-F-2025/assessment-engine/internal/grading"
	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
	"github.com/SAP-F-2025/assessment-engine/internal/selector"
	"github.com/SAP-F-2025/assessment-engine/internal/validator"
)

type SelectionService interface {
	StartSession(ctx context.Context, req *StartSessionRequest) (*models.PracticeSession, error)
	// NextQuestion serves the next question of a session with its configured
	// strategy. Exhaustion completes the session.
	NextQuestion(ctx context.Context, sessionID uint) (*NextQuestionResponse, error)
	// NextLinkedQuestion serves the next unattempted question of a linked
	// passage. A zero linkID uses the session's configured link.
	NextLinkedQuestion(ctx context.Context, sessionID, linkID uint) (*NextQuestionResponse, error)
	// RecordAttempt grades a practice answer, updates the session outcome,
	// attempt counters and concept mastery, and recalibrates the question
	// when its attempt count crosses the threshold.
	RecordAttempt(ctx context.Context, req *RecordAttemptRequest) (*AttemptResult, error)
}

type SelectionConfig struct {
	RecalibrationMinAttempts int
}

type selectionService struct {
	repo        repositories.Repository
	selector    *selector.Selector
	calibration CalibrationService
	logger      *ServiceLogger
	validator   *validator.Validator
	config      SelectionConfig
	now         func() time.Time
}

func NewSelectionService(
	repo repositories.Repository,
	sel *selector.Selector,
	calibration CalibrationService,
	logger *slog.Logger,
	validator *validator.Validator,
	config SelectionConfig,
) SelectionService {
	return &selectionService{
		repo:        repo,
		selector:    sel,
		calibration: calibration,
		logger:      NewServiceLogger(logger, LogConfig{Service: "engine", Component: "selection"}),
		validator:   validator,
		config:      config,
		now:         time.Now,
	}
}

// ===== SESSIONS =====

func (s *selectionService) StartSession(ctx context.Context, req *StartSessionRequest) (session *models.PracticeSession, err error) {
	op := s.logger.WithOperation(ctx, "start_session", req.UserID)
	defer func() {
		var id uint
		if session != nil {
			id = session.ID
		}
		op.LogResult(id, "session", err)
	}()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	session = &models.PracticeSession{
		UserID:    req.UserID,
		Filters:   req.Filters,
		Questions: []models.SessionQuestion{},
		Config:    datatypes.NewJSONType(req.Config),
		Status:    models.SessionActive,
	}
	if errs := s.validator.ValidateBusiness(session); len(errs) > 0 {
		return nil, errs
	}

	if err := s.repo.Session().Create(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

func (s *selectionService) NextQuestion(ctx context.Context, sessionID uint) (resp *NextQuestionResponse, err error) {
	op := s.logger.WithOperation(ctx, "next_question", 0)
	defer func() { op.LogResult(sessionID, "session", err) }()

	// Exhaustion is persisted as a completed session, so the transaction
	// commits and the selection error is returned afterwards.
	var selErr error
	txErr := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		session, err := s.lockActiveSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if session.Full() {
			selErr = selector.ErrEndOfQuestions
			return s.complete(ctx, tx, session)
		}

		result, err := s.selector.Select(ctx, session, session.ServedIDs())
		if err != nil {
			selErr = err
			if IsExhausted(err) {
				return s.complete(ctx, tx, session)
			}
			return nil
		}

		served := models.SessionQuestion{
			QuestionID:  result.Question.ID,
			SubTopic:    result.Question.SubTopicID,
			Level:       result.Question.Level,
			FilterIndex: result.FilterIndex,
			Concept:     result.Concept,
			Outcome:     models.OutcomePending,
			ServedAt:    s.now(),
		}
		session.Questions = append(session.Questions, served)
		if err := s.repo.Session().Update(ctx, tx, session); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}

		resp = &NextQuestionResponse{
			SessionID:   session.ID,
			Position:    len(session.Questions),
			Question:    result.Question,
			FilterIndex: result.FilterIndex,
			Tier:        result.Tier,
			Concept:     result.Concept,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	if selErr != nil {
		return nil, selErr
	}
	return resp, nil
}

func (s *selectionService) NextLinkedQuestion(ctx context.Context, sessionID, linkID uint) (resp *NextQuestionResponse, err error) {
	op := s.logger.WithOperation(ctx, "next_linked_question", 0)
	defer func() { op.LogResult(sessionID, "session", err) }()

	var selErr error
	txErr := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		session, err := s.lockActiveSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		if linkID == 0 {
			cfg := session.Config.Data()
			if cfg.LinkID == nil {
				return ErrSessionHasNoLink
			}
			linkID = *cfg.LinkID
		}

		question, err := s.selector.LinkedQuestion(ctx, linkID, session.ServedIDs())
		if err != nil {
			selErr = err
			return nil
		}

		session.Questions = append(session.Questions, models.SessionQuestion{
			QuestionID:  question.ID,
			SubTopic:    question.SubTopicID,
			Level:       question.Level,
			FilterIndex: -1,
			Outcome:     models.OutcomePending,
			ServedAt:    s.now(),
		})
		if err := s.repo.Session().Update(ctx, tx, session); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}

		resp = &NextQuestionResponse{
			SessionID:   session.ID,
			Position:    len(session.Questions),
			Question:    question,
			FilterIndex: -1,
			Tier:        models.TierLink,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	if selErr != nil {
		return nil, selErr
	}
	return resp, nil
}

func (s *selectionService) lockActiveSession(ctx context.Context, tx *gorm.DB, sessionID uint) (*models.PracticeSession, error) {
	session, err := s.repo.Session().GetByIDForUpdate(ctx, tx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.Status == models.SessionCompleted {
		return nil, ErrSessionCompleted
	}
	return session, nil
}

func (s *selectionService) complete(ctx context.Context, tx *gorm.DB, session *models.PracticeSession) error {
	session.Status = models.SessionCompleted
	if err := s.repo.Session().Update(ctx, tx, session); err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	return nil
}

// ===== ATTEMPTS =====

func (s *selectionService) RecordAttempt(ctx context.Context, req *RecordAttemptRequest) (result *AttemptResult, err error) {
	op := s.logger.WithOperation(ctx, "record_attempt", req.UserID)
	defer func() { op.LogResult(req.QuestionID, "question", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, nil, req.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	verdict := grading.Evaluate(models.CoreQuestion{
		QuestionID: question.ID,
		Level:      question.Level,
		Type:       question.Type,
		AnswerKey:  question.AnswerKey.Data(),
	}, req.Answer, true)

	attempt := &models.Attempt{
		UserID:     req.UserID,
		QuestionID: question.ID,
		SessionID:  req.SessionID,
		Answer:     datatypes.NewJSONType(req.Answer),
		IsAnswered: verdict.Outcome != models.OutcomeSkipped,
		IsCorrect:  verdict.Outcome == models.OutcomeCorrect,
		Time:       req.Time,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}
	if attempt.IsAnswered {
		attempt.Speed = speedOf(question, attempt.Seconds())
	}

	var count int
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Attempt().Create(ctx, tx, attempt); err != nil {
			return fmt.Errorf("failed to create attempt: %w", err)
		}

		if req.SessionID != nil {
			if err := s.applyToSession(ctx, tx, *req.SessionID, attempt, verdict.Outcome); err != nil {
				return err
			}
		}

		var err error
		count, err = s.repo.Question().IncrementAttempts(ctx, tx, question.ID)
		if err != nil {
			return fmt.Errorf("failed to increment attempts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result = &AttemptResult{
		Attempt:       attempt,
		Outcome:       verdict.Outcome,
		Speed:         attempt.Speed,
		AttemptsCount: count,
	}

	if s.calibration != nil && calibration.ShouldRecalibrate(count, s.config.RecalibrationMinAttempts) {
		if _, err := s.calibration.RecalibrateQuestion(ctx, question.ID); err != nil {
			// the attempt is already stored; the next threshold retries
			s.logger.logger.Warn("Recalibration failed", "question_id", question.ID, "error", err)
		} else {
			result.Recalibrated = true
		}
	}
	return result, nil
}

// applyToSession records the outcome on the pending served entry and feeds
// concept mastery for concept-based selections.
func (s *selectionService) applyToSession(ctx context.Context, tx *gorm.DB, sessionID uint, attempt *models.Attempt, outcome models.Outcome) error {
	session, err := s.repo.Session().GetByIDForUpdate(ctx, tx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session.UserID != attempt.UserID {
		return NewBusinessRuleError("session_owner", "session belongs to another user", map[string]interface{}{
			"session_id": sessionID,
			"user_id":    attempt.UserID,
		})
	}

	idx, err := pendingEntry(session.Questions, attempt.QuestionID)
	if err != nil {
		return err
	}
	entry := &session.Questions[idx]
	entry.Outcome = outcome
	entry.AttemptID = &attempt.ID

	if err := s.repo.Session().Update(ctx, tx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if entry.Concept != "" && entry.Answered() {
		if err := s.repo.UserStat().RecordAnswer(ctx, tx, session.UserID, entry.SubTopic, entry.Concept, outcome == models.OutcomeCorrect); err != nil {
			return fmt.Errorf("failed to record concept progress: %w", err)
		}
	}
	return nil
}

// pendingEntry finds the latest served entry of a question still awaiting an
// outcome.
func pendingEntry(served []models.SessionQuestion, questionID uint) (int, error) {
	var answered bool
	for i := len(served) - 1; i >= 0; i-- {
		if served[i].QuestionID != questionID {
			continue
		}
		if served[i].Outcome == models.OutcomePending || served[i].Outcome == "" {
			return i, nil
		}
		answered = true
	}
	if answered {
		return -1, ErrAttemptRecorded
	}
	return -1, ErrQuestionNotServed
}
