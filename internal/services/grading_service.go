package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-engine/internal/analytics"
	"github.com/SAP-F-2025/assessment-engine/internal/cache"
	"github.com/SAP-F-2025/assessment-engine/internal/events"
	"github.com/SAP-F-2025/assessment-engine/internal/grading"
	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
	"github.com/SAP-F-2025/assessment-engine/internal/stats"
	"github.com/SAP-F-2025/assessment-engine/internal/validator"
)

type GradingService interface {
	// GradeSubmission grades one submission and folds it into its wrapper
	// and core analyses. Folding is at most once per submission.
	GradeSubmission(ctx context.Context, submissionID uint) (*models.SubmissionMeta, error)
	// GradeWrapper grades every ungraded submission of a wrapper in the
	// background and returns how many were queued.
	GradeWrapper(ctx context.Context, wrapperID uint) (int, error)
	// ReGradeCore rebuilds every analysis of a core from scratch.
	ReGradeCore(ctx context.Context, coreID uint) (*RegradeResult, error)
	// SetBonus marks questions as bonus from now on, then regrades the core.
	SetBonus(ctx context.Context, coreID uint, req *BonusRequest) (*RegradeResult, error)
	GetRanking(ctx context.Context, scope RankingScope, marks float64) (*stats.Ranking, error)
	CoreDifficulty(ctx context.Context, coreID uint) (*analytics.DifficultyWindows, error)
	// Wait blocks until background grading has finished.
	Wait()
}

type GradingConfig struct {
	PickingAbilityThreshold float64
	// MaxRetries bounds optimistic retries of one analysis update.
	MaxRetries int
}

func DefaultGradingConfig() GradingConfig {
	return GradingConfig{
		PickingAbilityThreshold: analytics.DefaultPickingThreshold,
		MaxRetries:              5,
	}
}

type gradingService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *ServiceLogger
	validator *validator.Validator
	config    GradingConfig
	now       func() time.Time

	background sync.WaitGroup
}

func NewGradingService(
	repo repositories.Repository,
	cacheManager *cache.CacheManager,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	config GradingConfig,
) GradingService {
	if cacheManager == nil {
		cacheManager = cache.NewNoopCacheManager()
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultGradingConfig().MaxRetries
	}
	return &gradingService{
		repo:      repo,
		cache:     cacheManager,
		publisher: publisher,
		logger:    NewServiceLogger(logger, LogConfig{Service: "engine", Component: "grading"}),
		validator: validator,
		config:    config,
		now:       time.Now,
	}
}

// ===== SUBMISSIONS =====

func (s *gradingService) GradeSubmission(ctx context.Context, submissionID uint) (meta *models.SubmissionMeta, err error) {
	op := s.logger.WithOperation(ctx, "grade_submission", 0)
	defer func() { op.LogResult(submissionID, "submission", err) }()

	sub, err := s.repo.Submission().GetByID(ctx, nil, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	core, err := s.loadCore(ctx, sub.CoreID)
	if err != nil {
		return nil, err
	}

	gradedAt := s.now()
	graded, err := grading.GradeSubmission(core, sub, gradedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to grade submission %d: %w", sub.ID, err)
	}

	wrapperAnalysis, err := s.foldWrapper(ctx, core, sub, graded)
	if err != nil {
		return nil, err
	}
	coreAnalysis, err := s.foldCore(ctx, core, sub, graded)
	if err != nil {
		return nil, err
	}

	graded = analytics.WithRanking(graded, wrapperAnalysis)
	graded.PickingAbility = analytics.PickingAbility(graded, coreAnalysis, s.config.PickingAbilityThreshold)

	if err := s.repo.Submission().SaveMeta(ctx, nil, sub.ID, graded, gradedAt); err != nil {
		return nil, fmt.Errorf("failed to save submission meta: %w", err)
	}

	cache.SafeDelete(ctx, s.cache.Analysis, cache.WrapperRankingKey(sub.WrapperID))
	cache.SafeDelete(ctx, s.cache.Analysis, cache.CoreRankingKey(sub.CoreID))

	publish(ctx, s.publisher, s.logger, events.EventSubmissionGraded, events.SubmissionGradedEvent{
		SubmissionID: sub.ID,
		WrapperID:    sub.WrapperID,
		CoreID:       sub.CoreID,
		UserID:       sub.UserID,
		Marks:        graded.Marks,
		MaxMarks:     graded.MaxMarks,
		Percent:      graded.Percent,
		Percentile:   graded.Percentile,
		Rank:         graded.Rank,
	})
	return &graded, nil
}

// foldWrapper folds a graded submission into its wrapper analysis, retrying
// on optimistic conflicts. The returned analysis includes the submission.
func (s *gradingService) foldWrapper(ctx context.Context, core *models.AssessmentCore, sub *models.Submission, meta models.SubmissionMeta) (models.Analysis, error) {
	var folded models.Analysis
	err := s.retryOnConflict(ctx, func() error {
		stored, err := s.repo.Analysis().GetWrapperAnalysis(ctx, nil, sub.WrapperID)
		if err != nil {
			return fmt.Errorf("failed to get wrapper analysis: %w", err)
		}
		if stored == nil {
			stored = &models.WrapperAnalysis{
				WrapperID: sub.WrapperID,
				CoreID:    sub.CoreID,
				Analysis:  datatypes.NewJSONType(analytics.NewAnalysis(core)),
			}
		}

		current := stored.Analysis.Data()
		folded = analytics.Fold(current, sub, meta)
		if current.Includes(sub.ID) {
			return nil
		}
		stored.Analysis = datatypes.NewJSONType(folded)
		return s.repo.Analysis().SaveWrapperAnalysis(ctx, nil, stored)
	})
	return folded, err
}

func (s *gradingService) foldCore(ctx context.Context, core *models.AssessmentCore, sub *models.Submission, meta models.SubmissionMeta) (models.Analysis, error) {
	var folded models.Analysis
	err := s.retryOnConflict(ctx, func() error {
		stored, err := s.repo.Analysis().GetCoreAnalysis(ctx, nil, sub.CoreID)
		if err != nil {
			return fmt.Errorf("failed to get core analysis: %w", err)
		}
		if stored == nil {
			stored = &models.CoreAnalysis{
				CoreID:   sub.CoreID,
				Analysis: datatypes.NewJSONType(analytics.NewAnalysis(core)),
			}
		}

		current := stored.Analysis.Data()
		folded = analytics.Fold(current, sub, meta)
		if current.Includes(sub.ID) {
			return nil
		}
		stored.Analysis = datatypes.NewJSONType(folded)
		return s.repo.Analysis().SaveCoreAnalysis(ctx, nil, stored)
	})
	return folded, err
}

// retryOnConflict reruns fn while it loses optimistic races.
func (s *gradingService) retryOnConflict(ctx context.Context, fn func() error) error {
	for attempt := 0; attempt < s.config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn()
		if !errors.Is(err, repositories.ErrVersionConflict) {
			return err
		}
		s.logger.logger.Debug("Optimistic conflict, retrying", "attempt", attempt+1)
	}
	return fmt.Errorf("%w: gave up after %d attempts", ErrConcurrentUpdate, s.config.MaxRetries)
}

// ===== WRAPPERS =====

func (s *gradingService) GradeWrapper(ctx context.Context, wrapperID uint) (count int, err error) {
	op := s.logger.WithOperation(ctx, "grade_wrapper", 0)
	defer func() { op.LogResult(wrapperID, "wrapper", err) }()

	wrapper, err := s.repo.Assessment().GetWrapper(ctx, nil, wrapperID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return 0, ErrWrapperNotFound
		}
		return 0, fmt.Errorf("failed to get wrapper: %w", err)
	}

	ungraded := false
	subs, err := s.repo.Submission().List(ctx, nil, repositories.SubmissionFilters{
		WrapperID: &wrapperID,
		Graded:    &ungraded,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	ids := make([]uint, len(subs))
	for i := range subs {
		ids[i] = subs[i].ID
	}

	// the caller's request ends before grading does
	bg := context.WithoutCancel(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.LogRecovery(bg, "grade_wrapper", r, debug.Stack())
			}
		}()
		s.gradeAll(bg, wrapper, ids)
	}()

	return len(ids), nil
}

func (s *gradingService) gradeAll(ctx context.Context, wrapper *models.AssessmentWrapper, ids []uint) {
	var failed int
	for _, id := range ids {
		if _, err := s.GradeSubmission(ctx, id); err != nil {
			failed++
		}
	}

	if failed == 0 {
		if err := s.repo.Assessment().MarkWrapperGraded(ctx, nil, wrapper.ID); err != nil {
			s.logger.logger.Error("Failed to mark wrapper graded", "wrapper_id", wrapper.ID, "error", err)
		}
	}

	publish(ctx, s.publisher, s.logger, events.EventWrapperGraded, events.WrapperGradedEvent{
		WrapperID: wrapper.ID,
		CoreID:    wrapper.CoreID,
		Graded:    len(ids) - failed,
		Failed:    failed,
	})
}

func (s *gradingService) Wait() {
	s.background.Wait()
}

// ===== CORES =====

func (s *gradingService) ReGradeCore(ctx context.Context, coreID uint) (result *RegradeResult, err error) {
	op := s.logger.WithOperation(ctx, "regrade_core", 0)
	defer func() { op.LogResult(coreID, "core", err) }()

	for attempt := 0; attempt < s.config.MaxRetries; attempt++ {
		result, err = s.regrade(ctx, coreID)
		if !errors.Is(err, repositories.ErrVersionConflict) {
			break
		}
		s.logger.logger.Debug("Regrade lost an optimistic race, retrying", "core_id", coreID, "attempt", attempt+1)
	}
	if errors.Is(err, repositories.ErrVersionConflict) {
		return nil, fmt.Errorf("%w: regrade of core %d", ErrConcurrentUpdate, coreID)
	}
	if err != nil {
		return nil, err
	}

	cache.InvalidateCoreCache(ctx, s.cache, coreID)
	publish(ctx, s.publisher, s.logger, events.EventCoreRegraded, events.CoreRegradedEvent{
		CoreID:      coreID,
		Submissions: result.Submissions,
		Wrappers:    result.Wrappers,
		Reason:      "regrade",
	})
	return result, nil
}

// regrade runs one full regrade inside a transaction holding the core row.
func (s *gradingService) regrade(ctx context.Context, coreID uint) (*RegradeResult, error) {
	var result *RegradeResult
	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		core, err := s.repo.Assessment().GetCoreForUpdate(ctx, tx, coreID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrCoreNotFound
			}
			return fmt.Errorf("failed to get core: %w", err)
		}

		onlyGraded := true
		subs, err := s.repo.Submission().List(ctx, tx, repositories.SubmissionFilters{CoreID: &coreID, Graded: &onlyGraded})
		if err != nil {
			return fmt.Errorf("failed to list submissions: %w", err)
		}

		gradedAt := s.now()
		coreAnalysis, graded, err := analytics.ReGradeCore(core, subs, gradedAt)
		if err != nil {
			return err
		}

		wrappers := make(map[uint]models.Analysis)
		var order []uint
		for _, g := range graded {
			wid := g.Submission.WrapperID
			a, ok := wrappers[wid]
			if !ok {
				a = analytics.NewAnalysis(core)
				order = append(order, wid)
			}
			wrappers[wid] = analytics.Fold(a, g.Submission, g.Meta)
		}

		if err := s.replaceCoreAnalysis(ctx, tx, coreID, coreAnalysis); err != nil {
			return err
		}
		for _, wid := range order {
			if err := s.replaceWrapperAnalysis(ctx, tx, wid, coreID, wrappers[wid]); err != nil {
				return err
			}
		}

		for _, g := range graded {
			meta := analytics.WithRanking(g.Meta, wrappers[g.Submission.WrapperID])
			meta.PickingAbility = analytics.PickingAbility(meta, coreAnalysis, s.config.PickingAbilityThreshold)
			if err := s.repo.Submission().SaveMeta(ctx, tx, g.Submission.ID, meta, gradedAt); err != nil {
				return fmt.Errorf("failed to save submission meta: %w", err)
			}
		}

		result = &RegradeResult{
			CoreID:      coreID,
			Submissions: len(graded),
			Wrappers:    len(order),
			MaxMarks:    coreAnalysis.MaxMarks,
		}
		return nil
	})
	return result, err
}

func (s *gradingService) replaceCoreAnalysis(ctx context.Context, tx *gorm.DB, coreID uint, a models.Analysis) error {
	stored, err := s.repo.Analysis().GetCoreAnalysis(ctx, tx, coreID)
	if err != nil {
		return fmt.Errorf("failed to get core analysis: %w", err)
	}
	if stored == nil {
		stored = &models.CoreAnalysis{CoreID: coreID}
	}
	stored.Analysis = datatypes.NewJSONType(a)
	return s.repo.Analysis().SaveCoreAnalysis(ctx, tx, stored)
}

func (s *gradingService) replaceWrapperAnalysis(ctx context.Context, tx *gorm.DB, wrapperID, coreID uint, a models.Analysis) error {
	stored, err := s.repo.Analysis().GetWrapperAnalysis(ctx, tx, wrapperID)
	if err != nil {
		return fmt.Errorf("failed to get wrapper analysis: %w", err)
	}
	if stored == nil {
		stored = &models.WrapperAnalysis{WrapperID: wrapperID, CoreID: coreID}
	}
	stored.Analysis = datatypes.NewJSONType(a)
	return s.repo.Analysis().SaveWrapperAnalysis(ctx, tx, stored)
}

func (s *gradingService) SetBonus(ctx context.Context, coreID uint, req *BonusRequest) (result *RegradeResult, err error) {
	op := s.logger.WithOperation(ctx, "set_bonus", 0)
	defer func() { op.LogResult(coreID, "core", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		core, err := s.repo.Assessment().GetCoreForUpdate(ctx, tx, coreID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrCoreNotFound
			}
			return fmt.Errorf("failed to get core: %w", err)
		}

		inCore := make(map[uint]bool)
		for _, section := range core.Sections {
			for _, q := range section.Questions {
				inCore[q.QuestionID] = true
			}
		}

		bonus := make(models.BonusMap)
		for id, at := range core.Bonus.Data() {
			bonus[id] = at
		}
		now := s.now()
		for _, id := range req.QuestionIDs {
			if !inCore[id] {
				return fmt.Errorf("%w: question %d", ErrBonusNotInCore, id)
			}
			if _, ok := bonus[id]; !ok {
				bonus[id] = now
			}
		}

		if err := s.repo.Assessment().UpdateBonus(ctx, tx, coreID, bonus); err != nil {
			return fmt.Errorf("failed to update bonus: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.SafeDelete(ctx, s.cache.Core, cache.CoreKey(coreID))
	return s.ReGradeCore(ctx, coreID)
}

// ===== QUERIES =====

func (s *gradingService) GetRanking(ctx context.Context, scope RankingScope, marks float64) (*stats.Ranking, error) {
	a, err := s.loadAnalysis(ctx, scope)
	if err != nil {
		return nil, err
	}
	ranking := analytics.GetRanking(*a, marks)
	return &ranking, nil
}

func (s *gradingService) CoreDifficulty(ctx context.Context, coreID uint) (*analytics.DifficultyWindows, error) {
	if _, err := s.loadCore(ctx, coreID); err != nil {
		return nil, err
	}

	a, err := s.loadAnalysis(ctx, RankingScope{CoreID: &coreID})
	if err != nil && !errors.Is(err, ErrAnalysisNotFound) {
		return nil, err
	}
	if a == nil {
		a = &models.Analysis{}
	}
	windows := analytics.CalibrateDifficulty(*a)
	return &windows, nil
}

func (s *gradingService) loadCore(ctx context.Context, coreID uint) (*models.AssessmentCore, error) {
	var core models.AssessmentCore
	err := s.cache.Core.CacheOrExecute(ctx, cache.CoreKey(coreID), &core, cache.CoreCacheConfig.TTL, func() (interface{}, error) {
		return s.repo.Assessment().GetCore(ctx, nil, coreID)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCoreNotFound
		}
		return nil, fmt.Errorf("failed to get core: %w", err)
	}
	return &core, nil
}

func (s *gradingService) loadAnalysis(ctx context.Context, scope RankingScope) (*models.Analysis, error) {
	var key string
	var loader cache.Loader
	switch {
	case scope.WrapperID != nil:
		key = cache.WrapperRankingKey(*scope.WrapperID)
		loader = func() (interface{}, error) {
			stored, err := s.repo.Analysis().GetWrapperAnalysis(ctx, nil, *scope.WrapperID)
			if err != nil || stored == nil {
				return nil, orNotFound(err)
			}
			return stored.Analysis.Data(), nil
		}
	case scope.CoreID != nil:
		key = cache.CoreRankingKey(*scope.CoreID)
		loader = func() (interface{}, error) {
			stored, err := s.repo.Analysis().GetCoreAnalysis(ctx, nil, *scope.CoreID)
			if err != nil || stored == nil {
				return nil, orNotFound(err)
			}
			return stored.Analysis.Data(), nil
		}
	default:
		return nil, ValidationErrors{*NewValidationError("scope", "wrapper_id or core_id is required", nil)}
	}

	var a models.Analysis
	if err := s.cache.Analysis.CacheOrExecute(ctx, key, &a, cache.AnalysisCacheConfig.TTL, loader); err != nil {
		if errors.Is(err, ErrAnalysisNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}
	return &a, nil
}

func orNotFound(err error) error {
	if err != nil {
		return err
	}
	return ErrAnalysisNotFound
}
