package selector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

// Config tunes the random and adaptive parts of selection.
type Config struct {
	PoissonMean  float64
	PoissonFloor int
	// SkipValue is the adaptive score contribution of a skipped question.
	SkipValue float64
	DecayRate float64
}

func DefaultConfig() Config {
	return Config{
		PoissonMean:  10,
		PoissonFloor: 3,
		SkipValue:    -0.5,
		DecayRate:    0.95,
	}
}

// Request is one "give me the next question" call.
type Request struct {
	Session *models.PracticeSession
	// Attempted ids are never returned, whatever the tier.
	Attempted []uint
}

// Result is a successful selection.
type Result struct {
	Question    *models.Question
	FilterIndex int
	Criteria    models.SelectionCriteria
	Tier        models.SelectionTier
	Concept     string
	DataLevel   int
}

type strategyFunc func(ctx context.Context, req *Request) (*Result, error)

type Selector struct {
	questions QuestionStore
	topics    TopicMetadata
	users     UserStats
	sink      LogSink
	rand      Rand
	logger    *slog.Logger
	config    Config

	strategies map[models.SelectorName]strategyFunc
}

type Option func(*Selector)

func WithRand(r Rand) Option {
	return func(s *Selector) { s.rand = r }
}

func WithLogSink(sink LogSink) Option {
	return func(s *Selector) { s.sink = sink }
}

func WithConfig(cfg Config) Option {
	return func(s *Selector) { s.config = cfg }
}

func New(questions QuestionStore, topics TopicMetadata, users UserStats, logger *slog.Logger, opts ...Option) *Selector {
	s := &Selector{
		questions: questions,
		topics:    topics,
		users:     users,
		sink:      discardSink{},
		rand:      globalRand{},
		logger:    logger,
		config:    DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.strategies = map[models.SelectorName]strategyFunc{
		models.SelectorDefault:       s.selectDefault,
		models.SelectorNucleus:       s.selectNucleus,
		models.SelectorDemo:          s.selectDemo,
		models.SelectorTopicAdaptive: s.selectTopicAdaptive,
		models.SelectorSuperAdaptive: s.selectSuperAdaptive,
	}
	return s
}

// Select picks the next question for the session using its configured strategy.
func (s *Selector) Select(ctx context.Context, session *models.PracticeSession, attempted []uint) (*Result, error) {
	req := &Request{Session: session, Attempted: attempted}

	name := session.Config.Data().Selector
	if name == "" {
		name = models.SelectorDefault
	}
	strategy, ok := s.strategies[name]
	if !ok {
		err := algoError(fmt.Sprintf("unknown selector %q", name), nil)
		s.logAlgoError(session, err)
		return nil, err
	}
	if err := checkFilters(session.Filters); err != nil {
		s.logAlgoError(session, err)
		return nil, err
	}

	result, err := strategy(ctx, req)
	if err != nil {
		if CodeOf(err) == CodeInternalAlgo {
			s.logAlgoError(session, err)
		}
		return nil, err
	}
	return result, nil
}

func (s *Selector) logAlgoError(session *models.PracticeSession, err error) {
	s.logger.Error("Selection algorithm failure",
		"session_id", session.ID,
		"user_id", session.UserID,
		"selector", session.Config.Data().Selector,
		"filters", []models.SelectionCriteria(session.Filters),
		"error", err)
}

// checkFilters rejects configurations no strategy can interpret.
func checkFilters(filters []models.SelectionCriteria) error {
	if len(filters) == 0 {
		return algoError("session has no filters", nil)
	}
	for i, f := range filters {
		if f.SubTopic == "" {
			return algoError(fmt.Sprintf("filter %d has no sub topic", i), nil)
		}
		switch f.Kind {
		case models.CriteriaSingleLevel:
			if !validLevel(f.Level) {
				return algoError(fmt.Sprintf("filter %d has invalid level %d", i, f.Level), nil)
			}
		case models.CriteriaLevelSet:
			if len(f.Levels) == 0 {
				return algoError(fmt.Sprintf("filter %d has an empty level set", i), nil)
			}
			for _, l := range f.Levels {
				if !validLevel(l) {
					return algoError(fmt.Sprintf("filter %d has invalid level %d", i, l), nil)
				}
			}
		case models.CriteriaConceptSet:
			if len(f.Concepts) == 0 {
				return algoError(fmt.Sprintf("filter %d has no concepts", i), nil)
			}
			for _, l := range f.Levels {
				if !validLevel(l) {
					return algoError(fmt.Sprintf("filter %d has invalid level %d", i, l), nil)
				}
			}
		default:
			return algoError(fmt.Sprintf("filter %d has unknown kind %q", i, f.Kind), nil)
		}
	}
	return nil
}

func validLevel(level models.QuestionLevel) bool {
	return level >= models.LevelEasy && level <= models.LevelHard
}

// tier is one stage of a fallback chain.
type tier struct {
	name  models.SelectionTier
	query Query
}

// trace carries the bias values of one selection into its log entries.
type trace struct {
	strategy    models.SelectorName
	criteria    models.SelectionCriteria
	filterIndex int
	factor      float64
	draw        int
	dataLevel   int
}

// firstMatch runs the tiers in order and returns the first hit. Every tier
// is logged whether or not it produced a question.
func (s *Selector) firstMatch(ctx context.Context, req *Request, tr trace, tiers []tier) (*Result, error) {
	for _, t := range tiers {
		if err := ctx.Err(); err != nil {
			return nil, algoError("selection aborted", err)
		}

		q := t.query
		q.Exclude = req.Attempted
		question, err := s.questions.FindOne(ctx, q)
		if err != nil {
			s.record(req, tr, t.name, nil)
			return nil, dbError("query questions", err)
		}
		s.record(req, tr, t.name, question)

		if question != nil {
			return &Result{
				Question:    question,
				FilterIndex: tr.filterIndex,
				Criteria:    tr.criteria,
				Tier:        t.name,
				Concept:     q.Concept,
				DataLevel:   tr.dataLevel,
			}, nil
		}
	}
	return nil, nil
}

func (s *Selector) record(req *Request, tr trace, name models.SelectionTier, question *models.Question) {
	entry := models.SelectionLog{
		ID:              uuid.New(),
		SessionID:       req.Session.ID,
		Strategy:        tr.strategy,
		Criteria:        datatypes.NewJSONType(tr.criteria),
		DataLevelFactor: tr.factor,
		PoissonDraw:     tr.draw,
		DataLevel:       tr.dataLevel,
		Tier:            name,
		Found:           question != nil,
		CreatedAt:       time.Now(),
	}
	if question != nil {
		id := question.ID
		entry.QuestionID = &id
	}
	s.sink.Record(entry)
}

// dataLevel computes round(factor * max(poisson(mean), floor)).
func (s *Selector) dataLevel(ctx context.Context, subTopic string) (factor float64, draw int, level int, err error) {
	factor, err = s.topics.DataLevelFactor(ctx, subTopic)
	if err != nil {
		return 0, 0, 0, dbError("load topic metadata", err)
	}

	draw = poisson(s.rand, s.config.PoissonMean)
	if draw < s.config.PoissonFloor {
		draw = s.config.PoissonFloor
	}
	return factor, draw, roundInt(factor * float64(draw)), nil
}
