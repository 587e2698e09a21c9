package selector

import (
	"context"
	"math"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

// ScoredAttempt is the part of a served question the adaptive score reads.
type ScoredAttempt struct {
	Level   models.QuestionLevel
	Outcome models.Outcome
}

// scoredAttempts keeps the served questions that already have an outcome,
// oldest first.
func scoredAttempts(served []models.SessionQuestion) []ScoredAttempt {
	out := make([]ScoredAttempt, 0, len(served))
	for _, q := range served {
		if q.Outcome == "" || q.Outcome == models.OutcomePending {
			continue
		}
		out = append(out, ScoredAttempt{Level: q.Level, Outcome: q.Outcome})
	}
	return out
}

const maxAttemptValue = 3

func attemptValue(a ScoredAttempt, skipValue float64) float64 {
	switch a.Outcome {
	case models.OutcomeCorrect:
		return float64(a.Level)
	case models.OutcomeIncorrect:
		return -float64(maxAttemptValue + 1 - a.Level)
	case models.OutcomePartial:
		return float64(a.Level) / 2
	default:
		return skipValue
	}
}

// AdaptiveScore maps in-session performance to [0, 1]. Recent attempts weigh
// more (decay^positionFromEnd); the result is normalized by the best and
// worst totals reachable with the same attempt count. No attempts score 0.5.
func AdaptiveScore(attempts []ScoredAttempt, skipValue, decay float64) float64 {
	if len(attempts) == 0 {
		return 0.5
	}

	var raw, weights float64
	n := len(attempts)
	for i, a := range attempts {
		w := math.Pow(decay, float64(n-1-i))
		raw += w * attemptValue(a, skipValue)
		weights += w
	}

	best := maxAttemptValue * weights
	worst := -maxAttemptValue * weights
	score := (raw - worst) / (best - worst)
	return math.Max(0, math.Min(1, score))
}

// PreferredLevel maps an adaptive score to a level in {1, 2, 3}.
func PreferredLevel(score float64) models.QuestionLevel {
	scaled := math.Max(0, math.Min(2, score*2))
	return models.QuestionLevel(math.Round(scaled)) + 1
}

func narrowTo(c models.SelectionCriteria, level models.QuestionLevel) models.SelectionCriteria {
	if c.Kind == models.CriteriaConceptSet {
		narrowed := c
		narrowed.Levels = []models.QuestionLevel{level}
		return narrowed
	}
	return c.WithLevel(level)
}

func (s *Selector) selectTopicAdaptive(ctx context.Context, req *Request) (*Result, error) {
	return s.runTopicAdaptive(ctx, req, models.SelectorTopicAdaptive)
}

// runTopicAdaptive retries the default strategy pinned to the preferred level
// on the least served filter, then falls back to the unmodified default.
func (s *Selector) runTopicAdaptive(ctx context.Context, req *Request, name models.SelectorName) (*Result, error) {
	score := AdaptiveScore(scoredAttempts(req.Session.Questions), s.config.SkipValue, s.config.DecayRate)
	level := PreferredLevel(score)

	filters := indexFilters(req.Session.Filters)
	counts := make([]int, len(filters))
	for i, f := range filters {
		for _, q := range req.Session.Questions {
			if q.SubTopic == f.criteria.SubTopic {
				counts[i]++
			}
		}
	}
	chosen := filters[weightedIndex(s.rand, inverseFrequency(counts))]

	override := []indexedFilter{{index: chosen.index, criteria: narrowTo(chosen.criteria, level)}}
	result, err := s.runDefault(ctx, req, override, name)
	if err == nil {
		return result, nil
	}
	if CodeOf(err) != CodeEndOfQuestions {
		return nil, err
	}

	s.logger.Debug("Adaptive level exhausted, widening to all filters",
		"session_id", req.Session.ID,
		"score", score,
		"level", level,
		"sub_topic", chosen.criteria.SubTopic)
	return s.runDefault(ctx, req, filters, name)
}

// OptimalConcepts orders the concepts a learner should practise next. An
// unmastered last concept stays first; every other unmastered concept follows
// in configured order. Once all are mastered the full list is reviewed.
func OptimalConcepts(concepts []string, progress map[string]models.ConceptProgress, last string) []string {
	var out []string
	lastPending := false
	for _, c := range concepts {
		if c == last && !progress[c].Mastered() {
			lastPending = true
			break
		}
	}
	if lastPending {
		out = append(out, last)
	}
	for _, c := range concepts {
		if lastPending && c == last {
			continue
		}
		if !progress[c].Mastered() {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return append(out, concepts...)
	}
	return out
}

func (s *Selector) selectSuperAdaptive(ctx context.Context, req *Request) (*Result, error) {
	filters := req.Session.Filters
	if len(filters) != 1 {
		return s.runTopicAdaptive(ctx, req, models.SelectorSuperAdaptive)
	}
	criteria := filters[0]

	stat, err := s.users.GetOrCreate(ctx, req.Session.UserID, criteria.SubTopic)
	if err != nil {
		return nil, dbError("load user concept stats", err)
	}

	concepts := criteria.Concepts
	if len(concepts) == 0 {
		concepts, err = s.topics.Concepts(ctx, criteria.SubTopic)
		if err != nil {
			return nil, dbError("load sub topic concepts", err)
		}
	}

	candidates := OptimalConcepts(concepts, stat.Concepts.Data(), stat.LastConcept)
	result, err := s.ConceptQuestion(ctx, req, criteria, candidates)
	if err != nil {
		return nil, err
	}
	if result != nil {
		return result, nil
	}
	return s.runTopicAdaptive(ctx, req, models.SelectorSuperAdaptive)
}

// ConceptQuestion returns the first eligible unattempted question of the first
// concept that has one, or nil when every concept is exhausted.
func (s *Selector) ConceptQuestion(ctx context.Context, req *Request, criteria models.SelectionCriteria, concepts []string) (*Result, error) {
	if len(concepts) == 0 {
		return nil, nil
	}

	tiers := make([]tier, len(concepts))
	for i, c := range concepts {
		tiers[i] = tier{
			name:  models.TierConcept,
			query: Query{Criteria: []models.SelectionCriteria{criteria}, Concept: c, Order: OrderInsertion},
		}
	}
	tr := trace{strategy: models.SelectorSuperAdaptive, criteria: criteria}
	return s.firstMatch(ctx, req, tr, tiers)
}

// LinkedQuestion returns the first question of a link, in link order, that is
// eligible and not yet attempted.
func (s *Selector) LinkedQuestion(ctx context.Context, linkID uint, attempted []uint) (*models.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, algoError("selection aborted", err)
	}

	questions, err := s.questions.LinkQuestions(ctx, linkID)
	if err != nil {
		return nil, dbError("load link questions", err)
	}

	done := make(map[uint]struct{}, len(attempted))
	for _, id := range attempted {
		done[id] = struct{}{}
	}
	for i := range questions {
		q := &questions[i]
		if _, seen := done[q.ID]; seen || !q.Eligible() {
			continue
		}
		return q, nil
	}
	return nil, ErrNoMoreLinkQuestions
}
