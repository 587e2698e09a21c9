package selector

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

type memStore struct {
	questions []models.Question
	err       error
	calls     int
}

func (m *memStore) FindOne(ctx context.Context, q Query) (*models.Question, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}

	var matches []models.Question
	for i := range m.questions {
		if q.Matches(&m.questions[i]) {
			matches = append(matches, m.questions[i])
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return q.Less(&matches[i], &matches[j]) })
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (m *memStore) LinkQuestions(ctx context.Context, linkID uint) ([]models.Question, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Question
	for _, q := range m.questions {
		if q.LinkID != nil && *q.LinkID == linkID {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LinkOrder < out[j].LinkOrder })
	return out, nil
}

type fakeTopics struct {
	factors  map[string]float64
	concepts map[string][]string
	err      error
}

func (f *fakeTopics) DataLevelFactor(ctx context.Context, subTopic string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if v, ok := f.factors[subTopic]; ok {
		return v, nil
	}
	return 1, nil
}

func (f *fakeTopics) Concepts(ctx context.Context, subTopic string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.concepts[subTopic], nil
}

type fakeUsers struct {
	stats map[string]*models.UserConceptStat
}

func (f *fakeUsers) GetOrCreate(ctx context.Context, userID uint, subTopic string) (*models.UserConceptStat, error) {
	if s, ok := f.stats[subTopic]; ok {
		return s, nil
	}
	return &models.UserConceptStat{UserID: userID, SubTopicID: subTopic}, nil
}

type captureSink struct {
	mu      sync.Mutex
	entries []models.SelectionLog
}

func (c *captureSink) Record(entry models.SelectionLog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
}

func (c *captureSink) tiers() []models.SelectionTier {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.SelectionTier, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Tier
	}
	return out
}

// constRand always returns v. With v = 0.5 the Poisson draw (mean 10) is 14.
type constRand struct{ v float64 }

func (c constRand) Float64() float64 { return c.v }

func question(id uint, subTopic string, level int, attempts int) models.Question {
	return models.Question{
		ID:            id,
		SubTopicID:    subTopic,
		Level:         level,
		Type:          models.QuestionSingle,
		AttemptsCount: attempts,
		IsPublished:   true,
	}
}

func single(subTopic string, level int) models.SelectionCriteria {
	return models.SelectionCriteria{Kind: models.CriteriaSingleLevel, SubTopic: subTopic, Level: level}
}

func newSession(name models.SelectorName, filters ...models.SelectionCriteria) *models.PracticeSession {
	return &models.PracticeSession{
		ID:      1,
		UserID:  7,
		Filters: filters,
		Config:  datatypes.NewJSONType(models.SessionConfig{Selector: name}),
	}
}

func newTestSelector(store *memStore, opts ...Option) (*Selector, *captureSink) {
	sink := &captureSink{}
	opts = append([]Option{WithRand(constRand{v: 0.5}), WithLogSink(sink)}, opts...)
	s := New(store, &fakeTopics{}, &fakeUsers{}, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
	return s, sink
}

var allStrategies = []models.SelectorName{
	models.SelectorDefault,
	models.SelectorNucleus,
	models.SelectorDemo,
	models.SelectorTopicAdaptive,
	models.SelectorSuperAdaptive,
}

func TestPoissonDraw(t *testing.T) {
	assert.Equal(t, 14, poisson(constRand{v: 0.5}, 10))
	assert.Equal(t, 0, poisson(constRand{v: 0.00001}, 10))
}

func TestWeightedIndex(t *testing.T) {
	weights := inverseFrequency([]int{2, 0})
	assert.Equal(t, []int{1, 3}, weights)
	assert.Equal(t, 0, weightedIndex(constRand{v: 0.1}, weights))
	assert.Equal(t, 1, weightedIndex(constRand{v: 0.5}, weights))
	assert.Equal(t, 1, weightedIndex(constRand{v: 0.9999}, weights))
	assert.Equal(t, 0, weightedIndex(constRand{v: 0.5}, []int{0, 0}))
}

func TestDefaultSelector_PrefersMostExposedUnderTarget(t *testing.T) {
	store := &memStore{questions: []models.Question{
		question(1, "algebra", 1, 2),
		question(2, "algebra", 1, 9),
		question(3, "algebra", 1, 30),
	}}
	sel, sink := newTestSelector(store)

	result, err := sel.Select(context.Background(), newSession(models.SelectorDefault, single("algebra", 1)), nil)
	require.NoError(t, err)
	assert.Equal(t, uint(2), result.Question.ID)
	assert.Equal(t, models.TierUnderTarget, result.Tier)
	assert.Equal(t, 14, result.DataLevel)
	assert.Equal(t, []models.SelectionTier{models.TierUnderTarget}, sink.tiers())
}

func TestDefaultSelector_FallsBackToOverTarget(t *testing.T) {
	store := &memStore{questions: []models.Question{
		question(1, "algebra", 1, 40),
		question(2, "algebra", 1, 20),
	}}
	sel, sink := newTestSelector(store)

	result, err := sel.Select(context.Background(), newSession(models.SelectorDefault, single("algebra", 1)), nil)
	require.NoError(t, err)
	assert.Equal(t, uint(2), result.Question.ID)
	assert.Equal(t, models.TierOverTarget, result.Tier)

	require.Len(t, sink.entries, 2)
	assert.Equal(t, models.TierUnderTarget, sink.entries[0].Tier)
	assert.False(t, sink.entries[0].Found)
	assert.Equal(t, models.TierOverTarget, sink.entries[1].Tier)
	assert.True(t, sink.entries[1].Found)
	assert.Equal(t, 14, sink.entries[1].DataLevel)
	assert.Equal(t, 14, sink.entries[1].PoissonDraw)
	assert.Equal(t, 1.0, sink.entries[1].DataLevelFactor)
}

// A question exactly at the data level qualifies for both data-level tiers.
// This overlap is kept as observed behaviour.
func TestDefaultSelector_DataLevelTiersOverlapAtTarget(t *testing.T) {
	level := 14
	q := question(1, "algebra", 1, level)
	crit := []models.SelectionCriteria{single("algebra", 1)}

	assert.True(t, Query{Criteria: crit, MaxAttempts: &level}.Matches(&q))
	assert.True(t, Query{Criteria: crit, MinAttempts: &level}.Matches(&q))
}

func TestDefaultSelector_AnyFilterTier(t *testing.T) {
	store := &memStore{questions: []models.Question{
		question(5, "geometry", 2, 3),
	}}
	sel, sink := newTestSelector(store)

	session := newSession(models.SelectorDefault, single("algebra", 1), single("geometry", 2))
	// algebra has never been served, geometry twice: the algebra bucket is chosen.
	session.Questions = []models.SessionQuestion{
		{QuestionID: 90, SubTopic: "geometry", Level: 2, FilterIndex: 1},
		{QuestionID: 91, SubTopic: "geometry", Level: 2, FilterIndex: 1},
	}

	result, err := sel.Select(context.Background(), session, []uint{90, 91})
	require.NoError(t, err)
	assert.Equal(t, uint(5), result.Question.ID)
	assert.Equal(t, models.TierAnyFilter, result.Tier)
	assert.Equal(t, 1, result.FilterIndex)
	assert.Equal(t, "geometry", result.Criteria.SubTopic)
	assert.Equal(t, []models.SelectionTier{models.TierUnderTarget, models.TierOverTarget, models.TierAnyFilter}, sink.tiers())
}

func TestDefaultSelector_DataLevelFactor(t *testing.T) {
	store := &memStore{questions: []models.Question{
		question(1, "algebra", 1, 7),
		question(2, "algebra", 1, 8),
	}}
	sink := &captureSink{}
	topics := &fakeTopics{factors: map[string]float64{"algebra": 0.5}}
	sel := New(store, topics, &fakeUsers{}, slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithRand(constRand{v: 0.5}), WithLogSink(sink))

	result, err := sel.Select(context.Background(), newSession(models.SelectorDefault, single("algebra", 1)), nil)
	require.NoError(t, err)
	assert.Equal(t, 7, result.DataLevel)
	assert.Equal(t, uint(1), result.Question.ID)
}

func TestSelectors_Exhaustion(t *testing.T) {
	for _, name := range allStrategies {
		t.Run(string(name), func(t *testing.T) {
			store := &memStore{questions: []models.Question{
				// present but never eligible
				{ID: 1, SubTopicID: "algebra", Level: 1, IsPublished: false},
				{ID: 2, SubTopicID: "algebra", Level: 1, IsPublished: true, IsArchived: true},
				question(3, "other", 1, 0),
			}}
			topics := &fakeTopics{concepts: map[string][]string{"algebra": {"factoring"}}}
			sel := New(store, topics, &fakeUsers{}, slog.New(slog.NewTextHandler(io.Discard, nil)),
				WithRand(constRand{v: 0.5}))

			result, err := sel.Select(context.Background(), newSession(name, single("algebra", 1)), nil)
			assert.Nil(t, result)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrEndOfQuestions))
			assert.Equal(t, CodeEndOfQuestions, CodeOf(err))
		})
	}
}

func TestSelectors_NeverReturnAttempted(t *testing.T) {
	var questions []models.Question
	for i := uint(1); i <= 12; i++ {
		q := question(i, "algebra", int(i%3)+1, int(i*3))
		q.Fixed = i%2 == 0
		q.Concepts = datatypes.JSONSlice[string]{"factoring"}
		questions = append(questions, q)
	}
	attempted := []uint{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	filters := []models.SelectionCriteria{
		{Kind: models.CriteriaLevelSet, SubTopic: "algebra", Levels: []int{1, 2, 3}},
	}

	for _, name := range allStrategies {
		t.Run(string(name), func(t *testing.T) {
			for _, v := range []float64{0.01, 0.2, 0.5, 0.77, 0.99} {
				store := &memStore{questions: questions}
				topics := &fakeTopics{concepts: map[string][]string{"algebra": {"factoring"}}}
				sel := New(store, topics, &fakeUsers{}, slog.New(slog.NewTextHandler(io.Discard, nil)),
					WithRand(constRand{v: v}))

				result, err := sel.Select(context.Background(), newSession(name, filters...), attempted)
				require.NoError(t, err)
				assert.Equal(t, uint(12), result.Question.ID)
			}

			store := &memStore{questions: questions}
			topics := &fakeTopics{concepts: map[string][]string{"algebra": {"factoring"}}}
			sel := New(store, topics, &fakeUsers{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
			_, err := sel.Select(context.Background(), newSession(name, filters...), append(attempted, 12))
			assert.ErrorIs(t, err, ErrEndOfQuestions)
		})
	}
}

func TestNucleusSelector_BalancesPerFilterIndex(t *testing.T) {
	store := &memStore{questions: []models.Question{
		question(1, "algebra", 1, 1),
		question(2, "geometry", 3, 1),
	}}
	sel, _ := newTestSelector(store)

	session := newSession(models.SelectorNucleus,
		single("algebra", 1),
		models.SelectionCriteria{Kind: models.CriteriaLevelSet, SubTopic: "geometry", Levels: []int{2, 3}},
	)
	session.Questions = []models.SessionQuestion{
		{QuestionID: 50, SubTopic: "algebra", Level: 1, FilterIndex: 0},
		{QuestionID: 51, SubTopic: "algebra", Level: 1, FilterIndex: 0},
	}

	result, err := sel.Select(context.Background(), session, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(2), result.Question.ID)
	assert.Equal(t, 1, result.FilterIndex)
	assert.Equal(t, models.TierUnderTarget, result.Tier)
}

func TestDemoSelector(t *testing.T) {
	t.Run("PrefersFixed", func(t *testing.T) {
		fixed := question(2, "algebra", 1, 5)
		fixed.Fixed = true
		store := &memStore{questions: []models.Question{question(1, "algebra", 1, 6), fixed}}
		sel, _ := newTestSelector(store)

		result, err := sel.Select(context.Background(), newSession(models.SelectorDemo, single("algebra", 1)), nil)
		require.NoError(t, err)
		assert.Equal(t, uint(2), result.Question.ID)
	})

	t.Run("ExtraTierIgnoresFixed", func(t *testing.T) {
		store := &memStore{questions: []models.Question{question(1, "algebra", 1, 6)}}
		sel, sink := newTestSelector(store)

		result, err := sel.Select(context.Background(), newSession(models.SelectorDemo, single("algebra", 1)), nil)
		require.NoError(t, err)
		assert.Equal(t, uint(1), result.Question.ID)
		assert.Equal(t, models.TierAnyFilterFree, result.Tier)
		assert.Len(t, sink.entries, 4)
	})

	t.Run("FollowsDemoRank", func(t *testing.T) {
		ranked := func(id uint, rank int) models.Question {
			q := question(id, "algebra", 1, 5)
			q.Fixed = true
			q.Statistics.DemoRank = rank
			return q
		}
		store := &memStore{questions: []models.Question{ranked(1, 0), ranked(2, 2), ranked(3, 1)}}
		sel, _ := newTestSelector(store)

		result, err := sel.Select(context.Background(), newSession(models.SelectorDemo, single("algebra", 1)), nil)
		require.NoError(t, err)
		assert.Equal(t, uint(3), result.Question.ID)
	})
}

func TestQuery_Less(t *testing.T) {
	q := func(id uint, attempts, rank int) *models.Question {
		out := question(id, "algebra", 1, attempts)
		out.Statistics.DemoRank = rank
		return &out
	}

	byAttempts := Query{Order: OrderAttemptsAsc}
	assert.True(t, byAttempts.Less(q(2, 1, 0), q(1, 3, 0)))
	assert.True(t, byAttempts.Less(q(1, 3, 0), q(2, 3, 0)))
	assert.False(t, byAttempts.Less(q(1, 3, 1), q(2, 1, 0)))

	byRank := Query{Order: OrderAttemptsAsc, ByDemoRank: true}
	assert.True(t, byRank.Less(q(1, 9, 1), q(2, 1, 2)))
	assert.True(t, byRank.Less(q(5, 9, 3), q(2, 1, 0)))
	assert.False(t, byRank.Less(q(2, 1, 0), q(5, 9, 3)))
	assert.True(t, byRank.Less(q(2, 1, 0), q(1, 3, 0)))
}

func TestTopicAdaptiveSelector(t *testing.T) {
	store := &memStore{questions: []models.Question{
		question(1, "algebra", 1, 1),
		question(2, "algebra", 3, 1),
	}}
	filters := []models.SelectionCriteria{
		{Kind: models.CriteriaLevelSet, SubTopic: "algebra", Levels: []int{1, 2, 3}},
	}

	t.Run("StrongLearnerGetsHard", func(t *testing.T) {
		sel, _ := newTestSelector(store)
		session := newSession(models.SelectorTopicAdaptive, filters...)
		session.Questions = []models.SessionQuestion{
			{QuestionID: 10, SubTopic: "algebra", Level: 3, Outcome: models.OutcomeCorrect},
			{QuestionID: 11, SubTopic: "algebra", Level: 3, Outcome: models.OutcomeCorrect},
		}

		result, err := sel.Select(context.Background(), session, []uint{10, 11})
		require.NoError(t, err)
		assert.Equal(t, uint(2), result.Question.ID)
	})

	t.Run("WeakLearnerGetsEasy", func(t *testing.T) {
		sel, _ := newTestSelector(store)
		session := newSession(models.SelectorTopicAdaptive, filters...)
		session.Questions = []models.SessionQuestion{
			{QuestionID: 10, SubTopic: "algebra", Level: 1, Outcome: models.OutcomeIncorrect},
		}

		result, err := sel.Select(context.Background(), session, []uint{10})
		require.NoError(t, err)
		assert.Equal(t, uint(1), result.Question.ID)
	})

	t.Run("FallsBackToAllFilters", func(t *testing.T) {
		onlyEasy := &memStore{questions: []models.Question{question(1, "algebra", 1, 1)}}
		sel, _ := newTestSelector(onlyEasy)
		session := newSession(models.SelectorTopicAdaptive, filters...)
		session.Questions = []models.SessionQuestion{
			{QuestionID: 10, SubTopic: "algebra", Level: 3, Outcome: models.OutcomeCorrect},
		}

		result, err := sel.Select(context.Background(), session, []uint{10})
		require.NoError(t, err)
		assert.Equal(t, uint(1), result.Question.ID)
	})
}

func TestSuperAdaptiveSelector(t *testing.T) {
	withConcept := func(id uint, concept string) models.Question {
		q := question(id, "algebra", 2, 0)
		q.Concepts = datatypes.JSONSlice[string]{concept}
		return q
	}
	store := &memStore{questions: []models.Question{
		withConcept(1, "a"),
		withConcept(2, "b"),
		withConcept(3, "c"),
	}}
	users := &fakeUsers{stats: map[string]*models.UserConceptStat{
		"algebra": {
			SubTopicID:  "algebra",
			LastConcept: "a",
			Concepts: datatypes.NewJSONType(map[string]models.ConceptProgress{
				"a": {Answered: 3, Correct: 3},
			}),
		},
	}}
	topics := &fakeTopics{concepts: map[string][]string{"algebra": {"a", "b", "c"}}}
	sink := &captureSink{}
	sel := New(store, topics, users, slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithRand(constRand{v: 0.5}), WithLogSink(sink))

	session := newSession(models.SelectorSuperAdaptive, single("algebra", 2))
	result, err := sel.Select(context.Background(), session, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(2), result.Question.ID)
	assert.Equal(t, "b", result.Concept)
	assert.Equal(t, models.TierConcept, result.Tier)

	result, err = sel.Select(context.Background(), session, []uint{2})
	require.NoError(t, err)
	assert.Equal(t, uint(3), result.Question.ID)
	assert.Equal(t, "c", result.Concept)

	t.Run("MultipleFiltersUseTopicAdaptive", func(t *testing.T) {
		multi := newSession(models.SelectorSuperAdaptive, single("algebra", 2), single("geometry", 2))
		result, err := sel.Select(context.Background(), multi, nil)
		require.NoError(t, err)
		assert.Empty(t, result.Concept)
		assert.NotEqual(t, models.TierConcept, result.Tier)
	})
}

func TestOptimalConcepts(t *testing.T) {
	concepts := []string{"a", "b", "c"}
	mastered := models.ConceptProgress{Answered: 4, Correct: 3}
	learning := models.ConceptProgress{Answered: 4, Correct: 2}

	tests := []struct {
		name     string
		progress map[string]models.ConceptProgress
		last     string
		want     []string
	}{
		{"fresh learner", nil, "", []string{"a", "b", "c"}},
		{"last unmastered stays first", map[string]models.ConceptProgress{"a": mastered, "c": learning}, "c", []string{"c", "b"}},
		{"last mastered advances", map[string]models.ConceptProgress{"a": mastered}, "a", []string{"b", "c"}},
		{"all mastered reviews all", map[string]models.ConceptProgress{"a": mastered, "b": mastered, "c": mastered}, "b", []string{"a", "b", "c"}},
		{"unknown last concept ignored", nil, "z", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OptimalConcepts(concepts, tt.progress, tt.last))
		})
	}
}

func TestAdaptiveScore(t *testing.T) {
	assert.Equal(t, 0.5, AdaptiveScore(nil, -0.5, 0.95))

	allHard := []ScoredAttempt{{Level: 3, Outcome: models.OutcomeCorrect}, {Level: 3, Outcome: models.OutcomeCorrect}}
	assert.InDelta(t, 1.0, AdaptiveScore(allHard, -0.5, 0.95), 1e-9)

	allWrong := []ScoredAttempt{{Level: 1, Outcome: models.OutcomeIncorrect}}
	assert.InDelta(t, 0.0, AdaptiveScore(allWrong, -0.5, 0.95), 1e-9)

	skipped := []ScoredAttempt{{Level: 2, Outcome: models.OutcomeSkipped}}
	assert.InDelta(t, 2.5/6, AdaptiveScore(skipped, -0.5, 0.95), 1e-9)

	// the most recent attempt dominates
	recentGood := []ScoredAttempt{{Level: 1, Outcome: models.OutcomeIncorrect}, {Level: 3, Outcome: models.OutcomeCorrect}}
	recentBad := []ScoredAttempt{{Level: 3, Outcome: models.OutcomeCorrect}, {Level: 1, Outcome: models.OutcomeIncorrect}}
	assert.Greater(t, AdaptiveScore(recentGood, -0.5, 0.95), AdaptiveScore(recentBad, -0.5, 0.95))
}

func TestPreferredLevel(t *testing.T) {
	assert.Equal(t, 1, PreferredLevel(0))
	assert.Equal(t, 1, PreferredLevel(0.24))
	assert.Equal(t, 2, PreferredLevel(0.5))
	assert.Equal(t, 3, PreferredLevel(0.75))
	assert.Equal(t, 3, PreferredLevel(1))
	assert.Equal(t, 3, PreferredLevel(7))
}

func TestLinkedQuestion(t *testing.T) {
	link := uint(9)
	mk := func(id uint, order int) models.Question {
		q := question(id, "reading", 2, 0)
		q.LinkID = &link
		q.LinkOrder = order
		q.Type = models.QuestionLinkedSingle
		return q
	}
	store := &memStore{questions: []models.Question{mk(3, 2), mk(1, 0), mk(2, 1)}}
	sel, _ := newTestSelector(store)

	q, err := sel.LinkedQuestion(context.Background(), link, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(1), q.ID)

	q, err = sel.LinkedQuestion(context.Background(), link, []uint{1})
	require.NoError(t, err)
	assert.Equal(t, uint(2), q.ID)

	_, err = sel.LinkedQuestion(context.Background(), link, []uint{1, 2, 3})
	assert.ErrorIs(t, err, ErrNoMoreLinkQuestions)
	assert.Equal(t, CodeNoMoreLinkQuestions, CodeOf(err))
}

func TestSelect_Errors(t *testing.T) {
	t.Run("StoreFailureIsInternalDB", func(t *testing.T) {
		store := &memStore{err: errors.New("connection reset")}
		sel, _ := newTestSelector(store)

		_, err := sel.Select(context.Background(), newSession(models.SelectorDefault, single("algebra", 1)), nil)
		assert.ErrorIs(t, err, ErrInternalDB)
		assert.NotErrorIs(t, err, ErrEndOfQuestions)
	})

	t.Run("TopicFailureIsInternalDB", func(t *testing.T) {
		sel := New(&memStore{}, &fakeTopics{err: errors.New("down")}, &fakeUsers{},
			slog.New(slog.NewTextHandler(io.Discard, nil)), WithRand(constRand{v: 0.5}))
		_, err := sel.Select(context.Background(), newSession(models.SelectorNucleus, single("algebra", 1)), nil)
		assert.Equal(t, CodeInternalDB, CodeOf(err))
	})

	t.Run("MalformedFiltersAreInternalAlgo", func(t *testing.T) {
		sel, _ := newTestSelector(&memStore{})
		cases := [][]models.SelectionCriteria{
			nil,
			{{Kind: models.CriteriaSingleLevel, SubTopic: "algebra", Level: 4}},
			{{Kind: models.CriteriaLevelSet, SubTopic: "algebra"}},
			{{Kind: models.CriteriaConceptSet, SubTopic: "algebra"}},
			{{Kind: "weird", SubTopic: "algebra"}},
			{{Kind: models.CriteriaSingleLevel, Level: 1}},
		}
		for _, filters := range cases {
			_, err := sel.Select(context.Background(), newSession(models.SelectorDefault, filters...), nil)
			assert.ErrorIs(t, err, ErrInternalAlgo, "filters=%v", filters)
		}
	})

	t.Run("UnknownStrategyIsInternalAlgo", func(t *testing.T) {
		sel, _ := newTestSelector(&memStore{})
		_, err := sel.Select(context.Background(), newSession("shuffle", single("algebra", 1)), nil)
		assert.ErrorIs(t, err, ErrInternalAlgo)
	})

	t.Run("CancelledContextStopsTiers", func(t *testing.T) {
		store := &memStore{questions: []models.Question{question(1, "algebra", 1, 0)}}
		sel, _ := newTestSelector(store)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := sel.Select(ctx, newSession(models.SelectorDefault, single("algebra", 1)), nil)
		assert.ErrorIs(t, err, ErrInternalAlgo)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, store.calls)
	})
}
