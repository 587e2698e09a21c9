package selector

import (
	"context"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

type Order int

const (
	// OrderInsertion sorts by id.
	OrderInsertion Order = iota
	OrderAttemptsDesc
	OrderAttemptsAsc
)

// Query is one question-store lookup. Only published, non-archived questions
// ever match.
type Query struct {
	// Criteria are OR-ed; an empty list matches every sub topic.
	Criteria     []models.SelectionCriteria
	Exclude      []uint
	MaxAttempts  *int
	MinAttempts  *int
	RequireFixed bool
	Concept      string
	Order        Order
	// ByDemoRank puts ranked questions first, lowest rank leading, ahead of
	// Order.
	ByDemoRank bool
}

// Less reports whether a sorts before b under the query's ordering. Ties
// fall back to id.
func (q Query) Less(a, b *models.Question) bool {
	if q.ByDemoRank {
		ra, rb := a.Statistics.DemoRank, b.Statistics.DemoRank
		if (ra > 0) != (rb > 0) {
			return ra > 0
		}
		if ra != rb {
			return ra < rb
		}
	}
	switch q.Order {
	case OrderAttemptsDesc:
		if a.AttemptsCount != b.AttemptsCount {
			return a.AttemptsCount > b.AttemptsCount
		}
	case OrderAttemptsAsc:
		if a.AttemptsCount != b.AttemptsCount {
			return a.AttemptsCount < b.AttemptsCount
		}
	}
	return a.ID < b.ID
}

// Matches evaluates the query against a single question.
func (q Query) Matches(question *models.Question) bool {
	if !question.Eligible() {
		return false
	}
	if q.RequireFixed && !question.Fixed {
		return false
	}
	for _, id := range q.Exclude {
		if id == question.ID {
			return false
		}
	}
	if q.MaxAttempts != nil && question.AttemptsCount > *q.MaxAttempts {
		return false
	}
	if q.MinAttempts != nil && question.AttemptsCount < *q.MinAttempts {
		return false
	}
	if q.Concept != "" && !question.HasConcept(q.Concept) {
		return false
	}
	if len(q.Criteria) == 0 {
		return true
	}
	for _, c := range q.Criteria {
		if criteriaMatches(c, question) {
			return true
		}
	}
	return false
}

func criteriaMatches(c models.SelectionCriteria, question *models.Question) bool {
	if c.SubTopic != question.SubTopicID {
		return false
	}
	if levels := c.LevelSet(); len(levels) > 0 && !containsLevel(levels, question.Level) {
		return false
	}
	if c.Kind == models.CriteriaConceptSet && len(c.Concepts) > 0 {
		for _, concept := range c.Concepts {
			if question.HasConcept(concept) {
				return true
			}
		}
		return false
	}
	return true
}

func containsLevel(levels []models.QuestionLevel, level models.QuestionLevel) bool {
	for _, l := range levels {
		if l == level {
			return true
		}
	}
	return false
}

// QuestionStore is the persisted question bank as the selector sees it.
type QuestionStore interface {
	// FindOne returns the first match in query order, or nil when none exists.
	FindOne(ctx context.Context, query Query) (*models.Question, error)
	// LinkQuestions returns a link's questions in link order.
	LinkQuestions(ctx context.Context, linkID uint) ([]models.Question, error)
}

// TopicMetadata supplies per-subtopic bias and concept ordering.
type TopicMetadata interface {
	DataLevelFactor(ctx context.Context, subTopic string) (float64, error)
	Concepts(ctx context.Context, subTopic string) ([]string, error)
}

// UserStats loads a learner's concept mastery, creating it on first use.
type UserStats interface {
	GetOrCreate(ctx context.Context, userID uint, subTopic string) (*models.UserConceptStat, error)
}

// LogSink receives selection diagnostics. Implementations must not block.
type LogSink interface {
	Record(entry models.SelectionLog)
}

type discardSink struct{}

func (discardSink) Record(models.SelectionLog) {}
