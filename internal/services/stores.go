package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/assessment-engine/internal/cache"
	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
	"github.com/SAP-F-2025/assessment-engine/internal/selector"
)

// questionStore exposes the question repository to the selector.
type questionStore struct {
	repo repositories.QuestionRepository
}

func NewQuestionStore(repo repositories.QuestionRepository) selector.QuestionStore {
	return &questionStore{repo: repo}
}

func (s *questionStore) FindOne(ctx context.Context, query selector.Query) (*models.Question, error) {
	return s.repo.FindOne(ctx, nil, query)
}

func (s *questionStore) LinkQuestions(ctx context.Context, linkID uint) ([]models.Question, error) {
	return s.repo.GetByLink(ctx, nil, linkID)
}

// topicMetadata serves sub topic metadata through the topic cache. Sub topics
// without stored metadata use the default factor and no concept order.
type topicMetadata struct {
	repo          repositories.TopicRepository
	cache         cache.CacheService
	ttl           time.Duration
	defaultFactor float64
	logger        *slog.Logger
}

func NewTopicMetadata(repo repositories.TopicRepository, c cache.CacheService, ttl time.Duration, defaultFactor float64, logger *slog.Logger) selector.TopicMetadata {
	if c == nil {
		c = cache.NewNoopCache()
	}
	if ttl <= 0 {
		ttl = cache.TopicCacheConfig.TTL
	}
	return &topicMetadata{
		repo:          repo,
		cache:         c,
		ttl:           ttl,
		defaultFactor: defaultFactor,
		logger:        logger,
	}
}

func (t *topicMetadata) subTopic(ctx context.Context, id string) (*models.SubTopic, error) {
	var subTopic models.SubTopic
	err := t.cache.CacheOrExecute(ctx, cache.SubTopicKey(id), &subTopic, t.ttl, func() (interface{}, error) {
		st, err := t.repo.GetSubTopic(ctx, nil, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				t.logger.Debug("No metadata for sub topic, using defaults", "sub_topic", id)
				return &models.SubTopic{ID: id, DataLevel: t.defaultFactor}, nil
			}
			return nil, err
		}
		return st, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load sub topic %s: %w", id, err)
	}
	return &subTopic, nil
}

func (t *topicMetadata) DataLevelFactor(ctx context.Context, subTopic string) (float64, error) {
	st, err := t.subTopic(ctx, subTopic)
	if err != nil {
		return 0, err
	}
	if st.DataLevel <= 0 {
		return t.defaultFactor, nil
	}
	return st.DataLevel, nil
}

func (t *topicMetadata) Concepts(ctx context.Context, subTopic string) ([]string, error) {
	st, err := t.subTopic(ctx, subTopic)
	if err != nil {
		return nil, err
	}
	return st.Concepts, nil
}

// userStats exposes concept mastery rows to the selector.
type userStats struct {
	repo repositories.UserStatRepository
}

func NewUserStats(repo repositories.UserStatRepository) selector.UserStats {
	return &userStats{repo: repo}
}

func (u *userStats) GetOrCreate(ctx context.Context, userID uint, subTopic string) (*models.UserConceptStat, error) {
	return u.repo.GetOrCreate(ctx, nil, userID, subTopic)
}
