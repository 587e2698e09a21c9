package postgres

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
)

type TopicPostgreSQL struct {
	*SharedHelpers
}

func NewTopicPostgreSQL(db *gorm.DB) repositories.TopicRepository {
	return &TopicPostgreSQL{SharedHelpers: NewSharedHelpers(db)}
}

func (t *TopicPostgreSQL) GetSubTopic(ctx context.Context, tx *gorm.DB, id string) (*models.SubTopic, error) {
	var subTopic models.SubTopic
	if err := t.getDB(tx).WithContext(ctx).Where("id = ?", id).First(&subTopic).Error; err != nil {
		return nil, err
	}
	return &subTopic, nil
}

func (t *TopicPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, subTopic *models.SubTopic) error {
	return t.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(subTopic).Error
}

type UserStatPostgreSQL struct {
	*SharedHelpers
}

func NewUserStatPostgreSQL(db *gorm.DB) repositories.UserStatRepository {
	return &UserStatPostgreSQL{SharedHelpers: NewSharedHelpers(db)}
}

var userSubTopicColumns = []clause.Column{{Name: "user_id"}, {Name: "sub_topic_id"}}

func (u *UserStatPostgreSQL) GetOrCreate(ctx context.Context, tx *gorm.DB, userID uint, subTopicID string) (*models.UserConceptStat, error) {
	db := u.getDB(tx).WithContext(ctx)

	empty := models.UserConceptStat{
		UserID:     userID,
		SubTopicID: subTopicID,
		Concepts:   datatypes.NewJSONType(map[string]models.ConceptProgress{}),
	}
	if err := db.Clauses(clause.OnConflict{Columns: userSubTopicColumns, DoNothing: true}).
		Create(&empty).Error; err != nil {
		return nil, fmt.Errorf("failed to create concept stats: %w", err)
	}

	var stat models.UserConceptStat
	if err := db.Where("user_id = ? AND sub_topic_id = ?", userID, subTopicID).First(&stat).Error; err != nil {
		return nil, err
	}
	return &stat, nil
}

func (u *UserStatPostgreSQL) RecordAnswer(ctx context.Context, tx *gorm.DB, userID uint, subTopicID, concept string, correct bool) error {
	record := func(tx *gorm.DB) error {
		if _, err := u.GetOrCreate(ctx, tx, userID, subTopicID); err != nil {
			return err
		}

		var stat models.UserConceptStat
		if err := forUpdate(tx.WithContext(ctx)).
			Where("user_id = ? AND sub_topic_id = ?", userID, subTopicID).
			First(&stat).Error; err != nil {
			return err
		}

		concepts := make(map[string]models.ConceptProgress, len(stat.Concepts.Data())+1)
		for k, v := range stat.Concepts.Data() {
			concepts[k] = v
		}
		p := concepts[concept]
		p.Answered++
		if correct {
			p.Correct++
		}
		concepts[concept] = p

		return tx.WithContext(ctx).Model(&models.UserConceptStat{}).
			Where("id = ?", stat.ID).
			Updates(map[string]interface{}{
				"concepts":     datatypes.NewJSONType(concepts),
				"last_concept": concept,
			}).Error
	}

	if tx != nil {
		return record(tx)
	}
	return u.db.WithContext(ctx).Transaction(record)
}
