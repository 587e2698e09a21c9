package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
	"github.com/SAP-F-2025/assessment-engine/internal/selector"
)

type QuestionPostgreSQL struct {
	*SharedHelpers
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{SharedHelpers: NewSharedHelpers(db)}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	return q.getDB(tx).WithContext(ctx).Create(question).Error
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.getDB(tx).WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Question, error) {
	var questions []models.Question
	if len(ids) == 0 {
		return questions, nil
	}
	if err := q.getDB(tx).WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// FindOne translates a selector query into a single-row lookup.
func (q *QuestionPostgreSQL) FindOne(ctx context.Context, tx *gorm.DB, query selector.Query) (*models.Question, error) {
	stmt, err := q.findStatement(q.getDB(tx).WithContext(ctx), query)
	if err != nil {
		return nil, err
	}

	var question models.Question
	if err := stmt.First(&question).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) findStatement(db *gorm.DB, query selector.Query) (*gorm.DB, error) {
	stmt := db.Model(&models.Question{}).
		Where("is_published = ? AND is_archived = ?", true, false)

	if query.RequireFixed {
		stmt = stmt.Where("fixed = ?", true)
	}
	if len(query.Exclude) > 0 {
		stmt = stmt.Where("id NOT IN ?", query.Exclude)
	}
	if query.MaxAttempts != nil {
		stmt = stmt.Where("attempts_count <= ?", *query.MaxAttempts)
	}
	if query.MinAttempts != nil {
		stmt = stmt.Where("attempts_count >= ?", *query.MinAttempts)
	}
	if query.Concept != "" {
		containment, err := conceptContainment(query.Concept)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("concepts @> ?::jsonb", containment)
	}
	group, err := q.criteriaGroup(db, query.Criteria)
	if err != nil {
		return nil, err
	}
	if group != nil {
		stmt = stmt.Where(group)
	}
	return stmt.Order(orderClause(query)), nil
}

func conceptContainment(concept string) (string, error) {
	containment, err := json.Marshal([]string{concept})
	if err != nil {
		return "", fmt.Errorf("failed to encode concept filter: %w", err)
	}
	return string(containment), nil
}

// criteriaGroup ORs the criteria into one parenthesized condition. A
// concept set matches when the question carries any of its concepts.
func (q *QuestionPostgreSQL) criteriaGroup(db *gorm.DB, criteria []models.SelectionCriteria) (*gorm.DB, error) {
	var group *gorm.DB
	for _, c := range criteria {
		cond := db.Session(&gorm.Session{NewDB: true}).Where("sub_topic_id = ?", c.SubTopic)
		if levels := c.LevelSet(); len(levels) > 0 {
			cond = cond.Where("level IN ?", levels)
		}
		if c.Kind == models.CriteriaConceptSet && len(c.Concepts) > 0 {
			var anyConcept *gorm.DB
			for _, concept := range c.Concepts {
				containment, err := conceptContainment(concept)
				if err != nil {
					return nil, err
				}
				if anyConcept == nil {
					anyConcept = db.Session(&gorm.Session{NewDB: true}).Where("concepts @> ?::jsonb", containment)
				} else {
					anyConcept = anyConcept.Or("concepts @> ?::jsonb", containment)
				}
			}
			cond = cond.Where(anyConcept)
		}

		if group == nil {
			group = db.Session(&gorm.Session{NewDB: true}).Where(cond)
		} else {
			group = group.Or(cond)
		}
	}
	return group, nil
}

// orderClause mirrors selector.Query.Less.
func orderClause(query selector.Query) clause.OrderBy {
	var columns []clause.OrderByColumn
	if query.ByDemoRank {
		columns = append(columns,
			clause.OrderByColumn{Column: clause.Column{Name: "stats_demo_rank = 0", Raw: true}},
			clause.OrderByColumn{Column: clause.Column{Name: "stats_demo_rank"}},
		)
	}
	attempts := clause.Column{Name: "attempts_count"}
	switch query.Order {
	case selector.OrderAttemptsDesc:
		columns = append(columns, clause.OrderByColumn{Column: attempts, Desc: true})
	case selector.OrderAttemptsAsc:
		columns = append(columns, clause.OrderByColumn{Column: attempts})
	}
	columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	return clause.OrderBy{Columns: columns}
}

func (q *QuestionPostgreSQL) GetByLink(ctx context.Context, tx *gorm.DB, linkID uint) ([]models.Question, error) {
	var questions []models.Question
	if err := q.getDB(tx).WithContext(ctx).
		Where("link_id = ?", linkID).
		Order("link_order ASC, id ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) IncrementAttempts(ctx context.Context, tx *gorm.DB, id uint) (int, error) {
	var question models.Question
	result := q.getDB(tx).WithContext(ctx).Model(&question).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "attempts_count"}}}).
		Where("id = ?", id).
		UpdateColumn("attempts_count", gorm.Expr("attempts_count + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return question.AttemptsCount, nil
}

func (q *QuestionPostgreSQL) UpdateCalibration(ctx context.Context, tx *gorm.DB, id uint, level models.QuestionLevel, stats models.QuestionStatistics) error {
	result := q.getDB(tx).WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"level":                  level,
			"stats_perfect_time_min": stats.PerfectTimeMin,
			"stats_perfect_time_max": stats.PerfectTimeMax,
			"stats_median_time":      stats.MedianTime,
			"stats_average_accuracy": stats.AverageAccuracy,
			"stats_calibrated_at":    stats.CalibratedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
