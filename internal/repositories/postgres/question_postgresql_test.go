package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/selector"
)

func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=engine dbname=engine sslmode=disable",
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func findSQL(t *testing.T, query selector.Query) string {
	t.Helper()
	db := newDryRunDB(t)
	repo := &QuestionPostgreSQL{SharedHelpers: NewSharedHelpers(db)}

	var buildErr error
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		stmt, err := repo.findStatement(tx, query)
		if err != nil {
			buildErr = err
			return tx
		}
		return stmt.First(&models.Question{})
	})
	require.NoError(t, buildErr)
	return sql
}

func TestQuestionPostgreSQL_FindStatementConceptSet(t *testing.T) {
	sql := findSQL(t, selector.Query{Criteria: []models.SelectionCriteria{{
		Kind:     models.CriteriaConceptSet,
		SubTopic: "algebra",
		Concepts: []string{"c1", "c2"},
	}}})

	assert.NotContains(t, sql, "ARRAY[")
	assert.Contains(t, sql, `concepts @> '["c1"]'::jsonb`)
	assert.Contains(t, sql, `OR concepts @> '["c2"]'::jsonb`)
	assert.Contains(t, sql, "sub_topic_id = 'algebra'")
}

func TestQuestionPostgreSQL_FindStatementConcept(t *testing.T) {
	sql := findSQL(t, selector.Query{Concept: "vectors"})
	assert.Contains(t, sql, `concepts @> '["vectors"]'::jsonb`)
}

func TestQuestionPostgreSQL_FindStatementOrder(t *testing.T) {
	t.Run("DemoRankLeads", func(t *testing.T) {
		sql := findSQL(t, selector.Query{ByDemoRank: true, Order: selector.OrderAttemptsAsc})
		rank := strings.Index(sql, "stats_demo_rank = 0")
		attempts := strings.Index(sql, `"attempts_count"`)
		require.GreaterOrEqual(t, rank, 0)
		require.GreaterOrEqual(t, attempts, 0)
		assert.Less(t, rank, attempts)
	})

	t.Run("AttemptsOnly", func(t *testing.T) {
		sql := findSQL(t, selector.Query{Order: selector.OrderAttemptsDesc})
		assert.NotContains(t, sql, "stats_demo_rank")
		assert.Contains(t, sql, `"attempts_count" DESC`)
	})
}
