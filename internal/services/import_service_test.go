package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/validator"
)

const questionSheet = `sub_topic_id,type,answer,level,concepts,link_id,link_order,published
algebra,single,a,easy,"linear,quadratic",,,
algebra,multiple,a|c,3,,,,false
algebra,integer,42,2,,,,
algebra,numeric_range,1.5:2.5,,,,,
algebra,linked_single,b,1,,9,2,
algebra,essay,x,1,,,,
algebra,single,a,7,,,,
,single,a,1,,,,
algebra,numeric_range,3:1,1,,,,
algebra,linked_integer,5,1,,,,
`

func TestImportQuestions_CSV(t *testing.T) {
	repo := newMemRepo()
	svc := NewImportService(repo, discardLogger(), validator.New())

	result, err := svc.ImportQuestions(context.Background(), strings.NewReader(questionSheet), "bank.CSV")
	require.NoError(t, err)

	assert.Equal(t, 10, result.TotalRows)
	assert.Equal(t, 5, result.SuccessCount)
	assert.Equal(t, 5, result.ErrorCount)
	require.Len(t, result.QuestionIDs, 5)

	rows := make([]int, 0, len(result.Errors))
	for _, e := range result.Errors {
		rows = append(rows, e.Row)
	}
	assert.Equal(t, []int{7, 8, 9, 10, 11}, rows)
	assert.Equal(t, models.ImportColumnLevel, result.Errors[1].Column)
	assert.Equal(t, models.ImportColumnSubTopic, result.Errors[2].Column)

	first, err := repo.Question().GetByID(context.Background(), nil, result.QuestionIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "algebra", first.TopicID)
	assert.Equal(t, models.LevelEasy, first.Level)
	assert.Equal(t, []string{"linear", "quadratic"}, []string(first.Concepts))
	assert.Equal(t, []string{"a"}, first.AnswerKey.Data().Options)
	assert.True(t, first.IsPublished)

	multiple, err := repo.Question().GetByID(context.Background(), nil, result.QuestionIDs[1])
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, multiple.AnswerKey.Data().Options)
	assert.False(t, multiple.IsPublished)

	integer, err := repo.Question().GetByID(context.Background(), nil, result.QuestionIDs[2])
	require.NoError(t, err)
	require.NotNil(t, integer.AnswerKey.Data().Integer)
	assert.Equal(t, int64(42), *integer.AnswerKey.Data().Integer)

	ranged, err := repo.Question().GetByID(context.Background(), nil, result.QuestionIDs[3])
	require.NoError(t, err)
	assert.Equal(t, models.LevelMedium, ranged.Level)
	assert.Equal(t, 1.5, *ranged.AnswerKey.Data().RangeStart)

	linked, err := repo.Question().GetByID(context.Background(), nil, result.QuestionIDs[4])
	require.NoError(t, err)
	require.NotNil(t, linked.LinkID)
	assert.Equal(t, uint(9), *linked.LinkID)
	assert.Equal(t, 2, linked.LinkOrder)
}

func TestImportQuestions_Excel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"sub_topic_id", "type", "answer", "level"},
		{"fractions", "single", "b", "hard"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	repo := newMemRepo()
	svc := NewImportService(repo, discardLogger(), validator.New())
	result, err := svc.ImportQuestions(context.Background(), &buf, "bank.xlsx")
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	q, err := repo.Question().GetByID(context.Background(), nil, result.QuestionIDs[0])
	require.NoError(t, err)
	assert.Equal(t, models.LevelHard, q.Level)
	assert.Equal(t, "fractions", q.SubTopicID)
}

func TestImportQuestions_InvalidFlags(t *testing.T) {
	repo := newMemRepo()
	svc := NewImportService(repo, discardLogger(), validator.New())

	sheet := `sub_topic_id,type,answer,level,published,fixed
algebra,single,a,1,maybe,
algebra,single,a,1,true,sometimes
algebra,single,a,1,0,1
`
	result, err := svc.ImportQuestions(context.Background(), strings.NewReader(sheet), "bank.csv")
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.ErrorCount)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, models.ImportColumnPublished, result.Errors[0].Column)
	assert.Equal(t, "maybe", result.Errors[0].Value)
	assert.Equal(t, 3, result.Errors[1].Row)
	assert.Equal(t, models.ImportColumnFixed, result.Errors[1].Column)

	require.Len(t, result.QuestionIDs, 1)
	stored, err := repo.Question().GetByID(context.Background(), nil, result.QuestionIDs[0])
	require.NoError(t, err)
	assert.False(t, stored.IsPublished)
	assert.True(t, stored.Fixed)
}

func TestImportQuestions_Invalid(t *testing.T) {
	svc := NewImportService(newMemRepo(), discardLogger(), validator.New())

	cases := map[string]struct {
		body     string
		filename string
	}{
		"UnsupportedFormat": {"sub_topic_id,type,answer\n", "bank.json"},
		"HeaderOnly":        {"sub_topic_id,type,answer\n", "bank.csv"},
		"MissingColumn":     {"sub_topic_id,type\nalgebra,single\n", "bank.csv"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ImportQuestions(context.Background(), strings.NewReader(tc.body), tc.filename)
			require.Error(t, err)
			assert.True(t, IsValidation(err), err.Error())
		})
	}
}
