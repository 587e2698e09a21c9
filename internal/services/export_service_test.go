package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/validator"
)

func gradedFixture(t *testing.T) *gradingFixture {
	t.Helper()
	f := newGradingFixture(t)
	for _, id := range []uint{1, 2, 3} {
		_, err := f.svc.GradeSubmission(context.Background(), id)
		require.NoError(t, err)
	}
	return f
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { wb.Close() })
	return wb
}

func TestExportService_CoreAnalysis(t *testing.T) {
	f := gradedFixture(t)
	svc := NewExportService(f.repo, discardLogger(), validator.New())

	coreID := uint(1)
	data, err := svc.ExportAnalysis(context.Background(), &models.ExportRequest{CoreID: &coreID})
	require.NoError(t, err)

	wb := openWorkbook(t, data)
	assert.Equal(t, []string{"Summary", "Marks", "Questions"}, wb.GetSheetList())

	summary, err := wb.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Core", "1"}, summary[0])
	assert.Equal(t, []string{"Title", "Mock test"}, summary[1])
	assert.Equal(t, []string{"Submissions", "3"}, summary[2])

	marks, err := wb.GetRows("Marks")
	require.NoError(t, err)
	require.Len(t, marks, 4)
	assert.Equal(t, []string{"Rank", "User", "Submission", "Marks", "Percent", "Percentile"}, marks[0])
	assert.Equal(t, "1", marks[1][0])
	assert.Equal(t, "1", marks[1][2])
	assert.Equal(t, "8", marks[1][3])
	assert.Equal(t, "3", marks[3][2])
	assert.Equal(t, "-1", marks[3][3])

	questions, err := wb.GetRows("Questions")
	require.NoError(t, err)
	require.Len(t, questions, 3)
	// question 11: two correct out of two attempts
	assert.Equal(t, []string{"1", "1", "11", "1", "2", "2", "1", "30"}, questions[1])
}

func TestExportService_WrapperAnalysisMarksOnly(t *testing.T) {
	f := gradedFixture(t)
	svc := NewExportService(f.repo, discardLogger(), validator.New())

	wrapperID := uint(100)
	data, err := svc.ExportAnalysis(context.Background(), &models.ExportRequest{WrapperID: &wrapperID, IncludeMarks: true})
	require.NoError(t, err)

	wb := openWorkbook(t, data)
	assert.Equal(t, []string{"Summary", "Marks"}, wb.GetSheetList())

	marks, err := wb.GetRows("Marks")
	require.NoError(t, err)
	assert.Len(t, marks, 3)
}

func TestExportService_Errors(t *testing.T) {
	f := newGradingFixture(t)
	svc := NewExportService(f.repo, discardLogger(), validator.New())
	ctx := context.Background()

	_, err := svc.ExportAnalysis(ctx, &models.ExportRequest{})
	assert.True(t, IsValidation(err), "got %v", err)

	coreID, wrapperID := uint(1), uint(100)
	_, err = svc.ExportAnalysis(ctx, &models.ExportRequest{CoreID: &coreID, WrapperID: &wrapperID})
	assert.True(t, IsValidation(err), "got %v", err)

	_, err = svc.ExportAnalysis(ctx, &models.ExportRequest{CoreID: &coreID})
	assert.ErrorIs(t, err, ErrAnalysisNotFound)
}
