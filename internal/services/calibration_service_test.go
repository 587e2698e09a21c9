package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/assessment-engine/internal/events"
	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

func TestCalibrationService_RecalibrateQuestion(t *testing.T) {
	repo := newMemRepo()
	seedQuestions(t, repo, practiceQuestion(1, "algebra", models.LevelHard))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, repo.Attempt().Create(ctx, nil, &models.Attempt{
			UserID:     uint(i + 1),
			QuestionID: 1,
			IsAnswered: true,
			IsCorrect:  true,
			Time:       100000,
		}))
	}
	// skips never count towards calibration
	require.NoError(t, repo.Attempt().Create(ctx, nil, &models.Attempt{UserID: 99, QuestionID: 1, Time: 1000}))

	publisher := events.NewMockEventPublisher(discardLogger())
	svc := NewCalibrationService(repo, publisher, discardLogger(), 10).(*calibrationService)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	result, err := svc.RecalibrateQuestion(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.LevelHard, result.PreviousLevel)
	assert.Equal(t, models.LevelEasy, result.Level)
	assert.Equal(t, 10, result.Attempts)
	assert.InDelta(t, 400.0/6.0, result.Statistics.PerfectTimeMin, 1e-9)
	assert.InDelta(t, 1800.0/11.0, result.Statistics.PerfectTimeMax, 1e-9)
	assert.Equal(t, 100.0, result.Statistics.MedianTime)
	assert.Equal(t, 1.0, result.Statistics.AverageAccuracy)

	stored, err := repo.Question().GetByID(ctx, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, models.LevelEasy, stored.Level)
	assert.True(t, stored.Statistics.Calibrated())
	assert.Equal(t, fixed, *stored.Statistics.CalibratedAt)

	published := publisher.EventsOfType(events.EventQuestionRecalibrated)
	require.Len(t, published, 1)
	data, ok := published[0].Data.(events.QuestionRecalibratedEvent)
	require.True(t, ok)
	assert.Equal(t, uint(1), data.QuestionID)
	assert.Equal(t, models.LevelEasy, data.Level)
}

func TestCalibrationService_KeepsLevelBelowThreshold(t *testing.T) {
	repo := newMemRepo()
	seedQuestions(t, repo, practiceQuestion(1, "algebra", models.LevelHard))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, repo.Attempt().Create(ctx, nil, &models.Attempt{
			UserID:     uint(i + 1),
			QuestionID: 1,
			IsAnswered: true,
			IsCorrect:  true,
			Time:       100000,
		}))
	}

	svc := NewCalibrationService(repo, nil, discardLogger(), 100)
	result, err := svc.RecalibrateQuestion(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.LevelHard, result.PreviousLevel)
	assert.Equal(t, models.LevelHard, result.Level)
	assert.Equal(t, 10, result.Attempts)
	assert.Equal(t, 100.0, result.Statistics.MedianTime)

	stored, err := repo.Question().GetByID(ctx, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, models.LevelHard, stored.Level)
	assert.True(t, stored.Statistics.Calibrated())
}

func TestCalibrationService_UsesStoredWindowAfterwards(t *testing.T) {
	calibratedAt := time.Now()
	q := practiceQuestion(1, "algebra", models.LevelEasy)
	q.Statistics = models.QuestionStatistics{PerfectTimeMin: 50, PerfectTimeMax: 70, MedianTime: 60, CalibratedAt: &calibratedAt}

	// 30s is perfect under the level priors but fast against the stored window
	assert.Equal(t, models.SpeedFast, speedOf(q, 30))
	assert.Equal(t, models.SpeedPerfect, speedOf(q, 60))

	q.Statistics = models.QuestionStatistics{}
	assert.Equal(t, models.SpeedPerfect, speedOf(q, 30))
}

func TestCalibrationService_UnknownQuestion(t *testing.T) {
	svc := NewCalibrationService(newMemRepo(), nil, discardLogger(), 100)
	_, err := svc.RecalibrateQuestion(context.Background(), 42)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}
