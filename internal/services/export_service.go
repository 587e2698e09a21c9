package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/assessment-engine/internal/analytics"
	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
	"github.com/SAP-F-2025/assessment-engine/internal/stats"
	"github.com/SAP-F-2025/assessment-engine/internal/validator"
)

const (
	summarySheet   = "Summary"
	marksSheet     = "Marks"
	questionsSheet = "Questions"
)

type ExportService interface {
	// ExportAnalysis renders a core or wrapper analysis as an xlsx workbook.
	ExportAnalysis(ctx context.Context, req *models.ExportRequest) ([]byte, error)
}

type exportService struct {
	repo      repositories.Repository
	logger    *ServiceLogger
	validator *validator.Validator
}

func NewExportService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ExportService {
	return &exportService{
		repo:      repo,
		logger:    NewServiceLogger(logger, LogConfig{Service: "engine", Component: "export"}),
		validator: validator,
	}
}

func (s *exportService) ExportAnalysis(ctx context.Context, req *models.ExportRequest) (data []byte, err error) {
	op := s.logger.WithOperation(ctx, "export_analysis", 0)
	defer func() {
		var id uint
		if req.CoreID != nil {
			id = *req.CoreID
		} else if req.WrapperID != nil {
			id = *req.WrapperID
		}
		op.LogResult(id, "analysis", err)
	}()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	core, a, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummary(f, core, a); err != nil {
		return nil, err
	}
	// Both detail sheets are written when neither is requested explicitly.
	all := !req.IncludeMarks && !req.IncludeQuestions
	if all || req.IncludeMarks {
		if err := writeMarks(f, a); err != nil {
			return nil, err
		}
	}
	if all || req.IncludeQuestions {
		if err := writeQuestions(f, core, a); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *exportService) load(ctx context.Context, req *models.ExportRequest) (*models.AssessmentCore, models.Analysis, error) {
	coreID := uint(0)
	var a models.Analysis

	if req.WrapperID != nil {
		stored, err := s.repo.Analysis().GetWrapperAnalysis(ctx, nil, *req.WrapperID)
		if err != nil {
			return nil, a, fmt.Errorf("failed to get wrapper analysis: %w", err)
		}
		if stored == nil {
			return nil, a, ErrAnalysisNotFound
		}
		coreID = stored.CoreID
		a = stored.Analysis.Data()
	} else {
		coreID = *req.CoreID
		stored, err := s.repo.Analysis().GetCoreAnalysis(ctx, nil, coreID)
		if err != nil {
			return nil, a, fmt.Errorf("failed to get core analysis: %w", err)
		}
		if stored == nil {
			return nil, a, ErrAnalysisNotFound
		}
		a = stored.Analysis.Data()
	}

	core, err := s.repo.Assessment().GetCore(ctx, nil, coreID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, a, ErrCoreNotFound
		}
		return nil, a, fmt.Errorf("failed to get core: %w", err)
	}
	return core, a, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, core *models.AssessmentCore, a models.Analysis) error {
	// excelize starts with "Sheet1"; rename it instead of leaving it empty
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	meanMarks, sdMarks := analytics.MarksSpread(a)
	meanAcc, sdAcc := analytics.AccuracySpread(a)
	windows := analytics.CalibrateDifficulty(a)

	rows := [][]interface{}{
		{"Core", core.ID},
		{"Title", core.Title},
		{"Submissions", len(a.Submissions)},
		{"Max Marks", a.MaxMarks},
		{"Mean Marks", stats.Round2(meanMarks)},
		{"Marks Std Dev", stats.Round2(sdMarks)},
		{"Mean Accuracy", stats.Round2(meanAcc)},
		{"Accuracy Std Dev", stats.Round2(sdAcc)},
		{},
		{"Level", "Perfect Min (s)", "Perfect Max (s)", "Median (s)", "Attempts", "Correct"},
		{"Easy", stats.Round2(windows.Easy.Min), stats.Round2(windows.Easy.Max), stats.Round2(windows.Easy.MedianTime), a.Difficulty.Easy.TotalAttempts, a.Difficulty.Easy.Correct},
		{"Medium", stats.Round2(windows.Medium.Min), stats.Round2(windows.Medium.Max), stats.Round2(windows.Medium.MedianTime), a.Difficulty.Medium.TotalAttempts, a.Difficulty.Medium.Correct},
		{"Hard", stats.Round2(windows.Hard.Min), stats.Round2(windows.Hard.Max), stats.Round2(windows.Hard.MedianTime), a.Difficulty.Hard.TotalAttempts, a.Difficulty.Hard.Correct},
	}
	return writeRows(f, summarySheet, rows)
}

func writeMarks(f *excelize.File, a models.Analysis) error {
	if _, err := f.NewSheet(marksSheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	entries := make([]models.MarkEntry, len(a.Marks))
	copy(entries, a.Marks)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Marks > entries[j].Marks
	})

	rows := [][]interface{}{{"Rank", "User", "Submission", "Marks", "Percent", "Percentile"}}
	for _, e := range entries {
		r := analytics.GetRanking(a, e.Marks)
		rows = append(rows, []interface{}{r.Rank, e.UserID, e.SubmissionID, e.Marks, r.Percent, r.Percentile})
	}
	return writeRows(f, marksSheet, rows)
}

func writeQuestions(f *excelize.File, core *models.AssessmentCore, a models.Analysis) error {
	if _, err := f.NewSheet(questionsSheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	rows := [][]interface{}{{"Section", "Index", "Question", "Level", "Attempts", "Correct", "Accuracy", "Mean Time (s)"}}
	for si, section := range core.Sections {
		for qi, q := range section.Questions {
			var qs models.QuestionStats
			if si < len(a.Sections) && qi < len(a.Sections[si].Questions) {
				qs = a.Sections[si].Questions[qi]
			}
			var meanTime float64
			if qs.TotalAttempts > 0 {
				meanTime = qs.SumTime / float64(qs.TotalAttempts)
			}
			rows = append(rows, []interface{}{
				si + 1, qi + 1, q.QuestionID, q.Level,
				qs.TotalAttempts, qs.CorrectAttempts, stats.Round2(qs.Accuracy()), stats.Round2(meanTime),
			})
		}
	}
	return writeRows(f, questionsSheet, rows)
}
