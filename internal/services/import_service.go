package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
	"github.com/SAP-F-2025/assessment-engine/internal/validator"
)

// ImportService loads question banks from spreadsheets.
type ImportService interface {
	// ImportQuestions reads a csv or xlsx sheet, one question per row. Valid
	// rows are stored together; invalid rows are reported and skipped.
	ImportQuestions(ctx context.Context, reader io.Reader, filename string) (*ImportResult, error)
}

type ImportResult struct {
	TotalRows    int                            `json:"total_rows"`
	SuccessCount int                            `json:"success_count"`
	ErrorCount   int                            `json:"error_count"`
	Errors       []models.ImportValidationError `json:"errors"`
	QuestionIDs  []uint                         `json:"question_ids"`
}

type importService struct {
	repo      repositories.Repository
	logger    *ServiceLogger
	validator *validator.Validator
}

func NewImportService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ImportService {
	return &importService{
		repo:      repo,
		logger:    NewServiceLogger(logger, LogConfig{Service: "engine", Component: "import"}),
		validator: validator,
	}
}

func (s *importService) ImportQuestions(ctx context.Context, reader io.Reader, filename string) (result *ImportResult, err error) {
	op := s.logger.WithOperation(ctx, "import_questions", 0)
	defer func() {
		var stored uint
		if result != nil {
			stored = uint(result.SuccessCount)
		}
		op.LogResult(stored, "questions", err)
	}()

	var records [][]string
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		records, err = readCSV(reader)
	case ".xlsx":
		records, err = readExcel(reader)
	default:
		return nil, ValidationErrors{*NewValidationError("file", "unsupported file format", ext)}
	}
	if err != nil {
		return nil, err
	}
	return s.importRecords(ctx, records)
}

func readCSV(reader io.Reader) ([][]string, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return records, nil
}

func readExcel(reader io.Reader) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ValidationErrors{*NewValidationError("file", "Excel file has no sheets", nil)}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	return rows, nil
}

func (s *importService) importRecords(ctx context.Context, records [][]string) (*ImportResult, error) {
	if len(records) < 2 {
		return nil, ValidationErrors{*NewValidationError("file", "sheet must have a header row and at least one data row", len(records))}
	}

	headerMap := make(map[string]int)
	for i, header := range records[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range []string{models.ImportColumnSubTopic, models.ImportColumnType, models.ImportColumnAnswer} {
		if _, exists := headerMap[col]; !exists {
			return nil, ValidationErrors{*NewValidationError("headers", "missing required column: "+col, col)}
		}
	}

	result := &ImportResult{TotalRows: len(records) - 1}
	var questions []*models.Question
	for rowIndex, record := range records[1:] {
		question, rowErrors := s.parseRow(record, headerMap, rowIndex+2)
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorCount++
			continue
		}
		questions = append(questions, question)
	}

	if len(questions) > 0 {
		err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
			for _, q := range questions {
				if err := s.repo.Question().Create(ctx, tx, q); err != nil {
					return fmt.Errorf("failed to create question: %w", err)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	for _, q := range questions {
		result.QuestionIDs = append(result.QuestionIDs, q.ID)
	}
	result.SuccessCount = len(questions)
	return result, nil
}

func (s *importService) parseRow(record []string, headerMap map[string]int, rowNum int) (*models.Question, []models.ImportValidationError) {
	var errs []models.ImportValidationError
	getColumn := func(name string) string {
		if index, exists := headerMap[name]; exists && index < len(record) {
			return strings.TrimSpace(record[index])
		}
		return ""
	}
	reject := func(column, message string) {
		errs = append(errs, models.ImportValidationError{
			Row: rowNum, Column: column, Message: message, Value: getColumn(column),
		})
	}

	question := &models.Question{
		TopicID:     getColumn(models.ImportColumnTopic),
		SubTopicID:  getColumn(models.ImportColumnSubTopic),
		Type:        models.QuestionType(strings.ToLower(getColumn(models.ImportColumnType))),
		Level:       models.LevelMedium,
		IsPublished: true,
	}
	if question.SubTopicID == "" {
		reject(models.ImportColumnSubTopic, "required field")
	}
	if question.TopicID == "" {
		question.TopicID = question.SubTopicID
	}

	if raw := getColumn(models.ImportColumnLevel); raw != "" {
		level, ok := parseLevel(raw)
		if !ok {
			reject(models.ImportColumnLevel, "level must be 1-3 or easy/medium/hard")
		}
		question.Level = level
	}

	key, err := parseAnswerKey(question.Type, getColumn(models.ImportColumnAnswer))
	if err != nil {
		reject(models.ImportColumnAnswer, err.Error())
	}
	question.AnswerKey = datatypes.NewJSONType(key)

	if raw := getColumn(models.ImportColumnConcepts); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				question.Concepts = append(question.Concepts, c)
			}
		}
	}

	if raw := getColumn(models.ImportColumnLinkID); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			reject(models.ImportColumnLinkID, "link id must be a positive integer")
		} else {
			linkID := uint(id)
			question.LinkID = &linkID
		}
	}
	if raw := getColumn(models.ImportColumnLinkOrder); raw != "" {
		order, err := strconv.Atoi(raw)
		if err != nil {
			reject(models.ImportColumnLinkOrder, "link order must be an integer")
		}
		question.LinkOrder = order
	}
	if raw := getColumn(models.ImportColumnPublished); raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			reject(models.ImportColumnPublished, "published must be true or false")
		}
		question.IsPublished = published
	}
	if raw := getColumn(models.ImportColumnFixed); raw != "" {
		fixed, err := strconv.ParseBool(raw)
		if err != nil {
			reject(models.ImportColumnFixed, "fixed must be true or false")
		}
		question.Fixed = fixed
	}

	if len(errs) > 0 {
		return nil, errs
	}
	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		reject(models.ImportColumnType, err.Error())
		return nil, errs
	}
	return question, nil
}

func parseLevel(raw string) (models.QuestionLevel, bool) {
	switch strings.ToLower(raw) {
	case "1", "easy":
		return models.LevelEasy, true
	case "2", "medium":
		return models.LevelMedium, true
	case "3", "hard":
		return models.LevelHard, true
	}
	return 0, false
}

// parseAnswerKey reads the answer cell: option ids separated by "|" for
// choice questions, an integer, or "start:end" for numeric ranges.
func parseAnswerKey(questionType models.QuestionType, raw string) (models.AnswerKey, error) {
	var key models.AnswerKey
	if raw == "" {
		return key, fmt.Errorf("required field")
	}

	switch questionType.Base() {
	case models.QuestionSingle, models.QuestionMultiple:
		for _, opt := range strings.Split(raw, "|") {
			key.Options = append(key.Options, strings.TrimSpace(opt))
		}
	case models.QuestionInteger:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return key, fmt.Errorf("integer answer expected")
		}
		key.Integer = &v
	case models.QuestionNumericRange:
		start, end, found := strings.Cut(raw, ":")
		if !found {
			return key, fmt.Errorf("range answer must be start:end")
		}
		lo, err := strconv.ParseFloat(strings.TrimSpace(start), 64)
		if err != nil {
			return key, fmt.Errorf("range start must be a number")
		}
		hi, err := strconv.ParseFloat(strings.TrimSpace(end), 64)
		if err != nil {
			return key, fmt.Errorf("range end must be a number")
		}
		key.RangeStart, key.RangeEnd = &lo, &hi
	default:
		return key, fmt.Errorf("unsupported question type: %s", questionType)
	}
	return key, nil
}
