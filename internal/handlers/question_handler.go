package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/assessment-engine/internal/services"
	"github.com/SAP-F-2025/assessment-engine/internal/utils"
)

type QuestionHandler struct {
	BaseHandler
	calibration services.CalibrationService
	importer    services.ImportService
}

func NewQuestionHandler(calibration services.CalibrationService, importer services.ImportService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler: NewBaseHandler(logger),
		calibration: calibration,
		importer:    importer,
	}
}

// RecalibrateQuestion godoc
// @Summary Recalibrate question
// @Description Recomputes the perfect-time window, accuracy and level of a question
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} services.RecalibrationResult
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /questions/{id}/recalibrate [post]
func (h *QuestionHandler) RecalibrateQuestion(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Recalibrating question", "question_id", id)

	result, err := h.calibration.RecalibrateQuestion(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ImportQuestions godoc
// @Summary Import questions
// @Description Imports a question bank sheet (csv or xlsx). Invalid rows are reported and skipped.
// @Tags questions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Question sheet"
// @Success 201 {object} services.ImportResult
// @Failure 400 {object} ErrorResponse
// @Router /questions/import [post]
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "File is required",
			Details: err.Error(),
			Code:    "validation",
		})
		return
	}
	file, err := header.Open()
	if err != nil {
		h.LogError(c, err, "Failed to open uploaded file")
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Failed to open file", Code: "validation"})
		return
	}
	defer file.Close()
	h.LogRequest(c, "Importing questions", "filename", header.Filename, "size", header.Size)

	result, err := h.importer.ImportQuestions(c.Request.Context(), file, header.Filename)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
