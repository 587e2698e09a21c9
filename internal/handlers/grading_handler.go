package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/services"
	"github.com/SAP-F-2025/assessment-engine/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type GradingHandler struct {
	BaseHandler
	grading services.GradingService
	export  services.ExportService
}

func NewGradingHandler(grading services.GradingService, export services.ExportService, logger utils.Logger) *GradingHandler {
	return &GradingHandler{
		BaseHandler: NewBaseHandler(logger),
		grading:     grading,
		export:      export,
	}
}

// GradeSubmission godoc
// @Summary Grade submission
// @Description Grades one submission and folds it into its wrapper and core analyses
// @Tags grading
// @Produce json
// @Param id path int true "Submission ID"
// @Success 200 {object} models.SubmissionMeta
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /submissions/{id}/grade [post]
func (h *GradingHandler) GradeSubmission(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Grading submission", "submission_id", id)

	meta, err := h.grading.GradeSubmission(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

// GradeWrapper godoc
// @Summary Grade wrapper
// @Description Queues every ungraded submission of a wrapper for background grading
// @Tags grading
// @Produce json
// @Param id path int true "Wrapper ID"
// @Success 202 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /wrappers/{id}/grade [post]
func (h *GradingHandler) GradeWrapper(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Grading wrapper", "wrapper_id", id)

	queued, err := h.grading.GradeWrapper(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusAccepted, "Grading queued", gin.H{
		"wrapper_id": id,
		"queued":     queued,
	})
}

// GetWrapperRanking godoc
// @Summary Wrapper ranking
// @Description Ranks a score against a wrapper's analysis
// @Tags grading
// @Produce json
// @Param id path int true "Wrapper ID"
// @Param marks query number true "Score to rank"
// @Success 200 {object} stats.Ranking
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /wrappers/{id}/ranking [get]
func (h *GradingHandler) GetWrapperRanking(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.ranking(c, services.RankingScope{WrapperID: &id})
}

// GetCoreRanking godoc
// @Summary Core ranking
// @Description Ranks a score against a core's analysis
// @Tags grading
// @Produce json
// @Param id path int true "Core ID"
// @Param marks query number true "Score to rank"
// @Success 200 {object} stats.Ranking
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /cores/{id}/ranking [get]
func (h *GradingHandler) GetCoreRanking(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.ranking(c, services.RankingScope{CoreID: &id})
}

func (h *GradingHandler) ranking(c *gin.Context, scope services.RankingScope) {
	marks, ok := parseFloatQuery(c, "marks")
	if !ok {
		return
	}

	ranking, err := h.grading.GetRanking(c.Request.Context(), scope, marks)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ranking)
}

// ReGradeCore godoc
// @Summary Regrade core
// @Description Rebuilds every analysis of a core from scratch
// @Tags grading
// @Produce json
// @Param id path int true "Core ID"
// @Success 200 {object} services.RegradeResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /cores/{id}/regrade [post]
func (h *GradingHandler) ReGradeCore(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Regrading core", "core_id", id)

	result, err := h.grading.ReGradeCore(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SetBonus godoc
// @Summary Set bonus questions
// @Description Marks questions as bonus from now on and regrades the core
// @Tags grading
// @Accept json
// @Produce json
// @Param id path int true "Core ID"
// @Param bonus body services.BonusRequest true "Bonus questions"
// @Success 200 {object} services.RegradeResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /cores/{id}/bonus [post]
func (h *GradingHandler) SetBonus(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	var req services.BonusRequest
	if !bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Setting bonus questions", "core_id", id, "questions", len(req.QuestionIDs))

	result, err := h.grading.SetBonus(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CoreDifficulty godoc
// @Summary Core difficulty windows
// @Description Returns the perfect-time windows per difficulty level of a core
// @Tags grading
// @Produce json
// @Param id path int true "Core ID"
// @Success 200 {object} analytics.DifficultyWindows
// @Failure 404 {object} ErrorResponse
// @Router /cores/{id}/difficulty [get]
func (h *GradingHandler) CoreDifficulty(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	windows, err := h.grading.CoreDifficulty(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, windows)
}

// ExportCoreAnalysis godoc
// @Summary Export core analysis
// @Description Downloads a core analysis as an xlsx workbook
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Core ID"
// @Param include query string false "Comma separated sheets: marks,questions"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /cores/{id}/export [get]
func (h *GradingHandler) ExportCoreAnalysis(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	req := exportRequest(c)
	req.CoreID = &id
	h.exportAnalysis(c, req, fmt.Sprintf("core-%d-analysis.xlsx", id))
}

// ExportWrapperAnalysis godoc
// @Summary Export wrapper analysis
// @Description Downloads a wrapper analysis as an xlsx workbook
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Wrapper ID"
// @Param include query string false "Comma separated sheets: marks,questions"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /wrappers/{id}/export [get]
func (h *GradingHandler) ExportWrapperAnalysis(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	req := exportRequest(c)
	req.WrapperID = &id
	h.exportAnalysis(c, req, fmt.Sprintf("wrapper-%d-analysis.xlsx", id))
}

// exportRequest reads the include list. No list means every sheet.
func exportRequest(c *gin.Context) *models.ExportRequest {
	req := &models.ExportRequest{Format: "xlsx"}
	include := c.Query("include")
	if include == "" {
		req.IncludeMarks = true
		req.IncludeQuestions = true
		return req
	}
	for _, part := range strings.Split(include, ",") {
		switch strings.TrimSpace(part) {
		case "marks":
			req.IncludeMarks = true
		case "questions":
			req.IncludeQuestions = true
		}
	}
	return req
}

func (h *GradingHandler) exportAnalysis(c *gin.Context, req *models.ExportRequest, filename string) {
	data, err := h.export.ExportAnalysis(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
