package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/assessment-engine/internal/services"
	"github.com/SAP-F-2025/assessment-engine/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	service services.SelectionService
}

func NewSessionHandler(service services.SelectionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// StartSession godoc
// @Summary Start practice session
// @Description Opens an adaptive practice session with its filters and selector
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body services.StartSessionRequest true "Session settings"
// @Success 201 {object} models.PracticeSession
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Starting practice session", "user_id", req.UserID, "filters", len(req.Filters))

	session, err := h.service.StartSession(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// NextQuestion godoc
// @Summary Next question
// @Description Serves the next question of a session. A 404 with code end-of-questions completes the session.
// @Tags sessions
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} services.NextQuestionResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /sessions/{id}/next [post]
func (h *SessionHandler) NextQuestion(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	resp, err := h.service.NextQuestion(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// NextLinkedQuestion godoc
// @Summary Next linked question
// @Description Serves the next unattempted question of a linked passage
// @Tags sessions
// @Produce json
// @Param id path int true "Link ID"
// @Param session query int true "Session ID"
// @Success 200 {object} services.NextQuestionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /links/{id}/next [get]
func (h *SessionHandler) NextLinkedQuestion(c *gin.Context) {
	linkID := parseIDParam(c, "id")
	if linkID == 0 {
		return
	}
	sessionID, ok := parseUintQuery(c, "session")
	if !ok {
		return
	}

	resp, err := h.service.NextLinkedQuestion(c.Request.Context(), sessionID, linkID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordAttempt godoc
// @Summary Record attempt
// @Description Grades a practice answer for a served question
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path int true "Session ID"
// @Param attempt body services.RecordAttemptRequest true "Attempt"
// @Success 201 {object} services.AttemptResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /sessions/{id}/attempts [post]
func (h *SessionHandler) RecordAttempt(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	var req services.RecordAttemptRequest
	if !bindJSON(c, &req) {
		return
	}
	req.SessionID = &id
	h.LogRequest(c, "Recording attempt", "session_id", id, "question_id", req.QuestionID)

	result, err := h.service.RecordAttempt(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
