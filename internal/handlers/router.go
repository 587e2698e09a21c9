package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/assessment-engine/internal/services"
	"github.com/SAP-F-2025/assessment-engine/internal/utils"
)

type HandlerManager struct {
	sessionHandler  *SessionHandler
	questionHandler *QuestionHandler
	gradingHandler  *GradingHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		sessionHandler:  NewSessionHandler(serviceManager.Selection(), logger),
		questionHandler: NewQuestionHandler(serviceManager.Calibration(), serviceManager.Import(), logger),
		gradingHandler:  NewGradingHandler(serviceManager.Grading(), serviceManager.Export(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Practice sessions
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.POST("/:id/next", hm.sessionHandler.NextQuestion)
			sessions.POST("/:id/attempts", hm.sessionHandler.RecordAttempt)
		}
		v1.GET("/links/:id/next", hm.sessionHandler.NextLinkedQuestion)

		// Question bank
		questions := v1.Group("/questions")
		{
			questions.POST("/import", hm.questionHandler.ImportQuestions)
			questions.POST("/:id/recalibrate", hm.questionHandler.RecalibrateQuestion)
		}

		// Grading
		v1.POST("/submissions/:id/grade", hm.gradingHandler.GradeSubmission)

		wrappers := v1.Group("/wrappers")
		{
			wrappers.POST("/:id/grade", hm.gradingHandler.GradeWrapper)
			wrappers.GET("/:id/ranking", hm.gradingHandler.GetWrapperRanking)
			wrappers.GET("/:id/export", hm.gradingHandler.ExportWrapperAnalysis)
		}

		cores := v1.Group("/cores")
		{
			cores.POST("/:id/regrade", hm.gradingHandler.ReGradeCore)
			cores.POST("/:id/bonus", hm.gradingHandler.SetBonus)
			cores.GET("/:id/ranking", hm.gradingHandler.GetCoreRanking)
			cores.GET("/:id/difficulty", hm.gradingHandler.CoreDifficulty)
			cores.GET("/:id/export", hm.gradingHandler.ExportCoreAnalysis)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "assessment-engine",
		})
	})
}

// NewRouter builds the gin engine with request id and logging middleware.
func NewRouter(serviceManager services.ServiceManager, logger utils.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestID(), utils.LoggerMiddleware(logger))
	NewHandlerManager(serviceManager, logger).SetupRoutes(router)
	return router
}
