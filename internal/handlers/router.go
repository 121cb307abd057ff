package handlers

import (
	"context"
	"net/http"

	"github.com/SAP-F-2025/suggestibility-service/internal/middleware"
	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/SAP-F-2025/suggestibility-service/internal/services"
	"github.com/SAP-F-2025/suggestibility-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const serviceName = "suggestibility-service"

type HandlerManager struct {
	assessmentHandler    *AssessmentHandler
	reviewHandler        *ReviewHandler
	qualityHandler       *QualityHandler
	exportHandler        *ExportHandler
	questionnaireHandler *QuestionnaireHandler
}

// RouteOptions carries the pieces of the HTTP surface that live outside the services
type RouteOptions struct {
	// Auth authenticates every /api/v1 request and stores the actor
	Auth gin.HandlerFunc
	// Metrics is served on /metrics when set
	Metrics http.Handler
	// Ready is probed by /health when set
	Ready func(ctx context.Context) error
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		assessmentHandler:    NewAssessmentHandler(serviceManager.Suggestibility(), logger),
		reviewHandler:        NewReviewHandler(serviceManager.Review(), logger),
		qualityHandler:       NewQualityHandler(serviceManager.Quality(), logger),
		exportHandler:        NewExportHandler(serviceManager.Export(), logger),
		questionnaireHandler: NewQuestionnaireHandler(serviceManager.Questionnaire(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, opts RouteOptions) {
	router.GET("/health", HealthCheck(opts.Ready))
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	v1 := router.Group("/api/v1/suggestibility")
	if opts.Auth != nil {
		v1.Use(opts.Auth)
	}

	clinician := middleware.RequireRole(models.RoleClinician)
	admin := middleware.RequireRole(models.RoleAdmin)

	v1.GET("/questionnaire", hm.questionnaireHandler.GetActiveQuestionnaire)

	assessments := v1.Group("/assessments")
	{
		assessments.POST("", hm.assessmentHandler.SubmitAssessment)
		assessments.GET("/:id", hm.assessmentHandler.GetAssessment)
		assessments.GET("/:id/reviews", clinician, hm.reviewHandler.GetReviewHistory)
		assessments.POST("/:id/flag", hm.reviewHandler.FlagAssessment)
		assessments.POST("/:id/review", clinician, hm.reviewHandler.ReviewAssessment)
	}

	subjects := v1.Group("/subjects/:subject_id")
	{
		subjects.GET("/latest", hm.assessmentHandler.GetLatest)
		subjects.GET("/history", hm.assessmentHandler.GetHistory)
		subjects.GET("/communication-style", hm.assessmentHandler.GetCommunicationStyle)
		subjects.GET("/export", clinician, hm.exportHandler.ExportSubjectHistory)
	}

	reviews := v1.Group("/reviews", clinician)
	{
		reviews.GET("/pending", hm.reviewHandler.GetPendingReviews)
		reviews.GET("/export", hm.exportHandler.ExportPendingReviews)
	}

	v1.GET("/quality/statistics", admin, hm.qualityHandler.GetStatistics)
	v1.POST("/admin/rederive", admin, hm.qualityHandler.Rederive)
}

// HealthCheck reports liveness, and readiness when a probe is given
func HealthCheck(ready func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil {
			if err := ready(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"service": serviceName,
					"error":   err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
		})
	}
}
