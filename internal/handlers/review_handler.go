package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/suggestibility-service/internal/services"
	"github.com/SAP-F-2025/suggestibility-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService, logger utils.Logger) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   NewBaseHandler(logger),
		reviewService: reviewService,
	}
}

// FlagAssessment sends an assessment to clinical review
// @Summary Flag assessment
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param flag body services.FlagAssessmentRequest true "Reason, 10 to 500 characters"
// @Success 200 {object} services.AssessmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /suggestibility/assessments/{id}/flag [post]
func (h *ReviewHandler) FlagAssessment(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.FlagAssessmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Flagging assessment", "assessment_id", id)

	resp, err := h.reviewService.Flag(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ReviewAssessment records a clinician's decision on a flagged assessment
// @Summary Review assessment
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param review body services.ReviewAssessmentRequest true "Decision and optional notes"
// @Success 200 {object} services.AssessmentResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /suggestibility/assessments/{id}/review [post]
func (h *ReviewHandler) ReviewAssessment(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.ReviewAssessmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Reviewing assessment", "assessment_id", id)

	resp, err := h.reviewService.Review(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetPendingReviews lists flagged assessments, newest first
// @Param limit query int false "Page size (default 50, max 100)"
// @Param offset query int false "Offset"
func (h *ReviewHandler) GetPendingReviews(c *gin.Context) {
	limit, ok := parseIntQuery(c, "limit", services.DefaultPendingLimit)
	if !ok {
		return
	}
	offset, ok := parseIntQuery(c, "offset", 0)
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.reviewService.PendingReviews(c.Request.Context(), actor, limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetReviewHistory returns the audit trail of one assessment
func (h *ReviewHandler) GetReviewHistory(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	trail, err := h.reviewService.ReviewHistory(c.Request.Context(), actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assessment_id": id,
		"events":        trail,
	})
}
