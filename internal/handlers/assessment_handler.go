package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/suggestibility-service/internal/services"
	"github.com/SAP-F-2025/suggestibility-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AssessmentHandler struct {
	BaseHandler
	suggestibilityService services.SuggestibilityService
}

func NewAssessmentHandler(suggestibilityService services.SuggestibilityService, logger utils.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		BaseHandler:           NewBaseHandler(logger),
		suggestibilityService: suggestibilityService,
	}
}

// SubmitAssessment scores and stores a completed questionnaire
// @Summary Submit assessment
// @Tags assessments
// @Accept json
// @Produce json
// @Param assessment body services.SubmitAssessmentRequest true "Answers keyed by question number"
// @Success 201 {object} services.AssessmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /suggestibility/assessments [post]
func (h *AssessmentHandler) SubmitAssessment(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.SubmitAssessmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting assessment", "subject_id", req.SubjectID)

	resp, err := h.suggestibilityService.Submit(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetAssessment retrieves an assessment by ID
// @Summary Get assessment
// @Tags assessments
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} services.AssessmentResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /suggestibility/assessments/{id} [get]
func (h *AssessmentHandler) GetAssessment(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.suggestibilityService.GetAssessment(c.Request.Context(), actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetLatest returns the subject's most recent assessment, 404 when there is none
func (h *AssessmentHandler) GetLatest(c *gin.Context) {
	subjectID := ParseStringIDParam(c, "subject_id")
	if subjectID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.suggestibilityService.GetLatest(c.Request.Context(), actor, subjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "No assessments for subject",
			Code:    "no_assessment",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetHistory lists the subject's assessments newest first, with a trend
// @Param limit query int false "Page size (default 10, max 50)"
func (h *AssessmentHandler) GetHistory(c *gin.Context) {
	subjectID := ParseStringIDParam(c, "subject_id")
	if subjectID == "" {
		return
	}
	limit, ok := parseIntQuery(c, "limit", services.DefaultHistoryLimit)
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.suggestibilityService.GetHistory(c.Request.Context(), actor, subjectID, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCommunicationStyle serves the personalization contract for a subject
func (h *AssessmentHandler) GetCommunicationStyle(c *gin.Context) {
	subjectID := ParseStringIDParam(c, "subject_id")
	if subjectID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	style, err := h.suggestibilityService.GetCommunicationStyle(c.Request.Context(), actor, subjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, style)
}
