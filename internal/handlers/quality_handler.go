package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/suggestibility-service/internal/services"
	"github.com/SAP-F-2025/suggestibility-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type QualityHandler struct {
	BaseHandler
	qualityService services.QualityService
}

func NewQualityHandler(qualityService services.QualityService, logger utils.Logger) *QualityHandler {
	return &QualityHandler{
		BaseHandler:    NewBaseHandler(logger),
		qualityService: qualityService,
	}
}

// GetStatistics reports quality indicators over a trailing window
// @Param window_days query int false "Window in days (default 30, 1 to 365)"
func (h *QualityHandler) GetStatistics(c *gin.Context) {
	windowDays, ok := parseIntQuery(c, "window_days", 0)
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	stats, err := h.qualityService.Statistics(c.Request.Context(), actor, windowDays)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Rederive recomputes derived columns of stored assessments
// @Param limit query int false "Maximum records to process, 0 for all"
func (h *QualityHandler) Rederive(c *gin.Context) {
	limit, ok := parseIntQuery(c, "limit", 0)
	if !ok {
		return
	}
	if limit < 0 {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid limit", nil, "must not be negative")
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Re-deriving assessments", "limit", limit)

	result, err := h.qualityService.Rederive(c.Request.Context(), actor, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Re-derivation finished", result)
}
