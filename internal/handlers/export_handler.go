package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/suggestibility-service/internal/services"
	"github.com/SAP-F-2025/suggestibility-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	BaseHandler
	exportService services.ExportService
	now           func() time.Time
}

func NewExportHandler(exportService services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
		now:           time.Now,
	}
}

// ExportPendingReviews downloads the review queue as XLSX
func (h *ExportHandler) ExportPendingReviews(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportPendingReviews(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendWorkbook(c, services.ExportFilename("pending_reviews", h.now()), data)
}

// ExportSubjectHistory downloads a subject's assessments as XLSX
func (h *ExportHandler) ExportSubjectHistory(c *gin.Context) {
	subjectID := ParseStringIDParam(c, "subject_id")
	if subjectID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportSubjectHistory(c.Request.Context(), actor, subjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendWorkbook(c, services.ExportFilename("history", h.now()), data)
}

func (h *ExportHandler) sendWorkbook(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
