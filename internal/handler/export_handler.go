package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/edunet-br/sge-api/internal/service"
	"github.com/edunet-br/sge-api/pkg/response"
)

// ExportHandler serves rendered CSV and PDF documents.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ClosingSummary godoc
// @Summary Export the closing summary for a class group and period
// @Tags Exports
// @Produce octet-stream
// @Param classGroupId query string true "Class group ID"
// @Param teacherAssignmentId query string true "Teacher assignment ID"
// @Param assessmentPeriodId query string true "Assessment period ID"
// @Param assessmentConfigId query string true "Assessment config ID"
// @Param format query string true "Export format (csv or pdf)"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /exports/closing-summary [get]
func (h *ExportHandler) ClosingSummary(c *gin.Context) {
	req := service.ClassGroupDashboardRequest{
		ClassGroupID:        c.Query("classGroupId"),
		TeacherAssignmentID: c.Query("teacherAssignmentId"),
		AssessmentPeriodID:  c.Query("assessmentPeriodId"),
		AssessmentConfigID:  c.Query("assessmentConfigId"),
	}
	result, err := h.exports.ClosingSummary(c.Request.Context(), req, service.ExportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveExport(c, result)
}

// FinalResults godoc
// @Summary Export year-end final results
// @Tags Exports
// @Produce octet-stream
// @Param academicYearId query string true "Academic year ID"
// @Param format query string true "Export format (csv or pdf)"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /exports/final-results [get]
func (h *ExportHandler) FinalResults(c *gin.Context) {
	result, err := h.exports.FinalResults(c.Request.Context(), c.Query("academicYearId"), service.ExportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveExport(c, result)
}

func serveExport(c *gin.Context, result *service.ExportResult) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(200, result.ContentType, result.Data)
}
