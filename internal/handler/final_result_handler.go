package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edunet-br/sge-api/internal/service"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
	"github.com/edunet-br/sge-api/pkg/response"
)

// FinalResultHandler exposes final result endpoints.
type FinalResultHandler struct {
	results *service.FinalResultService
}

// NewFinalResultHandler constructs the handler.
func NewFinalResultHandler(results *service.FinalResultService) *FinalResultHandler {
	return &FinalResultHandler{results: results}
}

// Record godoc
// @Summary Record a final result for a student
// @Tags FinalResults
// @Accept json
// @Produce json
// @Param payload body service.RecordFinalResultRequest true "Final result payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /final-results [post]
func (h *FinalResultHandler) Record(c *gin.Context) {
	var req service.RecordFinalResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.results.Record(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// ListByYear godoc
// @Summary List final results for an academic year
// @Tags FinalResults
// @Produce json
// @Param academicYearId query string true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /final-results [get]
func (h *FinalResultHandler) ListByYear(c *gin.Context) {
	yearID := c.Query("academicYearId")
	if yearID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academicYearId is required"))
		return
	}
	records, err := h.results.ListByYear(c.Request.Context(), yearID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
