package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edunet-br/sge-api/internal/models"
	"github.com/edunet-br/sge-api/internal/service"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
	"github.com/edunet-br/sge-api/pkg/response"
)

// PeriodClosingHandler exposes the closing workflow endpoints.
type PeriodClosingHandler struct {
	closings *service.PeriodClosingService
	metrics  *service.MetricsService
}

// NewPeriodClosingHandler constructs the handler.
func NewPeriodClosingHandler(closings *service.PeriodClosingService, metrics *service.MetricsService) *PeriodClosingHandler {
	return &PeriodClosingHandler{closings: closings, metrics: metrics}
}

// List godoc
// @Summary List period closings
// @Tags PeriodClosings
// @Produce json
// @Param classGroupId query string false "Filter by class group"
// @Param teacherAssignmentId query string false "Filter by teacher assignment"
// @Param assessmentPeriodId query string false "Filter by assessment period"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /period-closings [get]
func (h *PeriodClosingHandler) List(c *gin.Context) {
	filter := models.PeriodClosingFilter{
		ClassGroupID:        c.Query("classGroupId"),
		TeacherAssignmentID: c.Query("teacherAssignmentId"),
		AssessmentPeriodID:  c.Query("assessmentPeriodId"),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.ClosingStatus(raw)
		filter.Status = &status
	}
	closings, err := h.closings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, closings, nil)
}

// Open godoc
// @Summary Open a closing for a class, assignment and period
// @Tags PeriodClosings
// @Accept json
// @Produce json
// @Param payload body service.OpenClosingRequest true "Closing scope"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /period-closings [post]
func (h *PeriodClosingHandler) Open(c *gin.Context) {
	var req service.OpenClosingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	closing, err := h.closings.Open(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, closing)
}

// Submit godoc
// @Summary Submit a closing for validation
// @Tags PeriodClosings
// @Accept json
// @Produce json
// @Param payload body service.SubmitClosingRequest true "Submission payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /period-closings/submit [post]
func (h *PeriodClosingHandler) Submit(c *gin.Context) {
	var req service.SubmitClosingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	closing, err := h.closings.Submit(c.Request.Context(), req, actorFromContext(c), time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, closing, nil)
}

// Reject godoc
// @Summary Reject a closing back to pending
// @Tags PeriodClosings
// @Accept json
// @Produce json
// @Param payload body service.RejectClosingRequest true "Rejection payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /period-closings/reject [post]
func (h *PeriodClosingHandler) Reject(c *gin.Context) {
	var req service.RejectClosingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	closing, err := h.closings.Reject(c.Request.Context(), req, actorFromContext(c), time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, closing, nil)
}

// Validate godoc
// @Summary Approve a submitted closing
// @Tags PeriodClosings
// @Produce json
// @Param id path string true "Closing ID"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /period-closings/{id}/validate [post]
func (h *PeriodClosingHandler) Validate(c *gin.Context) {
	closing, err := h.closings.Validate(c.Request.Context(), c.Param("id"), actorFromContext(c), time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, closing, nil)
}

// Finalize godoc
// @Summary Close an approved closing definitively
// @Tags PeriodClosings
// @Produce json
// @Param id path string true "Closing ID"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /period-closings/{id}/finalize [post]
func (h *PeriodClosingHandler) Finalize(c *gin.Context) {
	closing, err := h.closings.Finalize(c.Request.Context(), c.Param("id"), actorFromContext(c), time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordClosingFinalized()
	}
	response.JSON(c, http.StatusOK, closing, nil)
}
