package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edunet-br/sge-api/internal/models"
	"github.com/edunet-br/sge-api/internal/service"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
	"github.com/edunet-br/sge-api/pkg/response"
)

// AssessmentPeriodHandler exposes assessment period endpoints.
type AssessmentPeriodHandler struct {
	periods *service.AssessmentPeriodService
}

// NewAssessmentPeriodHandler constructs the handler.
func NewAssessmentPeriodHandler(periods *service.AssessmentPeriodService) *AssessmentPeriodHandler {
	return &AssessmentPeriodHandler{periods: periods}
}

// List godoc
// @Summary List assessment periods
// @Tags AssessmentPeriods
// @Produce json
// @Param academicYearId query string false "Filter by academic year"
// @Param type query string false "Filter by period type"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /assessment-periods [get]
func (h *AssessmentPeriodHandler) List(c *gin.Context) {
	filter := models.AssessmentPeriodFilter{AcademicYearID: c.Query("academicYearId")}
	if raw := c.Query("type"); raw != "" {
		periodType := models.AssessmentPeriodType(raw)
		filter.Type = &periodType
	}
	if raw := c.Query("status"); raw != "" {
		status := models.AssessmentPeriodStatus(raw)
		filter.Status = &status
	}
	periods, err := h.periods.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}

// Create godoc
// @Summary Create an assessment period
// @Tags AssessmentPeriods
// @Accept json
// @Produce json
// @Param payload body service.CreatePeriodRequest true "Period payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /assessment-periods [post]
func (h *AssessmentPeriodHandler) Create(c *gin.Context) {
	var req service.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	period, err := h.periods.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, period)
}

// Update godoc
// @Summary Update an assessment period
// @Tags AssessmentPeriods
// @Accept json
// @Produce json
// @Param id path string true "Period ID"
// @Param payload body service.UpdatePeriodRequest true "Period payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /assessment-periods/{id} [put]
func (h *AssessmentPeriodHandler) Update(c *gin.Context) {
	var req service.UpdatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	period, err := h.periods.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

type transitionPeriodRequest struct {
	Status string `json:"status" binding:"required"`
}

// Transition godoc
// @Summary Transition an assessment period status
// @Tags AssessmentPeriods
// @Accept json
// @Produce json
// @Param id path string true "Period ID"
// @Param payload body transitionPeriodRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /assessment-periods/{id}/transition [post]
func (h *AssessmentPeriodHandler) Transition(c *gin.Context) {
	var req transitionPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	period, err := h.periods.Transition(c.Request.Context(), c.Param("id"), models.AssessmentPeriodStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}
