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

// AcademicYearHandler exposes academic year endpoints.
type AcademicYearHandler struct {
	years   *service.AcademicYearService
	metrics *service.MetricsService
}

// NewAcademicYearHandler constructs the handler.
func NewAcademicYearHandler(years *service.AcademicYearService, metrics *service.MetricsService) *AcademicYearHandler {
	return &AcademicYearHandler{years: years, metrics: metrics}
}

// Get godoc
// @Summary Get an academic year
// @Tags AcademicYears
// @Produce json
// @Param id path string true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /academic-years/{id} [get]
func (h *AcademicYearHandler) Get(c *gin.Context) {
	year, err := h.years.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

type transitionYearRequest struct {
	Status string `json:"status" binding:"required"`
}

// Transition godoc
// @Summary Transition an academic year status
// @Tags AcademicYears
// @Accept json
// @Produce json
// @Param id path string true "Academic year ID"
// @Param payload body transitionYearRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /academic-years/{id}/transition [post]
func (h *AcademicYearHandler) Transition(c *gin.Context) {
	var req transitionYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.years.Transition(c.Request.Context(), c.Param("id"), models.AcademicYearStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Close godoc
// @Summary Close an academic year after all gates pass
// @Tags AcademicYears
// @Produce json
// @Param id path string true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /academic-years/{id}/close [post]
func (h *AcademicYearHandler) Close(c *gin.Context) {
	year, err := h.years.Close(c.Request.Context(), c.Param("id"), actorFromContext(c), time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordYearClosed()
	}
	response.JSON(c, http.StatusOK, year, nil)
}
