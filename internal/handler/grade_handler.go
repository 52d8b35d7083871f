package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edunet-br/sge-api/internal/models"
	"github.com/edunet-br/sge-api/internal/service"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
	"github.com/edunet-br/sge-api/pkg/response"
)

// GradeHandler exposes grade endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// List godoc
// @Summary List grade entries
// @Tags Grades
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param classGroupId query string false "Filter by class group"
// @Param teacherAssignmentId query string false "Filter by teacher assignment"
// @Param assessmentPeriodId query string false "Filter by assessment period"
// @Param isRecovery query bool false "Filter by recovery flag"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	filter := models.GradeFilter{
		StudentID:           c.Query("studentId"),
		ClassGroupID:        c.Query("classGroupId"),
		TeacherAssignmentID: c.Query("teacherAssignmentId"),
		AssessmentPeriodID:  c.Query("assessmentPeriodId"),
		InstrumentID:        c.Query("instrumentId"),
	}
	if raw := c.Query("isRecovery"); raw != "" {
		isRecovery, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "isRecovery must be a boolean"))
			return
		}
		filter.IsRecovery = &isRecovery
	}
	grades, err := h.grades.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// Upsert godoc
// @Summary Record or replace a grade entry
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.UpsertGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /grades [post]
func (h *GradeHandler) Upsert(c *gin.Context) {
	var req service.UpsertGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.grades.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// StudentAverage godoc
// @Summary Compute the period average for a student
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.StudentAverageRequest true "Average scope"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/average [post]
func (h *GradeHandler) StudentAverage(c *gin.Context) {
	var req service.StudentAverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	average, err := h.grades.CalculateStudentAverage(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, average, nil)
}
