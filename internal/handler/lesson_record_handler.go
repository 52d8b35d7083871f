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

// LessonRecordHandler exposes class diary endpoints.
type LessonRecordHandler struct {
	records *service.LessonRecordService
}

// NewLessonRecordHandler constructs the handler.
func NewLessonRecordHandler(records *service.LessonRecordService) *LessonRecordHandler {
	return &LessonRecordHandler{records: records}
}

// Create godoc
// @Summary Register a taught-content entry
// @Tags LessonRecords
// @Accept json
// @Produce json
// @Param payload body service.CreateLessonRecordRequest true "Lesson record payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /lesson-records [post]
func (h *LessonRecordHandler) Create(c *gin.Context) {
	var req service.CreateLessonRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.records.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// List godoc
// @Summary List lesson records
// @Tags LessonRecords
// @Produce json
// @Param classGroupId query string false "Filter by class group"
// @Param teacherAssignmentId query string false "Filter by teacher assignment"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /lesson-records [get]
func (h *LessonRecordHandler) List(c *gin.Context) {
	filter := models.LessonRecordFilter{
		ClassGroupID:        c.Query("classGroupId"),
		TeacherAssignmentID: c.Query("teacherAssignmentId"),
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must use YYYY-MM-DD format"))
			return
		}
		filter.DateFrom = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must use YYYY-MM-DD format"))
			return
		}
		filter.DateTo = &to
	}
	records, err := h.records.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
