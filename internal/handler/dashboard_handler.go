package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edunet-br/sge-api/internal/service"
	"github.com/edunet-br/sge-api/pkg/response"
)

// DashboardHandler exposes class snapshot endpoints.
type DashboardHandler struct {
	dashboards *service.DashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboards *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// ClassGroup godoc
// @Summary Class group snapshot for a period
// @Tags Dashboards
// @Produce json
// @Param classGroupId query string true "Class group ID"
// @Param teacherAssignmentId query string true "Teacher assignment ID"
// @Param assessmentPeriodId query string true "Assessment period ID"
// @Param assessmentConfigId query string true "Assessment config ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboards/class-group [get]
func (h *DashboardHandler) ClassGroup(c *gin.Context) {
	req := service.ClassGroupDashboardRequest{
		ClassGroupID:        c.Query("classGroupId"),
		TeacherAssignmentID: c.Query("teacherAssignmentId"),
		AssessmentPeriodID:  c.Query("assessmentPeriodId"),
		AssessmentConfigID:  c.Query("assessmentConfigId"),
	}
	snapshot, cached, err := h.dashboards.ClassGroup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil, map[string]interface{}{"cached": cached})
}
