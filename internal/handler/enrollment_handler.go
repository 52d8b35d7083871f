package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edunet-br/sge-api/internal/service"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
	"github.com/edunet-br/sge-api/pkg/response"
)

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// ListActive godoc
// @Summary List active enrollments for a class group
// @Tags Enrollments
// @Produce json
// @Param classGroupId query string true "Class group ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments [get]
func (h *EnrollmentHandler) ListActive(c *gin.Context) {
	classGroupID := c.Query("classGroupId")
	if classGroupID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classGroupId is required"))
		return
	}
	enrollments, err := h.enrollments.ListActive(c.Request.Context(), classGroupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Enroll godoc
// @Summary Enroll a student
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollStudentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req service.EnrollStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), req, actorFromContext(c), time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Reassign godoc
// @Summary Move an enrollment to another class group
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.ReassignRequest true "Reassignment payload"
// @Success 204
// @Security BearerAuth
// @Router /enrollments/reassign [post]
func (h *EnrollmentHandler) Reassign(c *gin.Context) {
	var req service.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.enrollments.Reassign(c.Request.Context(), req, actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Transfer godoc
// @Summary Transfer a student out of the school
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.TransferRequest true "Transfer payload"
// @Success 204
// @Security BearerAuth
// @Router /enrollments/transfer [post]
func (h *EnrollmentHandler) Transfer(c *gin.Context) {
	var req service.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.enrollments.Transfer(c.Request.Context(), req, actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
