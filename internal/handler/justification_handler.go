package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edunet-br/sge-api/internal/service"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
	"github.com/edunet-br/sge-api/pkg/response"
)

// JustificationHandler exposes absence justification endpoints.
type JustificationHandler struct {
	justifications *service.JustificationService
}

// NewJustificationHandler constructs the handler.
func NewJustificationHandler(justifications *service.JustificationService) *JustificationHandler {
	return &JustificationHandler{justifications: justifications}
}

// Create godoc
// @Summary Register an absence justification
// @Tags Justifications
// @Accept json
// @Produce json
// @Param payload body service.CreateJustificationRequest true "Justification payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /justifications [post]
func (h *JustificationHandler) Create(c *gin.Context) {
	var req service.CreateJustificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	justification, err := h.justifications.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, justification)
}

// Approve godoc
// @Summary Approve a justification and rewrite covered absences
// @Tags Justifications
// @Produce json
// @Param id path string true "Justification ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /justifications/{id}/approve [post]
func (h *JustificationHandler) Approve(c *gin.Context) {
	result, err := h.justifications.Approve(c.Request.Context(), c.Param("id"), actorFromContext(c), time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
