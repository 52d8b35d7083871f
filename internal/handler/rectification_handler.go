package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edunet-br/sge-api/internal/service"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
	"github.com/edunet-br/sge-api/pkg/response"
)

// RectificationHandler exposes post-closure rectification endpoints.
type RectificationHandler struct {
	rectifications *service.RectificationService
}

// NewRectificationHandler constructs the handler.
func NewRectificationHandler(rectifications *service.RectificationService) *RectificationHandler {
	return &RectificationHandler{rectifications: rectifications}
}

// Request godoc
// @Summary Request a rectification on a closed closing
// @Tags Rectifications
// @Accept json
// @Produce json
// @Param payload body service.RequestRectificationRequest true "Rectification payload"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /rectifications [post]
func (h *RectificationHandler) Request(c *gin.Context) {
	var req service.RequestRectificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rectification, err := h.rectifications.Request(c.Request.Context(), req, actorFromContext(c), time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rectification)
}

type reviewRectificationRequest struct {
	Approve bool `json:"approve"`
}

// Review godoc
// @Summary Approve or deny a requested rectification
// @Tags Rectifications
// @Accept json
// @Produce json
// @Param id path string true "Rectification ID"
// @Param payload body reviewRectificationRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /rectifications/{id}/review [post]
func (h *RectificationHandler) Review(c *gin.Context) {
	var req reviewRectificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rectification, err := h.rectifications.Review(c.Request.Context(), c.Param("id"), req.Approve, actorFromContext(c), time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rectification, nil)
}

// ListByClosing godoc
// @Summary List rectifications for a closing
// @Tags Rectifications
// @Produce json
// @Param closingId query string true "Closing ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /rectifications [get]
func (h *RectificationHandler) ListByClosing(c *gin.Context) {
	closingID := c.Query("closingId")
	if closingID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "closingId is required"))
		return
	}
	rectifications, err := h.rectifications.ListByClosing(c.Request.Context(), closingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rectifications, nil)
}
