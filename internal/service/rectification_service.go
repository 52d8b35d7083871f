package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edunet-br/sge-api/internal/models"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
)

type rectificationRepo interface {
	FindByID(ctx context.Context, id string) (*models.Rectification, error)
	ListByClosing(ctx context.Context, closingID string) ([]models.Rectification, error)
	Create(ctx context.Context, rect *models.Rectification) error
	UpdateStatus(ctx context.Context, id string, status models.RectificationStatus, reviewedBy string, reviewedAt time.Time) error
}

// RequestRectificationRequest asks for a post-closure change.
type RequestRectificationRequest struct {
	PeriodClosingID string `json:"period_closing_id" validate:"required"`
	EntityType      string `json:"entity_type" validate:"required"`
	EntityID        string `json:"entity_id" validate:"required"`
	Field           string `json:"field" validate:"required"`
	OldValue        string `json:"old_value"`
	NewValue        string `json:"new_value" validate:"required"`
	Justification   string `json:"justification" validate:"required"`
}

type closingFinder interface {
	FindByID(ctx context.Context, id string) (*models.PeriodClosing, error)
}

// RectificationService manages post-closure change requests.
type RectificationService struct {
	repo      rectificationRepo
	closings  closingFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRectificationService constructs the rectification service.
func NewRectificationService(repo rectificationRepo, closings closingFinder, validate *validator.Validate, logger *zap.Logger) *RectificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RectificationService{repo: repo, closings: closings, validator: validate, logger: logger}
}

// Request opens a rectification against a closed period closing.
func (s *RectificationService) Request(ctx context.Context, req RequestRectificationRequest, actor string, now time.Time) (*models.Rectification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rectification payload")
	}

	closing, err := s.closings.FindByID(ctx, req.PeriodClosingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period closing not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load closing")
	}
	if closing.Status != models.ClosingStatusClosed {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rectifications apply only to closed closings")
	}

	rect := &models.Rectification{
		PeriodClosingID: req.PeriodClosingID,
		EntityType:      req.EntityType,
		EntityID:        req.EntityID,
		Field:           req.Field,
		OldValue:        req.OldValue,
		NewValue:        req.NewValue,
		Justification:   req.Justification,
		Status:          models.RectificationStatusRequested,
		RequestedBy:     actor,
		RequestedAt:     now.UTC(),
	}
	if err := s.repo.Create(ctx, rect); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create rectification")
	}
	return rect, nil
}

// Review approves or rejects a requested rectification.
func (s *RectificationService) Review(ctx context.Context, id string, approve bool, actor string, now time.Time) (*models.Rectification, error) {
	rect, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "rectification not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rectification")
	}
	if rect.Status != models.RectificationStatusRequested {
		return nil, appErrors.Clone(appErrors.ErrConflict, "rectification already reviewed")
	}

	status := models.RectificationStatusRejected
	if approve {
		status = models.RectificationStatusApproved
	}
	reviewedAt := now.UTC()
	if err := s.repo.UpdateStatus(ctx, id, status, actor, reviewedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review rectification")
	}

	rect.Status = status
	rect.ReviewedBy = &actor
	rect.ReviewedAt = &reviewedAt
	return rect, nil
}

// ListByClosing returns rectifications for one closing.
func (s *RectificationService) ListByClosing(ctx context.Context, closingID string) ([]models.Rectification, error) {
	rects, err := s.repo.ListByClosing(ctx, closingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rectifications")
	}
	return rects, nil
}
