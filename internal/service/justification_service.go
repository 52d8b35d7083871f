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

type justificationRepo interface {
	FindByID(ctx context.Context, id string) (*models.AbsenceJustification, error)
	Create(ctx context.Context, justification *models.AbsenceJustification) error
	Approve(ctx context.Context, justification *models.AbsenceJustification, approvedBy string, approvedAt time.Time) (int64, error)
}

// CreateJustificationRequest opens an absence justification for a date range.
type CreateJustificationRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
}

// ApproveJustificationResult reports the retroactive rewrite outcome.
type ApproveJustificationResult struct {
	Justification    *models.AbsenceJustification `json:"justification"`
	RewrittenRecords int64                        `json:"rewritten_records"`
}

// JustificationService manages absence justification workflows.
type JustificationService struct {
	repo      justificationRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewJustificationService constructs the justification service.
func NewJustificationService(repo justificationRepo, validate *validator.Validate, logger *zap.Logger) *JustificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JustificationService{repo: repo, validator: validate, logger: logger}
}

// Create registers a justification request covering a date range.
func (s *JustificationService) Create(ctx context.Context, req CreateJustificationRequest) (*models.AbsenceJustification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid justification payload")
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date before start_date")
	}

	justification := &models.AbsenceJustification{
		StudentID: req.StudentID,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
	}
	if err := s.repo.Create(ctx, justification); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create justification")
	}
	return justification, nil
}

// Approve marks the justification approved and retroactively rewrites the
// student's absent records inside its window to justified absences. The
// rewrite and the approval commit or roll back together.
func (s *JustificationService) Approve(ctx context.Context, id, actor string, now time.Time) (*ApproveJustificationResult, error) {
	justification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "justification not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load justification")
	}
	if justification.Approved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "justification already approved")
	}

	approvedAt := now.UTC()
	rewritten, err := s.repo.Approve(ctx, justification, actor, approvedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve justification")
	}

	justification.Approved = true
	justification.ApprovedBy = &actor
	justification.ApprovedAt = &approvedAt

	s.logger.Info("justification approved",
		zap.String("justification_id", justification.ID),
		zap.Int64("rewritten_records", rewritten))
	return &ApproveJustificationResult{Justification: justification, RewrittenRecords: rewritten}, nil
}
