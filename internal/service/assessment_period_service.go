package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edunet-br/sge-api/internal/models"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
)

type assessmentPeriodRepo interface {
	FindByID(ctx context.Context, id string) (*models.AssessmentPeriod, error)
	List(ctx context.Context, filter models.AssessmentPeriodFilter) ([]models.AssessmentPeriod, error)
	ExistsByYearTypeNumber(ctx context.Context, yearID string, periodType models.AssessmentPeriodType, number int, excludeID string) (bool, error)
	Create(ctx context.Context, period *models.AssessmentPeriod) error
	Update(ctx context.Context, period *models.AssessmentPeriod) error
}

// CreatePeriodRequest describes payload for creating an assessment period.
type CreatePeriodRequest struct {
	AcademicYearID string    `json:"academic_year_id" validate:"required"`
	Type           string    `json:"type" validate:"required,period_type"`
	Number         int       `json:"number" validate:"required,min=1"`
	StartDate      time.Time `json:"start_date" validate:"required"`
	EndDate        time.Time `json:"end_date" validate:"required"`
}

// UpdatePeriodRequest updates mutable fields on a period.
type UpdatePeriodRequest struct {
	Number    int       `json:"number" validate:"required,min=1"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

// AssessmentPeriodService manages grading window lifecycles.
type AssessmentPeriodService struct {
	repo      assessmentPeriodRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssessmentPeriodService creates a new assessment period service.
func NewAssessmentPeriodService(repo assessmentPeriodRepo, validate *validator.Validate, logger *zap.Logger) *AssessmentPeriodService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AssessmentPeriodService{repo: repo, validator: validate, logger: logger}
	svc.validator.RegisterValidation("period_type", func(fl validator.FieldLevel) bool {
		return models.AssessmentPeriodType(fl.Field().String()).Valid()
	})
	return svc
}

// List returns periods matching the filter.
func (s *AssessmentPeriodService) List(ctx context.Context, filter models.AssessmentPeriodFilter) ([]models.AssessmentPeriod, error) {
	periods, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list periods")
	}
	return periods, nil
}

// Create registers a new period, enforcing the type's number cap and the
// (year, type, number) uniqueness as a structured conflict.
func (s *AssessmentPeriodService) Create(ctx context.Context, req CreatePeriodRequest) (*models.AssessmentPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period payload")
	}

	periodType := models.AssessmentPeriodType(req.Type)
	if req.Number > periodType.MaxNumber() {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("number %d exceeds maximum %d for %s periods", req.Number, periodType.MaxNumber(), periodType))
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date before start_date")
	}

	exists, err := s.repo.ExistsByYearTypeNumber(ctx, req.AcademicYearID, periodType, req.Number, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("period %d of type %s already exists for this year", req.Number, periodType))
	}

	period := &models.AssessmentPeriod{
		AcademicYearID: req.AcademicYearID,
		Type:           periodType,
		Number:         req.Number,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Status:         models.PeriodStatusOpen,
	}
	if err := s.repo.Create(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create period")
	}
	return period, nil
}

// Update modifies a period. A closed period rejects any field update.
func (s *AssessmentPeriodService) Update(ctx context.Context, id string, req UpdatePeriodRequest) (*models.AssessmentPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period payload")
	}

	period, err := s.loadPeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	if period.Status == models.PeriodStatusClosed {
		return nil, appErrors.Clone(appErrors.ErrClosed, "closed periods are immutable")
	}
	if req.Number > period.Type.MaxNumber() {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("number %d exceeds maximum %d for %s periods", req.Number, period.Type.MaxNumber(), period.Type))
	}
	if req.Number != period.Number {
		exists, err := s.repo.ExistsByYearTypeNumber(ctx, period.AcademicYearID, period.Type, req.Number, period.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check uniqueness")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("period %d of type %s already exists for this year", req.Number, period.Type))
		}
	}

	period.Number = req.Number
	period.StartDate = req.StartDate
	period.EndDate = req.EndDate
	if err := s.repo.Update(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update period")
	}
	return period, nil
}

// Transition moves a period to the requested status along the declared edges.
func (s *AssessmentPeriodService) Transition(ctx context.Context, id string, target models.AssessmentPeriodStatus) (*models.AssessmentPeriod, error) {
	if !target.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown period status %q", target))
	}

	period, err := s.loadPeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	if !period.Status.CanTransitionTo(target) {
		return nil, appErrors.Clone(appErrors.ErrTransition,
			fmt.Sprintf("transition from %s to %s not allowed", period.Status.Label(), target.Label()))
	}

	period.Status = target
	if err := s.repo.Update(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to transition period")
	}
	return period, nil
}

func (s *AssessmentPeriodService) loadPeriod(ctx context.Context, id string) (*models.AssessmentPeriod, error) {
	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}
	return period, nil
}
