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

type periodClosingRepo interface {
	FindByID(ctx context.Context, id string) (*models.PeriodClosing, error)
	FindByKeys(ctx context.Context, classGroupID, assignmentID, periodID string) (*models.PeriodClosing, error)
	List(ctx context.Context, filter models.PeriodClosingFilter) ([]models.PeriodClosing, error)
	Create(ctx context.Context, closing *models.PeriodClosing) error
	Update(ctx context.Context, closing *models.PeriodClosing) error
}

type assessmentPeriodReader interface {
	FindByID(ctx context.Context, id string) (*models.AssessmentPeriod, error)
}

type completenessEvaluator interface {
	Evaluate(ctx context.Context, keys CompletenessKeys) (*CompletenessResult, error)
}

// OpenClosingRequest creates the pending closing for a scope.
type OpenClosingRequest struct {
	ClassGroupID        string `json:"class_group_id" validate:"required"`
	TeacherAssignmentID string `json:"teacher_assignment_id" validate:"required"`
	AssessmentPeriodID  string `json:"assessment_period_id" validate:"required"`
}

// SubmitClosingRequest submits a pending closing for validation.
type SubmitClosingRequest struct {
	ClosingID          string `json:"closing_id" validate:"required"`
	AssessmentConfigID string `json:"assessment_config_id" validate:"required"`
}

// RejectClosingRequest sends a closing back to pending.
type RejectClosingRequest struct {
	ClosingID string `json:"closing_id" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
}

// PeriodClosingService walks closings through their status lattice.
type PeriodClosingService struct {
	closings     periodClosingRepo
	periods      assessmentPeriodReader
	completeness completenessEvaluator
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewPeriodClosingService constructs the period closing service.
func NewPeriodClosingService(closings periodClosingRepo, periods assessmentPeriodReader, completeness completenessEvaluator, validate *validator.Validate, logger *zap.Logger) *PeriodClosingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodClosingService{closings: closings, periods: periods, completeness: completeness, validator: validate, logger: logger}
}

// List returns closings matching the filter.
func (s *PeriodClosingService) List(ctx context.Context, filter models.PeriodClosingFilter) ([]models.PeriodClosing, error) {
	closings, err := s.closings.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list closings")
	}
	return closings, nil
}

// Open creates the pending closing for a class/assignment/period scope.
func (s *PeriodClosingService) Open(ctx context.Context, req OpenClosingRequest) (*models.PeriodClosing, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid closing payload")
	}

	if _, err := s.closings.FindByKeys(ctx, req.ClassGroupID, req.TeacherAssignmentID, req.AssessmentPeriodID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "closing already exists for this scope")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing closing")
	}

	closing := &models.PeriodClosing{
		ClassGroupID:        req.ClassGroupID,
		TeacherAssignmentID: req.TeacherAssignmentID,
		AssessmentPeriodID:  req.AssessmentPeriodID,
		Status:              models.ClosingStatusPending,
	}
	if err := s.closings.Create(ctx, closing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create closing")
	}
	return closing, nil
}

// Submit evaluates the three completeness checks, persists their results and
// moves the closing from pending to in validation.
func (s *PeriodClosingService) Submit(ctx context.Context, req SubmitClosingRequest, actor string, now time.Time) (*models.PeriodClosing, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submit payload")
	}

	closing, err := s.loadClosing(ctx, req.ClosingID)
	if err != nil {
		return nil, err
	}
	if err := s.guardTransition(closing.Status, models.ClosingStatusInValidation); err != nil {
		return nil, err
	}

	period, err := s.periods.FindByID(ctx, closing.AssessmentPeriodID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment period")
	}

	result, err := s.completeness.Evaluate(ctx, CompletenessKeys{
		ClassGroupID:        closing.ClassGroupID,
		TeacherAssignmentID: closing.TeacherAssignmentID,
		AssessmentPeriodID:  closing.AssessmentPeriodID,
		AssessmentConfigID:  req.AssessmentConfigID,
		PeriodStart:         period.StartDate,
		PeriodEnd:           period.EndDate,
	})
	if err != nil {
		return nil, err
	}

	closing.GradesComplete = result.Grades
	closing.AttendanceComplete = result.Attendance
	closing.LessonRecordsComplete = result.LessonRecords
	closing.Status = models.ClosingStatusInValidation
	closing.SubmittedBy = &actor
	submittedAt := now.UTC()
	closing.SubmittedAt = &submittedAt
	closing.RejectionReason = nil

	if err := s.closings.Update(ctx, closing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit closing")
	}

	s.logger.Info("closing submitted",
		zap.String("closing_id", closing.ID),
		zap.Bool("grades_complete", result.Grades),
		zap.Bool("attendance_complete", result.Attendance),
		zap.Bool("lesson_records_complete", result.LessonRecords))
	return closing, nil
}

// Reject returns a closing in validation to pending, recording the reason.
func (s *PeriodClosingService) Reject(ctx context.Context, req RejectClosingRequest, actor string, now time.Time) (*models.PeriodClosing, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rejection requires a reason")
	}

	closing, err := s.loadClosing(ctx, req.ClosingID)
	if err != nil {
		return nil, err
	}
	if err := s.guardTransition(closing.Status, models.ClosingStatusPending); err != nil {
		return nil, err
	}

	closing.Status = models.ClosingStatusPending
	closing.RejectionReason = &req.Reason
	closing.ValidatedBy = &actor
	validatedAt := now.UTC()
	closing.ValidatedAt = &validatedAt

	if err := s.closings.Update(ctx, closing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject closing")
	}
	return closing, nil
}

// Validate moves a closing from in validation to approved.
func (s *PeriodClosingService) Validate(ctx context.Context, closingID, actor string, now time.Time) (*models.PeriodClosing, error) {
	closing, err := s.loadClosing(ctx, closingID)
	if err != nil {
		return nil, err
	}
	if err := s.guardTransition(closing.Status, models.ClosingStatusApproved); err != nil {
		return nil, err
	}

	closing.Status = models.ClosingStatusApproved
	closing.ApprovedBy = &actor
	approvedAt := now.UTC()
	closing.ApprovedAt = &approvedAt

	if err := s.closings.Update(ctx, closing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate closing")
	}
	return closing, nil
}

// Finalize moves an approved closing to its terminal closed status.
func (s *PeriodClosingService) Finalize(ctx context.Context, closingID, actor string, now time.Time) (*models.PeriodClosing, error) {
	closing, err := s.loadClosing(ctx, closingID)
	if err != nil {
		return nil, err
	}
	if err := s.guardTransition(closing.Status, models.ClosingStatusClosed); err != nil {
		return nil, err
	}

	closing.Status = models.ClosingStatusClosed
	closedAt := now.UTC()
	closing.ClosedAt = &closedAt

	if err := s.closings.Update(ctx, closing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to finalize closing")
	}
	s.logger.Info("closing finalized", zap.String("closing_id", closing.ID), zap.String("by", actor))
	return closing, nil
}

func (s *PeriodClosingService) loadClosing(ctx context.Context, id string) (*models.PeriodClosing, error) {
	closing, err := s.closings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "closing not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load closing")
	}
	return closing, nil
}

func (s *PeriodClosingService) guardTransition(current, target models.ClosingStatus) error {
	if !current.CanTransitionTo(target) {
		return appErrors.Clone(appErrors.ErrTransition,
			fmt.Sprintf("transition from %s to %s not allowed", current.Label(), target.Label()))
	}
	return nil
}
