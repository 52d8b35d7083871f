package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/edunet-br/sge-api/internal/models"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
)

type academicYearRepo interface {
	FindByID(ctx context.Context, id string) (*models.AcademicYear, error)
	UpdateStatus(ctx context.Context, id string, status models.AcademicYearStatus, closedBy *string, closedAt *time.Time) error
	CountOpenClosings(ctx context.Context, yearID string) (int, error)
}

type missingResultCounter interface {
	CountActiveStudentsMissing(ctx context.Context, yearID string) (int, error)
}

// AcademicYearService walks academic years through their lifecycle.
type AcademicYearService struct {
	years   academicYearRepo
	results missingResultCounter
	logger  *zap.Logger
}

// NewAcademicYearService constructs the academic year service.
func NewAcademicYearService(years academicYearRepo, results missingResultCounter, logger *zap.Logger) *AcademicYearService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicYearService{years: years, results: results, logger: logger}
}

// Get loads one academic year.
func (s *AcademicYearService) Get(ctx context.Context, id string) (*models.AcademicYear, error) {
	year, err := s.loadYear(ctx, id)
	if err != nil {
		return nil, err
	}
	return year, nil
}

// Transition moves the year along its status lattice without closure checks.
// Closing a year goes through Close instead.
func (s *AcademicYearService) Transition(ctx context.Context, id string, target models.AcademicYearStatus) (*models.AcademicYear, error) {
	if target == models.AcademicYearStatusClosed {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year closure must go through the closure gate")
	}
	year, err := s.loadYear(ctx, id)
	if err != nil {
		return nil, err
	}
	if !year.Status.CanTransitionTo(target) {
		return nil, appErrors.Clone(appErrors.ErrTransition,
			fmt.Sprintf("transition from %s to %s not allowed", year.Status.Label(), target.Label()))
	}
	if err := s.years.UpdateStatus(ctx, id, target, nil, nil); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update year status")
	}
	year.Status = target
	return year, nil
}

// Close runs the three closure guards in order and, only when all pass,
// marks the year closed: the year must not be closed already, every period
// closing of its class groups must be closed, and every active student must
// have a final result record.
func (s *AcademicYearService) Close(ctx context.Context, id, actor string, now time.Time) (*models.AcademicYear, error) {
	year, err := s.loadYear(ctx, id)
	if err != nil {
		return nil, err
	}

	if year.Status == models.AcademicYearStatusClosed {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic year is already closed")
	}

	openClosings, err := s.years.CountOpenClosings(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count open closings")
	}
	if openClosings > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("%d period closings are not yet closed", openClosings))
	}

	missing, err := s.results.CountActiveStudentsMissing(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count missing final results")
	}
	if missing > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("%d active students have no final result record", missing))
	}

	closedAt := now.UTC()
	if err := s.years.UpdateStatus(ctx, id, models.AcademicYearStatusClosed, &actor, &closedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close year")
	}

	year.Status = models.AcademicYearStatusClosed
	year.ClosedBy = &actor
	year.ClosedAt = &closedAt

	s.logger.Info("academic year closed", zap.String("year_id", id), zap.String("by", actor))
	return year, nil
}

func (s *AcademicYearService) loadYear(ctx context.Context, id string) (*models.AcademicYear, error) {
	year, err := s.years.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}
	return year, nil
}
