package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edunet-br/sge-api/internal/models"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
)

type finalResultRepo interface {
	Upsert(ctx context.Context, record *models.FinalResultRecord) error
	ListByYear(ctx context.Context, yearID string) ([]models.FinalResultRecord, error)
}

// RecordFinalResultRequest records a student's end-of-year outcome.
type RecordFinalResultRequest struct {
	StudentID        string   `json:"student_id" validate:"required"`
	ClassGroupID     string   `json:"class_group_id" validate:"required"`
	AcademicYearID   string   `json:"academic_year_id" validate:"required"`
	Result           string   `json:"result" validate:"required,final_result"`
	OverallAverage   *float64 `json:"overall_average"`
	OverallFrequency *float64 `json:"overall_frequency"`
	CouncilOverride  bool     `json:"council_override"`
}

// FinalResultService records end-of-year outcomes.
type FinalResultService struct {
	repo      finalResultRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFinalResultService constructs the final result service.
func NewFinalResultService(repo finalResultRepo, validate *validator.Validate, logger *zap.Logger) *FinalResultService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &FinalResultService{repo: repo, validator: validate, logger: logger}
	svc.validator.RegisterValidation("final_result", func(fl validator.FieldLevel) bool {
		return models.FinalResult(fl.Field().String()).Valid()
	})
	return svc
}

// Record upserts the outcome for (student, class group, year).
func (s *FinalResultService) Record(ctx context.Context, req RecordFinalResultRequest, actor string) (*models.FinalResultRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid final result payload")
	}
	if req.OverallFrequency != nil && (*req.OverallFrequency < 0 || *req.OverallFrequency > 100) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("overall_frequency %.2f outside [0, 100]", *req.OverallFrequency))
	}

	record := &models.FinalResultRecord{
		StudentID:        req.StudentID,
		ClassGroupID:     req.ClassGroupID,
		AcademicYearID:   req.AcademicYearID,
		Result:           models.FinalResult(req.Result),
		OverallAverage:   req.OverallAverage,
		OverallFrequency: req.OverallFrequency,
		CouncilOverride:  req.CouncilOverride,
		RecordedBy:       actor,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record final result")
	}
	return record, nil
}

// ListByYear returns all outcomes recorded for one academic year.
func (s *FinalResultService) ListByYear(ctx context.Context, yearID string) ([]models.FinalResultRecord, error) {
	records, err := s.repo.ListByYear(ctx, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list final results")
	}
	return records, nil
}
