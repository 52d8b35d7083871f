package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edunet-br/sge-api/internal/models"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
)

type lessonRecordRepo interface {
	Create(ctx context.Context, record *models.LessonRecord) error
	List(ctx context.Context, filter models.LessonRecordFilter) ([]models.LessonRecord, error)
}

// CreateLessonRecordRequest registers one taught-content entry.
type CreateLessonRecordRequest struct {
	ClassGroupID        string `json:"class_group_id" validate:"required"`
	TeacherAssignmentID string `json:"teacher_assignment_id" validate:"required"`
	Date                string `json:"date" validate:"required"`
	Content             string `json:"content" validate:"required"`
}

// LessonRecordService manages the class diary.
type LessonRecordService struct {
	records   lessonRecordRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLessonRecordService constructs a LessonRecordService.
func NewLessonRecordService(records lessonRecordRepo, validate *validator.Validate, logger *zap.Logger) *LessonRecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LessonRecordService{records: records, validator: validate, logger: logger}
}

// Create registers a lesson record for a class and date.
func (s *LessonRecordService) Create(ctx context.Context, req CreateLessonRecordRequest) (*models.LessonRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson record payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD format")
	}

	record := &models.LessonRecord{
		ClassGroupID:        req.ClassGroupID,
		TeacherAssignmentID: req.TeacherAssignmentID,
		Date:                date,
		Content:             req.Content,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson record")
	}
	return record, nil
}

// List returns lesson records matching the filter.
func (s *LessonRecordService) List(ctx context.Context, filter models.LessonRecordFilter) ([]models.LessonRecord, error) {
	records, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lesson records")
	}
	return records, nil
}
