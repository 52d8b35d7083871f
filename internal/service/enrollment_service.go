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

type enrollmentRepo interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ListActiveByClassGroup(ctx context.Context, classGroupID string) ([]models.Enrollment, error)
	Enroll(ctx context.Context, enrollment *models.Enrollment, actor string) error
	ReassignClassGroup(ctx context.Context, enrollmentID, toClassGroupID, actor string) error
	Transfer(ctx context.Context, enrollmentID, actor string, notes *string) error
}

type schoolReader interface {
	FindSchool(ctx context.Context, id string) (*models.School, error)
}

// EnrollStudentRequest registers a student into a school year and class group.
type EnrollStudentRequest struct {
	StudentID      string `json:"student_id" validate:"required"`
	SchoolID       string `json:"school_id" validate:"required"`
	AcademicYearID string `json:"academic_year_id" validate:"required"`
	ClassGroupID   string `json:"class_group_id" validate:"required"`
}

// ReassignRequest moves an enrollment to another class group.
type ReassignRequest struct {
	EnrollmentID string `json:"enrollment_id" validate:"required"`
	ClassGroupID string `json:"class_group_id" validate:"required"`
}

// TransferRequest closes an enrollment out of its school.
type TransferRequest struct {
	EnrollmentID string  `json:"enrollment_id" validate:"required"`
	Notes        *string `json:"notes"`
}

// EnrollmentService manages enrollment lifecycles and movements.
type EnrollmentService struct {
	repo      enrollmentRepo
	schools   schoolReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repo enrollmentRepo, schools schoolReader, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, schools: schools, validator: validate, logger: logger}
}

// ListActive returns the active enrollments of a class group.
func (s *EnrollmentService) ListActive(ctx context.Context, classGroupID string) ([]models.Enrollment, error) {
	enrollments, err := s.repo.ListActiveByClassGroup(ctx, classGroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// Enroll creates an active enrollment with a generated number. Number
// generation holds a row lock on the school/year sequence so concurrent
// enrollments never collide.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollStudentRequest, actor string, now time.Time) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	school, err := s.schools.FindSchool(ctx, req.SchoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
	}
	if !school.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "school is not active")
	}

	enrollment := &models.Enrollment{
		StudentID:      req.StudentID,
		SchoolID:       req.SchoolID,
		AcademicYearID: req.AcademicYearID,
		ClassGroupID:   req.ClassGroupID,
		Status:         models.EnrollmentStatusActive,
		EnrolledAt:     now.UTC(),
	}
	if err := s.repo.Enroll(ctx, enrollment, actor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll student")
	}
	s.logger.Info("student enrolled", zap.String("enrollment_id", enrollment.ID), zap.String("number", enrollment.Number))
	return enrollment, nil
}

// Reassign moves the enrollment to another class group, logging the movement.
func (s *EnrollmentService) Reassign(ctx context.Context, req ReassignRequest, actor string) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reassignment payload")
	}

	enrollment, err := s.repo.FindByID(ctx, req.EnrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusActive {
		return appErrors.Clone(appErrors.ErrValidation, "only active enrollments can be reassigned")
	}
	if enrollment.ClassGroupID == req.ClassGroupID {
		return appErrors.Clone(appErrors.ErrValidation, "enrollment already in target class group")
	}

	if err := s.repo.ReassignClassGroup(ctx, req.EnrollmentID, req.ClassGroupID, actor); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign enrollment")
	}
	return nil
}

// Transfer closes the enrollment out of its school, logging the movement.
func (s *EnrollmentService) Transfer(ctx context.Context, req TransferRequest, actor string) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transfer payload")
	}

	if err := s.repo.Transfer(ctx, req.EnrollmentID, actor, req.Notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "enrollment is not active")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to transfer enrollment")
	}
	return nil
}
