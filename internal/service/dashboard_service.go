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

type dashboardEnrollmentLister interface {
	ListActiveByClassGroup(ctx context.Context, classGroupID string) ([]models.Enrollment, error)
}

type frequencyCalculator interface {
	Frequency(ctx context.Context, filter models.AttendanceFilter) (*models.FrequencySummary, error)
}

type averageCalculator interface {
	CalculateStudentAverage(ctx context.Context, req StudentAverageRequest) (*models.StudentAverage, error)
}

type classDirectory interface {
	StudentsByIDs(ctx context.Context, ids []string) (map[string]models.Student, error)
	FindTeacherAssignment(ctx context.Context, id string) (*models.TeacherAssignment, error)
}

// ClassGroupDashboardRequest scopes a class group snapshot.
type ClassGroupDashboardRequest struct {
	ClassGroupID        string `json:"class_group_id" validate:"required"`
	TeacherAssignmentID string `json:"teacher_assignment_id" validate:"required"`
	AssessmentPeriodID  string `json:"assessment_period_id" validate:"required"`
	AssessmentConfigID  string `json:"assessment_config_id" validate:"required"`
}

// StudentDashboardEntry is one student's line in the class snapshot.
type StudentDashboardEntry struct {
	StudentID        string  `json:"student_id"`
	StudentName      string  `json:"student_name"`
	EnrollmentNumber string  `json:"enrollment_number"`
	Frequency        float64 `json:"frequency"`
	Average          float64 `json:"average"`
	Passing          bool    `json:"passing"`
	RecoveryApplied  bool    `json:"recovery_applied"`
}

// ClassGroupDashboard aggregates frequency and averages for a class group in a period.
type ClassGroupDashboard struct {
	ClassGroupID       string                  `json:"class_group_id"`
	AssessmentPeriodID string                  `json:"assessment_period_id"`
	Subject            string                  `json:"subject"`
	ActiveStudents     int                     `json:"active_students"`
	AverageFrequency   float64                 `json:"average_frequency"`
	AverageGrade       float64                 `json:"average_grade"`
	PassingCount       int                     `json:"passing_count"`
	Students           []StudentDashboardEntry `json:"students"`
	GeneratedAt        time.Time               `json:"generated_at"`
}

// DashboardService composes cached per-class snapshots for coordinators.
type DashboardService struct {
	enrollments dashboardEnrollmentLister
	periods     assessmentPeriodReader
	attendance  frequencyCalculator
	grades      averageCalculator
	directory   classDirectory
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
	cacheTTL    time.Duration
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(enrollments dashboardEnrollmentLister, periods assessmentPeriodReader, attendance frequencyCalculator, grades averageCalculator, directory classDirectory, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		enrollments: enrollments,
		periods:     periods,
		attendance:  attendance,
		grades:      grades,
		directory:   directory,
		cache:       cache,
		validator:   validate,
		logger:      logger,
		cacheTTL:    cacheTTL,
	}
}

// ClassGroup returns the class group snapshot and indicates cache utilisation.
func (s *DashboardService) ClassGroup(ctx context.Context, req ClassGroupDashboardRequest) (*ClassGroupDashboard, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid dashboard request")
	}

	cacheKey := fmt.Sprintf("dash:class:%s:%s:%s", req.ClassGroupID, req.TeacherAssignmentID, req.AssessmentPeriodID)
	if s.cache != nil {
		var cached ClassGroupDashboard
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.Warn("dashboard cache read failed", zap.String("key", cacheKey), zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	snapshot, err := s.compose(ctx, req)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, snapshot, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return snapshot, false, nil
}

// Invalidate drops the cached snapshot for a class group, assignment and period.
func (s *DashboardService) Invalidate(ctx context.Context, classGroupID, teacherAssignmentID, periodID string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, fmt.Sprintf("dash:class:%s:%s:%s", classGroupID, teacherAssignmentID, periodID))
}

func (s *DashboardService) compose(ctx context.Context, req ClassGroupDashboardRequest) (*ClassGroupDashboard, error) {
	period, err := s.periods.FindByID(ctx, req.AssessmentPeriodID)
	if err != nil {
		return nil, err
	}

	assignment, err := s.directory.FindTeacherAssignment(ctx, req.TeacherAssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher assignment")
	}

	enrollments, err := s.enrollments.ListActiveByClassGroup(ctx, req.ClassGroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	studentIDs := make([]string, 0, len(enrollments))
	for _, enrollment := range enrollments {
		studentIDs = append(studentIDs, enrollment.StudentID)
	}
	students, err := s.directory.StudentsByIDs(ctx, studentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	snapshot := &ClassGroupDashboard{
		ClassGroupID:       req.ClassGroupID,
		AssessmentPeriodID: req.AssessmentPeriodID,
		Subject:            assignment.Subject,
		ActiveStudents:     len(enrollments),
		Students:           make([]StudentDashboardEntry, 0, len(enrollments)),
		GeneratedAt:        time.Now().UTC(),
	}

	var frequencySum, gradeSum float64
	var gradedStudents int
	for _, enrollment := range enrollments {
		summary, err := s.attendance.Frequency(ctx, models.AttendanceFilter{
			StudentID:    enrollment.StudentID,
			ClassGroupID: req.ClassGroupID,
			DateFrom:     &period.StartDate,
			DateTo:       &period.EndDate,
		})
		if err != nil {
			return nil, err
		}

		average, err := s.grades.CalculateStudentAverage(ctx, StudentAverageRequest{
			StudentID:           enrollment.StudentID,
			TeacherAssignmentID: req.TeacherAssignmentID,
			AssessmentPeriodID:  req.AssessmentPeriodID,
			AssessmentConfigID:  req.AssessmentConfigID,
		})
		if err != nil {
			return nil, err
		}

		entry := StudentDashboardEntry{
			StudentID:        enrollment.StudentID,
			StudentName:      students[enrollment.StudentID].Name,
			EnrollmentNumber: enrollment.Number,
			Frequency:        summary.FrequencyPercentage,
			Average:          average.Average,
			Passing:          average.Passing,
			RecoveryApplied:  average.RecoveryApplied,
		}
		snapshot.Students = append(snapshot.Students, entry)

		frequencySum += summary.FrequencyPercentage
		if average.GradedInstruments > 0 {
			gradeSum += average.Average
			gradedStudents++
		}
		if average.Passing {
			snapshot.PassingCount++
		}
	}

	if len(enrollments) > 0 {
		snapshot.AverageFrequency = RoundHalfUp(frequencySum/float64(len(enrollments)), 2)
	}
	if gradedStudents > 0 {
		snapshot.AverageGrade = RoundHalfUp(gradeSum/float64(gradedStudents), 2)
	}
	return snapshot, nil
}
