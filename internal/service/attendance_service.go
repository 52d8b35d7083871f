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

// defaultRecentWindow caps the consecutive-absence scan when config leaves it unset.
const defaultRecentWindow = 30

type attendanceRepo interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
	BulkUpsert(ctx context.Context, records []models.AttendanceRecord) error
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
	StatusCounts(ctx context.Context, filter models.AttendanceFilter) (*models.AttendanceStatusCounts, error)
	RecentByStudent(ctx context.Context, studentID, classGroupID string, limit int) ([]models.AttendanceRecord, error)
	CountAbsencesInMonth(ctx context.Context, studentID, classGroupID string, year int, month time.Month) (int, error)
}

type attendanceConfigReader interface {
	FindBySchoolYear(ctx context.Context, schoolID, yearID string) (*models.AttendanceConfig, error)
}

// MarkAttendanceRequest describes a single attendance record payload.
type MarkAttendanceRequest struct {
	ClassGroupID        string  `json:"class_group_id" validate:"required"`
	TeacherAssignmentID string  `json:"teacher_assignment_id" validate:"required"`
	StudentID           string  `json:"student_id" validate:"required"`
	Date                string  `json:"date" validate:"required"`
	Status              string  `json:"status" validate:"required,attendance_status"`
	Notes               *string `json:"notes"`
}

// BulkAttendanceItem holds one entry of a bulk payload.
type BulkAttendanceItem struct {
	StudentID string  `json:"student_id" validate:"required"`
	Status    string  `json:"status" validate:"required,attendance_status"`
	Notes     *string `json:"notes"`
}

// BulkMarkAttendanceRequest marks a whole class for one date atomically.
type BulkMarkAttendanceRequest struct {
	ClassGroupID        string               `json:"class_group_id" validate:"required"`
	TeacherAssignmentID string               `json:"teacher_assignment_id" validate:"required"`
	Date                string               `json:"date" validate:"required"`
	Items               []BulkAttendanceItem `json:"items" validate:"required,min=1,dive"`
}

// AttendanceService coordinates attendance workflows.
type AttendanceService struct {
	records      attendanceRepo
	configs      attendanceConfigReader
	recentWindow int
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(records attendanceRepo, configs attendanceConfigReader, recentWindow int, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if recentWindow <= 0 {
		recentWindow = defaultRecentWindow
	}
	svc := &AttendanceService{records: records, configs: configs, recentWindow: recentWindow, validator: validate, logger: logger}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
	return svc
}

// Mark upserts one attendance record by its natural key.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	record := &models.AttendanceRecord{
		ClassGroupID:        req.ClassGroupID,
		TeacherAssignmentID: req.TeacherAssignmentID,
		StudentID:           req.StudentID,
		Date:                date,
		Status:              models.AttendanceStatus(req.Status),
		Notes:               req.Notes,
	}
	if err := s.records.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert attendance")
	}
	return record, nil
}

// BulkMark writes the whole class list for one date in a single transaction.
func (s *AttendanceService) BulkMark(ctx context.Context, req BulkMarkAttendanceRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk attendance payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return 0, err
	}

	records := make([]models.AttendanceRecord, 0, len(req.Items))
	for _, item := range req.Items {
		records = append(records, models.AttendanceRecord{
			ClassGroupID:        req.ClassGroupID,
			TeacherAssignmentID: req.TeacherAssignmentID,
			StudentID:           item.StudentID,
			Date:                date,
			Status:              models.AttendanceStatus(item.Status),
			Notes:               item.Notes,
		})
	}
	if err := s.records.BulkUpsert(ctx, records); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bulk upsert attendance")
	}
	return len(records), nil
}

// List returns attendance records matching the filter.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	records, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// Frequency computes the attendance percentage for a student. Present,
// justified absences and excused records count as attended. With no records
// the percentage defaults to 100.
func (s *AttendanceService) Frequency(ctx context.Context, filter models.AttendanceFilter) (*models.FrequencySummary, error) {
	counts, err := s.records.StatusCounts(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count attendance")
	}

	summary := &models.FrequencySummary{
		StudentID:    filter.StudentID,
		ClassGroupID: filter.ClassGroupID,
		Total:        counts.Total,
		Present:      counts.Present,
		Absent:       counts.Absent,
		Justified:    counts.Justified,
		Excused:      counts.Excused,
		Attended:     counts.Present + counts.Justified + counts.Excused,
	}
	if summary.Total == 0 {
		summary.FrequencyPercentage = 100.00
		return summary, nil
	}
	summary.FrequencyPercentage = RoundHalfUp(float64(summary.Attended)/float64(summary.Total)*100, 2)
	return summary, nil
}

// CheckAlerts evaluates the consecutive and monthly absence thresholds for a
// student. A missing attendance config disables the feature.
func (s *AttendanceService) CheckAlerts(ctx context.Context, studentID, classGroupID, schoolID, yearID string, now time.Time) ([]models.AttendanceAlert, error) {
	config, err := s.configs.FindBySchoolYear(ctx, schoolID, yearID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance config")
	}

	var alerts []models.AttendanceAlert

	if config.ConsecutiveAbsencesAlert > 0 {
		recent, err := s.records.RecentByStudent(ctx, studentID, classGroupID, s.recentWindow)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent attendance")
		}
		consecutive := 0
		for _, record := range recent {
			if record.Status != models.AttendanceStatusAbsent {
				break
			}
			consecutive++
		}
		if consecutive >= config.ConsecutiveAbsencesAlert {
			alerts = append(alerts, models.AttendanceAlert{
				Type:      models.AlertTypeConsecutiveAbsences,
				StudentID: studentID,
				Threshold: config.ConsecutiveAbsencesAlert,
				Current:   consecutive,
				Message:   fmt.Sprintf("student has %d consecutive absences (threshold %d)", consecutive, config.ConsecutiveAbsencesAlert),
			})
		}
	}

	if config.MonthlyAbsencesAlert > 0 {
		monthly, err := s.records.CountAbsencesInMonth(ctx, studentID, classGroupID, now.Year(), now.Month())
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count monthly absences")
		}
		if monthly >= config.MonthlyAbsencesAlert {
			alerts = append(alerts, models.AttendanceAlert{
				Type:      models.AlertTypeMonthlyAbsences,
				StudentID: studentID,
				Threshold: config.MonthlyAbsencesAlert,
				Current:   monthly,
				Message:   fmt.Sprintf("student has %d absences in %s (threshold %d)", monthly, now.Format("January 2006"), config.MonthlyAbsencesAlert),
			})
		}
	}

	return alerts, nil
}

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value))
	}
	return date, nil
}
