package service

import (
	"context"
	"time"

	appErrors "github.com/edunet-br/sge-api/pkg/errors"
)

type gradeCounter interface {
	CountDistinctGraded(ctx context.Context, classGroupID, assignmentID, periodID string) (int, error)
}

type instrumentCounter interface {
	CountInstruments(ctx context.Context, configID string) (int, error)
}

type activeStudentCounter interface {
	CountActiveByClassGroup(ctx context.Context, classGroupID string) (int, error)
}

type attendanceDateCounter interface {
	CountDistinctDates(ctx context.Context, classGroupID, assignmentID string, from, to time.Time) (int, error)
}

type lessonRecordChecker interface {
	ExistsInRange(ctx context.Context, classGroupID, assignmentID string, from, to time.Time) (bool, error)
}

// CompletenessKeys identifies the scope a completeness check runs against.
type CompletenessKeys struct {
	ClassGroupID        string
	TeacherAssignmentID string
	AssessmentPeriodID  string
	AssessmentConfigID  string
	PeriodStart         time.Time
	PeriodEnd           time.Time
}

// CompletenessResult carries the three persisted completeness flags.
type CompletenessResult struct {
	Grades        bool `json:"grades"`
	Attendance    bool `json:"attendance"`
	LessonRecords bool `json:"lesson_records"`
}

// AllSatisfied reports whether every check passed.
func (r CompletenessResult) AllSatisfied() bool {
	return r.Grades && r.Attendance && r.LessonRecords
}

// CompletenessService evaluates the three closing preconditions. Each check
// is a stateless predicate over persisted records.
type CompletenessService struct {
	grades      gradeCounter
	instruments instrumentCounter
	enrollments activeStudentCounter
	attendance  attendanceDateCounter
	lessons     lessonRecordChecker
}

// NewCompletenessService constructs the completeness service.
func NewCompletenessService(grades gradeCounter, instruments instrumentCounter, enrollments activeStudentCounter, attendance attendanceDateCounter, lessons lessonRecordChecker) *CompletenessService {
	return &CompletenessService{
		grades:      grades,
		instruments: instruments,
		enrollments: enrollments,
		attendance:  attendance,
		lessons:     lessons,
	}
}

// GradesComplete is satisfied when every active student has an original grade
// for every instrument of the config: actual >= students x instruments.
// Zero students or zero instruments is vacuously satisfied.
func (s *CompletenessService) GradesComplete(ctx context.Context, keys CompletenessKeys) (bool, error) {
	students, err := s.enrollments.CountActiveByClassGroup(ctx, keys.ClassGroupID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count active students")
	}
	instruments, err := s.instruments.CountInstruments(ctx, keys.AssessmentConfigID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count instruments")
	}
	if students == 0 || instruments == 0 {
		return true, nil
	}

	actual, err := s.grades.CountDistinctGraded(ctx, keys.ClassGroupID, keys.TeacherAssignmentID, keys.AssessmentPeriodID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count graded students")
	}
	return actual >= students*instruments, nil
}

// AttendanceComplete is satisfied when at least one attendance date was
// recorded in the period. Presence of recording, not day-by-day coverage.
func (s *CompletenessService) AttendanceComplete(ctx context.Context, keys CompletenessKeys) (bool, error) {
	dates, err := s.attendance.CountDistinctDates(ctx, keys.ClassGroupID, keys.TeacherAssignmentID, keys.PeriodStart, keys.PeriodEnd)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count attendance dates")
	}
	return dates > 0, nil
}

// LessonRecordsComplete is satisfied when at least one lesson record exists
// in the period. Same coverage semantics as AttendanceComplete.
func (s *CompletenessService) LessonRecordsComplete(ctx context.Context, keys CompletenessKeys) (bool, error) {
	exists, err := s.lessons.ExistsInRange(ctx, keys.ClassGroupID, keys.TeacherAssignmentID, keys.PeriodStart, keys.PeriodEnd)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check lesson records")
	}
	return exists, nil
}

// Evaluate runs all three checks for the scope.
func (s *CompletenessService) Evaluate(ctx context.Context, keys CompletenessKeys) (*CompletenessResult, error) {
	grades, err := s.GradesComplete(ctx, keys)
	if err != nil {
		return nil, err
	}
	attendance, err := s.AttendanceComplete(ctx, keys)
	if err != nil {
		return nil, err
	}
	lessons, err := s.LessonRecordsComplete(ctx, keys)
	if err != nil {
		return nil, err
	}
	return &CompletenessResult{Grades: grades, Attendance: attendance, LessonRecords: lessons}, nil
}
