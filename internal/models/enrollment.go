package models

import "time"

// EnrollmentStatus tracks whether a student is actively enrolled.
type EnrollmentStatus string

const (
	EnrollmentStatusActive      EnrollmentStatus = "active"
	EnrollmentStatusTransferred EnrollmentStatus = "transferred"
	EnrollmentStatusCancelled   EnrollmentStatus = "cancelled"
)

// Valid returns true when the status is a supported value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusActive, EnrollmentStatusTransferred, EnrollmentStatusCancelled:
		return true
	default:
		return false
	}
}

// Enrollment links a student to a school for one academic year.
type Enrollment struct {
	ID             string           `db:"id" json:"id"`
	Number         string           `db:"number" json:"number"`
	StudentID      string           `db:"student_id" json:"student_id"`
	SchoolID       string           `db:"school_id" json:"school_id"`
	AcademicYearID string           `db:"academic_year_id" json:"academic_year_id"`
	ClassGroupID   string           `db:"class_group_id" json:"class_group_id"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt     time.Time        `db:"enrolled_at" json:"enrolled_at"`
	LeftAt         *time.Time       `db:"left_at" json:"left_at,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// MovementType labels enrollment movement log entries.
type MovementType string

const (
	MovementEnrolled     MovementType = "enrolled"
	MovementReassigned   MovementType = "class_reassigned"
	MovementTransferred  MovementType = "transferred"
	MovementCancelled    MovementType = "cancelled"
)

// EnrollmentMovement is an append-only log row for enrollment changes.
type EnrollmentMovement struct {
	ID             string       `db:"id" json:"id"`
	EnrollmentID   string       `db:"enrollment_id" json:"enrollment_id"`
	Type           MovementType `db:"type" json:"type"`
	FromClassGroup *string      `db:"from_class_group" json:"from_class_group,omitempty"`
	ToClassGroup   *string      `db:"to_class_group" json:"to_class_group,omitempty"`
	Notes          *string      `db:"notes" json:"notes,omitempty"`
	RecordedBy     string       `db:"recorded_by" json:"recorded_by"`
	RecordedAt     time.Time    `db:"recorded_at" json:"recorded_at"`
}
