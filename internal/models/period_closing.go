package models

import "time"

// ClosingStatus walks a class-group/period combination toward finalization.
type ClosingStatus string

const (
	ClosingStatusPending      ClosingStatus = "pending"
	ClosingStatusInValidation ClosingStatus = "in_validation"
	ClosingStatusApproved     ClosingStatus = "approved"
	ClosingStatusClosed       ClosingStatus = "closed"
)

// closingStatusTransitions declares the allowed edges. Closed is terminal.
var closingStatusTransitions = map[ClosingStatus][]ClosingStatus{
	ClosingStatusPending:      {ClosingStatusInValidation},
	ClosingStatusInValidation: {ClosingStatusPending, ClosingStatusApproved},
	ClosingStatusApproved:     {ClosingStatusClosed},
	ClosingStatusClosed:       {},
}

// Valid returns true when the status is a supported value.
func (s ClosingStatus) Valid() bool {
	_, ok := closingStatusTransitions[s]
	return ok
}

// CanTransitionTo checks the transition table for the requested edge.
func (s ClosingStatus) CanTransitionTo(target ClosingStatus) bool {
	for _, allowed := range closingStatusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Label returns the human readable status name.
func (s ClosingStatus) Label() string {
	switch s {
	case ClosingStatusPending:
		return "Pending"
	case ClosingStatusInValidation:
		return "In Validation"
	case ClosingStatusApproved:
		return "Approved"
	case ClosingStatusClosed:
		return "Closed"
	default:
		return string(s)
	}
}

// PeriodClosing gates finalization of grades, attendance and lesson records
// for one (class group, teacher assignment, assessment period) combination.
type PeriodClosing struct {
	ID                    string        `db:"id" json:"id"`
	ClassGroupID          string        `db:"class_group_id" json:"class_group_id"`
	TeacherAssignmentID   string        `db:"teacher_assignment_id" json:"teacher_assignment_id"`
	AssessmentPeriodID    string        `db:"assessment_period_id" json:"assessment_period_id"`
	Status                ClosingStatus `db:"status" json:"status"`
	GradesComplete        bool          `db:"grades_complete" json:"grades_complete"`
	AttendanceComplete    bool          `db:"attendance_complete" json:"attendance_complete"`
	LessonRecordsComplete bool          `db:"lesson_records_complete" json:"lesson_records_complete"`
	RejectionReason       *string       `db:"rejection_reason" json:"rejection_reason,omitempty"`
	SubmittedBy           *string       `db:"submitted_by" json:"submitted_by,omitempty"`
	SubmittedAt           *time.Time    `db:"submitted_at" json:"submitted_at,omitempty"`
	ValidatedBy           *string       `db:"validated_by" json:"validated_by,omitempty"`
	ValidatedAt           *time.Time    `db:"validated_at" json:"validated_at,omitempty"`
	ApprovedBy            *string       `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt            *time.Time    `db:"approved_at" json:"approved_at,omitempty"`
	ClosedAt              *time.Time    `db:"closed_at" json:"closed_at,omitempty"`
	CreatedAt             time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time     `db:"updated_at" json:"updated_at"`
}

// PeriodClosingFilter captures list criteria for closings.
type PeriodClosingFilter struct {
	ClassGroupID        string
	TeacherAssignmentID string
	AssessmentPeriodID  string
	Status              *ClosingStatus
}

// RectificationStatus models the review flow of a post-closure change.
type RectificationStatus string

const (
	RectificationStatusRequested RectificationStatus = "requested"
	RectificationStatusApproved  RectificationStatus = "approved"
	RectificationStatusRejected  RectificationStatus = "rejected"
)

// Valid returns true when the status is a supported value.
func (s RectificationStatus) Valid() bool {
	switch s {
	case RectificationStatusRequested, RectificationStatusApproved, RectificationStatusRejected:
		return true
	default:
		return false
	}
}

// Rectification is a requested post-hoc change against a closed period closing.
type Rectification struct {
	ID              string              `db:"id" json:"id"`
	PeriodClosingID string              `db:"period_closing_id" json:"period_closing_id"`
	EntityType      string              `db:"entity_type" json:"entity_type"`
	EntityID        string              `db:"entity_id" json:"entity_id"`
	Field           string              `db:"field" json:"field"`
	OldValue        string              `db:"old_value" json:"old_value"`
	NewValue        string              `db:"new_value" json:"new_value"`
	Justification   string              `db:"justification" json:"justification"`
	Status          RectificationStatus `db:"status" json:"status"`
	RequestedBy     string              `db:"requested_by" json:"requested_by"`
	RequestedAt     time.Time           `db:"requested_at" json:"requested_at"`
	ReviewedBy      *string             `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time          `db:"reviewed_at" json:"reviewed_at,omitempty"`
}
