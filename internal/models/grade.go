package models

import "time"

// Grade is one score for a student on an assessment instrument within a period.
type Grade struct {
	ID                  string    `db:"id" json:"id"`
	StudentID           string    `db:"student_id" json:"student_id"`
	ClassGroupID        string    `db:"class_group_id" json:"class_group_id"`
	TeacherAssignmentID string    `db:"teacher_assignment_id" json:"teacher_assignment_id"`
	AssessmentPeriodID  string    `db:"assessment_period_id" json:"assessment_period_id"`
	InstrumentID        string    `db:"instrument_id" json:"instrument_id"`
	NumericValue        *float64  `db:"numeric_value" json:"numeric_value,omitempty"`
	ConceptualValue     *string   `db:"conceptual_value" json:"conceptual_value,omitempty"`
	IsRecovery          bool      `db:"is_recovery" json:"is_recovery"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// GradeFilter captures list criteria for grade entries.
type GradeFilter struct {
	StudentID           string
	ClassGroupID        string
	TeacherAssignmentID string
	AssessmentPeriodID  string
	InstrumentID        string
	IsRecovery          *bool
}

// StudentAverage is the computed period average for one student.
type StudentAverage struct {
	StudentID          string  `json:"student_id"`
	AssessmentPeriodID string  `json:"assessment_period_id"`
	Average            float64 `json:"average"`
	Passing            bool    `json:"passing"`
	RecoveryApplied    bool    `json:"recovery_applied"`
	GradedInstruments  int     `json:"graded_instruments"`
}
