package models

import "time"

// AssessmentPeriodType determines how many grading windows a year has.
type AssessmentPeriodType string

const (
	PeriodTypeBimestral  AssessmentPeriodType = "bimestral"
	PeriodTypeTrimestral AssessmentPeriodType = "trimestral"
	PeriodTypeSemestral  AssessmentPeriodType = "semestral"
)

// Valid returns true when the type is a supported value.
func (t AssessmentPeriodType) Valid() bool {
	switch t {
	case PeriodTypeBimestral, PeriodTypeTrimestral, PeriodTypeSemestral:
		return true
	default:
		return false
	}
}

// MaxNumber returns the highest allowed period number for the type.
func (t AssessmentPeriodType) MaxNumber() int {
	switch t {
	case PeriodTypeBimestral:
		return 4
	case PeriodTypeTrimestral:
		return 3
	case PeriodTypeSemestral:
		return 2
	default:
		return 0
	}
}

// AssessmentPeriodStatus tracks the lifecycle of a grading window.
type AssessmentPeriodStatus string

const (
	PeriodStatusOpen    AssessmentPeriodStatus = "open"
	PeriodStatusClosing AssessmentPeriodStatus = "closing"
	PeriodStatusClosed  AssessmentPeriodStatus = "closed"
)

// periodStatusTransitions declares the allowed edges. Closed is terminal.
var periodStatusTransitions = map[AssessmentPeriodStatus][]AssessmentPeriodStatus{
	PeriodStatusOpen:    {PeriodStatusClosing},
	PeriodStatusClosing: {PeriodStatusOpen, PeriodStatusClosed},
	PeriodStatusClosed:  {},
}

// Valid returns true when the status is a supported value.
func (s AssessmentPeriodStatus) Valid() bool {
	_, ok := periodStatusTransitions[s]
	return ok
}

// CanTransitionTo checks the transition table for the requested edge.
func (s AssessmentPeriodStatus) CanTransitionTo(target AssessmentPeriodStatus) bool {
	for _, allowed := range periodStatusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Label returns the human readable status name.
func (s AssessmentPeriodStatus) Label() string {
	switch s {
	case PeriodStatusOpen:
		return "Open"
	case PeriodStatusClosing:
		return "Closing"
	case PeriodStatusClosed:
		return "Closed"
	default:
		return string(s)
	}
}

// AssessmentPeriod represents one grading window within an academic year.
type AssessmentPeriod struct {
	ID             string                 `db:"id" json:"id"`
	AcademicYearID string                 `db:"academic_year_id" json:"academic_year_id"`
	Type           AssessmentPeriodType   `db:"type" json:"type"`
	Number         int                    `db:"number" json:"number"`
	StartDate      time.Time              `db:"start_date" json:"start_date"`
	EndDate        time.Time              `db:"end_date" json:"end_date"`
	Status         AssessmentPeriodStatus `db:"status" json:"status"`
	CreatedAt      time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time              `db:"updated_at" json:"updated_at"`
}

// AssessmentPeriodFilter captures list criteria for periods.
type AssessmentPeriodFilter struct {
	AcademicYearID string
	Type           *AssessmentPeriodType
	Status         *AssessmentPeriodStatus
}
