package models

import "time"

// AcademicYearStatus tracks the lifecycle of an academic year.
type AcademicYearStatus string

const (
	AcademicYearStatusPlanning AcademicYearStatus = "planning"
	AcademicYearStatusActive   AcademicYearStatus = "active"
	AcademicYearStatusClosing  AcademicYearStatus = "closing"
	AcademicYearStatusClosed   AcademicYearStatus = "closed"
)

// academicYearTransitions declares the allowed status edges. Closed is terminal.
var academicYearTransitions = map[AcademicYearStatus][]AcademicYearStatus{
	AcademicYearStatusPlanning: {AcademicYearStatusActive},
	AcademicYearStatusActive:   {AcademicYearStatusClosing},
	AcademicYearStatusClosing:  {AcademicYearStatusActive, AcademicYearStatusClosed},
	AcademicYearStatusClosed:   {},
}

// Valid returns true when the status is a supported value.
func (s AcademicYearStatus) Valid() bool {
	_, ok := academicYearTransitions[s]
	return ok
}

// CanTransitionTo checks the transition table for the requested edge.
func (s AcademicYearStatus) CanTransitionTo(target AcademicYearStatus) bool {
	for _, allowed := range academicYearTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Label returns the human readable status name.
func (s AcademicYearStatus) Label() string {
	switch s {
	case AcademicYearStatusPlanning:
		return "Planning"
	case AcademicYearStatusActive:
		return "Active"
	case AcademicYearStatusClosing:
		return "Closing"
	case AcademicYearStatusClosed:
		return "Closed"
	default:
		return string(s)
	}
}

// AcademicYear represents one school year for a school network.
type AcademicYear struct {
	ID        string             `db:"id" json:"id"`
	SchoolID  string             `db:"school_id" json:"school_id"`
	Year      int                `db:"year" json:"year"`
	StartDate time.Time          `db:"start_date" json:"start_date"`
	EndDate   time.Time          `db:"end_date" json:"end_date"`
	Status    AcademicYearStatus `db:"status" json:"status"`
	ClosedAt  *time.Time         `db:"closed_at" json:"closed_at,omitempty"`
	ClosedBy  *string            `db:"closed_by" json:"closed_by,omitempty"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt time.Time          `db:"updated_at" json:"updated_at"`
}
