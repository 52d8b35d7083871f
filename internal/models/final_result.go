package models

import "time"

// FinalResult is the end-of-year outcome for a student.
type FinalResult string

const (
	FinalResultApproved           FinalResult = "approved"
	FinalResultRetained           FinalResult = "retained"
	FinalResultPartialProgression FinalResult = "partial_progression"
	FinalResultTransferred        FinalResult = "transferred"
	FinalResultAbandoned          FinalResult = "abandoned"
)

// Valid returns true when the result is a supported value.
func (r FinalResult) Valid() bool {
	switch r {
	case FinalResultApproved, FinalResultRetained, FinalResultPartialProgression, FinalResultTransferred, FinalResultAbandoned:
		return true
	default:
		return false
	}
}

// Label returns the human readable result name.
func (r FinalResult) Label() string {
	switch r {
	case FinalResultApproved:
		return "Approved"
	case FinalResultRetained:
		return "Retained"
	case FinalResultPartialProgression:
		return "Partial Progression"
	case FinalResultTransferred:
		return "Transferred"
	case FinalResultAbandoned:
		return "Abandoned"
	default:
		return string(r)
	}
}

// FinalResultRecord stores the year outcome for a (student, class group, year).
type FinalResultRecord struct {
	ID               string      `db:"id" json:"id"`
	StudentID        string      `db:"student_id" json:"student_id"`
	ClassGroupID     string      `db:"class_group_id" json:"class_group_id"`
	AcademicYearID   string      `db:"academic_year_id" json:"academic_year_id"`
	Result           FinalResult `db:"result" json:"result"`
	OverallAverage   *float64    `db:"overall_average" json:"overall_average,omitempty"`
	OverallFrequency *float64    `db:"overall_frequency" json:"overall_frequency,omitempty"`
	CouncilOverride  bool        `db:"council_override" json:"council_override"`
	RecordedBy       string      `db:"recorded_by" json:"recorded_by"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at" json:"updated_at"`
}
