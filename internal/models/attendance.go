package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent   AttendanceStatus = "present"
	AttendanceStatusAbsent    AttendanceStatus = "absent"
	AttendanceStatusJustified AttendanceStatus = "justified_absence"
	AttendanceStatusExcused   AttendanceStatus = "excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusJustified, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// CountsAsPresent reports whether the status counts toward frequency.
// Only a plain absence counts against the student.
func (s AttendanceStatus) CountsAsPresent() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusJustified || s == AttendanceStatusExcused
}

// Label returns the human readable status name.
func (s AttendanceStatus) Label() string {
	switch s {
	case AttendanceStatusPresent:
		return "Present"
	case AttendanceStatusAbsent:
		return "Absent"
	case AttendanceStatusJustified:
		return "Justified Absence"
	case AttendanceStatusExcused:
		return "Excused"
	default:
		return string(s)
	}
}

// AttendanceRecord is one row per (class group, teacher assignment, student, date).
type AttendanceRecord struct {
	ID                  string           `db:"id" json:"id"`
	ClassGroupID        string           `db:"class_group_id" json:"class_group_id"`
	TeacherAssignmentID string           `db:"teacher_assignment_id" json:"teacher_assignment_id"`
	StudentID           string           `db:"student_id" json:"student_id"`
	Date                time.Time        `db:"date" json:"date"`
	Status              AttendanceStatus `db:"status" json:"status"`
	Notes               *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt           time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceFilter captures criteria for attendance queries.
type AttendanceFilter struct {
	StudentID           string
	ClassGroupID        string
	TeacherAssignmentID string
	DateFrom            *time.Time
	DateTo              *time.Time
}

// AttendanceStatusCounts aggregates record counts per status.
type AttendanceStatusCounts struct {
	Total     int `db:"total" json:"total"`
	Present   int `db:"present" json:"present"`
	Absent    int `db:"absent" json:"absent"`
	Justified int `db:"justified" json:"justified"`
	Excused   int `db:"excused" json:"excused"`
}

// FrequencySummary is the computed attendance frequency for a student.
type FrequencySummary struct {
	StudentID           string  `json:"student_id"`
	ClassGroupID        string  `json:"class_group_id"`
	Total               int     `json:"total"`
	Present             int     `json:"present"`
	Absent              int     `json:"absent"`
	Justified           int     `json:"justified"`
	Excused             int     `json:"excused"`
	Attended            int     `json:"attended"`
	FrequencyPercentage float64 `json:"frequency_percentage"`
}

// AttendanceConfig holds per school/year alert thresholds.
type AttendanceConfig struct {
	ID                           string    `db:"id" json:"id"`
	SchoolID                     string    `db:"school_id" json:"school_id"`
	AcademicYearID               string    `db:"academic_year_id" json:"academic_year_id"`
	ConsecutiveAbsencesAlert     int       `db:"consecutive_absences_alert" json:"consecutive_absences_alert"`
	MonthlyAbsencesAlert         int       `db:"monthly_absences_alert" json:"monthly_absences_alert"`
	PeriodAbsencePercentageAlert float64   `db:"period_absence_percentage_alert" json:"period_absence_percentage_alert"`
	AnnualMinimumFrequency       float64   `db:"annual_minimum_frequency" json:"annual_minimum_frequency"`
	CreatedAt                    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt                    time.Time `db:"updated_at" json:"updated_at"`
}

// AttendanceAlertType tags raised alerts.
type AttendanceAlertType string

const (
	AlertTypeConsecutiveAbsences AttendanceAlertType = "consecutive_absences"
	AlertTypeMonthlyAbsences     AttendanceAlertType = "monthly_absences"
)

// AttendanceAlert is one triggered threshold for a student.
type AttendanceAlert struct {
	Type      AttendanceAlertType `json:"type"`
	StudentID string              `json:"student_id"`
	Threshold int                 `json:"threshold"`
	Current   int                 `json:"current"`
	Message   string              `json:"message"`
}

// AbsenceJustification covers a date range of absences for a student.
type AbsenceJustification struct {
	ID         string     `db:"id" json:"id"`
	StudentID  string     `db:"student_id" json:"student_id"`
	StartDate  time.Time  `db:"start_date" json:"start_date"`
	EndDate    time.Time  `db:"end_date" json:"end_date"`
	Reason     string     `db:"reason" json:"reason"`
	Approved   bool       `db:"approved" json:"approved"`
	ApprovedBy *string    `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
