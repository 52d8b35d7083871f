package models

import "time"

// School is one unit of the municipal network.
type School struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Student is a person enrolled in the network.
type Student struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	BirthDate time.Time `db:"birth_date" json:"birth_date"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassGroup is one class of students within a school and year.
type ClassGroup struct {
	ID             string    `db:"id" json:"id"`
	SchoolID       string    `db:"school_id" json:"school_id"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	Name           string    `db:"name" json:"name"`
	GradeLevel     string    `db:"grade_level" json:"grade_level"`
	Shift          string    `db:"shift" json:"shift"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherAssignment links a teacher to a class group for one subject.
type TeacherAssignment struct {
	ID           string    `db:"id" json:"id"`
	TeacherID    string    `db:"teacher_id" json:"teacher_id"`
	ClassGroupID string    `db:"class_group_id" json:"class_group_id"`
	Subject      string    `db:"subject" json:"subject"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// LessonRecord documents one lesson taught to a class group.
type LessonRecord struct {
	ID                  string    `db:"id" json:"id"`
	ClassGroupID        string    `db:"class_group_id" json:"class_group_id"`
	TeacherAssignmentID string    `db:"teacher_assignment_id" json:"teacher_assignment_id"`
	Date                time.Time `db:"date" json:"date"`
	Content             string    `db:"content" json:"content"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// LessonRecordFilter captures list criteria for lesson records.
type LessonRecordFilter struct {
	ClassGroupID        string
	TeacherAssignmentID string
	DateFrom            *time.Time
	DateTo              *time.Time
}
