package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edunet-br/sge-api/internal/models"
)

// AttendanceRepository handles attendance record persistence.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, class_group_id, teacher_assignment_id, student_id, date, status, notes, created_at, updated_at`

const attendanceUpsertQuery = `INSERT INTO attendance_records (id, class_group_id, teacher_assignment_id, student_id, date, status, notes, created_at, updated_at)
        VALUES (:id, :class_group_id, :teacher_assignment_id, :student_id, :date, :status, :notes, :created_at, :updated_at)
        ON CONFLICT (class_group_id, teacher_assignment_id, student_id, date)
        DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at`

// Upsert inserts or updates one record by its natural key.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if _, err := r.db.NamedExecContext(ctx, attendanceUpsertQuery, record); err != nil {
		return fmt.Errorf("upsert attendance record: %w", err)
	}
	return nil
}

// BulkUpsert writes multiple records in one transaction.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, records []models.AttendanceRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		now := time.Now().UTC()
		if records[i].CreatedAt.IsZero() {
			records[i].CreatedAt = now
		}
		records[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, attendanceUpsertQuery, records[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bulk upsert attendance: %w", err)
		}
	}
	return tx.Commit()
}

// List returns attendance records matching the filter, newest first.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE 1=1`
	args, query := appendAttendanceFilter(query, nil, filter)
	query += " ORDER BY date DESC"
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return records, nil
}

// StatusCounts aggregates record counts per status for the filter.
func (r *AttendanceRepository) StatusCounts(ctx context.Context, filter models.AttendanceFilter) (*models.AttendanceStatusCounts, error) {
	query := `SELECT COUNT(*) AS total,
        COUNT(*) FILTER (WHERE status = 'present') AS present,
        COUNT(*) FILTER (WHERE status = 'absent') AS absent,
        COUNT(*) FILTER (WHERE status = 'justified_absence') AS justified,
        COUNT(*) FILTER (WHERE status = 'excused') AS excused
        FROM attendance_records WHERE 1=1`
	args, query := appendAttendanceFilter(query, nil, filter)
	var counts models.AttendanceStatusCounts
	if err := r.db.GetContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("attendance status counts: %w", err)
	}
	return &counts, nil
}

// RecentByStudent returns the most recent records for a student in a class, date descending.
func (r *AttendanceRepository) RecentByStudent(ctx context.Context, studentID, classGroupID string, limit int) ([]models.AttendanceRecord, error) {
	const query = `SELECT ` + attendanceColumns + ` FROM attendance_records
        WHERE student_id = $1 AND class_group_id = $2
        ORDER BY date DESC LIMIT $3`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID, classGroupID, limit); err != nil {
		return nil, fmt.Errorf("recent attendance: %w", err)
	}
	return records, nil
}

// CountAbsencesInMonth counts absent records for the student in a calendar month.
func (r *AttendanceRepository) CountAbsencesInMonth(ctx context.Context, studentID, classGroupID string, year int, month time.Month) (int, error) {
	const query = `SELECT COUNT(*) FROM attendance_records
        WHERE student_id = $1 AND class_group_id = $2 AND status = $3
          AND EXTRACT(YEAR FROM date) = $4 AND EXTRACT(MONTH FROM date) = $5`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, classGroupID, models.AttendanceStatusAbsent, year, int(month)); err != nil {
		return 0, fmt.Errorf("count monthly absences: %w", err)
	}
	return count, nil
}

// CountDistinctDates counts distinct attendance dates recorded for the scope in range.
func (r *AttendanceRepository) CountDistinctDates(ctx context.Context, classGroupID, assignmentID string, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(DISTINCT date) FROM attendance_records
        WHERE class_group_id = $1 AND teacher_assignment_id = $2 AND date BETWEEN $3 AND $4`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classGroupID, assignmentID, from, to); err != nil {
		return 0, fmt.Errorf("count attendance dates: %w", err)
	}
	return count, nil
}

func appendAttendanceFilter(query string, args []interface{}, filter models.AttendanceFilter) ([]interface{}, string) {
	if filter.StudentID != "" {
		query += fmt.Sprintf(" AND student_id = $%d", len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.ClassGroupID != "" {
		query += fmt.Sprintf(" AND class_group_id = $%d", len(args)+1)
		args = append(args, filter.ClassGroupID)
	}
	if filter.TeacherAssignmentID != "" {
		query += fmt.Sprintf(" AND teacher_assignment_id = $%d", len(args)+1)
		args = append(args, filter.TeacherAssignmentID)
	}
	if filter.DateFrom != nil {
		query += fmt.Sprintf(" AND date >= $%d", len(args)+1)
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query += fmt.Sprintf(" AND date <= $%d", len(args)+1)
		args = append(args, *filter.DateTo)
	}
	return args, query
}
