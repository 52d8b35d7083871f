package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edunet-br/sge-api/internal/models"
)

// LessonRecordRepository handles lesson record persistence.
type LessonRecordRepository struct {
	db *sqlx.DB
}

// NewLessonRecordRepository creates a new lesson record repository.
func NewLessonRecordRepository(db *sqlx.DB) *LessonRecordRepository {
	return &LessonRecordRepository{db: db}
}

// Create inserts a lesson record.
func (r *LessonRecordRepository) Create(ctx context.Context, record *models.LessonRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	const query = `INSERT INTO lesson_records (id, class_group_id, teacher_assignment_id, date, content, created_at, updated_at)
        VALUES (:id, :class_group_id, :teacher_assignment_id, :date, :content, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create lesson record: %w", err)
	}
	return nil
}

// List returns lesson records matching the filter, newest first.
func (r *LessonRecordRepository) List(ctx context.Context, filter models.LessonRecordFilter) ([]models.LessonRecord, error) {
	query := `SELECT id, class_group_id, teacher_assignment_id, date, content, created_at, updated_at
        FROM lesson_records WHERE 1=1`
	var args []interface{}
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
	query += " ORDER BY date DESC"
	var records []models.LessonRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list lesson records: %w", err)
	}
	return records, nil
}

// ExistsInRange reports whether any lesson record exists for the scope in range.
func (r *LessonRecordRepository) ExistsInRange(ctx context.Context, classGroupID, assignmentID string, from, to time.Time) (bool, error) {
	const query = `SELECT EXISTS (
        SELECT 1 FROM lesson_records
        WHERE class_group_id = $1 AND teacher_assignment_id = $2 AND date BETWEEN $3 AND $4)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, classGroupID, assignmentID, from, to); err != nil {
		return false, fmt.Errorf("check lesson records: %w", err)
	}
	return exists, nil
}
