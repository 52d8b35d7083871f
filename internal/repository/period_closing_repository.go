package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edunet-br/sge-api/internal/models"
)

// PeriodClosingRepository handles period closing persistence.
type PeriodClosingRepository struct {
	db *sqlx.DB
}

// NewPeriodClosingRepository creates a new period closing repository.
func NewPeriodClosingRepository(db *sqlx.DB) *PeriodClosingRepository {
	return &PeriodClosingRepository{db: db}
}

const closingColumns = `id, class_group_id, teacher_assignment_id, assessment_period_id, status,
        grades_complete, attendance_complete, lesson_records_complete, rejection_reason,
        submitted_by, submitted_at, validated_by, validated_at, approved_by, approved_at, closed_at,
        created_at, updated_at`

// FindByID loads one closing.
func (r *PeriodClosingRepository) FindByID(ctx context.Context, id string) (*models.PeriodClosing, error) {
	const query = `SELECT ` + closingColumns + ` FROM period_closings WHERE id = $1`
	var closing models.PeriodClosing
	if err := r.db.GetContext(ctx, &closing, query, id); err != nil {
		return nil, err
	}
	return &closing, nil
}

// FindByKeys loads the closing for (class group, teacher assignment, period).
func (r *PeriodClosingRepository) FindByKeys(ctx context.Context, classGroupID, assignmentID, periodID string) (*models.PeriodClosing, error) {
	const query = `SELECT ` + closingColumns + ` FROM period_closings
        WHERE class_group_id = $1 AND teacher_assignment_id = $2 AND assessment_period_id = $3`
	var closing models.PeriodClosing
	if err := r.db.GetContext(ctx, &closing, query, classGroupID, assignmentID, periodID); err != nil {
		return nil, err
	}
	return &closing, nil
}

// List returns closings matching the filter.
func (r *PeriodClosingRepository) List(ctx context.Context, filter models.PeriodClosingFilter) ([]models.PeriodClosing, error) {
	query := `SELECT ` + closingColumns + ` FROM period_closings WHERE 1=1`
	var args []interface{}
	if filter.ClassGroupID != "" {
		query += fmt.Sprintf(" AND class_group_id = $%d", len(args)+1)
		args = append(args, filter.ClassGroupID)
	}
	if filter.TeacherAssignmentID != "" {
		query += fmt.Sprintf(" AND teacher_assignment_id = $%d", len(args)+1)
		args = append(args, filter.TeacherAssignmentID)
	}
	if filter.AssessmentPeriodID != "" {
		query += fmt.Sprintf(" AND assessment_period_id = $%d", len(args)+1)
		args = append(args, filter.AssessmentPeriodID)
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, *filter.Status)
	}
	query += " ORDER BY created_at DESC"
	var closings []models.PeriodClosing
	if err := r.db.SelectContext(ctx, &closings, query, args...); err != nil {
		return nil, fmt.Errorf("list period closings: %w", err)
	}
	return closings, nil
}

// Create inserts a new closing in pending state.
func (r *PeriodClosingRepository) Create(ctx context.Context, closing *models.PeriodClosing) error {
	if closing.ID == "" {
		closing.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	closing.CreatedAt = now
	closing.UpdatedAt = now
	const query = `INSERT INTO period_closings (id, class_group_id, teacher_assignment_id, assessment_period_id, status,
        grades_complete, attendance_complete, lesson_records_complete, created_at, updated_at)
        VALUES (:id, :class_group_id, :teacher_assignment_id, :assessment_period_id, :status,
        :grades_complete, :attendance_complete, :lesson_records_complete, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, closing); err != nil {
		return fmt.Errorf("create period closing: %w", err)
	}
	return nil
}

// Update persists the closing's status, completeness flags and audit fields.
func (r *PeriodClosingRepository) Update(ctx context.Context, closing *models.PeriodClosing) error {
	closing.UpdatedAt = time.Now().UTC()
	const query = `UPDATE period_closings SET
        status = :status,
        grades_complete = :grades_complete,
        attendance_complete = :attendance_complete,
        lesson_records_complete = :lesson_records_complete,
        rejection_reason = :rejection_reason,
        submitted_by = :submitted_by, submitted_at = :submitted_at,
        validated_by = :validated_by, validated_at = :validated_at,
        approved_by = :approved_by, approved_at = :approved_at,
        closed_at = :closed_at,
        updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, closing); err != nil {
		return fmt.Errorf("update period closing: %w", err)
	}
	return nil
}
