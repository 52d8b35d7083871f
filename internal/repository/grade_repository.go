package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edunet-br/sge-api/internal/models"
)

// GradeRepository handles grade entry persistence.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

const gradeColumns = `id, student_id, class_group_id, teacher_assignment_id, assessment_period_id,
        instrument_id, numeric_value, conceptual_value, is_recovery, created_at, updated_at`

// List returns grade entries matching the filter.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	query := `SELECT ` + gradeColumns + ` FROM grades WHERE 1=1`
	var args []interface{}
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
	if filter.AssessmentPeriodID != "" {
		query += fmt.Sprintf(" AND assessment_period_id = $%d", len(args)+1)
		args = append(args, filter.AssessmentPeriodID)
	}
	if filter.InstrumentID != "" {
		query += fmt.Sprintf(" AND instrument_id = $%d", len(args)+1)
		args = append(args, filter.InstrumentID)
	}
	if filter.IsRecovery != nil {
		query += fmt.Sprintf(" AND is_recovery = $%d", len(args)+1)
		args = append(args, *filter.IsRecovery)
	}
	query += " ORDER BY updated_at DESC"
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// ListForStudentPeriod returns all grades (originals and recoveries) for one
// student scoped to a teacher assignment and period.
func (r *GradeRepository) ListForStudentPeriod(ctx context.Context, studentID, assignmentID, periodID string) ([]models.Grade, error) {
	const query = `SELECT ` + gradeColumns + ` FROM grades
        WHERE student_id = $1 AND teacher_assignment_id = $2 AND assessment_period_id = $3
        ORDER BY instrument_id, is_recovery`
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, studentID, assignmentID, periodID); err != nil {
		return nil, fmt.Errorf("list student period grades: %w", err)
	}
	return grades, nil
}

// Upsert inserts or updates a grade entry by its natural key.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now
	const query = `INSERT INTO grades (id, student_id, class_group_id, teacher_assignment_id, assessment_period_id,
        instrument_id, numeric_value, conceptual_value, is_recovery, created_at, updated_at)
        VALUES (:id, :student_id, :class_group_id, :teacher_assignment_id, :assessment_period_id,
        :instrument_id, :numeric_value, :conceptual_value, :is_recovery, :created_at, :updated_at)
        ON CONFLICT (student_id, teacher_assignment_id, assessment_period_id, instrument_id, is_recovery)
        DO UPDATE SET numeric_value = EXCLUDED.numeric_value, conceptual_value = EXCLUDED.conceptual_value, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

// BulkUpsert inserts or updates multiple grades in one transaction.
func (r *GradeRepository) BulkUpsert(ctx context.Context, grades []models.Grade) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const query = `INSERT INTO grades (id, student_id, class_group_id, teacher_assignment_id, assessment_period_id,
        instrument_id, numeric_value, conceptual_value, is_recovery, created_at, updated_at)
        VALUES (:id, :student_id, :class_group_id, :teacher_assignment_id, :assessment_period_id,
        :instrument_id, :numeric_value, :conceptual_value, :is_recovery, :created_at, :updated_at)
        ON CONFLICT (student_id, teacher_assignment_id, assessment_period_id, instrument_id, is_recovery)
        DO UPDATE SET numeric_value = EXCLUDED.numeric_value, conceptual_value = EXCLUDED.conceptual_value, updated_at = EXCLUDED.updated_at`
	for i := range grades {
		if grades[i].ID == "" {
			grades[i].ID = uuid.NewString()
		}
		now := time.Now().UTC()
		if grades[i].CreatedAt.IsZero() {
			grades[i].CreatedAt = now
		}
		grades[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, grades[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bulk upsert grades: %w", err)
		}
	}
	return tx.Commit()
}

// CountDistinctGraded counts distinct (student, instrument) original grade rows
// for active students of the class group within the period.
func (r *GradeRepository) CountDistinctGraded(ctx context.Context, classGroupID, assignmentID, periodID string) (int, error) {
	const query = `SELECT COUNT(DISTINCT (g.student_id, g.instrument_id))
        FROM grades g
        JOIN enrollments e ON e.student_id = g.student_id AND e.class_group_id = g.class_group_id
        WHERE g.class_group_id = $1 AND g.teacher_assignment_id = $2 AND g.assessment_period_id = $3
          AND g.is_recovery = FALSE AND e.status = $4`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classGroupID, assignmentID, periodID, models.EnrollmentStatusActive); err != nil {
		return 0, fmt.Errorf("count graded students: %w", err)
	}
	return count, nil
}
