package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edunet-br/sge-api/internal/models"
)

// JustificationRepository handles absence justification persistence.
type JustificationRepository struct {
	db *sqlx.DB
}

// NewJustificationRepository creates a new justification repository.
func NewJustificationRepository(db *sqlx.DB) *JustificationRepository {
	return &JustificationRepository{db: db}
}

// FindByID loads one justification.
func (r *JustificationRepository) FindByID(ctx context.Context, id string) (*models.AbsenceJustification, error) {
	const query = `SELECT id, student_id, start_date, end_date, reason, approved, approved_by, approved_at, created_at
        FROM absence_justifications WHERE id = $1`
	var justification models.AbsenceJustification
	if err := r.db.GetContext(ctx, &justification, query, id); err != nil {
		return nil, err
	}
	return &justification, nil
}

// Create inserts a new justification request.
func (r *JustificationRepository) Create(ctx context.Context, justification *models.AbsenceJustification) error {
	if justification.ID == "" {
		justification.ID = uuid.NewString()
	}
	justification.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO absence_justifications (id, student_id, start_date, end_date, reason, approved, created_at)
        VALUES (:id, :student_id, :start_date, :end_date, :reason, :approved, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, justification); err != nil {
		return fmt.Errorf("create justification: %w", err)
	}
	return nil
}

// Approve marks the justification approved and rewrites the student's absent
// records inside the window to justified, atomically. Returns the number of
// rewritten attendance rows.
func (r *JustificationRepository) Approve(ctx context.Context, justification *models.AbsenceJustification, approvedBy string, approvedAt time.Time) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}

	const approveQuery = `UPDATE absence_justifications
        SET approved = TRUE, approved_by = $2, approved_at = $3
        WHERE id = $1 AND approved = FALSE`
	res, err := tx.ExecContext(ctx, approveQuery, justification.ID, approvedBy, approvedAt)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("approve justification: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		_ = tx.Rollback()
		return 0, fmt.Errorf("justification %s already approved", justification.ID)
	}

	const rewriteQuery = `UPDATE attendance_records
        SET status = $1, updated_at = $2
        WHERE student_id = $3 AND status = $4 AND date BETWEEN $5 AND $6`
	res, err = tx.ExecContext(ctx, rewriteQuery,
		models.AttendanceStatusJustified, approvedAt,
		justification.StudentID, models.AttendanceStatusAbsent,
		justification.StartDate, justification.EndDate)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("rewrite absences: %w", err)
	}
	rewritten, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return rewritten, nil
}
