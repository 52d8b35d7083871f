package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edunet-br/sge-api/internal/models"
)

// EnrollmentRepository handles enrollment persistence and movement logging.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `id, number, student_id, school_id, academic_year_id, class_group_id, status, enrolled_at, left_at, created_at, updated_at`

// FindByID loads one enrollment.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListActiveByClassGroup returns active enrollments for a class group.
func (r *EnrollmentRepository) ListActiveByClassGroup(ctx context.Context, classGroupID string) ([]models.Enrollment, error) {
	const query = `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE class_group_id = $1 AND status = $2`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, classGroupID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list active enrollments: %w", err)
	}
	return enrollments, nil
}

// CountActiveByClassGroup counts active enrollments for a class group.
func (r *EnrollmentRepository) CountActiveByClassGroup(ctx context.Context, classGroupID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE class_group_id = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classGroupID, models.EnrollmentStatusActive); err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return count, nil
}

// Enroll creates a new enrollment with a generated number and logs the
// movement, all in one transaction. The sequence row of (school, year) is
// locked while computing the next number so concurrent enrollments never
// reuse a sequence.
func (r *EnrollmentRepository) Enroll(ctx context.Context, enrollment *models.Enrollment, actor string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	year, err := academicYearNumber(ctx, tx, enrollment.AcademicYearID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	sequence, err := nextEnrollmentSequence(ctx, tx, enrollment.SchoolID, enrollment.AcademicYearID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	enrollment.Number = fmt.Sprintf("%d-%06d", year, sequence)

	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now
	const insertQuery = `INSERT INTO enrollments (id, number, student_id, school_id, academic_year_id, class_group_id, status, enrolled_at, created_at, updated_at)
        VALUES (:id, :number, :student_id, :school_id, :academic_year_id, :class_group_id, :status, :enrolled_at, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, enrollment); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert enrollment: %w", err)
	}

	if err := insertMovement(ctx, tx, &models.EnrollmentMovement{
		EnrollmentID: enrollment.ID,
		Type:         models.MovementEnrolled,
		ToClassGroup: &enrollment.ClassGroupID,
		RecordedBy:   actor,
		RecordedAt:   now,
	}); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// ReassignClassGroup moves the enrollment to another class group and logs the movement.
func (r *EnrollmentRepository) ReassignClassGroup(ctx context.Context, enrollmentID, toClassGroupID, actor string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	var fromClassGroup string
	if err := tx.GetContext(ctx, &fromClassGroup, `SELECT class_group_id FROM enrollments WHERE id = $1`, enrollmentID); err != nil {
		_ = tx.Rollback()
		return err
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `UPDATE enrollments SET class_group_id = $2, updated_at = $3 WHERE id = $1`, enrollmentID, toClassGroupID, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("reassign enrollment: %w", err)
	}

	if err := insertMovement(ctx, tx, &models.EnrollmentMovement{
		EnrollmentID:   enrollmentID,
		Type:           models.MovementReassigned,
		FromClassGroup: &fromClassGroup,
		ToClassGroup:   &toClassGroupID,
		RecordedBy:     actor,
		RecordedAt:     now,
	}); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Transfer closes the enrollment out of its school and logs the movement.
func (r *EnrollmentRepository) Transfer(ctx context.Context, enrollmentID, actor string, notes *string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	const query = `UPDATE enrollments SET status = $2, left_at = $3, updated_at = $3 WHERE id = $1 AND status = $4`
	res, err := tx.ExecContext(ctx, query, enrollmentID, models.EnrollmentStatusTransferred, now, models.EnrollmentStatusActive)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("transfer enrollment: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		_ = tx.Rollback()
		return sql.ErrNoRows
	}

	if err := insertMovement(ctx, tx, &models.EnrollmentMovement{
		EnrollmentID: enrollmentID,
		Type:         models.MovementTransferred,
		Notes:        notes,
		RecordedBy:   actor,
		RecordedAt:   now,
	}); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// academicYearNumber resolves the calendar year that prefixes enrollment
// numbers. Year IDs are opaque, so the prefix always comes from the year
// column.
func academicYearNumber(ctx context.Context, tx *sqlx.Tx, yearID string) (int, error) {
	const query = `SELECT year FROM academic_years WHERE id = $1`
	var year int
	if err := tx.GetContext(ctx, &year, query, yearID); err != nil {
		return 0, fmt.Errorf("resolve academic year: %w", err)
	}
	return year, nil
}

// nextEnrollmentSequence locks the (school, year) sequence row and returns
// max(sequence)+1. A missing row starts the sequence at 1.
func nextEnrollmentSequence(ctx context.Context, tx *sqlx.Tx, schoolID, yearID string) (int, error) {
	const lockQuery = `SELECT sequence FROM enrollment_sequences
        WHERE school_id = $1 AND academic_year_id = $2 FOR UPDATE`
	var current int
	err := tx.GetContext(ctx, &current, lockQuery, schoolID, yearID)
	if err == sql.ErrNoRows {
		const insertQuery = `INSERT INTO enrollment_sequences (school_id, academic_year_id, sequence) VALUES ($1, $2, 1)`
		if _, err := tx.ExecContext(ctx, insertQuery, schoolID, yearID); err != nil {
			return 0, fmt.Errorf("seed enrollment sequence: %w", err)
		}
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("lock enrollment sequence: %w", err)
	}

	next := current + 1
	const updateQuery = `UPDATE enrollment_sequences SET sequence = $3
        WHERE school_id = $1 AND academic_year_id = $2`
	if _, err := tx.ExecContext(ctx, updateQuery, schoolID, yearID, next); err != nil {
		return 0, fmt.Errorf("advance enrollment sequence: %w", err)
	}
	return next, nil
}

func insertMovement(ctx context.Context, tx *sqlx.Tx, movement *models.EnrollmentMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.NewString()
	}
	const query = `INSERT INTO enrollment_movements (id, enrollment_id, type, from_class_group, to_class_group, notes, recorded_by, recorded_at)
        VALUES (:id, :enrollment_id, :type, :from_class_group, :to_class_group, :notes, :recorded_by, :recorded_at)`
	if _, err := tx.NamedExecContext(ctx, query, movement); err != nil {
		return fmt.Errorf("insert enrollment movement: %w", err)
	}
	return nil
}
