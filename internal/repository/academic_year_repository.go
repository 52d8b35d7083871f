package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edunet-br/sge-api/internal/models"
)

// AcademicYearRepository handles academic year persistence.
type AcademicYearRepository struct {
	db *sqlx.DB
}

// NewAcademicYearRepository creates a new academic year repository.
func NewAcademicYearRepository(db *sqlx.DB) *AcademicYearRepository {
	return &AcademicYearRepository{db: db}
}

// FindByID loads one academic year.
func (r *AcademicYearRepository) FindByID(ctx context.Context, id string) (*models.AcademicYear, error) {
	const query = `SELECT id, school_id, year, start_date, end_date, status, closed_at, closed_by, created_at, updated_at
        FROM academic_years WHERE id = $1`
	var year models.AcademicYear
	if err := r.db.GetContext(ctx, &year, query, id); err != nil {
		return nil, err
	}
	return &year, nil
}

// ListBySchool returns the years for one school, newest first.
func (r *AcademicYearRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.AcademicYear, error) {
	const query = `SELECT id, school_id, year, start_date, end_date, status, closed_at, closed_by, created_at, updated_at
        FROM academic_years WHERE school_id = $1 ORDER BY year DESC`
	var years []models.AcademicYear
	if err := r.db.SelectContext(ctx, &years, query, schoolID); err != nil {
		return nil, fmt.Errorf("list academic years: %w", err)
	}
	return years, nil
}

// UpdateStatus moves a year to a new status, stamping closure fields when closing.
func (r *AcademicYearRepository) UpdateStatus(ctx context.Context, id string, status models.AcademicYearStatus, closedBy *string, closedAt *time.Time) error {
	const query = `UPDATE academic_years
        SET status = $2, closed_by = $3, closed_at = $4, updated_at = $5
        WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, closedBy, closedAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("update academic year status: %w", err)
	}
	return nil
}

// CountOpenClosings counts period closings for the year's class groups that
// have not reached closed status.
func (r *AcademicYearRepository) CountOpenClosings(ctx context.Context, yearID string) (int, error) {
	const query = `SELECT COUNT(*)
        FROM period_closings pc
        JOIN class_groups cg ON cg.id = pc.class_group_id
        WHERE cg.academic_year_id = $1 AND pc.status <> $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, yearID, models.ClosingStatusClosed); err != nil {
		return 0, fmt.Errorf("count open closings: %w", err)
	}
	return count, nil
}
