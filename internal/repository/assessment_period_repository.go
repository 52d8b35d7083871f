package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edunet-br/sge-api/internal/models"
)

// AssessmentPeriodRepository handles assessment period persistence.
type AssessmentPeriodRepository struct {
	db *sqlx.DB
}

// NewAssessmentPeriodRepository creates a new assessment period repository.
func NewAssessmentPeriodRepository(db *sqlx.DB) *AssessmentPeriodRepository {
	return &AssessmentPeriodRepository{db: db}
}

// FindByID loads one assessment period.
func (r *AssessmentPeriodRepository) FindByID(ctx context.Context, id string) (*models.AssessmentPeriod, error) {
	const query = `SELECT id, academic_year_id, type, number, start_date, end_date, status, created_at, updated_at
        FROM assessment_periods WHERE id = $1`
	var period models.AssessmentPeriod
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		return nil, err
	}
	return &period, nil
}

// List returns assessment periods matching the filter.
func (r *AssessmentPeriodRepository) List(ctx context.Context, filter models.AssessmentPeriodFilter) ([]models.AssessmentPeriod, error) {
	query := `SELECT id, academic_year_id, type, number, start_date, end_date, status, created_at, updated_at
        FROM assessment_periods WHERE 1=1`
	var args []interface{}
	if filter.AcademicYearID != "" {
		query += fmt.Sprintf(" AND academic_year_id = $%d", len(args)+1)
		args = append(args, filter.AcademicYearID)
	}
	if filter.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", len(args)+1)
		args = append(args, *filter.Type)
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, *filter.Status)
	}
	query += " ORDER BY number ASC"
	var periods []models.AssessmentPeriod
	if err := r.db.SelectContext(ctx, &periods, query, args...); err != nil {
		return nil, fmt.Errorf("list assessment periods: %w", err)
	}
	return periods, nil
}

// ExistsByYearTypeNumber reports whether a period with the same natural key exists.
func (r *AssessmentPeriodRepository) ExistsByYearTypeNumber(ctx context.Context, yearID string, periodType models.AssessmentPeriodType, number int, excludeID string) (bool, error) {
	const query = `SELECT EXISTS (
        SELECT 1 FROM assessment_periods
        WHERE academic_year_id = $1 AND type = $2 AND number = $3 AND id <> $4)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, yearID, periodType, number, excludeID); err != nil {
		return false, fmt.Errorf("check assessment period uniqueness: %w", err)
	}
	return exists, nil
}

// Create inserts a new assessment period.
func (r *AssessmentPeriodRepository) Create(ctx context.Context, period *models.AssessmentPeriod) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	period.CreatedAt = now
	period.UpdatedAt = now
	const query = `INSERT INTO assessment_periods (id, academic_year_id, type, number, start_date, end_date, status, created_at, updated_at)
        VALUES (:id, :academic_year_id, :type, :number, :start_date, :end_date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("create assessment period: %w", err)
	}
	return nil
}

// Update persists mutable fields of an assessment period.
func (r *AssessmentPeriodRepository) Update(ctx context.Context, period *models.AssessmentPeriod) error {
	period.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assessment_periods
        SET number = :number, start_date = :start_date, end_date = :end_date, status = :status, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("update assessment period: %w", err)
	}
	return nil
}
