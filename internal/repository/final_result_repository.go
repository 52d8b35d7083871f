package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edunet-br/sge-api/internal/models"
)

// FinalResultRepository handles final result record persistence.
type FinalResultRepository struct {
	db *sqlx.DB
}

// NewFinalResultRepository creates a new final result repository.
func NewFinalResultRepository(db *sqlx.DB) *FinalResultRepository {
	return &FinalResultRepository{db: db}
}

// Upsert inserts or updates the final result for (student, class group, year).
func (r *FinalResultRepository) Upsert(ctx context.Context, record *models.FinalResultRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	const query = `INSERT INTO final_result_records (id, student_id, class_group_id, academic_year_id, result,
        overall_average, overall_frequency, council_override, recorded_by, created_at, updated_at)
        VALUES (:id, :student_id, :class_group_id, :academic_year_id, :result,
        :overall_average, :overall_frequency, :council_override, :recorded_by, :created_at, :updated_at)
        ON CONFLICT (student_id, class_group_id, academic_year_id)
        DO UPDATE SET result = EXCLUDED.result, overall_average = EXCLUDED.overall_average,
        overall_frequency = EXCLUDED.overall_frequency, council_override = EXCLUDED.council_override,
        recorded_by = EXCLUDED.recorded_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert final result: %w", err)
	}
	return nil
}

// ListByYear returns all results recorded for one academic year.
func (r *FinalResultRepository) ListByYear(ctx context.Context, yearID string) ([]models.FinalResultRecord, error) {
	const query = `SELECT id, student_id, class_group_id, academic_year_id, result, overall_average,
        overall_frequency, council_override, recorded_by, created_at, updated_at
        FROM final_result_records WHERE academic_year_id = $1`
	var records []models.FinalResultRecord
	if err := r.db.SelectContext(ctx, &records, query, yearID); err != nil {
		return nil, fmt.Errorf("list final results: %w", err)
	}
	return records, nil
}

// CountActiveStudentsMissing counts active enrollments of the year whose
// student has no final result record yet.
func (r *FinalResultRepository) CountActiveStudentsMissing(ctx context.Context, yearID string) (int, error) {
	const query = `SELECT COUNT(*)
        FROM enrollments e
        WHERE e.academic_year_id = $1 AND e.status = $2
          AND NOT EXISTS (
            SELECT 1 FROM final_result_records fr
            WHERE fr.student_id = e.student_id AND fr.academic_year_id = e.academic_year_id)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, yearID, models.EnrollmentStatusActive); err != nil {
		return 0, fmt.Errorf("count students missing results: %w", err)
	}
	return count, nil
}
