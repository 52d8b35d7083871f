package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/edunet-br/sge-api/internal/models"
)

// AttendanceConfigRepository reads attendance alert thresholds.
type AttendanceConfigRepository struct {
	db *sqlx.DB
}

// NewAttendanceConfigRepository creates a new attendance config repository.
func NewAttendanceConfigRepository(db *sqlx.DB) *AttendanceConfigRepository {
	return &AttendanceConfigRepository{db: db}
}

// FindBySchoolYear loads the config for a school and academic year.
// Callers treat sql.ErrNoRows as "alerts disabled".
func (r *AttendanceConfigRepository) FindBySchoolYear(ctx context.Context, schoolID, yearID string) (*models.AttendanceConfig, error) {
	const query = `SELECT id, school_id, academic_year_id, consecutive_absences_alert, monthly_absences_alert,
        period_absence_percentage_alert, annual_minimum_frequency, created_at, updated_at
        FROM attendance_configs WHERE school_id = $1 AND academic_year_id = $2`
	var cfg models.AttendanceConfig
	if err := r.db.GetContext(ctx, &cfg, query, schoolID, yearID); err != nil {
		return nil, err
	}
	return &cfg, nil
}
