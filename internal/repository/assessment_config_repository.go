package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edunet-br/sge-api/internal/models"
)

// AssessmentConfigRepository reads grading policy configuration.
type AssessmentConfigRepository struct {
	db *sqlx.DB
}

// NewAssessmentConfigRepository creates a new assessment config repository.
func NewAssessmentConfigRepository(db *sqlx.DB) *AssessmentConfigRepository {
	return &AssessmentConfigRepository{db: db}
}

// FindByID loads one config without its instruments.
func (r *AssessmentConfigRepository) FindByID(ctx context.Context, id string) (*models.AssessmentConfig, error) {
	const query = `SELECT id, school_id, academic_year_id, grade_level, grade_type, scale_min, scale_max,
        passing_grade, average_formula, rounding_precision, recovery_enabled, recovery_replaces, created_at, updated_at
        FROM assessment_configs WHERE id = $1`
	var cfg models.AssessmentConfig
	if err := r.db.GetContext(ctx, &cfg, query, id); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindByScope loads the config for (school, academic year, grade level).
func (r *AssessmentConfigRepository) FindByScope(ctx context.Context, schoolID, yearID, gradeLevel string) (*models.AssessmentConfig, error) {
	const query = `SELECT id, school_id, academic_year_id, grade_level, grade_type, scale_min, scale_max,
        passing_grade, average_formula, rounding_precision, recovery_enabled, recovery_replaces, created_at, updated_at
        FROM assessment_configs WHERE school_id = $1 AND academic_year_id = $2 AND grade_level = $3`
	var cfg models.AssessmentConfig
	if err := r.db.GetContext(ctx, &cfg, query, schoolID, yearID, gradeLevel); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ListInstruments returns the instruments configured under one config.
func (r *AssessmentConfigRepository) ListInstruments(ctx context.Context, configID string) ([]models.AssessmentInstrument, error) {
	const query = `SELECT id, assessment_config_id, name, weight, created_at
        FROM assessment_instruments WHERE assessment_config_id = $1 ORDER BY name ASC`
	var instruments []models.AssessmentInstrument
	if err := r.db.SelectContext(ctx, &instruments, query, configID); err != nil {
		return nil, fmt.Errorf("list assessment instruments: %w", err)
	}
	return instruments, nil
}

// CountInstruments counts instruments under one config.
func (r *AssessmentConfigRepository) CountInstruments(ctx context.Context, configID string) (int, error) {
	const query = `SELECT COUNT(*) FROM assessment_instruments WHERE assessment_config_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, configID); err != nil {
		return 0, fmt.Errorf("count assessment instruments: %w", err)
	}
	return count, nil
}
