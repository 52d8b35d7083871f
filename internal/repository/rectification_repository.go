package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edunet-br/sge-api/internal/models"
)

// RectificationRepository handles post-closure change requests.
type RectificationRepository struct {
	db *sqlx.DB
}

// NewRectificationRepository creates a new rectification repository.
func NewRectificationRepository(db *sqlx.DB) *RectificationRepository {
	return &RectificationRepository{db: db}
}

// FindByID loads one rectification.
func (r *RectificationRepository) FindByID(ctx context.Context, id string) (*models.Rectification, error) {
	const query = `SELECT id, period_closing_id, entity_type, entity_id, field, old_value, new_value,
        justification, status, requested_by, requested_at, reviewed_by, reviewed_at
        FROM rectifications WHERE id = $1`
	var rect models.Rectification
	if err := r.db.GetContext(ctx, &rect, query, id); err != nil {
		return nil, err
	}
	return &rect, nil
}

// ListByClosing returns rectifications for one period closing.
func (r *RectificationRepository) ListByClosing(ctx context.Context, closingID string) ([]models.Rectification, error) {
	const query = `SELECT id, period_closing_id, entity_type, entity_id, field, old_value, new_value,
        justification, status, requested_by, requested_at, reviewed_by, reviewed_at
        FROM rectifications WHERE period_closing_id = $1 ORDER BY requested_at DESC`
	var rects []models.Rectification
	if err := r.db.SelectContext(ctx, &rects, query, closingID); err != nil {
		return nil, fmt.Errorf("list rectifications: %w", err)
	}
	return rects, nil
}

// Create inserts a new rectification request.
func (r *RectificationRepository) Create(ctx context.Context, rect *models.Rectification) error {
	if rect.ID == "" {
		rect.ID = uuid.NewString()
	}
	const query = `INSERT INTO rectifications (id, period_closing_id, entity_type, entity_id, field, old_value,
        new_value, justification, status, requested_by, requested_at)
        VALUES (:id, :period_closing_id, :entity_type, :entity_id, :field, :old_value,
        :new_value, :justification, :status, :requested_by, :requested_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rect); err != nil {
		return fmt.Errorf("create rectification: %w", err)
	}
	return nil
}

// UpdateStatus records the review outcome.
func (r *RectificationRepository) UpdateStatus(ctx context.Context, id string, status models.RectificationStatus, reviewedBy string, reviewedAt time.Time) error {
	const query = `UPDATE rectifications SET status = $2, reviewed_by = $3, reviewed_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, reviewedBy, reviewedAt); err != nil {
		return fmt.Errorf("update rectification status: %w", err)
	}
	return nil
}
