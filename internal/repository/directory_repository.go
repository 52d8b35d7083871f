package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/edunet-br/sge-api/internal/models"
)

// DirectoryRepository serves lookups on schools, students and teacher
// assignments.
type DirectoryRepository struct {
	db *sqlx.DB
}

// NewDirectoryRepository creates a new directory repository.
func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// FindSchool loads one school.
func (r *DirectoryRepository) FindSchool(ctx context.Context, id string) (*models.School, error) {
	const query = `SELECT id, name, code, active, created_at, updated_at FROM schools WHERE id = $1`
	var school models.School
	if err := r.db.GetContext(ctx, &school, query, id); err != nil {
		return nil, err
	}
	return &school, nil
}

// FindTeacherAssignment loads one teacher assignment.
func (r *DirectoryRepository) FindTeacherAssignment(ctx context.Context, id string) (*models.TeacherAssignment, error) {
	const query = `SELECT id, teacher_id, class_group_id, subject, created_at, updated_at FROM teacher_assignments WHERE id = $1`
	var assignment models.TeacherAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// StudentsByIDs loads the named students keyed by ID. Unknown IDs are absent
// from the result.
func (r *DirectoryRepository) StudentsByIDs(ctx context.Context, ids []string) (map[string]models.Student, error) {
	students := make(map[string]models.Student, len(ids))
	if len(ids) == 0 {
		return students, nil
	}

	const query = `SELECT id, name, birth_date, active, created_at, updated_at FROM students WHERE id = ANY($1)`
	var rows []models.Student
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	for _, student := range rows {
		students[student.ID] = student
	}
	return students, nil
}
