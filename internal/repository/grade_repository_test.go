package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/edunet-br/sge-api/internal/models"
)

func TestGradeRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO grades")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	value := 7.5
	grade := &models.Grade{
		StudentID:           "st1",
		ClassGroupID:        "cg1",
		TeacherAssignmentID: "ta1",
		AssessmentPeriodID:  "p1",
		InstrumentID:        "i1",
		NumericValue:        &value,
	}
	require.NoError(t, repo.Upsert(context.Background(), grade))
	require.NotEmpty(t, grade.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryCountDistinctGraded(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT (g.student_id, g.instrument_id))")).
		WithArgs("cg1", "ta1", "p1", models.EnrollmentStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(60))

	count, err := repo.CountDistinctGraded(context.Background(), "cg1", "ta1", "p1")
	require.NoError(t, err)
	require.Equal(t, 60, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListForStudentPeriod(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "class_group_id", "teacher_assignment_id", "assessment_period_id", "instrument_id", "numeric_value", "conceptual_value", "is_recovery", "created_at", "updated_at"})
	mock.ExpectQuery("FROM grades").
		WithArgs("st1", "ta1", "p1").
		WillReturnRows(rows)

	grades, err := repo.ListForStudentPeriod(context.Background(), "st1", "ta1", "p1")
	require.NoError(t, err)
	require.Empty(t, grades)
	require.NoError(t, mock.ExpectationsWereMet())
}
