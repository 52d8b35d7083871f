package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestDirectoryRepositoryFindSchool(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDirectoryRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "code", "active", "created_at", "updated_at"}).
		AddRow("sc1", "EM Paulo Freire", "PF01", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM schools WHERE id = $1")).
		WithArgs("sc1").
		WillReturnRows(rows)

	school, err := repo.FindSchool(context.Background(), "sc1")
	require.NoError(t, err)
	require.Equal(t, "EM Paulo Freire", school.Name)
	require.True(t, school.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryRepositoryFindTeacherAssignmentMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDirectoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM teacher_assignments WHERE id = $1")).
		WithArgs("ta9").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindTeacherAssignment(context.Background(), "ta9")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryRepositoryStudentsByIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDirectoryRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "birth_date", "active", "created_at", "updated_at"}).
		AddRow("st1", "Ana Souza", time.Now(), true, time.Now(), time.Now()).
		AddRow("st2", "Bruno Lima", time.Now(), true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = ANY($1)")).
		WithArgs(pq.Array([]string{"st1", "st2"})).
		WillReturnRows(rows)

	students, err := repo.StudentsByIDs(context.Background(), []string{"st1", "st2"})
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.Equal(t, "Ana Souza", students["st1"].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryRepositoryStudentsByIDsEmptySkipsQuery(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDirectoryRepository(db)

	students, err := repo.StudentsByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, students)
	require.NoError(t, mock.ExpectationsWereMet())
}
