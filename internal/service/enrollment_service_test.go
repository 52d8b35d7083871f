package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edunet-br/sge-api/internal/models"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	enrollments map[string]*models.Enrollment
	seq         int
	reassigned  int
	transferred int
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) ListActiveByClassGroup(ctx context.Context, classGroupID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range m.enrollments {
		if e.ClassGroupID == classGroupID && e.Status == models.EnrollmentStatusActive {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) Enroll(ctx context.Context, enrollment *models.Enrollment, actor string) error {
	if m.enrollments == nil {
		m.enrollments = make(map[string]*models.Enrollment)
	}
	m.seq++
	enrollment.ID = fmt.Sprintf("e%d", m.seq)
	enrollment.Number = fmt.Sprintf("2026%06d", m.seq)
	stored := *enrollment
	m.enrollments[enrollment.ID] = &stored
	return nil
}

func (m *mockEnrollmentRepo) ReassignClassGroup(ctx context.Context, enrollmentID, toClassGroupID, actor string) error {
	m.reassigned++
	m.enrollments[enrollmentID].ClassGroupID = toClassGroupID
	return nil
}

func (m *mockEnrollmentRepo) Transfer(ctx context.Context, enrollmentID, actor string, notes *string) error {
	e, ok := m.enrollments[enrollmentID]
	if !ok || e.Status != models.EnrollmentStatusActive {
		return sql.ErrNoRows
	}
	m.transferred++
	e.Status = models.EnrollmentStatusTransferred
	return nil
}

type mockSchoolReader struct {
	schools map[string]*models.School
}

func (m *mockSchoolReader) FindSchool(ctx context.Context, id string) (*models.School, error) {
	if s, ok := m.schools[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func newEnrollmentService(repo *mockEnrollmentRepo) *EnrollmentService {
	schools := &mockSchoolReader{schools: map[string]*models.School{
		"sc1": {ID: "sc1", Name: "EM Paulo Freire", Code: "PF01", Active: true},
	}}
	return NewEnrollmentService(repo, schools, validator.New(), zap.NewNop())
}

func enrollStudent(t *testing.T, svc *EnrollmentService, studentID string) *models.Enrollment {
	t.Helper()
	enrollment, err := svc.Enroll(context.Background(), EnrollStudentRequest{
		StudentID:      studentID,
		SchoolID:       "sc1",
		AcademicYearID: "y1",
		ClassGroupID:   "cg1",
	}, "secretary1", time.Now())
	require.NoError(t, err)
	return enrollment
}

func TestEnrollAssignsNumberAndActiveStatus(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentService(repo)

	enrollment := enrollStudent(t, svc, "st1")
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.NotEmpty(t, enrollment.Number)

	second := enrollStudent(t, svc, "st2")
	assert.NotEqual(t, enrollment.Number, second.Number)
}

func TestEnrollRejectsInactiveSchool(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	schools := &mockSchoolReader{schools: map[string]*models.School{
		"sc1": {ID: "sc1", Name: "EM Paulo Freire", Code: "PF01", Active: false},
	}}
	svc := NewEnrollmentService(repo, schools, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), EnrollStudentRequest{
		StudentID:      "st1",
		SchoolID:       "sc1",
		AcademicYearID: "y1",
		ClassGroupID:   "cg1",
	}, "secretary1", time.Now())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.enrollments)
}

func TestEnrollRejectsUnknownSchool(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentService(repo)

	_, err := svc.Enroll(context.Background(), EnrollStudentRequest{
		StudentID:      "st1",
		SchoolID:       "sc9",
		AcademicYearID: "y1",
		ClassGroupID:   "cg1",
	}, "secretary1", time.Now())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReassignRejectsSameClassGroup(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentService(repo)
	enrollment := enrollStudent(t, svc, "st1")

	err := svc.Reassign(context.Background(), ReassignRequest{
		EnrollmentID: enrollment.ID,
		ClassGroupID: "cg1",
	}, "secretary1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 0, repo.reassigned)
}

func TestReassignMovesActiveEnrollment(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentService(repo)
	enrollment := enrollStudent(t, svc, "st1")

	err := svc.Reassign(context.Background(), ReassignRequest{
		EnrollmentID: enrollment.ID,
		ClassGroupID: "cg2",
	}, "secretary1")
	require.NoError(t, err)
	assert.Equal(t, "cg2", repo.enrollments[enrollment.ID].ClassGroupID)
}

func TestReassignRejectsInactiveEnrollment(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentService(repo)
	enrollment := enrollStudent(t, svc, "st1")
	repo.enrollments[enrollment.ID].Status = models.EnrollmentStatusTransferred

	err := svc.Reassign(context.Background(), ReassignRequest{
		EnrollmentID: enrollment.ID,
		ClassGroupID: "cg2",
	}, "secretary1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTransferClosesEnrollment(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentService(repo)
	enrollment := enrollStudent(t, svc, "st1")

	err := svc.Transfer(context.Background(), TransferRequest{EnrollmentID: enrollment.ID}, "secretary1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusTransferred, repo.enrollments[enrollment.ID].Status)

	// transferring again fails, the enrollment is no longer active
	err = svc.Transfer(context.Background(), TransferRequest{EnrollmentID: enrollment.ID}, "secretary1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestListActiveFiltersByStatus(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentService(repo)
	enrollStudent(t, svc, "st1")
	second := enrollStudent(t, svc, "st2")
	repo.enrollments[second.ID].Status = models.EnrollmentStatusTransferred

	active, err := svc.ListActive(context.Background(), "cg1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "st1", active[0].StudentID)
}
