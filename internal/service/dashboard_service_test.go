package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edunet-br/sge-api/internal/models"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
)

type memoryCacheRepo struct {
	entries map[string][]byte
	deleted []string
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) Delete(ctx context.Context, key string) {
	delete(m.entries, key)
	m.deleted = append(m.deleted, key)
}

type mockDashboardEnrollments struct {
	enrollments []models.Enrollment
	calls       int
}

func (m *mockDashboardEnrollments) ListActiveByClassGroup(ctx context.Context, classGroupID string) ([]models.Enrollment, error) {
	m.calls++
	return m.enrollments, nil
}

type mockFrequencyCalculator struct {
	byStudent map[string]float64
}

func (m *mockFrequencyCalculator) Frequency(ctx context.Context, filter models.AttendanceFilter) (*models.FrequencySummary, error) {
	return &models.FrequencySummary{
		StudentID:           filter.StudentID,
		FrequencyPercentage: m.byStudent[filter.StudentID],
	}, nil
}

type mockAverageCalculator struct {
	byStudent map[string]models.StudentAverage
}

func (m *mockAverageCalculator) CalculateStudentAverage(ctx context.Context, req StudentAverageRequest) (*models.StudentAverage, error) {
	avg := m.byStudent[req.StudentID]
	avg.StudentID = req.StudentID
	return &avg, nil
}

type mockClassDirectory struct {
	students    map[string]models.Student
	assignments map[string]*models.TeacherAssignment
}

func (m *mockClassDirectory) StudentsByIDs(ctx context.Context, ids []string) (map[string]models.Student, error) {
	out := make(map[string]models.Student, len(ids))
	for _, id := range ids {
		if student, ok := m.students[id]; ok {
			out[id] = student
		}
	}
	return out, nil
}

func (m *mockClassDirectory) FindTeacherAssignment(ctx context.Context, id string) (*models.TeacherAssignment, error) {
	if assignment, ok := m.assignments[id]; ok {
		copied := *assignment
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func dashboardFixture(cache *CacheService) (*DashboardService, *mockDashboardEnrollments) {
	enrollments := &mockDashboardEnrollments{enrollments: []models.Enrollment{
		{StudentID: "st1", Number: "2026000001", ClassGroupID: "cg1", Status: models.EnrollmentStatusActive},
		{StudentID: "st2", Number: "2026000002", ClassGroupID: "cg1", Status: models.EnrollmentStatusActive},
	}}
	periods := &mockPeriodReader{periods: map[string]*models.AssessmentPeriod{
		"p1": {
			ID:        "p1",
			StartDate: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC),
		},
	}}
	frequency := &mockFrequencyCalculator{byStudent: map[string]float64{"st1": 95.00, "st2": 85.00}}
	averages := &mockAverageCalculator{byStudent: map[string]models.StudentAverage{
		"st1": {Average: 8.0, Passing: true, GradedInstruments: 3},
		"st2": {Average: 5.0, Passing: false, GradedInstruments: 3, RecoveryApplied: true},
	}}
	directory := &mockClassDirectory{
		students: map[string]models.Student{
			"st1": {ID: "st1", Name: "Ana Souza", Active: true},
			"st2": {ID: "st2", Name: "Bruno Lima", Active: true},
		},
		assignments: map[string]*models.TeacherAssignment{
			"ta1": {ID: "ta1", TeacherID: "t1", ClassGroupID: "cg1", Subject: "Matematica"},
		},
	}
	svc := NewDashboardService(enrollments, periods, frequency, averages, directory, cache, validator.New(), zap.NewNop(), time.Minute)
	return svc, enrollments
}

func dashboardRequest() ClassGroupDashboardRequest {
	return ClassGroupDashboardRequest{
		ClassGroupID:        "cg1",
		TeacherAssignmentID: "ta1",
		AssessmentPeriodID:  "p1",
		AssessmentConfigID:  "cfg1",
	}
}

func TestDashboardComposesClassSnapshot(t *testing.T) {
	svc, _ := dashboardFixture(nil)

	snapshot, cached, err := svc.ClassGroup(context.Background(), dashboardRequest())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, snapshot.ActiveStudents)
	assert.Equal(t, 90.00, snapshot.AverageFrequency)
	assert.Equal(t, 6.50, snapshot.AverageGrade)
	assert.Equal(t, 1, snapshot.PassingCount)
	assert.Equal(t, "Matematica", snapshot.Subject)
	require.Len(t, snapshot.Students, 2)
	assert.Equal(t, "2026000001", snapshot.Students[0].EnrollmentNumber)
	assert.Equal(t, "Ana Souza", snapshot.Students[0].StudentName)
	assert.True(t, snapshot.Students[1].RecoveryApplied)
}

func TestDashboardRejectsUnknownTeacherAssignment(t *testing.T) {
	svc, _ := dashboardFixture(nil)

	req := dashboardRequest()
	req.TeacherAssignmentID = "ta9"
	_, _, err := svc.ClassGroup(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDashboardServesSecondCallFromCache(t *testing.T) {
	cache := NewCacheService(&memoryCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc, enrollments := dashboardFixture(cache)

	_, cached, err := svc.ClassGroup(context.Background(), dashboardRequest())
	require.NoError(t, err)
	assert.False(t, cached)

	snapshot, cached, err := svc.ClassGroup(context.Background(), dashboardRequest())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 2, snapshot.ActiveStudents)
	assert.Equal(t, 1, enrollments.calls)
}

func TestDashboardInvalidateDropsSnapshot(t *testing.T) {
	repo := &memoryCacheRepo{}
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	svc, enrollments := dashboardFixture(cache)

	_, _, err := svc.ClassGroup(context.Background(), dashboardRequest())
	require.NoError(t, err)

	svc.Invalidate(context.Background(), "cg1", "ta1", "p1")
	require.Len(t, repo.deleted, 1)

	_, cached, err := svc.ClassGroup(context.Background(), dashboardRequest())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, enrollments.calls)
}

func TestDashboardRequestValidation(t *testing.T) {
	svc, _ := dashboardFixture(nil)

	_, _, err := svc.ClassGroup(context.Background(), ClassGroupDashboardRequest{ClassGroupID: "cg1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
