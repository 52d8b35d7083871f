package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edunet-br/sge-api/internal/models"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
)

type mockAttendanceRepo struct {
	records []models.AttendanceRecord
	counts  *models.AttendanceStatusCounts
	recent  []models.AttendanceRecord
	monthly int
}

func (m *mockAttendanceRepo) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	m.records = append(m.records, *record)
	return nil
}

func (m *mockAttendanceRepo) BulkUpsert(ctx context.Context, records []models.AttendanceRecord) error {
	m.records = append(m.records, records...)
	return nil
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	return m.records, nil
}

func (m *mockAttendanceRepo) StatusCounts(ctx context.Context, filter models.AttendanceFilter) (*models.AttendanceStatusCounts, error) {
	if m.counts != nil {
		return m.counts, nil
	}
	return &models.AttendanceStatusCounts{}, nil
}

func (m *mockAttendanceRepo) RecentByStudent(ctx context.Context, studentID, classGroupID string, limit int) ([]models.AttendanceRecord, error) {
	if limit < len(m.recent) {
		return m.recent[:limit], nil
	}
	return m.recent, nil
}

func (m *mockAttendanceRepo) CountAbsencesInMonth(ctx context.Context, studentID, classGroupID string, year int, month time.Month) (int, error) {
	return m.monthly, nil
}

type mockAttendanceConfigReader struct {
	config *models.AttendanceConfig
}

func (m *mockAttendanceConfigReader) FindBySchoolYear(ctx context.Context, schoolID, yearID string) (*models.AttendanceConfig, error) {
	if m.config == nil {
		return nil, sql.ErrNoRows
	}
	return m.config, nil
}

func newAttendanceService(records *mockAttendanceRepo, configs *mockAttendanceConfigReader) *AttendanceService {
	return NewAttendanceService(records, configs, 0, validator.New(), zap.NewNop())
}

func absences(n int) []models.AttendanceRecord {
	records := make([]models.AttendanceRecord, n)
	for i := range records {
		records[i] = models.AttendanceRecord{Status: models.AttendanceStatusAbsent}
	}
	return records
}

func TestAttendanceMarkRejectsBadDate(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, &mockAttendanceConfigReader{})

	_, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		ClassGroupID:        "cg1",
		TeacherAssignmentID: "ta1",
		StudentID:           "st1",
		Date:                "15/03/2026",
		Status:              string(models.AttendanceStatusPresent),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceMarkRejectsUnknownStatus(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, &mockAttendanceConfigReader{})

	_, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		ClassGroupID:        "cg1",
		TeacherAssignmentID: "ta1",
		StudentID:           "st1",
		Date:                "2026-03-15",
		Status:              "tardy",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceBulkMarkWritesEveryItem(t *testing.T) {
	records := &mockAttendanceRepo{}
	svc := newAttendanceService(records, &mockAttendanceConfigReader{})

	count, err := svc.BulkMark(context.Background(), BulkMarkAttendanceRequest{
		ClassGroupID:        "cg1",
		TeacherAssignmentID: "ta1",
		Date:                "2026-03-15",
		Items: []BulkAttendanceItem{
			{StudentID: "st1", Status: string(models.AttendanceStatusPresent)},
			{StudentID: "st2", Status: string(models.AttendanceStatusAbsent)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, records.records, 2)
	assert.Equal(t, "st2", records.records[1].StudentID)
	assert.Equal(t, 15, records.records[0].Date.Day())
}

func TestAttendanceFrequencyNoRecordsDefaultsToFull(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, &mockAttendanceConfigReader{})

	summary, err := svc.Frequency(context.Background(), models.AttendanceFilter{StudentID: "st1"})
	require.NoError(t, err)
	assert.Equal(t, 100.00, summary.FrequencyPercentage)
	assert.Equal(t, 0, summary.Total)
}

func TestAttendanceFrequencyCountsJustifiedAndExcused(t *testing.T) {
	records := &mockAttendanceRepo{counts: &models.AttendanceStatusCounts{
		Total:     10,
		Present:   7,
		Absent:    1,
		Justified: 1,
		Excused:   1,
	}}
	svc := newAttendanceService(records, &mockAttendanceConfigReader{})

	summary, err := svc.Frequency(context.Background(), models.AttendanceFilter{StudentID: "st1"})
	require.NoError(t, err)
	assert.Equal(t, 9, summary.Attended)
	assert.Equal(t, 90.00, summary.FrequencyPercentage)
}

func TestAttendanceAlertsMissingConfigDisablesFeature(t *testing.T) {
	records := &mockAttendanceRepo{recent: absences(10), monthly: 10}
	svc := newAttendanceService(records, &mockAttendanceConfigReader{})

	alerts, err := svc.CheckAlerts(context.Background(), "st1", "cg1", "sc1", "y1", time.Now())
	require.NoError(t, err)
	assert.Nil(t, alerts)
}

func TestAttendanceAlertsConsecutiveAtThreshold(t *testing.T) {
	records := &mockAttendanceRepo{recent: absences(5)}
	configs := &mockAttendanceConfigReader{config: &models.AttendanceConfig{ConsecutiveAbsencesAlert: 5}}
	svc := newAttendanceService(records, configs)

	alerts, err := svc.CheckAlerts(context.Background(), "st1", "cg1", "sc1", "y1", time.Now())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertTypeConsecutiveAbsences, alerts[0].Type)
	assert.Equal(t, 5, alerts[0].Current)
	assert.Equal(t, 5, alerts[0].Threshold)
}

func TestAttendanceAlertsConsecutiveBrokenByPresence(t *testing.T) {
	recent := absences(3)
	recent = append(recent, models.AttendanceRecord{Status: models.AttendanceStatusPresent})
	recent = append(recent, absences(4)...)
	records := &mockAttendanceRepo{recent: recent}
	configs := &mockAttendanceConfigReader{config: &models.AttendanceConfig{ConsecutiveAbsencesAlert: 5}}
	svc := newAttendanceService(records, configs)

	alerts, err := svc.CheckAlerts(context.Background(), "st1", "cg1", "sc1", "y1", time.Now())
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAttendanceAlertsMonthlyThreshold(t *testing.T) {
	records := &mockAttendanceRepo{monthly: 8}
	configs := &mockAttendanceConfigReader{config: &models.AttendanceConfig{MonthlyAbsencesAlert: 7}}
	svc := newAttendanceService(records, configs)

	alerts, err := svc.CheckAlerts(context.Background(), "st1", "cg1", "sc1", "y1", time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertTypeMonthlyAbsences, alerts[0].Type)
	assert.Equal(t, 8, alerts[0].Current)
	assert.Contains(t, alerts[0].Message, "March 2026")
}
