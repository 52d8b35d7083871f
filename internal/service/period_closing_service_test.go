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

type mockClosingRepo struct {
	closings map[string]*models.PeriodClosing
	seq      int
}

func (m *mockClosingRepo) FindByID(ctx context.Context, id string) (*models.PeriodClosing, error) {
	if c, ok := m.closings[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClosingRepo) FindByKeys(ctx context.Context, classGroupID, assignmentID, periodID string) (*models.PeriodClosing, error) {
	for _, c := range m.closings {
		if c.ClassGroupID == classGroupID && c.TeacherAssignmentID == assignmentID && c.AssessmentPeriodID == periodID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockClosingRepo) List(ctx context.Context, filter models.PeriodClosingFilter) ([]models.PeriodClosing, error) {
	var out []models.PeriodClosing
	for _, c := range m.closings {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockClosingRepo) Create(ctx context.Context, closing *models.PeriodClosing) error {
	if m.closings == nil {
		m.closings = make(map[string]*models.PeriodClosing)
	}
	m.seq++
	closing.ID = fmt.Sprintf("cl%d", m.seq)
	stored := *closing
	m.closings[closing.ID] = &stored
	return nil
}

func (m *mockClosingRepo) Update(ctx context.Context, closing *models.PeriodClosing) error {
	stored := *closing
	m.closings[closing.ID] = &stored
	return nil
}

type mockPeriodReader struct {
	periods map[string]*models.AssessmentPeriod
}

func (m *mockPeriodReader) FindByID(ctx context.Context, id string) (*models.AssessmentPeriod, error) {
	if p, ok := m.periods[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

type mockCompleteness struct {
	result CompletenessResult
	err    error
}

func (m *mockCompleteness) Evaluate(ctx context.Context, keys CompletenessKeys) (*CompletenessResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := m.result
	return &result, nil
}

func newClosingService(repo *mockClosingRepo, completeness *mockCompleteness) *PeriodClosingService {
	periods := &mockPeriodReader{periods: map[string]*models.AssessmentPeriod{
		"p1": {
			ID:        "p1",
			StartDate: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC),
		},
	}}
	if completeness == nil {
		completeness = &mockCompleteness{result: CompletenessResult{Grades: true, Attendance: true, LessonRecords: true}}
	}
	return NewPeriodClosingService(repo, periods, completeness, validator.New(), zap.NewNop())
}

func openTestClosing(t *testing.T, svc *PeriodClosingService) *models.PeriodClosing {
	t.Helper()
	closing, err := svc.Open(context.Background(), OpenClosingRequest{
		ClassGroupID:        "cg1",
		TeacherAssignmentID: "ta1",
		AssessmentPeriodID:  "p1",
	})
	require.NoError(t, err)
	return closing
}

func TestClosingOpenRejectsDuplicateScope(t *testing.T) {
	repo := &mockClosingRepo{}
	svc := newClosingService(repo, nil)
	openTestClosing(t, svc)

	_, err := svc.Open(context.Background(), OpenClosingRequest{
		ClassGroupID:        "cg1",
		TeacherAssignmentID: "ta1",
		AssessmentPeriodID:  "p1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestClosingSubmitPersistsCompletenessFlags(t *testing.T) {
	repo := &mockClosingRepo{}
	completeness := &mockCompleteness{result: CompletenessResult{Grades: true, Attendance: false, LessonRecords: true}}
	svc := newClosingService(repo, completeness)
	closing := openTestClosing(t, svc)

	submitted, err := svc.Submit(context.Background(), SubmitClosingRequest{
		ClosingID:          closing.ID,
		AssessmentConfigID: "cfg1",
	}, "teacher1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.ClosingStatusInValidation, submitted.Status)
	assert.True(t, submitted.GradesComplete)
	assert.False(t, submitted.AttendanceComplete)
	assert.True(t, submitted.LessonRecordsComplete)
	require.NotNil(t, submitted.SubmittedBy)
	assert.Equal(t, "teacher1", *submitted.SubmittedBy)
}

func TestClosingSubmitTwiceFails(t *testing.T) {
	repo := &mockClosingRepo{}
	svc := newClosingService(repo, nil)
	closing := openTestClosing(t, svc)

	req := SubmitClosingRequest{ClosingID: closing.ID, AssessmentConfigID: "cfg1"}
	_, err := svc.Submit(context.Background(), req, "teacher1", time.Now())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), req, "teacher1", time.Now())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTransition.Code, appErrors.FromError(err).Code)
}

func TestClosingRejectReturnsToPendingWithReason(t *testing.T) {
	repo := &mockClosingRepo{}
	svc := newClosingService(repo, nil)
	closing := openTestClosing(t, svc)

	_, err := svc.Submit(context.Background(), SubmitClosingRequest{ClosingID: closing.ID, AssessmentConfigID: "cfg1"}, "teacher1", time.Now())
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), RejectClosingRequest{
		ClosingID: closing.ID,
		Reason:    "notas da turma B incompletas",
	}, "coord1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.ClosingStatusPending, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "notas da turma B incompletas", *rejected.RejectionReason)

	// a rejected closing can be resubmitted
	resubmitted, err := svc.Submit(context.Background(), SubmitClosingRequest{ClosingID: closing.ID, AssessmentConfigID: "cfg1"}, "teacher1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.ClosingStatusInValidation, resubmitted.Status)
	assert.Nil(t, resubmitted.RejectionReason)
}

func TestClosingRejectRequiresReason(t *testing.T) {
	repo := &mockClosingRepo{}
	svc := newClosingService(repo, nil)
	closing := openTestClosing(t, svc)

	_, err := svc.Reject(context.Background(), RejectClosingRequest{ClosingID: closing.ID}, "coord1", time.Now())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClosingFullLifecycle(t *testing.T) {
	repo := &mockClosingRepo{}
	svc := newClosingService(repo, nil)
	closing := openTestClosing(t, svc)
	now := time.Now()

	_, err := svc.Submit(context.Background(), SubmitClosingRequest{ClosingID: closing.ID, AssessmentConfigID: "cfg1"}, "teacher1", now)
	require.NoError(t, err)

	validated, err := svc.Validate(context.Background(), closing.ID, "coord1", now)
	require.NoError(t, err)
	assert.Equal(t, models.ClosingStatusApproved, validated.Status)

	finalized, err := svc.Finalize(context.Background(), closing.ID, "coord1", now)
	require.NoError(t, err)
	assert.Equal(t, models.ClosingStatusClosed, finalized.Status)
	require.NotNil(t, finalized.ClosedAt)

	// closed is terminal
	_, err = svc.Finalize(context.Background(), closing.ID, "coord1", now)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTransition.Code, appErrors.FromError(err).Code)
}

func TestClosingFinalizeRequiresApproval(t *testing.T) {
	repo := &mockClosingRepo{}
	svc := newClosingService(repo, nil)
	closing := openTestClosing(t, svc)

	_, err := svc.Finalize(context.Background(), closing.ID, "coord1", time.Now())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTransition.Code, appErrors.FromError(err).Code)
}

func TestClosingValidateUnknownID(t *testing.T) {
	svc := newClosingService(&mockClosingRepo{}, nil)

	_, err := svc.Validate(context.Background(), "missing", "coord1", time.Now())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
