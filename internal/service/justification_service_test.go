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

type mockJustificationRepo struct {
	justifications map[string]*models.AbsenceJustification
	rewritten      int64
	approvals      int
}

func (m *mockJustificationRepo) FindByID(ctx context.Context, id string) (*models.AbsenceJustification, error) {
	if j, ok := m.justifications[id]; ok {
		return j, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockJustificationRepo) Create(ctx context.Context, justification *models.AbsenceJustification) error {
	if m.justifications == nil {
		m.justifications = make(map[string]*models.AbsenceJustification)
	}
	justification.ID = "j1"
	m.justifications[justification.ID] = justification
	return nil
}

func (m *mockJustificationRepo) Approve(ctx context.Context, justification *models.AbsenceJustification, approvedBy string, approvedAt time.Time) (int64, error) {
	m.approvals++
	stored := m.justifications[justification.ID]
	stored.Approved = true
	stored.ApprovedBy = &approvedBy
	stored.ApprovedAt = &approvedAt
	return m.rewritten, nil
}

func TestJustificationCreateValidatesRange(t *testing.T) {
	svc := NewJustificationService(&mockJustificationRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateJustificationRequest{
		StudentID: "st1",
		StartDate: "2026-03-10",
		EndDate:   "2026-03-05",
		Reason:    "atestado medico",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestJustificationApproveRewritesWindow(t *testing.T) {
	repo := &mockJustificationRepo{rewritten: 3}
	svc := NewJustificationService(repo, validator.New(), zap.NewNop())

	created, err := svc.Create(context.Background(), CreateJustificationRequest{
		StudentID: "st1",
		StartDate: "2026-03-05",
		EndDate:   "2026-03-10",
		Reason:    "atestado medico",
	})
	require.NoError(t, err)

	result, err := svc.Approve(context.Background(), created.ID, "user1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.RewrittenRecords)
	assert.True(t, result.Justification.Approved)
	require.NotNil(t, result.Justification.ApprovedBy)
	assert.Equal(t, "user1", *result.Justification.ApprovedBy)
}

func TestJustificationApproveIsNotRepeatable(t *testing.T) {
	repo := &mockJustificationRepo{rewritten: 2}
	svc := NewJustificationService(repo, validator.New(), zap.NewNop())

	created, err := svc.Create(context.Background(), CreateJustificationRequest{
		StudentID: "st1",
		StartDate: "2026-03-05",
		EndDate:   "2026-03-10",
		Reason:    "atestado medico",
	})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), created.ID, "user1", time.Now())
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), created.ID, "user2", time.Now())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 1, repo.approvals)
}

func TestJustificationApproveUnknownID(t *testing.T) {
	svc := NewJustificationService(&mockJustificationRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Approve(context.Background(), "missing", "user1", time.Now())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
