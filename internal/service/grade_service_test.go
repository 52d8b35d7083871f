package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edunet-br/sge-api/internal/models"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
)

type mockGradeRepo struct {
	grades []models.Grade
	upserts int
}

func (m *mockGradeRepo) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	return m.grades, nil
}

func (m *mockGradeRepo) ListForStudentPeriod(ctx context.Context, studentID, assignmentID, periodID string) ([]models.Grade, error) {
	var out []models.Grade
	for _, g := range m.grades {
		if g.StudentID == studentID && g.TeacherAssignmentID == assignmentID && g.AssessmentPeriodID == periodID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *mockGradeRepo) Upsert(ctx context.Context, grade *models.Grade) error {
	m.upserts++
	m.grades = append(m.grades, *grade)
	return nil
}

func (m *mockGradeRepo) BulkUpsert(ctx context.Context, grades []models.Grade) error {
	m.grades = append(m.grades, grades...)
	return nil
}

type mockConfigReader struct {
	configs     map[string]*models.AssessmentConfig
	instruments map[string][]models.AssessmentInstrument
}

func (m *mockConfigReader) FindByID(ctx context.Context, id string) (*models.AssessmentConfig, error) {
	if cfg, ok := m.configs[id]; ok {
		return cfg, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockConfigReader) ListInstruments(ctx context.Context, configID string) ([]models.AssessmentInstrument, error) {
	return m.instruments[configID], nil
}

type mockClosingReader struct {
	closings map[string]*models.PeriodClosing
}

func (m *mockClosingReader) FindByKeys(ctx context.Context, classGroupID, assignmentID, periodID string) (*models.PeriodClosing, error) {
	if c, ok := m.closings[classGroupID+"/"+assignmentID+"/"+periodID]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func numericConfig() *models.AssessmentConfig {
	return &models.AssessmentConfig{
		ID:                "cfg1",
		GradeType:         models.GradeTypeNumeric,
		ScaleMin:          0,
		ScaleMax:          10,
		PassingGrade:      6,
		AverageFormula:    models.FormulaArithmetic,
		RoundingPrecision: 2,
		RecoveryEnabled:   true,
		RecoveryReplaces:  models.RecoveryReplacesHigher,
	}
}

func floatPtr(v float64) *float64 { return &v }

func newGradeService(grades *mockGradeRepo, configs *mockConfigReader, closings *mockClosingReader) *GradeService {
	if closings == nil {
		closings = &mockClosingReader{}
	}
	return NewGradeService(grades, configs, closings, validator.New(), zap.NewNop())
}

func TestGradeServiceUpsertWithinScale(t *testing.T) {
	grades := &mockGradeRepo{}
	configs := &mockConfigReader{configs: map[string]*models.AssessmentConfig{"cfg1": numericConfig()}}
	svc := newGradeService(grades, configs, nil)

	grade, err := svc.Upsert(context.Background(), UpsertGradeRequest{
		StudentID:           "st1",
		ClassGroupID:        "cg1",
		TeacherAssignmentID: "ta1",
		AssessmentPeriodID:  "p1",
		AssessmentConfigID:  "cfg1",
		InstrumentID:        "i1",
		NumericValue:        floatPtr(7.5),
	})
	require.NoError(t, err)
	assert.Equal(t, 7.5, *grade.NumericValue)
	assert.Equal(t, 1, grades.upserts)
}

func TestGradeServiceUpsertOutsideScale(t *testing.T) {
	configs := &mockConfigReader{configs: map[string]*models.AssessmentConfig{"cfg1": numericConfig()}}
	svc := newGradeService(&mockGradeRepo{}, configs, nil)

	_, err := svc.Upsert(context.Background(), UpsertGradeRequest{
		StudentID:           "st1",
		ClassGroupID:        "cg1",
		TeacherAssignmentID: "ta1",
		AssessmentPeriodID:  "p1",
		AssessmentConfigID:  "cfg1",
		InstrumentID:        "i1",
		NumericValue:        floatPtr(10.5),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceUpsertMissingConfig(t *testing.T) {
	svc := newGradeService(&mockGradeRepo{}, &mockConfigReader{}, nil)

	_, err := svc.Upsert(context.Background(), UpsertGradeRequest{
		StudentID:           "st1",
		ClassGroupID:        "cg1",
		TeacherAssignmentID: "ta1",
		AssessmentPeriodID:  "p1",
		AssessmentConfigID:  "missing",
		InstrumentID:        "i1",
		NumericValue:        floatPtr(5),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceUpsertBlockedByClosedPeriod(t *testing.T) {
	configs := &mockConfigReader{configs: map[string]*models.AssessmentConfig{"cfg1": numericConfig()}}
	closings := &mockClosingReader{closings: map[string]*models.PeriodClosing{
		"cg1/ta1/p1": {ID: "cl1", Status: models.ClosingStatusClosed},
	}}
	svc := newGradeService(&mockGradeRepo{}, configs, closings)

	_, err := svc.Upsert(context.Background(), UpsertGradeRequest{
		StudentID:           "st1",
		ClassGroupID:        "cg1",
		TeacherAssignmentID: "ta1",
		AssessmentPeriodID:  "p1",
		AssessmentConfigID:  "cfg1",
		InstrumentID:        "i1",
		NumericValue:        floatPtr(8),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrClosed.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceUpsertConceptualUnknownMark(t *testing.T) {
	cfg := numericConfig()
	cfg.GradeType = models.GradeTypeConceptual
	configs := &mockConfigReader{configs: map[string]*models.AssessmentConfig{"cfg1": cfg}}
	svc := newGradeService(&mockGradeRepo{}, configs, nil)

	value := "Z"
	_, err := svc.Upsert(context.Background(), UpsertGradeRequest{
		StudentID:           "st1",
		ClassGroupID:        "cg1",
		TeacherAssignmentID: "ta1",
		AssessmentPeriodID:  "p1",
		AssessmentConfigID:  "cfg1",
		InstrumentID:        "i1",
		ConceptualValue:     &value,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestComputeAverageArithmetic(t *testing.T) {
	cfg := numericConfig()
	grades := []models.Grade{
		{InstrumentID: "i1", NumericValue: floatPtr(8)},
		{InstrumentID: "i2", NumericValue: floatPtr(7)},
	}
	avg, recovery, graded := ComputeAverage(grades, nil, cfg)
	assert.Equal(t, 7.5, avg)
	assert.False(t, recovery)
	assert.Equal(t, 2, graded)
}

func TestComputeAverageWeighted(t *testing.T) {
	cfg := numericConfig()
	cfg.AverageFormula = models.FormulaWeighted
	instruments := []models.AssessmentInstrument{
		{ID: "i1", Weight: 3},
		{ID: "i2", Weight: 1},
	}
	grades := []models.Grade{
		{InstrumentID: "i1", NumericValue: floatPtr(8)},
		{InstrumentID: "i2", NumericValue: floatPtr(4)},
	}
	avg, _, _ := ComputeAverage(grades, instruments, cfg)
	assert.Equal(t, 7.0, avg)
}

func TestComputeAverageWeightedDefaultsMissingWeight(t *testing.T) {
	cfg := numericConfig()
	cfg.AverageFormula = models.FormulaWeighted
	grades := []models.Grade{
		{InstrumentID: "i1", NumericValue: floatPtr(6)},
		{InstrumentID: "i2", NumericValue: floatPtr(8)},
	}
	// no registered instruments: every weight falls back to 1
	avg, _, _ := ComputeAverage(grades, nil, cfg)
	assert.Equal(t, 7.0, avg)
}

func TestComputeAverageRecoveryHigherKeepsBest(t *testing.T) {
	cfg := numericConfig()
	grades := []models.Grade{
		{InstrumentID: "i1", NumericValue: floatPtr(4)},
		{InstrumentID: "i1", NumericValue: floatPtr(3), IsRecovery: true},
	}
	avg, recovery, _ := ComputeAverage(grades, nil, cfg)
	assert.Equal(t, 4.0, avg)
	assert.True(t, recovery)
}

func TestComputeAverageRecoveryAverage(t *testing.T) {
	cfg := numericConfig()
	cfg.RecoveryReplaces = models.RecoveryReplacesAverage
	grades := []models.Grade{
		{InstrumentID: "i1", NumericValue: floatPtr(4)},
		{InstrumentID: "i1", NumericValue: floatPtr(8), IsRecovery: true},
	}
	avg, recovery, _ := ComputeAverage(grades, nil, cfg)
	assert.Equal(t, 6.0, avg)
	assert.True(t, recovery)
}

func TestComputeAverageRecoveryLast(t *testing.T) {
	cfg := numericConfig()
	cfg.RecoveryReplaces = models.RecoveryReplacesLast
	grades := []models.Grade{
		{InstrumentID: "i1", NumericValue: floatPtr(5)},
		{InstrumentID: "i1", NumericValue: floatPtr(3), IsRecovery: true},
	}
	avg, recovery, _ := ComputeAverage(grades, nil, cfg)
	assert.Equal(t, 3.0, avg)
	assert.True(t, recovery)
}

func TestComputeAverageRecoveryIgnoredWhenPassing(t *testing.T) {
	cfg := numericConfig()
	grades := []models.Grade{
		{InstrumentID: "i1", NumericValue: floatPtr(7)},
		{InstrumentID: "i1", NumericValue: floatPtr(10), IsRecovery: true},
	}
	avg, recovery, _ := ComputeAverage(grades, nil, cfg)
	assert.Equal(t, 7.0, avg)
	assert.False(t, recovery)
}

func TestComputeAverageRecoveryIgnoredWhenDisabled(t *testing.T) {
	cfg := numericConfig()
	cfg.RecoveryEnabled = false
	grades := []models.Grade{
		{InstrumentID: "i1", NumericValue: floatPtr(4)},
		{InstrumentID: "i1", NumericValue: floatPtr(9), IsRecovery: true},
	}
	avg, recovery, _ := ComputeAverage(grades, nil, cfg)
	assert.Equal(t, 4.0, avg)
	assert.False(t, recovery)
}

func TestComputeAverageNoOriginals(t *testing.T) {
	cfg := numericConfig()
	grades := []models.Grade{
		{InstrumentID: "i1", NumericValue: floatPtr(5), IsRecovery: true},
	}
	avg, recovery, graded := ComputeAverage(grades, nil, cfg)
	assert.Equal(t, 0.0, avg)
	assert.False(t, recovery)
	assert.Equal(t, 0, graded)
}

func TestComputeAverageConceptualOrdinals(t *testing.T) {
	cfg := numericConfig()
	cfg.GradeType = models.GradeTypeConceptual
	a := "A"
	c := "C"
	grades := []models.Grade{
		{InstrumentID: "i1", ConceptualValue: &a},
		{InstrumentID: "i2", ConceptualValue: &c},
	}
	avg, _, graded := ComputeAverage(grades, nil, cfg)
	assert.Equal(t, 3.0, avg)
	assert.Equal(t, 2, graded)
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 7.13, RoundHalfUp(7.125, 2))
	assert.Equal(t, 7.12, RoundHalfUp(7.124, 2))
	assert.Equal(t, 7.0, RoundHalfUp(6.95, 1))
	assert.Equal(t, 5.0, RoundHalfUp(4.5, 0))
}

func TestCalculateStudentAveragePassingFlag(t *testing.T) {
	configs := &mockConfigReader{
		configs: map[string]*models.AssessmentConfig{"cfg1": numericConfig()},
		instruments: map[string][]models.AssessmentInstrument{
			"cfg1": {{ID: "i1", Weight: 1}, {ID: "i2", Weight: 1}},
		},
	}
	grades := &mockGradeRepo{grades: []models.Grade{
		{StudentID: "st1", TeacherAssignmentID: "ta1", AssessmentPeriodID: "p1", InstrumentID: "i1", NumericValue: floatPtr(5)},
		{StudentID: "st1", TeacherAssignmentID: "ta1", AssessmentPeriodID: "p1", InstrumentID: "i2", NumericValue: floatPtr(7)},
	}}
	svc := newGradeService(grades, configs, nil)

	avg, err := svc.CalculateStudentAverage(context.Background(), StudentAverageRequest{
		StudentID:           "st1",
		TeacherAssignmentID: "ta1",
		AssessmentPeriodID:  "p1",
		AssessmentConfigID:  "cfg1",
	})
	require.NoError(t, err)
	assert.Equal(t, 6.0, avg.Average)
	assert.True(t, avg.Passing)
	assert.False(t, avg.RecoveryApplied)
	assert.Equal(t, 2, avg.GradedInstruments)
}
