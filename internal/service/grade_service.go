package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edunet-br/sge-api/internal/models"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
)

type gradeRepo interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error)
	ListForStudentPeriod(ctx context.Context, studentID, assignmentID, periodID string) ([]models.Grade, error)
	Upsert(ctx context.Context, grade *models.Grade) error
	BulkUpsert(ctx context.Context, grades []models.Grade) error
}

type assessmentConfigReader interface {
	FindByID(ctx context.Context, id string) (*models.AssessmentConfig, error)
	ListInstruments(ctx context.Context, configID string) ([]models.AssessmentInstrument, error)
}

type closingReader interface {
	FindByKeys(ctx context.Context, classGroupID, assignmentID, periodID string) (*models.PeriodClosing, error)
}

// UpsertGradeRequest represents a single grade entry payload.
type UpsertGradeRequest struct {
	StudentID           string   `json:"student_id" validate:"required"`
	ClassGroupID        string   `json:"class_group_id" validate:"required"`
	TeacherAssignmentID string   `json:"teacher_assignment_id" validate:"required"`
	AssessmentPeriodID  string   `json:"assessment_period_id" validate:"required"`
	AssessmentConfigID  string   `json:"assessment_config_id" validate:"required"`
	InstrumentID        string   `json:"instrument_id" validate:"required"`
	NumericValue        *float64 `json:"numeric_value"`
	ConceptualValue     *string  `json:"conceptual_value"`
	IsRecovery          bool     `json:"is_recovery"`
}

// StudentAverageRequest scopes an average calculation.
type StudentAverageRequest struct {
	StudentID           string `json:"student_id" validate:"required"`
	TeacherAssignmentID string `json:"teacher_assignment_id" validate:"required"`
	AssessmentPeriodID  string `json:"assessment_period_id" validate:"required"`
	AssessmentConfigID  string `json:"assessment_config_id" validate:"required"`
}

// GradeService orchestrates grade entry and average calculation.
type GradeService struct {
	grades    gradeRepo
	configs   assessmentConfigReader
	closings  closingReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(grades gradeRepo, configs assessmentConfigReader, closings closingReader, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{grades: grades, configs: configs, closings: closings, validator: validate, logger: logger}
}

// List returns grade entries.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	grades, err := s.grades.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// Upsert validates and stores a single grade entry.
func (s *GradeService) Upsert(ctx context.Context, req UpsertGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	config, err := s.configs.FindByID(ctx, req.AssessmentConfigID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "assessment config missing")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment config")
	}

	if err := s.validateValue(config, req.NumericValue, req.ConceptualValue); err != nil {
		return nil, err
	}

	if closing, err := s.closings.FindByKeys(ctx, req.ClassGroupID, req.TeacherAssignmentID, req.AssessmentPeriodID); err == nil {
		if closing.Status == models.ClosingStatusClosed {
			return nil, appErrors.Clone(appErrors.ErrClosed, "period closing already finalized for this class")
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check period closing")
	}

	grade := &models.Grade{
		StudentID:           req.StudentID,
		ClassGroupID:        req.ClassGroupID,
		TeacherAssignmentID: req.TeacherAssignmentID,
		AssessmentPeriodID:  req.AssessmentPeriodID,
		InstrumentID:        req.InstrumentID,
		NumericValue:        req.NumericValue,
		ConceptualValue:     req.ConceptualValue,
		IsRecovery:          req.IsRecovery,
	}
	if err := s.grades.Upsert(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert grade")
	}
	return grade, nil
}

// CalculateStudentAverage computes a student's period average from their
// grades, applying recovery substitution per the configured policy.
func (s *GradeService) CalculateStudentAverage(ctx context.Context, req StudentAverageRequest) (*models.StudentAverage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid average request")
	}

	config, err := s.configs.FindByID(ctx, req.AssessmentConfigID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "assessment config missing")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment config")
	}
	instruments, err := s.configs.ListInstruments(ctx, config.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instruments")
	}
	grades, err := s.grades.ListForStudentPeriod(ctx, req.StudentID, req.TeacherAssignmentID, req.AssessmentPeriodID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}

	average, recoveryApplied, graded := ComputeAverage(grades, instruments, config)

	return &models.StudentAverage{
		StudentID:          req.StudentID,
		AssessmentPeriodID: req.AssessmentPeriodID,
		Average:            average,
		Passing:            average >= config.PassingGrade,
		RecoveryApplied:    recoveryApplied,
		GradedInstruments:  graded,
	}, nil
}

// ComputeAverage applies the configured formula and recovery policy to a
// student's grade set. Returns the rounded average, whether any recovery
// grade was substituted in, and how many instruments had an original grade.
func ComputeAverage(grades []models.Grade, instruments []models.AssessmentInstrument, config *models.AssessmentConfig) (float64, bool, int) {
	weights := make(map[string]float64, len(instruments))
	for _, instrument := range instruments {
		weights[instrument.ID] = instrument.Weight
	}

	originals := make(map[string]float64)
	recoveries := make(map[string]float64)
	for _, grade := range grades {
		value, ok := gradeValue(grade)
		if !ok {
			continue
		}
		if grade.IsRecovery {
			recoveries[grade.InstrumentID] = value
		} else {
			originals[grade.InstrumentID] = value
		}
	}

	if len(originals) == 0 {
		return 0, false, 0
	}

	recoveryApplied := false
	effective := make(map[string]float64, len(originals))
	for instrumentID, original := range originals {
		value := original
		if config.RecoveryEnabled && original < config.PassingGrade {
			if recovery, ok := recoveries[instrumentID]; ok {
				value = substituteRecovery(original, recovery, config.RecoveryReplaces)
				recoveryApplied = true
			}
		}
		effective[instrumentID] = value
	}

	var average float64
	switch config.AverageFormula {
	case models.FormulaWeighted:
		var weightedSum, weightTotal float64
		for instrumentID, value := range effective {
			weight := weights[instrumentID]
			if weight == 0 {
				weight = 1
			}
			weightedSum += value * weight
			weightTotal += weight
		}
		average = weightedSum / weightTotal
	default:
		var sum float64
		for _, value := range effective {
			sum += value
		}
		average = sum / float64(len(effective))
	}

	return RoundHalfUp(average, config.RoundingPrecision), recoveryApplied, len(originals)
}

func substituteRecovery(original, recovery float64, policy models.RecoveryReplaces) float64 {
	switch policy {
	case models.RecoveryReplacesHigher:
		return math.Max(original, recovery)
	case models.RecoveryReplacesAverage:
		return (original + recovery) / 2
	case models.RecoveryReplacesLast:
		return recovery
	default:
		return original
	}
}

// RoundHalfUp rounds to the given number of decimal digits, ties rounding up.
func RoundHalfUp(value float64, precision int) float64 {
	factor := math.Pow(10, float64(precision))
	return math.Floor(value*factor+0.5) / factor
}

func gradeValue(grade models.Grade) (float64, bool) {
	if grade.NumericValue != nil {
		return *grade.NumericValue, true
	}
	if grade.ConceptualValue != nil {
		if ordinal, ok := models.ConceptualOrdinal(*grade.ConceptualValue); ok {
			return float64(ordinal), true
		}
	}
	return 0, false
}

func (s *GradeService) validateValue(config *models.AssessmentConfig, numeric *float64, conceptual *string) error {
	switch config.GradeType {
	case models.GradeTypeNumeric:
		if numeric == nil {
			return appErrors.Clone(appErrors.ErrValidation, "numeric_value required for numeric grading")
		}
		if *numeric < config.ScaleMin || *numeric > config.ScaleMax {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("numeric_value %.2f outside scale [%.2f, %.2f]", *numeric, config.ScaleMin, config.ScaleMax))
		}
	case models.GradeTypeConceptual:
		if conceptual == nil {
			return appErrors.Clone(appErrors.ErrValidation, "conceptual_value required for conceptual grading")
		}
		if _, ok := models.ConceptualOrdinal(*conceptual); !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown conceptual value %q", *conceptual))
		}
	}
	return nil
}
