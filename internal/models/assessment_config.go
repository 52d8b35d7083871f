package models

import "time"

// GradeType distinguishes numeric scores from conceptual marks.
type GradeType string

const (
	GradeTypeNumeric    GradeType = "numeric"
	GradeTypeConceptual GradeType = "conceptual"
)

// AverageFormula selects how the period average is computed.
type AverageFormula string

const (
	FormulaArithmetic AverageFormula = "arithmetic"
	FormulaWeighted   AverageFormula = "weighted"
)

// Valid returns true when the formula is a supported value.
func (f AverageFormula) Valid() bool {
	return f == FormulaArithmetic || f == FormulaWeighted
}

// RecoveryReplaces selects how a recovery grade combines with the original.
type RecoveryReplaces string

const (
	RecoveryReplacesHigher  RecoveryReplaces = "higher"
	RecoveryReplacesAverage RecoveryReplaces = "average"
	RecoveryReplacesLast    RecoveryReplaces = "last"
)

// Valid returns true when the policy is a supported value.
func (r RecoveryReplaces) Valid() bool {
	return r == RecoveryReplacesHigher || r == RecoveryReplacesAverage || r == RecoveryReplacesLast
}

// conceptualScale maps conceptual marks to their ordinal position,
// lowest first. Only the ordering matters for comparisons.
var conceptualScale = map[string]int{
	"E": 0,
	"D": 1,
	"C": 2,
	"B": 3,
	"A": 4,
}

// ConceptualOrdinal returns the ordinal of a conceptual mark and whether it is known.
func ConceptualOrdinal(value string) (int, bool) {
	ord, ok := conceptualScale[value]
	return ord, ok
}

// AssessmentConfig holds per school/year/grade-level grading policy.
type AssessmentConfig struct {
	ID                string           `db:"id" json:"id"`
	SchoolID          string           `db:"school_id" json:"school_id"`
	AcademicYearID    string           `db:"academic_year_id" json:"academic_year_id"`
	GradeLevel        string           `db:"grade_level" json:"grade_level"`
	GradeType         GradeType        `db:"grade_type" json:"grade_type"`
	ScaleMin          float64          `db:"scale_min" json:"scale_min"`
	ScaleMax          float64          `db:"scale_max" json:"scale_max"`
	PassingGrade      float64          `db:"passing_grade" json:"passing_grade"`
	AverageFormula    AverageFormula   `db:"average_formula" json:"average_formula"`
	RoundingPrecision int              `db:"rounding_precision" json:"rounding_precision"`
	RecoveryEnabled   bool             `db:"recovery_enabled" json:"recovery_enabled"`
	RecoveryReplaces  RecoveryReplaces `db:"recovery_replaces" json:"recovery_replaces"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
	Instruments       []AssessmentInstrument `json:"instruments,omitempty"`
}

// AssessmentInstrument is one graded activity under a config (test, project, ...).
type AssessmentInstrument struct {
	ID                 string    `db:"id" json:"id"`
	AssessmentConfigID string    `db:"assessment_config_id" json:"assessment_config_id"`
	Name               string    `db:"name" json:"name"`
	Weight             float64   `db:"weight" json:"weight"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}
