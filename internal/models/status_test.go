package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClosingStatusTransitions(t *testing.T) {
	cases := []struct {
		from    ClosingStatus
		to      ClosingStatus
		allowed bool
	}{
		{ClosingStatusPending, ClosingStatusInValidation, true},
		{ClosingStatusPending, ClosingStatusApproved, false},
		{ClosingStatusPending, ClosingStatusClosed, false},
		{ClosingStatusInValidation, ClosingStatusPending, true},
		{ClosingStatusInValidation, ClosingStatusApproved, true},
		{ClosingStatusInValidation, ClosingStatusClosed, false},
		{ClosingStatusApproved, ClosingStatusClosed, true},
		{ClosingStatusApproved, ClosingStatusPending, false},
		{ClosingStatusApproved, ClosingStatusInValidation, false},
		{ClosingStatusClosed, ClosingStatusPending, false},
		{ClosingStatusClosed, ClosingStatusApproved, false},
		{ClosingStatusPending, ClosingStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestPeriodStatusTransitions(t *testing.T) {
	cases := []struct {
		from    AssessmentPeriodStatus
		to      AssessmentPeriodStatus
		allowed bool
	}{
		{PeriodStatusOpen, PeriodStatusClosing, true},
		{PeriodStatusOpen, PeriodStatusClosed, false},
		{PeriodStatusClosing, PeriodStatusOpen, true},
		{PeriodStatusClosing, PeriodStatusClosed, true},
		{PeriodStatusClosed, PeriodStatusOpen, false},
		{PeriodStatusClosed, PeriodStatusClosing, false},
		{PeriodStatusOpen, PeriodStatusOpen, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestAcademicYearStatusTransitions(t *testing.T) {
	cases := []struct {
		from    AcademicYearStatus
		to      AcademicYearStatus
		allowed bool
	}{
		{AcademicYearStatusPlanning, AcademicYearStatusActive, true},
		{AcademicYearStatusPlanning, AcademicYearStatusClosing, false},
		{AcademicYearStatusActive, AcademicYearStatusClosing, true},
		{AcademicYearStatusActive, AcademicYearStatusClosed, false},
		{AcademicYearStatusClosing, AcademicYearStatusActive, true},
		{AcademicYearStatusClosing, AcademicYearStatusClosed, true},
		{AcademicYearStatusClosed, AcademicYearStatusActive, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestAttendanceStatusCountsAsPresent(t *testing.T) {
	assert.True(t, AttendanceStatusPresent.CountsAsPresent())
	assert.True(t, AttendanceStatusJustified.CountsAsPresent())
	assert.True(t, AttendanceStatusExcused.CountsAsPresent())
	assert.False(t, AttendanceStatusAbsent.CountsAsPresent())
}

func TestAttendanceStatusValid(t *testing.T) {
	assert.True(t, AttendanceStatusJustified.Valid())
	assert.False(t, AttendanceStatus("tardy").Valid())
}

func TestPeriodTypeMaxNumber(t *testing.T) {
	assert.Equal(t, 4, PeriodTypeBimestral.MaxNumber())
	assert.Equal(t, 3, PeriodTypeTrimestral.MaxNumber())
	assert.Equal(t, 2, PeriodTypeSemestral.MaxNumber())
}

func TestConceptualOrdinalOrdering(t *testing.T) {
	a, ok := ConceptualOrdinal("A")
	assert.True(t, ok)
	e, ok := ConceptualOrdinal("E")
	assert.True(t, ok)
	assert.Greater(t, a, e)

	_, ok = ConceptualOrdinal("F")
	assert.False(t, ok)
}
