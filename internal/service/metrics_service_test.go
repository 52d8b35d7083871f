package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edunet-br/sge-api/internal/models"
)

func TestMetricsSnapshotAggregatesDomainCounters(t *testing.T) {
	svc := NewMetricsService()

	svc.RecordClosingFinalized()
	svc.RecordClosingFinalized()
	svc.RecordAlertRaised(models.AlertTypeConsecutiveAbsences)
	svc.RecordYearClosed()
	svc.ObserveHTTPRequest(http.MethodGet, "/api/v1/turmas", http.StatusOK, 20*time.Millisecond)

	snapshot := svc.Snapshot()
	assert.Equal(t, uint64(2), snapshot.ClosingsFinalized)
	assert.Equal(t, uint64(1), snapshot.AlertsRaised)
	assert.Equal(t, uint64(1), snapshot.YearsClosed)
	assert.Equal(t, uint64(1), snapshot.RequestsTotal)
	assert.Equal(t, 20.0, snapshot.AverageRequestDurationMs)
}

func TestMetricsHandlerExposesRegisteredCollectors(t *testing.T) {
	svc := NewMetricsService()
	svc.RecordClosingFinalized()
	svc.RecordAlertRaised(models.AlertTypeMonthlyAbsences)

	recorder := httptest.NewRecorder()
	svc.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	assert.Contains(t, body, "period_closings_finalized_total 1")
	assert.Contains(t, body, `attendance_alerts_raised_total{type="monthly_absences"} 1`)
}
