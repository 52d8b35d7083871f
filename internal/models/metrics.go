package models

import "time"

// SystemMetrics is an aggregated runtime snapshot for operational dashboards.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	ClosingsFinalized        uint64    `json:"closings_finalized"`
	AlertsRaised             uint64    `json:"alerts_raised"`
	YearsClosed              uint64    `json:"years_closed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
