package models

import "time"

// SystemMetrics is a lightweight aggregate snapshot exposed via the API.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	AllocationRuns           uint64    `json:"allocation_runs"`
	LastRunAssigned          int       `json:"last_run_assigned"`
	LastRunUnfilledSeats     int       `json:"last_run_unfilled_seats"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
