package models

import "time"

// SystemMetrics is the aggregated snapshot returned by the status endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	ScheduleRunsTotal        uint64    `json:"schedule_runs_total"`
	UnassignedSlotsTotal     uint64    `json:"unassigned_slots_total"`
	SkippedSlotsTotal        uint64    `json:"skipped_slots_total"`
	ReplacementLookupsTotal  uint64    `json:"replacement_lookups_total"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
