package dto

import "time"

// SystemMetrics is a JSON snapshot of the in-process counters behind /metrics.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	SchedulerRuns            uint64    `json:"schedulerRuns"`
	LastRunDurationMs        float64   `json:"lastRunDurationMs"`
	LastRunAssignments       int       `json:"lastRunAssignments"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
