// Package usage keeps in-memory call accounting for the tool surface.
// Nothing here persists; a restart starts the counters over, matching
// the credential store's lifecycle.
package usage

import "time"

// Stats is the aggregate usage picture surfaced by the management API.
type Stats struct {
	TotalCalls   int64                  `json:"total_calls"`
	SuccessCount int64                  `json:"success_count"`
	FailureCount int64                  `json:"failure_count"`
	Tools        map[string]*ToolStats  `json:"tools"`
	DailyStats   map[string]*DailyStats `json:"daily_stats"`
	HourlyStats  map[int]*HourlyStats   `json:"hourly_stats"`
	StartedAt    time.Time              `json:"started_at"`
}

// ToolStats tracks one tool's calls.
type ToolStats struct {
	Name            string    `json:"name"`
	Calls           int64     `json:"calls"`
	Success         int64     `json:"success"`
	Failure         int64     `json:"failure"`
	TotalDurationMS int64     `json:"total_duration_ms"`
	LastUsed        time.Time `json:"last_used"`
}

// DailyStats aggregates calls per calendar day.
type DailyStats struct {
	Date    string `json:"date"`
	Calls   int64  `json:"calls"`
	Success int64  `json:"success"`
	Failure int64  `json:"failure"`
}

// HourlyStats aggregates calls per hour of day across all days.
type HourlyStats struct {
	Hour    int   `json:"hour"`
	Calls   int64 `json:"calls"`
	Success int64 `json:"success"`
	Failure int64 `json:"failure"`
}

// NewStats returns an empty statistics container.
func NewStats() *Stats {
	return &Stats{
		Tools:       make(map[string]*ToolStats),
		DailyStats:  make(map[string]*DailyStats),
		HourlyStats: make(map[int]*HourlyStats),
		StartedAt:   time.Now().UTC(),
	}
}
