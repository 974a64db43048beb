package usage

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Tracker records tool call outcomes. Safe for concurrent use; reads
// get deep-copied snapshots so callers can serialize without holding
// the lock.
type Tracker struct {
	mu    sync.RWMutex
	stats *Stats

	now func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		stats: NewStats(),
		now:   time.Now,
	}
}

// Record notes one tool call.
func (t *Tracker) Record(tool string, success bool, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ts := t.now().UTC()

	t.stats.TotalCalls++
	if success {
		t.stats.SuccessCount++
	} else {
		t.stats.FailureCount++
	}

	entry, ok := t.stats.Tools[tool]
	if !ok {
		entry = &ToolStats{Name: tool}
		t.stats.Tools[tool] = entry
	}
	entry.Calls++
	if success {
		entry.Success++
	} else {
		entry.Failure++
	}
	entry.TotalDurationMS += elapsed.Milliseconds()
	entry.LastUsed = ts

	dateKey := ts.Format("2006-01-02")
	daily, ok := t.stats.DailyStats[dateKey]
	if !ok {
		daily = &DailyStats{Date: dateKey}
		t.stats.DailyStats[dateKey] = daily
	}
	daily.Calls++
	if success {
		daily.Success++
	} else {
		daily.Failure++
	}

	hour := ts.Hour()
	hourly, ok := t.stats.HourlyStats[hour]
	if !ok {
		hourly = &HourlyStats{Hour: hour}
		t.stats.HourlyStats[hour] = hourly
	}
	hourly.Calls++
	if success {
		hourly.Success++
	} else {
		hourly.Failure++
	}
}

// Snapshot returns a deep copy of current statistics.
func (t *Tracker) Snapshot() *Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := &Stats{
		TotalCalls:   t.stats.TotalCalls,
		SuccessCount: t.stats.SuccessCount,
		FailureCount: t.stats.FailureCount,
		Tools:        make(map[string]*ToolStats, len(t.stats.Tools)),
		DailyStats:   make(map[string]*DailyStats, len(t.stats.DailyStats)),
		HourlyStats:  make(map[int]*HourlyStats, len(t.stats.HourlyStats)),
		StartedAt:    t.stats.StartedAt,
	}
	for k, v := range t.stats.Tools {
		copied := *v
		snapshot.Tools[k] = &copied
	}
	for k, v := range t.stats.DailyStats {
		copied := *v
		snapshot.DailyStats[k] = &copied
	}
	for k, v := range t.stats.HourlyStats {
		copied := *v
		snapshot.HourlyStats[k] = &copied
	}
	return snapshot
}

// LogSummary writes the aggregate counters to the log. The background
// runtime calls it periodically so operators get a usage pulse without
// hitting the management API.
func (t *Tracker) LogSummary() {
	t.mu.RLock()
	total := t.stats.TotalCalls
	success := t.stats.SuccessCount
	failure := t.stats.FailureCount
	tools := len(t.stats.Tools)
	t.mu.RUnlock()

	if total == 0 {
		return
	}
	log.WithFields(log.Fields{
		"total_calls": total,
		"success":     success,
		"failure":     failure,
		"tools_used":  tools,
	}).Info("tool usage summary")
}
