package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordAggregates(t *testing.T) {
	tr := NewTracker()
	fixed := time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)
	tr.now = func() time.Time { return fixed }

	tr.Record("get_subscription", true, 120*time.Millisecond)
	tr.Record("get_subscription", false, 80*time.Millisecond)
	tr.Record("list_orders", true, 40*time.Millisecond)

	snap := tr.Snapshot()
	require.Equal(t, int64(3), snap.TotalCalls)
	require.Equal(t, int64(2), snap.SuccessCount)
	require.Equal(t, int64(1), snap.FailureCount)

	sub := snap.Tools["get_subscription"]
	require.NotNil(t, sub)
	require.Equal(t, int64(2), sub.Calls)
	require.Equal(t, int64(1), sub.Success)
	require.Equal(t, int64(1), sub.Failure)
	require.Equal(t, int64(200), sub.TotalDurationMS)
	require.Equal(t, fixed, sub.LastUsed)

	daily := snap.DailyStats["2024-06-01"]
	require.NotNil(t, daily)
	require.Equal(t, int64(3), daily.Calls)

	hourly := snap.HourlyStats[14]
	require.NotNil(t, hourly)
	require.Equal(t, int64(3), hourly.Calls)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	tr := NewTracker()
	tr.Record("get_customer", true, 10*time.Millisecond)

	snap := tr.Snapshot()
	snap.Tools["get_customer"].Calls = 999
	snap.TotalCalls = 999

	fresh := tr.Snapshot()
	require.Equal(t, int64(1), fresh.TotalCalls)
	require.Equal(t, int64(1), fresh.Tools["get_customer"].Calls)
}
