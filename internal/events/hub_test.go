package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHubPublishReachesSubscribers(t *testing.T) {
	hub := NewHub()
	got := make([]Event, 0, 2)

	unsub := hub.Subscribe(TopicSessionCreated, func(_ context.Context, ev Event) {
		got = append(got, ev)
	})
	defer unsub()

	hub.Publish(context.Background(), TopicSessionCreated, map[string]string{"customer_id": "42"}, nil)
	require.Len(t, got, 1)
	require.Equal(t, TopicSessionCreated, got[0].Topic)
	require.False(t, got[0].Timestamp.IsZero())
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	count := 0

	unsub := hub.Subscribe(TopicCredentialsPurged, func(_ context.Context, _ Event) { count++ })
	hub.Publish(context.Background(), TopicCredentialsPurged, nil, nil)
	unsub()
	hub.Publish(context.Background(), TopicCredentialsPurged, nil, nil)

	require.Equal(t, 1, count)
}

func TestHubTopicsAreIsolated(t *testing.T) {
	hub := NewHub()
	count := 0

	hub.Subscribe(TopicSessionCreated, func(_ context.Context, _ Event) { count++ })
	hub.Publish(context.Background(), TopicCredentialInvalidated, nil, nil)

	require.Zero(t, count)
}
