package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"recharge-mcp-go/internal/errors"
	"recharge-mcp-go/internal/events"
	"recharge-mcp-go/internal/store"
)

type stubCreator struct {
	mu    sync.Mutex
	calls int
	fn    func(call int) (string, error)
}

func (s *stubCreator) CreateCustomerSession(_ context.Context, _ string) (string, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()
	return s.fn(n)
}

func (s *stubCreator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// recordSleeps replaces the manager's wait with an instant recorder.
func recordSleeps(m *Manager) *[]time.Duration {
	var waits []time.Duration
	m.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return &waits
}

func TestObtainReturnsCachedToken(t *testing.T) {
	st := store.New()
	require.NoError(t, st.Put("42", "tok_cached_123456", ""))
	creator := &stubCreator{fn: func(int) (string, error) {
		return "tok_fresh_1234567", nil
	}}
	m := NewManager(Options{Store: st, Creator: creator})

	tok, err := m.Obtain(context.Background(), "42", "")
	require.NoError(t, err)
	require.Equal(t, "tok_cached_123456", tok)
	require.Equal(t, 0, creator.callCount())
}

func TestObtainMintsAndCaches(t *testing.T) {
	st := store.New()
	creator := &stubCreator{fn: func(int) (string, error) {
		return "tok_fresh_1234567", nil
	}}
	m := NewManager(Options{Store: st, Creator: creator})
	recordSleeps(m)

	tok, err := m.Obtain(context.Background(), "42", "a@b.com")
	require.NoError(t, err)
	require.Equal(t, "tok_fresh_1234567", tok)

	cached, ok := st.Get("42")
	require.True(t, ok)
	require.Equal(t, tok, cached)

	id, ok := st.CustomerIDByEmail("a@b.com")
	require.True(t, ok)
	require.Equal(t, "42", id)
}

func TestObtainEvictsCachedPlaceholder(t *testing.T) {
	st := store.New()
	// The store accepts any non-empty token; only the manager screens
	// with the predicate, so a placeholder can be seeded directly.
	require.NoError(t, st.Put("42", "your_token_here", ""))
	creator := &stubCreator{fn: func(int) (string, error) {
		return "tok_fresh_1234567", nil
	}}
	m := NewManager(Options{Store: st, Creator: creator})
	recordSleeps(m)

	tok, err := m.Obtain(context.Background(), "42", "")
	require.NoError(t, err)
	require.Equal(t, "tok_fresh_1234567", tok)
	require.Equal(t, 1, creator.callCount())
}

func TestObtainStaleTokenFailsAfterThreeAttempts(t *testing.T) {
	st := store.New()
	require.NoError(t, st.Put("42", "tok_stale_1234567", ""))
	st.Invalidate("42", "tok_stale_1234567")

	creator := &stubCreator{fn: func(int) (string, error) {
		return "tok_stale_1234567", nil
	}}
	m := NewManager(Options{Store: st, Creator: creator})
	waits := recordSleeps(m)

	_, err := m.Obtain(context.Background(), "42", "")
	require.Error(t, err)
	require.Equal(t, 3, creator.callCount())

	de, ok := errors.AsDomain(err)
	require.True(t, ok)
	require.Equal(t, "stale_session_token", de.Code)
	require.Contains(t, de.Message, "stale")
	require.Contains(t, de.Message, "3 attempts")

	// Stale reads wait attempt*1s between tries.
	require.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *waits)

	_, cached := st.Get("42")
	require.False(t, cached)
}

func TestObtainRetriesCreationFailuresWithBackoff(t *testing.T) {
	st := store.New()
	creator := &stubCreator{fn: func(call int) (string, error) {
		if call < 3 {
			return "", fmt.Errorf("upstream hiccup %d", call)
		}
		return "tok_third_1234567", nil
	}}
	m := NewManager(Options{Store: st, Creator: creator})
	waits := recordSleeps(m)

	tok, err := m.Obtain(context.Background(), "42", "")
	require.NoError(t, err)
	require.Equal(t, "tok_third_1234567", tok)
	require.Equal(t, 3, creator.callCount())
	require.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *waits)
}

func TestObtainExhaustionWrapsLastError(t *testing.T) {
	st := store.New()
	creator := &stubCreator{fn: func(int) (string, error) {
		return "", errors.New(errors.KindAPI, "boom").WithStatus(500)
	}}
	m := NewManager(Options{Store: st, Creator: creator})
	recordSleeps(m)

	_, err := m.Obtain(context.Background(), "42", "")
	require.Error(t, err)

	de, ok := errors.AsDomain(err)
	require.True(t, ok)
	require.Equal(t, errors.KindAPI, de.Kind)
	require.Equal(t, 500, de.StatusCode)
	require.Contains(t, de.Message, "after 3 attempts")
	require.Contains(t, de.Message, "boom")
}

func TestObtainInvalidMintedTokenFails(t *testing.T) {
	st := store.New()
	creator := &stubCreator{fn: func(int) (string, error) {
		return "short", nil
	}}
	m := NewManager(Options{Store: st, Creator: creator})
	recordSleeps(m)

	_, err := m.Obtain(context.Background(), "42", "")
	require.Error(t, err)
	require.True(t, errors.IsKind(err, errors.KindInvalidCredential))
	require.Equal(t, 3, creator.callCount())
	require.False(t, st.HasAnyEntries())
}

func TestObtainCanceledDuringBackoff(t *testing.T) {
	st := store.New()
	creator := &stubCreator{fn: func(int) (string, error) {
		return "", fmt.Errorf("upstream down")
	}}
	m := NewManager(Options{Store: st, Creator: creator})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Obtain(ctx, "42", "")
	require.Error(t, err)
	require.True(t, errors.IsKind(err, errors.KindTransport))
	require.Equal(t, 1, creator.callCount())
}

func TestObtainSingleFlightSharesCreation(t *testing.T) {
	st := store.New()
	release := make(chan struct{})
	creator := &stubCreator{fn: func(int) (string, error) {
		<-release
		return "tok_shared_123456", nil
	}}
	m := NewManager(Options{Store: st, Creator: creator})
	recordSleeps(m)

	const workers = 4
	tokens := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = m.Obtain(context.Background(), "42", "")
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, "tok_shared_123456", tokens[i])
	}
	require.Equal(t, 1, creator.callCount())
}

func TestObtainPublishesSessionCreated(t *testing.T) {
	st := store.New()
	hub := events.NewHub()
	var (
		mu  sync.Mutex
		got []events.Event
	)
	hub.Subscribe(events.TopicSessionCreated, func(_ context.Context, e events.Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})
	creator := &stubCreator{fn: func(int) (string, error) {
		return "tok_fresh_1234567", nil
	}}
	m := NewManager(Options{Store: st, Creator: creator, Publisher: hub})
	recordSleeps(m)

	_, err := m.Obtain(context.Background(), "42", "")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	payload, ok := got[0].Payload.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "42", payload["customer_id"])
	// No token field may ever ride on a published event.
	_, leaked := payload["token"]
	require.False(t, leaked)
}
