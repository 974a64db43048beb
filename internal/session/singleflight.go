package session

import (
	"context"
	"sync"

	"recharge-mcp-go/internal/errors"
)

// flight is one in-progress credential creation, shared by every caller
// that asked for the same customer while it ran.
type flight struct {
	done  chan struct{}
	token string
	err   error
}

type flightGroup struct {
	mu      sync.Mutex
	flights map[string]*flight
}

func newFlightGroup() *flightGroup {
	return &flightGroup{flights: make(map[string]*flight)}
}

// do runs fn at most once per key at a time. Callers arriving while a
// flight is active wait for its outcome instead of starting their own,
// so a single customer never races two creation calls. Waiters honor
// context cancellation without aborting the leader.
func (g *flightGroup) do(ctx context.Context, key string, fn func() (string, error)) (string, error) {
	g.mu.Lock()
	if f, ok := g.flights[key]; ok {
		g.mu.Unlock()
		select {
		case <-f.done:
			return f.token, f.err
		case <-ctx.Done():
			return "", errors.New(errors.KindTransport,
				"canceled while waiting for an in-flight session creation").
				WithCode("request_canceled").WithCause(ctx.Err())
		}
	}
	f := &flight{done: make(chan struct{})}
	g.flights[key] = f
	g.mu.Unlock()

	f.token, f.err = fn()

	g.mu.Lock()
	delete(g.flights, key)
	g.mu.Unlock()
	close(f.done)
	return f.token, f.err
}
