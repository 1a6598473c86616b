// Package connectivity tracks whether the primary persistence backend is
// reachable and signals offline-to-online transitions so queued work can be
// synced.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Prober checks backend reachability.
type Prober interface {
	Probe(ctx context.Context) error
}

// PoolProber probes a pgx connection pool.
type PoolProber struct {
	Pool *pgxpool.Pool
}

func (p PoolProber) Probe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return p.Pool.Ping(probeCtx)
}

// Monitor polls a Prober and exposes the current online state plus a
// recovery signal fired on every offline-to-online transition.
type Monitor struct {
	prober   Prober
	interval time.Duration
	log      zerolog.Logger

	mu     sync.Mutex
	online bool
	subs   []chan struct{}
}

// NewMonitor creates a Monitor that assumes it is online until the first
// probe says otherwise.
func NewMonitor(prober Prober, interval time.Duration, log zerolog.Logger) *Monitor {
	return &Monitor{
		prober:   prober,
		interval: interval,
		online:   true,
		log:      log.With().Str("component", "connectivity_monitor").Logger(),
	}
}

// Online reports the last observed connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Recovered returns a channel that receives a signal whenever connectivity
// transitions from offline to online.
func (m *Monitor) Recovered() <-chan struct{} {
	ch := make(chan struct{}, 1)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// Start runs the probe loop until ctx is cancelled. Call in a goroutine.
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	err := m.prober.Probe(ctx)

	m.mu.Lock()
	wasOnline := m.online
	m.online = err == nil
	recovered := !wasOnline && m.online
	subs := m.subs
	m.mu.Unlock()

	switch {
	case wasOnline && err != nil:
		m.log.Warn().Err(err).Msg("Backend unreachable, entering offline mode")
	case recovered:
		m.log.Info().Msg("Backend reachable again")
		for _, ch := range subs {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

// SetOnline overrides the observed state. Intended for tests.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online = online
}
