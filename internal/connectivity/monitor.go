// Package connectivity tracks whether the remote store is reachable and
// notifies subscribers on offline-to-online transitions.
package connectivity

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ProbeFunc checks reachability of the remote store. A nil error means online.
type ProbeFunc func(ctx context.Context) error

// Monitor holds the point-in-time online flag and fires edge-triggered
// callbacks at most once per offline-to-online transition.
type Monitor struct {
	probe    ProbeFunc
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	online   bool
	subs     []func()
	watchers []func(online bool)

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewMonitor creates a Monitor. The monitor assumes online until told
// otherwise; the first probe corrects the assumption.
func NewMonitor(probe ProbeFunc, interval time.Duration, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probe:    probe,
		interval: interval,
		logger:   logger,
		online:   true,
		stopCh:   make(chan struct{}),
	}
}

// IsOnline reports the current connectivity state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers a callback fired once per offline-to-online edge.
// Callbacks run on the goroutine reporting the transition and must not block.
func (m *Monitor) Subscribe(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// Watch registers a callback fired with the new state on every transition,
// both offline-to-online and online-to-offline. Callbacks run on the
// goroutine reporting the transition and must not block.
func (m *Monitor) Watch(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers = append(m.watchers, fn)
}

// SetOnline records a connectivity transition reported by the host
// environment or the prober. Subscribers fire only on the offline-to-online
// edge; watchers fire on every transition.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	wasOnline := m.online
	m.online = online
	var subs []func()
	var watchers []func(bool)
	if wasOnline != online {
		watchers = make([]func(bool), len(m.watchers))
		copy(watchers, m.watchers)
	}
	if !wasOnline && online {
		subs = make([]func(), len(m.subs))
		copy(subs, m.subs)
	}
	m.mu.Unlock()

	if wasOnline != online {
		m.logger.Info("connectivity changed",
			zap.Bool("was_online", wasOnline),
			zap.Bool("is_online", online))
	}

	for _, fn := range watchers {
		fn(online)
	}
	for _, fn := range subs {
		fn()
	}
}

// Start launches the background prober. It runs until Stop is called or the
// context is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	if m.probe == nil || m.interval <= 0 {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stopCh:
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, m.interval)
				err := m.probe(probeCtx)
				cancel()
				m.SetOnline(err == nil)
			}
		}
	}()
}

// Stop terminates the background prober and waits for it to exit.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
}
