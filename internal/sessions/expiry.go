package sessions

import (
	"context"
	"time"
)

// Expire drops interviews idle since before now minus the idle TTL and
// returns how many were removed. A zero TTL disables expiry.
func (m *Manager) Expire(now time.Time) int {
	if m.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-m.opts.IdleTTL)

	m.mu.Lock()
	removed := 0
	for id, e := range m.interviews {
		e.mu.Lock()
		idle := e.touched.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(m.interviews, id)
			removed++
		}
	}
	n := len(m.interviews)
	m.mu.Unlock()

	if removed > 0 {
		m.metrics.SetActiveInterviews(n)
		m.logger.Info("expired idle interviews", "count", removed)
	}
	return removed
}

// Run sweeps idle interviews until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	if m.opts.IdleTTL <= 0 {
		<-ctx.Done()
		return nil
	}

	interval := m.opts.IdleTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Expire(timeNow())
		}
	}
}
