package engine

import (
	"context"
	"time"
)

// DefaultTickInterval is the period of the real-time loop.
const DefaultTickInterval = 100 * time.Millisecond

// Tick advances the active task by the wall-clock time since the
// previous tick.
func (e *Engine) Tick(ctx context.Context, now time.Time) []Completion {
	e.mu.Lock()
	delta := now.Sub(e.last).Seconds()
	e.last = now
	completions, evts := e.advanceLocked(delta)
	e.mu.Unlock()

	e.publish(ctx, evts)
	return completions
}

// Run ticks every interval until ctx is done.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	e.mu.Lock()
	e.last = e.now()
	e.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.DebugContext(ctx, "progression loop started", "interval", interval)
	for {
		select {
		case <-ticker.C:
			for _, c := range e.Tick(ctx, e.now()) {
				e.logger.DebugContext(ctx, "task completed", "task", c.TaskID, "level", c.Level)
			}
		case <-ctx.Done():
			e.logger.DebugContext(ctx, "progression loop stopped")
			return ctx.Err()
		}
	}
}
