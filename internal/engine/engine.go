// Package engine turns wall-clock time into task completions and
// applies their rewards to the runtime state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/idleforge/internal/catalog"
	forgeerrors "github.com/felixgeelhaar/idleforge/internal/errors"
	"github.com/felixgeelhaar/idleforge/internal/events"
	"github.com/felixgeelhaar/idleforge/internal/log"
	"github.com/felixgeelhaar/idleforge/internal/metrics"
	"github.com/felixgeelhaar/idleforge/internal/progress"
	"github.com/felixgeelhaar/idleforge/internal/state"
)

// ErrUnknownTask is returned when selecting a task id the catalog does
// not know.
var ErrUnknownTask = errors.New("unknown task")

// Config configures an Engine.
type Config struct {
	// Catalog defaults to the built-in catalog.
	Catalog *catalog.Catalog
	// State is the starting runtime state. A zero value starts fresh.
	State     state.RuntimeState
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Logger    *log.Logger
	// Clock defaults to time.Now.
	Clock     func() time.Time
	SessionID string
}

// Engine owns the runtime state. All methods are safe for concurrent
// use; events are published after the state lock is released.
type Engine struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	state   state.RuntimeState
	active  string
	last    time.Time

	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *log.Logger
	now       func() time.Time
	sessionID string
}

// New creates an engine with the idle task active.
func New(cfg Config) *Engine {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	st := cfg.State.Clone()
	if cfg.State.Stats == nil {
		st = state.New(cfg.Catalog.Stats)
	}
	if st.Job.Level < 1 {
		st.Job.Level = 1
	}

	e := &Engine{
		catalog:   cfg.Catalog,
		state:     st,
		active:    catalog.IdleTaskID,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		logger:    log.OrDiscard(cfg.Logger).WithComponent("engine"),
		now:       cfg.Clock,
		sessionID: cfg.SessionID,
	}
	e.last = e.now()
	e.ensureTaskStateLocked()
	e.metrics.SetJobLevel(e.state.Job.Level)
	return e
}

// Catalog returns the tables the engine runs against.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// ActiveTask returns the id of the selected task.
func (e *Engine) ActiveTask() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// SelectTask makes id the active task and publishes task:changed.
func (e *Engine) SelectTask(ctx context.Context, id string) error {
	e.mu.Lock()
	if !e.catalog.Tasks.Has(id) {
		e.mu.Unlock()
		return forgeerrors.Wrap(forgeerrors.ErrCodeTaskUnknown, fmt.Sprintf("cannot select %q", id), ErrUnknownTask).
			WithSuggestion("Run 'idleforge status' to list the available task ids")
	}
	e.active = id
	if task, _ := e.catalog.Tasks.Get(id); task.Kind() != catalog.KindIdle {
		if _, ok := e.state.TaskProgress[id]; !ok {
			e.state.TaskProgress[id] = progress.New()
		}
	}
	e.mu.Unlock()

	e.metrics.RecordSelection(id)
	e.logger.DebugContext(ctx, "task selected", "task", id)
	e.publish(ctx, []events.Event{{Type: events.TaskChanged, TaskID: id}})
	return nil
}

// Snapshot returns a deep copy of the runtime state.
func (e *Engine) Snapshot() state.RuntimeState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Replace swaps in a new runtime state, e.g. after a load, and
// re-aligns task progress with the catalog.
func (e *Engine) Replace(s state.RuntimeState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = s.Clone()
	e.state.Job = e.state.Job.Normalized()
	e.ensureTaskStateLocked()
	e.metrics.SetJobLevel(e.state.Job.Level)
}

// ensureTaskStateLocked keeps exactly one normalized progress record
// per non-idle task and drops records for unknown tasks.
func (e *Engine) ensureTaskStateLocked() {
	ids := e.catalog.Tasks.ProgressIDs()
	next := make(map[string]progress.TaskProgress, len(ids))
	for _, id := range ids {
		if existing, ok := e.state.TaskProgress[id]; ok {
			next[id] = existing.Normalized()
		} else {
			next[id] = progress.New()
		}
	}
	e.state.TaskProgress = next
}

func (e *Engine) publish(ctx context.Context, evts []events.Event) {
	if e.publisher == nil {
		return
	}
	for _, ev := range evts {
		ev.SessionID = e.sessionID
		e.publisher.Publish(ctx, ev)
	}
}
