package save

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	forgeerrors "github.com/felixgeelhaar/idleforge/internal/errors"
	"github.com/felixgeelhaar/idleforge/internal/events"
	"github.com/felixgeelhaar/idleforge/internal/log"
	"github.com/felixgeelhaar/idleforge/internal/metrics"
	"github.com/felixgeelhaar/idleforge/internal/state"
	"github.com/felixgeelhaar/idleforge/internal/storage"
	"github.com/felixgeelhaar/idleforge/internal/telemetry"
)

// DefaultInterval is the autosave period when none is configured.
const DefaultInterval = 30 * time.Second

// Save triggers, used as the metrics label.
const (
	TriggerInterval = "interval"
	TriggerEvent    = "event"
	TriggerManual   = "manual"
	TriggerStop     = "stop"
)

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// GetRuntimeState returns the state to persist. Required.
	GetRuntimeState func() state.RuntimeState
	// Subscriber delivers task events that trigger an immediate save.
	// Optional.
	Subscriber events.Subscriber
	// Interval between autosaves (default: 30s).
	Interval time.Duration
	// Store is the key-value store. A nil store disables persistence.
	Store   storage.KeyValueStore
	Codec   Codec
	Logger  *log.Logger
	Metrics *metrics.Metrics
}

// Service saves on a timer and on task events.
type Service struct {
	getState func() state.RuntimeState
	bus      events.Subscriber
	interval time.Duration
	store    storage.KeyValueStore
	codec    Codec
	logger   *log.Logger
	metrics  *metrics.Metrics

	mu          sync.Mutex
	running     bool
	trigger     chan struct{}
	stopChan    chan struct{}
	done        chan struct{}
	unsubscribe []func()

	// finalPending marks a loop that ended with its context; the next
	// Stop writes the final save.
	finalPending bool

	lastSaveAt  time.Time
	lastSaveErr error
}

// NewService creates a save service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.GetRuntimeState == nil {
		return nil, fmt.Errorf("runtime state getter is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Codec.stats == nil {
		cfg.Codec = NewCodec(nil)
	}

	return &Service{
		getState: cfg.GetRuntimeState,
		bus:      cfg.Subscriber,
		interval: cfg.Interval,
		store:    cfg.Store,
		codec:    cfg.Codec,
		logger:   log.OrDiscard(cfg.Logger).WithComponent("save"),
		metrics:  cfg.Metrics,
	}, nil
}

// Start begins autosaving in a background goroutine. Calling Start on
// a running service does nothing. When ctx ends the service stops on
// its own and may be started again.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.finalPending = false
	s.trigger = make(chan struct{}, 1)
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})

	if s.bus != nil {
		for _, et := range events.TaskEvents() {
			s.unsubscribe = append(s.unsubscribe, s.bus.Subscribe(et, s.onTaskEvent))
		}
	}

	s.logger.Debug("starting autosave", "interval", s.interval)
	go s.loop(ctx, s.trigger, s.stopChan, s.done)
}

// onTaskEvent requests a save without blocking the publisher.
func (s *Service) onTaskEvent(_ context.Context, _ events.Event) {
	s.mu.Lock()
	trigger := s.trigger
	s.mu.Unlock()

	if trigger == nil {
		return
	}
	select {
	case trigger <- struct{}{}:
	default:
	}
}

func (s *Service) loop(ctx context.Context, trigger, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.persist(ctx, TriggerInterval)
		case <-trigger:
			s.persist(ctx, TriggerEvent)
		case <-stop:
			return
		case <-ctx.Done():
			s.detach(done)
			return
		}
	}
}

// detach releases the loop identified by done after its context ended.
// It does nothing when Stop or a newer Start already took over.
func (s *Service) detach(done chan<- struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.done != done {
		return
	}
	s.running = false
	s.finalPending = true
	for _, unsub := range s.unsubscribe {
		unsub()
	}
	s.unsubscribe = nil
	s.trigger = nil
	s.logger.Debug("autosave stopped by context")
}

// Stop halts autosave, waits for the loop to exit and writes a final
// save. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		final := s.finalPending
		s.finalPending = false
		s.mu.Unlock()
		if final {
			s.persist(context.Background(), TriggerStop)
		}
		return
	}
	s.running = false
	s.finalPending = false
	for _, unsub := range s.unsubscribe {
		unsub()
	}
	s.unsubscribe = nil
	stop, done := s.stopChan, s.done
	s.trigger = nil
	s.mu.Unlock()

	close(stop)
	<-done

	s.persist(context.Background(), TriggerStop)
}

// Interval returns the autosave interval.
func (s *Service) Interval() time.Duration {
	return s.interval
}

// LastSave returns the time of the last successful save, zero before
// the first one, and the error of the most recent attempt.
func (s *Service) LastSave() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaveAt, s.lastSaveErr
}

// SaveNow persists the current state immediately. It returns false
// when no store is configured.
func (s *Service) SaveNow(ctx context.Context) (bool, error) {
	return s.persist(ctx, TriggerManual)
}

// Load reads the stored state, falling back to defaults.
func (s *Service) Load(ctx context.Context) (state.RuntimeState, LoadOutcome) {
	ctx, span := telemetry.StartSpan(ctx, "save", "load")
	defer span.End()

	st, outcome := Load(ctx, s.store, s.codec)
	s.metrics.RecordLoad(string(outcome))
	span.SetAttributes(attribute.String("outcome", string(outcome)))

	switch outcome {
	case OutcomeCorrupt, OutcomeMissingMigration:
		s.logger.WithError(forgeerrors.New(forgeerrors.ErrCodeSaveCorrupt, "stored save could not be read")).
			WarnContext(ctx, "save discarded, starting fresh", "outcome", outcome)
	case OutcomeUnsupportedVersion:
		s.logger.WithError(forgeerrors.New(forgeerrors.ErrCodeSaveVersion, "stored save version is not supported")).
			WarnContext(ctx, "save discarded, starting fresh", "outcome", outcome)
	case OutcomeUnavailable:
		s.logger.WarnContext(ctx, "save storage unavailable, starting fresh")
	default:
		s.logger.DebugContext(ctx, "save loaded", "outcome", outcome)
	}
	return st, outcome
}

func (s *Service) persist(ctx context.Context, trigger string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "save", "persist", attribute.String("trigger", trigger))
	start := time.Now()

	ok, err := Save(ctx, s.store, s.codec, s.getState())
	s.metrics.RecordSave(trigger, err == nil && ok, time.Since(start))
	telemetry.End(span, err)

	s.mu.Lock()
	s.lastSaveErr = err
	if ok {
		s.lastSaveAt = time.Now()
	}
	s.mu.Unlock()

	if err != nil {
		wrapped := forgeerrors.Wrap(forgeerrors.ErrCodeSaveUnavailable, "autosave failed", err)
		s.logger.LogErrorContext(ctx, "save failed", wrapped)
		s.metrics.RecordError(string(wrapped.Code), "save")
		return false, wrapped
	}
	if ok {
		s.logger.DebugContext(ctx, "game saved", "trigger", trigger)
	}
	return ok, nil
}
