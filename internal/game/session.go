package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/idleforge/internal/engine"
	"github.com/felixgeelhaar/idleforge/internal/equipment"
	"github.com/felixgeelhaar/idleforge/internal/events"
	"github.com/felixgeelhaar/idleforge/internal/log"
	"github.com/felixgeelhaar/idleforge/internal/metrics"
	"github.com/felixgeelhaar/idleforge/internal/save"
	"github.com/felixgeelhaar/idleforge/internal/storage"
)

// Options configures a Session.
type Options struct {
	// PacksDir holds one sub-directory per content pack. Empty means
	// built-in content.
	PacksDir    string
	ActivePacks []string
	// EquipmentFile is a flat JSON array of equipment definitions.
	// Empty means the merged pack equipment.
	EquipmentFile    string
	Store            storage.KeyValueStore
	TickInterval     time.Duration
	AutosaveInterval time.Duration
	Logger           *log.Logger
	Metrics          *metrics.Metrics
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Session is one running game: content, engine and autosave sharing a
// bus.
type Session struct {
	ID          string
	Content     ContentResult
	Equipment   equipment.LoadResult
	LoadOutcome save.LoadOutcome

	Engine *engine.Engine
	Saver  *save.Service
	Bus    *events.Bus

	tickInterval time.Duration
	logger       *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSession loads content, equipment and the stored save and builds
// the engine and save service. Content and save problems fall back to
// defaults; NewSession only fails on programming errors.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	id := uuid.NewString()
	logger := log.OrDiscard(opts.Logger).With("session_id", id)

	s := &Session{
		ID:           id,
		Bus:          events.NewBus(),
		tickInterval: opts.TickInterval,
		logger:       logger,
	}

	s.Content = LoadContent(ctx, opts.PacksDir, opts.ActivePacks, opts.Metrics, logger)
	s.Equipment = LoadEquipment(ctx, opts.EquipmentFile, s.Content.Merged, opts.Metrics, logger)

	s.Engine = engine.New(engine.Config{
		Catalog:   s.Content.Catalog,
		Publisher: s.Bus,
		Metrics:   opts.Metrics,
		Logger:    logger,
		Clock:     opts.Clock,
		SessionID: id,
	})

	saver, err := save.NewService(save.ServiceConfig{
		GetRuntimeState: s.Engine.Snapshot,
		Subscriber:      s.Bus,
		Interval:        opts.AutosaveInterval,
		Store:           opts.Store,
		Codec:           save.NewCodec(s.Content.Catalog.Stats),
		Logger:          logger,
		Metrics:         opts.Metrics,
	})
	if err != nil {
		return nil, err
	}
	s.Saver = saver

	loaded, outcome := saver.Load(ctx)
	s.Engine.Replace(loaded)
	s.LoadOutcome = outcome

	logger.InfoContext(ctx, "session ready",
		"save", outcome,
		"builtin_content", s.Content.UsingDefaults(),
		"equipment", len(s.Equipment.Definitions),
		"subscriptions", s.Bus.Count(),
	)
	return s, nil
}

// Start runs the progression loop and autosave until Stop or until
// ctx is done.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)

	s.Saver.Start(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Engine.Run(ctx, s.tickInterval); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			s.logger.LogError("progression loop stopped", err)
		}
	}()
}

// Stop halts the loop, stops autosave and writes a final save.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.Saver.Stop()
	s.logger.Info("session stopped")
}

// EquipmentView resolves owned and equipped items against the loaded
// equipment.
func (s *Session) EquipmentView() equipment.ViewModel {
	st := s.Engine.Snapshot()
	return equipment.BuildViewModel(s.Equipment.Definitions, st.OwnedEquipmentIDs, st.EquippedBySlot)
}
