package cmd

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	forgeerrors "github.com/felixgeelhaar/idleforge/internal/errors"
	"github.com/felixgeelhaar/idleforge/internal/log"
	"github.com/felixgeelhaar/idleforge/internal/metrics"
	"github.com/felixgeelhaar/idleforge/internal/save"
	"github.com/felixgeelhaar/idleforge/internal/storage"
	"github.com/felixgeelhaar/idleforge/internal/telemetry"
	"github.com/felixgeelhaar/idleforge/internal/version"
)

const telemetryShutdownTimeout = 5 * time.Second

// runtime is what a command needs besides its own flags: logging,
// metrics and tracing configured from the command context.
type runtime struct {
	*CommandContext

	Logger   *log.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
}

// setupRuntime configures logging, metrics and optional telemetry.
// The returned cleanup function should be deferred by the caller.
func setupRuntime(ctx context.Context, cc *CommandContext) (*runtime, func()) {
	cfg := cc.Config
	info := version.GetInfo(save.CurrentVersion)

	logCfg := log.FromSettings(cfg.Log.Level, cfg.Log.Format, cc.ErrOut)
	logCfg.ServiceVersion = info.Version
	logger := log.New(logCfg)
	reg, m := metrics.NewRegistry()

	shutdown, err := telemetry.InitProvider(ctx, telemetry.Config{
		ServiceName:    "idleforge",
		ServiceVersion: info.Version,
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		logger.Warn("failed to initialize telemetry", "error", err)
		shutdown = func(context.Context) error { return nil }
	}

	rt := &runtime{CommandContext: cc, Logger: logger, Registry: reg, Metrics: m}
	return rt, func() {
		sctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Debug("telemetry shutdown failed", "error", err)
		}
	}
}

// openStore opens the configured save backend.
func (r *runtime) openStore(ctx context.Context) (storage.KeyValueStore, func() error, error) {
	backend := storage.Backend(r.Config.Storage.Backend)
	store, closeFn, err := storage.Open(ctx, backend, r.Config.StoragePath())
	if err != nil {
		return nil, closeFn, forgeerrors.Wrap(forgeerrors.ErrCodeSaveUnavailable, "failed to open save storage", err).
			WithSuggestion("Use --storage memory to run without persistence")
	}
	r.Logger.Debug("save storage opened", "backend", backend, "path", r.Config.StoragePath())
	return store, closeFn, nil
}
