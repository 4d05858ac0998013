package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/idleforge/internal/game"
	"github.com/felixgeelhaar/idleforge/internal/server"
	"github.com/felixgeelhaar/idleforge/internal/ux"
)

func newPlayCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "play",
		Short: "Run the game loop in the foreground",
		Long: `Run the progression loop in real time. Progress is saved periodically,
whenever the active task completes or changes, and once more on exit.
Stop with Ctrl+C or let --duration elapse.`,
		Example: `  idleforge play --task strength
  idleforge play --task courier --duration 10m --metrics-addr :9090`,
		Args: cobra.NoArgs,
		RunE: runPlay,
	}
	c.Flags().String("task", "", "task to select on start (default: idle)")
	c.Flags().Duration("duration", 0, "stop after this long (default: until interrupted)")
	c.Flags().Duration("report-interval", 5*time.Second, "how often to print progress, 0 to disable")
	c.Flags().String("metrics-addr", "", "serve Prometheus metrics and health endpoints on this address")
	return c
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	task, _ := cmd.Flags().GetString("task")
	duration, _ := cmd.Flags().GetDuration("duration")
	reportEvery, _ := cmd.Flags().GetDuration("report-interval")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	if metricsAddr == "" {
		metricsAddr = cc.Config.Metrics.Addr
	}

	ctx := cmd.Context()
	rt, cleanup := setupRuntime(ctx, cc)
	defer cleanup()

	store, closeStore, err := rt.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	session, err := rt.newSession(ctx, store)
	if err != nil {
		return err
	}
	if task != "" {
		if err := session.Engine.SelectTask(ctx, task); err != nil {
			return err
		}
	}

	reporter := newSessionReporter(session, store)
	if metricsAddr != "" {
		srv := server.New(reporter, rt.Registry, server.Config{Address: metricsAddr, Logger: rt.Logger})
		if _, err := srv.Listen(); err != nil {
			return err
		}
		defer func() { _ = srv.Shutdown(context.Background()) }()
	}

	runCtx := ctx
	if duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	session.Start(runCtx)
	rt.Logger.Info("game loop started", "session_id", session.ID, "task", session.Engine.ActiveTask())
	rt.report(runCtx, session, reportEvery)
	reporter.MarkShutdown()
	session.Stop()

	return cc.Print(buildStatusReport(session))
}

// report prints the active task's progress until ctx is done.
func (r *runtime) report(ctx context.Context, s *game.Session, every time.Duration) {
	if every <= 0 || r.Output != "text" {
		<-ctx.Done()
		return
	}

	styles := ux.DefaultStyles()
	if r.NoColor {
		styles = ux.PlainStyles()
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			view, ok := s.Engine.TaskView(s.Engine.ActiveTask())
			if !ok {
				continue
			}
			snap := s.Engine.Snapshot()
			fmt.Fprintf(r.Out, "%s  money %.2f\n", renderTaskLine(styles, view), snap.Money)
		}
	}
}
