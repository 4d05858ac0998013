package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/idleforge/internal/game"
	"github.com/felixgeelhaar/idleforge/internal/health"
	"github.com/felixgeelhaar/idleforge/internal/save"
	"github.com/felixgeelhaar/idleforge/internal/storage"
	"github.com/felixgeelhaar/idleforge/internal/ux"
	"github.com/felixgeelhaar/idleforge/internal/version"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check save storage and content",
		Long: `Run the same checks the readiness check of 'play' runs: save storage must
accept a write and content packs must merge. Exits non-zero when a check is
unhealthy.`,
		Args: cobra.NoArgs,
		RunE: runDoctor,
	}
}

// newSessionReporter registers the checks of a running session.
func newSessionReporter(s *game.Session, store storage.KeyValueStore) *health.Reporter {
	p := health.NewReporter(version.GetInfo(save.CurrentVersion).Version)
	p.AddChecker(health.NewStoreChecker(store))
	p.AddChecker(newContentChecker(s.Content))
	p.AddChecker(health.NewAutosaveChecker(s.Saver.LastSave, 3*s.Saver.Interval()))
	return p
}

func newContentChecker(r game.ContentResult) *health.ContentChecker {
	var packs []string
	if r.Merged != nil {
		packs = r.Merged.ResolvedOrder
	}
	return health.NewContentChecker(packs, r.Err)
}

type doctorResult struct {
	Status health.Status             `json:"status" yaml:"status"`
	Checks map[string]*health.Result `json:"checks" yaml:"checks"`
}

func (r doctorResult) RenderText(styles ux.Styles) string {
	names := make([]string, 0, len(r.Checks))
	for name := range r.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := []string{styles.Field("Overall", statusStyle(styles, r.Status))}
	for _, name := range names {
		res := r.Checks[name]
		lines = append(lines, fmt.Sprintf("  %s %s: %s", statusStyle(styles, res.Status), name, res.Message))
	}
	return strings.Join(lines, "\n")
}

func statusStyle(styles ux.Styles, s health.Status) string {
	switch s {
	case health.StatusHealthy:
		return styles.Success.Render(s.String())
	case health.StatusDegraded:
		return styles.Warning.Render(s.String())
	default:
		return styles.Error.Render(s.String())
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	rt, cleanup := setupRuntime(ctx, cc)
	defer cleanup()

	m := health.NewManager()
	store, closeStore, err := rt.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()
	m.AddChecker(health.NewStoreChecker(store))
	m.AddChecker(newContentChecker(game.LoadContent(ctx, cc.Config.PacksDir, cc.Config.ActivePacks, rt.Metrics, rt.Logger)))

	checks := m.Check(ctx)
	result := doctorResult{Status: health.OverallStatus(checks), Checks: checks}
	if err := cc.Print(result); err != nil {
		return err
	}
	if result.Status == health.StatusUnhealthy {
		return fmt.Errorf("health check failed: %s", result.Status)
	}
	return nil
}
