package cmd

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/idleforge/internal/catalog"
	"github.com/felixgeelhaar/idleforge/internal/engine"
	"github.com/felixgeelhaar/idleforge/internal/equipment"
	"github.com/felixgeelhaar/idleforge/internal/game"
	"github.com/felixgeelhaar/idleforge/internal/save"
	"github.com/felixgeelhaar/idleforge/internal/state"
	"github.com/felixgeelhaar/idleforge/internal/storage"
	"github.com/felixgeelhaar/idleforge/internal/ux"
)

const progressBarWidth = 20

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the saved progress",
		Long: `Show the saved progress: money, job, stats, every task's level and
mastery, and the equipment the player owns and wears.`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	rt, cleanup := setupRuntime(cmd.Context(), cc)
	defer cleanup()

	store, closeStore, err := rt.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	session, err := rt.newSession(cmd.Context(), store)
	if err != nil {
		return err
	}
	return cc.Print(buildStatusReport(session))
}

// newSession builds a game session from the configuration without
// starting it.
func (r *runtime) newSession(ctx context.Context, store storage.KeyValueStore) (*game.Session, error) {
	return game.NewSession(ctx, game.Options{
		PacksDir:         r.Config.PacksDir,
		ActivePacks:      r.Config.ActivePacks,
		EquipmentFile:    r.Config.EquipmentFile,
		Store:            store,
		TickInterval:     r.Config.TickInterval,
		AutosaveInterval: r.Config.AutosaveInterval,
		Logger:           r.Logger,
		Metrics:          r.Metrics,
	})
}

type statRow struct {
	ID       string  `json:"id" yaml:"id"`
	Label    string  `json:"label" yaml:"label"`
	Category string  `json:"category" yaml:"category"`
	Points   float64 `json:"points" yaml:"points"`
	// Cap is nil for unbounded stats.
	Cap *float64 `json:"cap,omitempty" yaml:"cap,omitempty"`
}

// statusReport is the read model printed by status, simulate and play.
type statusReport struct {
	SessionID  string              `json:"sessionId" yaml:"sessionId"`
	Save       save.LoadOutcome    `json:"save" yaml:"save"`
	Packs      []string            `json:"packs" yaml:"packs"`
	ActiveTask string              `json:"activeTask" yaml:"activeTask"`
	Money      float64             `json:"money" yaml:"money"`
	Job        state.JobState      `json:"job" yaml:"job"`
	Stats      []statRow           `json:"stats" yaml:"stats"`
	Tasks      []engine.TaskView   `json:"tasks" yaml:"tasks"`
	Equipment  equipment.ViewModel `json:"equipment" yaml:"equipment"`
}

func buildStatusReport(s *game.Session) statusReport {
	snap := s.Engine.Snapshot()
	stats := s.Engine.Catalog().Stats

	rows := make([]statRow, 0, stats.Len())
	for _, category := range catalog.Categories() {
		for _, def := range stats.ByCategory(category) {
			row := statRow{
				ID:       def.ID,
				Label:    def.Label,
				Category: string(def.Category),
				Points:   snap.Stats[def.ID].Points,
			}
			if c := def.Cap(); !math.IsInf(c, 1) {
				row.Cap = &c
			}
			rows = append(rows, row)
		}
	}

	var packs []string
	if s.Content.Merged != nil {
		packs = s.Content.Merged.ResolvedOrder
	}

	return statusReport{
		SessionID:  s.ID,
		Save:       s.LoadOutcome,
		Packs:      packs,
		ActiveTask: s.Engine.ActiveTask(),
		Money:      snap.Money,
		Job:        snap.Job,
		Stats:      rows,
		Tasks:      s.Engine.TaskViews(),
		Equipment:  s.EquipmentView(),
	}
}

func (r statusReport) RenderText(styles ux.Styles) string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("idleforge") + "\n")
	content := "built-in"
	if len(r.Packs) > 0 {
		content = strings.Join(r.Packs, ", ")
	}
	b.WriteString(styles.Field("Content", content) + "\n")
	b.WriteString(styles.Field("Save", r.Save) + "\n")
	b.WriteString(styles.Field("Money", fmt.Sprintf("%.2f", r.Money)) + "\n")
	b.WriteString(styles.Field("Job", fmt.Sprintf("level %d (%.1f xp)", r.Job.Level, r.Job.XP)) + "\n")

	b.WriteString("\n" + styles.Heading.Render("Stats") + "\n")
	category := ""
	for _, st := range r.Stats {
		if st.Category != category {
			category = st.Category
			b.WriteString("  " + styles.Muted.Render(category) + "\n")
		}
		value := fmt.Sprintf("%.2f", st.Points)
		if st.Cap != nil {
			value += fmt.Sprintf(" / %.0f", *st.Cap)
		}
		b.WriteString("    " + styles.Field(st.Label, value) + "\n")
	}

	b.WriteString("\n" + styles.Heading.Render("Tasks") + "\n")
	for _, t := range r.Tasks {
		b.WriteString("  " + renderTaskLine(styles, t) + "\n")
	}

	b.WriteString("\n" + styles.Heading.Render("Equipment") + "\n")
	if len(r.Equipment.Owned) == 0 {
		b.WriteString("  " + styles.Muted.Render("none owned") + "\n")
	}
	for _, d := range r.Equipment.Owned {
		b.WriteString(fmt.Sprintf("  %s %s\n", d.Name, styles.Muted.Render("("+d.Slot+")")))
	}
	slots := make([]string, 0, len(r.Equipment.Equipped))
	for slot := range r.Equipment.Equipped {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	for _, slot := range slots {
		b.WriteString("  " + styles.Field("worn "+slot, r.Equipment.Equipped[slot].Name) + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderTaskLine(styles ux.Styles, t engine.TaskView) string {
	marker := "  "
	label := t.Label
	if t.Active {
		marker = "> "
		label = styles.Active.Render(label)
	}
	if t.SecondsNeeded < 0 {
		return marker + label
	}
	return fmt.Sprintf("%s%s %s lv %.0f  mastery %d (x%.2f)  %.1fs left",
		marker, label, styles.ProgressBar(t.Fraction, progressBarWidth),
		t.Level, t.MasteryTier, t.MasteryMultiplier, t.SecondsRemaining)
}
