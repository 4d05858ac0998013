package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/idleforge/internal/engine"
	"github.com/felixgeelhaar/idleforge/internal/ux"
)

func newSimulateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "simulate",
		Short: "Fast-forward a task offline",
		Long: `Select a task on the saved progress and advance it by a number of seconds
in one step, as if the game had been running. The save is only updated with
--write.`,
		Example: `  idleforge simulate --task strength --seconds 600
  idleforge simulate --task warehouse --seconds 3600 --write -o json`,
		Args: cobra.NoArgs,
		RunE: runSimulate,
	}
	c.Flags().String("task", "", "task to run (required)")
	c.Flags().Float64("seconds", 60, "seconds to simulate")
	c.Flags().Bool("write", false, "save the result")
	_ = c.MarkFlagRequired("task")
	return c
}

type simulateResult struct {
	Task              string             `json:"task" yaml:"task"`
	Seconds           float64            `json:"seconds" yaml:"seconds"`
	Completions       int                `json:"completions" yaml:"completions"`
	MasteryPromotions int                `json:"masteryPromotions" yaml:"masteryPromotions"`
	MoneyGained       float64            `json:"moneyGained" yaml:"moneyGained"`
	JobLevelsGained   int                `json:"jobLevelsGained" yaml:"jobLevelsGained"`
	StatGains         map[string]float64 `json:"statGains,omitempty" yaml:"statGains,omitempty"`
	Saved             bool               `json:"saved" yaml:"saved"`
	Status            statusReport       `json:"status" yaml:"status"`
}

func summarize(task string, seconds float64, completions []engine.Completion) simulateResult {
	r := simulateResult{Task: task, Seconds: seconds, Completions: len(completions)}
	for _, c := range completions {
		if c.MasteryChanged {
			r.MasteryPromotions++
		}
		r.MoneyGained += c.MoneyGain
		r.JobLevelsGained += c.JobLevelsGain
		if c.StatID != "" {
			if r.StatGains == nil {
				r.StatGains = map[string]float64{}
			}
			r.StatGains[c.StatID] += c.StatGain
		}
	}
	return r
}

func (r simulateResult) RenderText(styles ux.Styles) string {
	var b strings.Builder
	b.WriteString(styles.Success.Render(fmt.Sprintf("Simulated %s for %.0fs: %d completion(s)", r.Task, r.Seconds, r.Completions)) + "\n")
	if r.MasteryPromotions > 0 {
		b.WriteString(styles.Field("Mastery promotions", r.MasteryPromotions) + "\n")
	}
	if r.MoneyGained > 0 {
		b.WriteString(styles.Field("Money gained", fmt.Sprintf("%.2f", r.MoneyGained)) + "\n")
	}
	if r.JobLevelsGained > 0 {
		b.WriteString(styles.Field("Job levels gained", r.JobLevelsGained) + "\n")
	}
	ids := make([]string, 0, len(r.StatGains))
	for id := range r.StatGains {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		b.WriteString(styles.Field(id+" gained", fmt.Sprintf("%.2f", r.StatGains[id])) + "\n")
	}
	if r.Saved {
		b.WriteString(styles.Muted.Render("Progress saved.") + "\n")
	}
	b.WriteString("\n" + r.Status.RenderText(styles))
	return b.String()
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	task, _ := cmd.Flags().GetString("task")
	seconds, _ := cmd.Flags().GetFloat64("seconds")
	write, _ := cmd.Flags().GetBool("write")
	if seconds < 0 {
		return fmt.Errorf("invalid argument %q for \"--seconds\" flag: must not be negative", fmt.Sprint(seconds))
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
	if err := session.Engine.SelectTask(ctx, task); err != nil {
		return err
	}

	result := summarize(session.Engine.ActiveTask(), seconds, session.Engine.Advance(ctx, seconds))
	if write {
		saved, err := session.Saver.SaveNow(ctx)
		if err != nil {
			return err
		}
		result.Saved = saved
	}
	result.Status = buildStatusReport(session)

	rt.Logger.Info("simulation finished",
		"task", result.Task,
		"seconds", seconds,
		"completions", result.Completions,
		"saved", result.Saved,
	)
	return cc.Print(result)
}
