package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/idleforge/internal/game"
	"github.com/felixgeelhaar/idleforge/internal/save"
	"github.com/felixgeelhaar/idleforge/internal/ux"
)

func newSaveCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "save",
		Short: "Inspect or reset the stored save",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored save after migration and sanitization",
		Args:  cobra.NoArgs,
		RunE:  runSaveShow,
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete the stored save",
		Args:  cobra.NoArgs,
		RunE:  runSaveReset,
	}
	reset.Flags().Bool("yes", false, "confirm deleting the save")

	c.AddCommand(show, reset)
	return c
}

type saveShowResult struct {
	Key     string           `json:"key" yaml:"key"`
	Outcome save.LoadOutcome `json:"outcome" yaml:"outcome"`
	save.Payload `yaml:",inline"`
}

func (r saveShowResult) RenderText(styles ux.Styles) string {
	lines := []string{
		styles.Field("Key", r.Key),
		styles.Field("Outcome", r.Outcome),
		styles.Field("Save version", r.SaveVersion),
		styles.Field("Money", fmt.Sprintf("%.2f", r.RuntimeState.Money)),
		styles.Field("Job level", r.RuntimeState.Job.Level),
		styles.Field("Tasks with progress", len(r.RuntimeState.TaskProgress)),
		styles.Field("Owned equipment", len(r.RuntimeState.OwnedEquipmentIDs)),
	}
	if !r.Outcome.Restored() {
		lines = append(lines, styles.Muted.Render("No usable save is stored; showing a fresh state."))
	}
	return strings.Join(lines, "\n")
}

func runSaveShow(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	rt, cleanup := setupRuntime(ctx, cc)
	defer cleanup()

	store, closeStore, err := rt.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	loaded := game.LoadContent(ctx, cc.Config.PacksDir, cc.Config.ActivePacks, rt.Metrics, rt.Logger)
	codec := save.NewCodec(loaded.Catalog.Stats)

	st, outcome := save.Load(ctx, store, codec)
	rt.Metrics.RecordLoad(string(outcome))

	return cc.Print(saveShowResult{
		Key:     save.Key,
		Outcome: outcome,
		Payload: codec.BuildPayload(st),
	})
}

type saveResetResult struct {
	Key     string `json:"key" yaml:"key"`
	Deleted bool   `json:"deleted" yaml:"deleted"`
}

func (r saveResetResult) RenderText(styles ux.Styles) string {
	return styles.Success.Render("Save deleted.")
}

func runSaveReset(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		return errors.New("required flag \"yes\" not set: resetting deletes all progress")
	}

	ctx := cmd.Context()
	rt, cleanup := setupRuntime(ctx, cc)
	defer cleanup()

	store, closeStore, err := rt.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	if err := save.Reset(ctx, store); err != nil {
		return err
	}
	rt.Logger.Info("save deleted", "key", save.Key)
	return cc.Print(saveResetResult{Key: save.Key, Deleted: true})
}
