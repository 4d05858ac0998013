package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/idleforge/internal/content"
	"github.com/felixgeelhaar/idleforge/internal/game"
	"github.com/felixgeelhaar/idleforge/internal/ux"
)

func newPacksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "packs",
		Short: "List content packs in merge order",
		Args:  cobra.NoArgs,
		RunE:  runPacks,
	}
}

type packRow struct {
	content.PackMetadata `yaml:",inline"`
	// Active is false for packs pulled in only as dependencies.
	Active bool `json:"active" yaml:"active"`
}

type packsResult struct {
	Packs []packRow `json:"packs" yaml:"packs"`
}

func (r packsResult) RenderText(styles ux.Styles) string {
	lines := make([]string, 0, len(r.Packs))
	for i, p := range r.Packs {
		line := fmt.Sprintf("%d. %s %s", i+1, styles.Value.Render(p.ID), styles.Muted.Render(p.Version))
		if p.Name != "" && p.Name != p.ID {
			line += " " + p.Name
		}
		if len(p.Dependencies) > 0 {
			line += styles.Muted.Render(" (depends on " + strings.Join(p.Dependencies, ", ") + ")")
		}
		if !p.Active {
			line += styles.Muted.Render(" [dependency]")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func runPacks(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	rt, cleanup := setupRuntime(cmd.Context(), cc)
	defer cleanup()

	packs, err := content.LoadDirectory(cc.Config.PacksDir)
	if err != nil {
		return game.AsForgeError(err)
	}
	merged, err := game.MergePacks(cmd.Context(), packs, cc.Config.ActivePacks, rt.Metrics)
	if err != nil {
		return game.AsForgeError(err)
	}

	result := packsResult{Packs: make([]packRow, 0, len(merged.Metadata))}
	for _, meta := range merged.Metadata {
		result.Packs = append(result.Packs, packRow{
			PackMetadata: meta,
			Active:       slices.Contains(merged.ActivePackIDs, meta.ID),
		})
	}
	return cc.Print(result)
}
