package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/idleforge/internal/equipment"
	"github.com/felixgeelhaar/idleforge/internal/game"
	"github.com/felixgeelhaar/idleforge/internal/ux"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate content packs and equipment data",
		Long: `Load every pack in the packs directory, merge the active set with its
dependencies and validate the merged equipment. When an equipment data file is
configured it is validated too. Any problem fails the command with a non-zero
exit code.`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}
}

type validateResult struct {
	Packs     []string `json:"packs" yaml:"packs"`
	Digest    string   `json:"digest" yaml:"digest"`
	Stats     int      `json:"stats" yaml:"stats"`
	Tasks     int      `json:"tasks" yaml:"tasks"`
	Equipment int      `json:"equipment" yaml:"equipment"`
	// EquipmentFile is the validated data file, if any.
	EquipmentFile string `json:"equipmentFile,omitempty" yaml:"equipmentFile,omitempty"`
}

func (r validateResult) RenderText(styles ux.Styles) string {
	lines := []string{
		styles.Success.Render(fmt.Sprintf("Content validation passed for %d pack(s): %s.", len(r.Packs), strings.Join(r.Packs, ", "))),
		styles.Field("Stats", r.Stats),
		styles.Field("Tasks", r.Tasks),
		styles.Field("Equipment", r.Equipment),
	}
	if r.EquipmentFile != "" {
		lines = append(lines, styles.Field("Equipment file", r.EquipmentFile))
	}
	lines = append(lines, styles.Field("Digest", r.Digest))
	return strings.Join(lines, "\n")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	rt, cleanup := setupRuntime(cmd.Context(), cc)
	defer cleanup()

	v, err := game.ValidateContent(cmd.Context(), cc.Config.PacksDir, cc.Config.ActivePacks, rt.Metrics)
	if err != nil {
		rt.Logger.Debug("content validation failed", "error", err)
		return err
	}

	result := validateResult{
		Packs:     v.Merged.ResolvedOrder,
		Digest:    v.Digest,
		Stats:     len(v.Merged.Stats),
		Tasks:     len(v.Merged.Tasks),
		Equipment: len(v.Merged.Equipment),
	}

	if path := cc.Config.EquipmentFile; path != "" {
		loaded := equipment.LoadFile(path)
		if loaded.Err != nil {
			return game.AsForgeError(loaded.Err)
		}
		result.EquipmentFile = path
		result.Equipment = len(loaded.Definitions)
	}

	return cc.Print(result)
}
