// Package catalog holds the immutable stat, job and task tables the
// progression engine runs against.
package catalog

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/felixgeelhaar/idleforge/internal/content"
)

// Catalog bundles the registries built for one session.
type Catalog struct {
	Stats *StatRegistry
	Jobs  *JobRegistry
	Tasks *TaskTable
}

// Default returns the built-in catalog.
func Default() *Catalog {
	stats := DefaultStats()
	jobs := DefaultJobs()
	return &Catalog{
		Stats: stats,
		Jobs:  jobs,
		Tasks: BuildTaskTable(DefaultTaskDefinitions(stats, jobs), stats, jobs),
	}
}

type statEntry struct {
	ID        string   `mapstructure:"id"`
	Label     string   `mapstructure:"label"`
	Category  string   `mapstructure:"category"`
	BaseValue *float64 `mapstructure:"baseValue"`
	Growth    *struct {
		RewardPerCompletion *float64 `mapstructure:"rewardPerCompletion"`
		TaskBaseSeconds     *float64 `mapstructure:"taskBaseSeconds"`
		TaskScaleFactor     *float64 `mapstructure:"taskScaleFactor"`
	} `mapstructure:"growth"`
	Caps *struct {
		Points *float64 `mapstructure:"points"`
	} `mapstructure:"caps"`
	DerivedDependencies []string `mapstructure:"derivedDependencies"`
	SourcePackID        string   `mapstructure:"sourcePackId"`
}

// decodeEntry decodes one merged content entry into out. Scalars
// written as strings, such as "2.5" in a hand-edited YAML pack, are
// converted to the field type.
func decodeEntry(entry map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(entry)
}

// DecodeStatDefinitions converts merged raw stat entries. Missing
// fields default to the built-in stat profile: category core, base
// value 0, default growth and no cap.
func DecodeStatDefinitions(entries []map[string]any) ([]StatDefinition, error) {
	defs := make([]StatDefinition, 0, len(entries))
	for i, entry := range entries {
		var se statEntry
		if err := decodeEntry(entry, &se); err != nil {
			return nil, fmt.Errorf("stat[%d]: %w", i, err)
		}

		def := StatDefinition{
			ID:                  se.ID,
			Label:               se.Label,
			Category:            Category(se.Category),
			Growth:              DefaultGrowth(),
			DerivedDependencies: se.DerivedDependencies,
			SourcePackID:        se.SourcePackID,
		}
		if def.Label == "" {
			def.Label = LocalID(se.ID)
		}
		if def.Category == "" {
			def.Category = CategoryCore
		}
		if se.BaseValue != nil {
			def.BaseValue = *se.BaseValue
		}
		if g := se.Growth; g != nil {
			if g.RewardPerCompletion != nil {
				def.Growth.RewardPerCompletion = *g.RewardPerCompletion
			}
			if g.TaskBaseSeconds != nil {
				def.Growth.TaskBaseSeconds = *g.TaskBaseSeconds
			}
			if g.TaskScaleFactor != nil {
				def.Growth.TaskScaleFactor = *g.TaskScaleFactor
			}
		}
		if se.Caps != nil && se.Caps.Points != nil {
			capPoints := *se.Caps.Points
			def.CapPoints = &capPoints
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// FromContent builds a catalog from merged packs. Stats come from the
// packs when any pack defines them, otherwise from the built-ins; the
// same holds for tasks. Jobs are always the built-in registry.
func FromContent(merged *content.Merged) (*Catalog, error) {
	if merged == nil {
		return Default(), nil
	}

	stats := DefaultStats()
	if len(merged.Stats) > 0 {
		defs, err := DecodeStatDefinitions(merged.Stats)
		if err != nil {
			return nil, err
		}
		stats, err = NewStatRegistry(defs)
		if err != nil {
			return nil, err
		}
	}
	jobs := DefaultJobs()

	taskDefs := DefaultTaskDefinitions(stats, jobs)
	if len(merged.Tasks) > 0 {
		decoded, err := DecodeTaskDefinitions(merged.Tasks)
		if err != nil {
			return nil, err
		}
		taskDefs = decoded
	}

	return &Catalog{
		Stats: stats,
		Jobs:  jobs,
		Tasks: BuildTaskTable(taskDefs, stats, jobs),
	}, nil
}
