// Package save persists the runtime state through a versioned,
// self-migrating envelope and drives autosave.
package save

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/felixgeelhaar/idleforge/internal/catalog"
	"github.com/felixgeelhaar/idleforge/internal/progress"
	"github.com/felixgeelhaar/idleforge/internal/rawval"
	"github.com/felixgeelhaar/idleforge/internal/state"
)

const (
	// Key is the storage key the save lives under.
	Key = "game-save"
	// CurrentVersion is the schema version every built payload carries.
	CurrentVersion = 2

	legacyEquippedField = "equippedEquipmentIds"

	maxJobLevel = math.MaxInt32
)

// Payload is the persisted envelope.
type Payload struct {
	SaveVersion  int                `json:"saveVersion" yaml:"saveVersion"`
	RuntimeState state.RuntimeState `json:"runtimeState" yaml:"runtimeState"`
}

// Codec sanitizes runtime state against a stat registry and converts
// it to and from its stored form.
type Codec struct {
	stats *catalog.StatRegistry
}

// NewCodec creates a codec for stats. A nil registry uses the
// built-in stats.
func NewCodec(stats *catalog.StatRegistry) Codec {
	if stats == nil {
		stats = catalog.DefaultStats()
	}
	return Codec{stats: stats}
}

// Stats returns the registry used for sanitizing.
func (c Codec) Stats() *catalog.StatRegistry {
	if c.stats == nil {
		return catalog.DefaultStats()
	}
	return c.stats
}

// Defaults returns a fresh state.
func (c Codec) Defaults() state.RuntimeState {
	return state.New(c.Stats())
}

// BuildPayload stamps the current version onto a sanitized copy of s.
func (c Codec) BuildPayload(s state.RuntimeState) Payload {
	return Payload{
		SaveVersion:  CurrentVersion,
		RuntimeState: c.Sanitize(s),
	}
}

// Encode builds the payload for s and serializes it.
func (c Codec) Encode(s state.RuntimeState) (string, error) {
	data, err := json.Marshal(c.BuildPayload(s))
	if err != nil {
		return "", fmt.Errorf("encode save payload: %w", err)
	}
	return string(data), nil
}

// Sanitize repairs a typed state so every runtime invariant holds.
func (c Codec) Sanitize(s state.RuntimeState) state.RuntimeState {
	out := s.Clone()
	out.Stats = c.Stats().Sanitize(s.Stats)

	for id, tp := range out.TaskProgress {
		out.TaskProgress[id] = tp.Normalized()
	}

	out.Money = finiteOr(s.Money, 0)
	out.Job = s.Job.Normalized()

	out.ItemXP = finiteEntries(out.ItemXP)
	out.ItemRank = finiteEntries(out.ItemRank)
	return out
}

// SanitizeRaw builds a valid state from an untrusted decoded object.
// Fields that are missing or malformed take their defaults; the legacy
// equipped field is read when the current one is absent.
func (c Codec) SanitizeRaw(raw map[string]any) state.RuntimeState {
	out := state.Empty()
	out.Stats = c.Stats().Sanitize(raw["stats"])

	if entries, ok := rawval.Map(raw["taskProgress"]); ok {
		for id, entry := range entries {
			out.TaskProgress[id] = progress.Normalize(entry)
		}
	}

	out.Money = rawval.FloatOr(raw["money"], 0)

	if job, ok := rawval.Map(raw["job"]); ok {
		out.Job.XP = rawval.FloatOr(job["xp"], 0)
		if level, ok := rawval.Float(job["level"]); ok && level >= 1 {
			out.Job.Level = int(math.Min(math.Floor(level), maxJobLevel))
		}
	}
	out.Job = out.Job.Normalized()

	if owned, ok := rawval.Slice(raw["ownedEquipmentIds"]); ok {
		for _, item := range owned {
			if id, ok := item.(string); ok {
				out.OwnedEquipmentIDs = append(out.OwnedEquipmentIDs, id)
			}
		}
	}

	equipped, ok := rawval.Map(raw["equippedBySlot"])
	if !ok {
		equipped, _ = rawval.Map(raw[legacyEquippedField])
	}
	for slot, id := range equipped {
		if s, ok := id.(string); ok {
			out.EquippedBySlot[slot] = s
		}
	}

	out.ItemXP = rawNumbers(raw["itemXp"])
	out.ItemRank = rawNumbers(raw["itemRank"])
	return out
}

func finiteOr(f, fallback float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

func finiteEntries(m map[string]float64) map[string]float64 {
	for k, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			delete(m, k)
		}
	}
	return m
}

func rawNumbers(v any) map[string]float64 {
	out := map[string]float64{}
	m, ok := rawval.Map(v)
	if !ok {
		return out
	}
	for k, raw := range m {
		if f, ok := rawval.Float(raw); ok {
			out[k] = f
		}
	}
	return out
}
