// Package state defines the persisted runtime aggregate.
package state

import (
	"maps"
	"math"
	"slices"

	"github.com/felixgeelhaar/idleforge/internal/catalog"
	"github.com/felixgeelhaar/idleforge/internal/progress"
)

const (
	// JobLevelXPBase is the experience needed to go from job level 1 to 2.
	JobLevelXPBase = 24
	// JobLevelXPScale is the growth factor of each further job level.
	JobLevelXPScale = 1.28
)

// JobXPRequired is the experience needed to leave job level.
func JobXPRequired(level int) float64 {
	if level < 1 {
		level = 1
	}
	return JobLevelXPBase * math.Pow(JobLevelXPScale, float64(level-1))
}

// JobState is the player's job experience and level.
type JobState struct {
	XP    float64 `json:"xp" yaml:"xp"`
	Level int     `json:"level" yaml:"level"`
}

// ApplyLevelUps spends xp on every level-up it pays for and returns
// the number of levels gained. Afterwards XP is below the requirement
// of the new level.
func (j *JobState) ApplyLevelUps() int {
	gained := 0
	required := JobXPRequired(j.Level)
	for j.XP >= required {
		j.XP -= required
		j.Level++
		gained++
		required = JobXPRequired(j.Level)
	}
	return gained
}

// Normalized repairs a job read from an untrusted source: xp is finite
// and not negative, level is at least 1, and xp that already pays for
// level-ups is spent on them.
func (j JobState) Normalized() JobState {
	out := j
	if math.IsNaN(out.XP) || math.IsInf(out.XP, 0) || out.XP < 0 {
		out.XP = 0
	}
	if out.Level < 1 {
		out.Level = 1
	}
	out.ApplyLevelUps()
	return out
}

// RuntimeState is everything a save carries.
type RuntimeState struct {
	Stats             map[string]catalog.StatPoints    `json:"stats" yaml:"stats"`
	TaskProgress      map[string]progress.TaskProgress `json:"taskProgress" yaml:"taskProgress"`
	Money             float64                          `json:"money" yaml:"money"`
	Job               JobState                         `json:"job" yaml:"job"`
	OwnedEquipmentIDs []string                         `json:"ownedEquipmentIds" yaml:"ownedEquipmentIds"`
	EquippedBySlot    map[string]string                `json:"equippedBySlot" yaml:"equippedBySlot"`
	ItemXP            map[string]float64               `json:"itemXp" yaml:"itemXp"`
	ItemRank          map[string]float64               `json:"itemRank" yaml:"itemRank"`
}

// New returns a fresh state with stats seeded from the registry.
func New(stats *catalog.StatRegistry) RuntimeState {
	s := Empty()
	if stats != nil {
		s.Stats = stats.CreateDefaultState()
	}
	return s
}

// Empty returns the zero-progress state with no stats.
func Empty() RuntimeState {
	return RuntimeState{
		Stats:             map[string]catalog.StatPoints{},
		TaskProgress:      map[string]progress.TaskProgress{},
		Job:               JobState{XP: 0, Level: 1},
		OwnedEquipmentIDs: []string{},
		EquippedBySlot:    map[string]string{},
		ItemXP:            map[string]float64{},
		ItemRank:          map[string]float64{},
	}
}

// Clone returns a deep copy. Callers outside the engine only ever see
// clones, so no mutable state is shared.
func (s RuntimeState) Clone() RuntimeState {
	out := s
	out.Stats = cloneMap(s.Stats)
	out.TaskProgress = cloneMap(s.TaskProgress)
	out.OwnedEquipmentIDs = slices.Clone(s.OwnedEquipmentIDs)
	if out.OwnedEquipmentIDs == nil {
		out.OwnedEquipmentIDs = []string{}
	}
	out.EquippedBySlot = cloneMap(s.EquippedBySlot)
	out.ItemXP = cloneMap(s.ItemXP)
	out.ItemRank = cloneMap(s.ItemRank)
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return maps.Clone(m)
}
