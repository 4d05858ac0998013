package catalog

import (
	"fmt"
	"math"

	"github.com/felixgeelhaar/idleforge/internal/rawval"
)

// Category groups stats. The set is closed.
type Category string

const (
	CategoryCore    Category = "core"
	CategoryCombat  Category = "combat"
	CategorySocial  Category = "social"
	CategoryUtility Category = "utility"
)

// Categories lists every stat category in display order.
func Categories() []Category {
	return []Category{CategoryCore, CategoryCombat, CategorySocial, CategoryUtility}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Growth controls how fast a stat trains and how much a completion grants.
type Growth struct {
	RewardPerCompletion float64 `json:"rewardPerCompletion" mapstructure:"rewardPerCompletion"`
	TaskBaseSeconds     float64 `json:"taskBaseSeconds" mapstructure:"taskBaseSeconds"`
	TaskScaleFactor     float64 `json:"taskScaleFactor" mapstructure:"taskScaleFactor"`
}

// DefaultGrowth is the growth profile of the built-in stats.
func DefaultGrowth() Growth {
	return Growth{RewardPerCompletion: 1, TaskBaseSeconds: 2.5, TaskScaleFactor: 0.38}
}

// StatDefinition describes one trainable stat.
type StatDefinition struct {
	ID        string
	Label     string
	Category  Category
	BaseValue float64
	Growth    Growth
	// CapPoints is the upper bound for points; nil means unbounded.
	CapPoints *float64
	// DerivedDependencies is reserved for derived stats and is not evaluated.
	DerivedDependencies []string
	SourcePackID        string
}

// Cap returns the points cap, +Inf when unbounded.
func (s StatDefinition) Cap() float64 {
	if s.CapPoints == nil || math.IsNaN(*s.CapPoints) {
		return math.Inf(1)
	}
	return *s.CapPoints
}

// Clamp bounds points into [BaseValue, Cap].
func (s StatDefinition) Clamp(points float64) float64 {
	return math.Min(math.Max(points, s.BaseValue), s.Cap())
}

// StatPoints is the persisted value of one stat.
type StatPoints struct {
	Points float64 `json:"points"`
}

// StatRegistry is an immutable, ordered set of stat definitions.
type StatRegistry struct {
	stats []StatDefinition
	index map[string]int
}

// NewStatRegistry builds a registry. Ids must be non-empty and unique.
func NewStatRegistry(defs []StatDefinition) (*StatRegistry, error) {
	r := &StatRegistry{
		stats: make([]StatDefinition, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for i, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("stat[%d]: id must be a non-empty string", i)
		}
		if _, dup := r.index[def.ID]; dup {
			return nil, fmt.Errorf("stat[%d]: duplicate id '%s'", i, def.ID)
		}
		if !def.Category.Valid() {
			return nil, fmt.Errorf("stat '%s': unknown category '%s'", def.ID, def.Category)
		}
		def.DerivedDependencies = append([]string(nil), def.DerivedDependencies...)
		r.index[def.ID] = len(r.stats)
		r.stats = append(r.stats, def)
	}
	return r, nil
}

// DefaultStats returns the built-in stat registry.
func DefaultStats() *StatRegistry {
	mk := func(id, label string) StatDefinition {
		return StatDefinition{
			ID:        id,
			Label:     label,
			Category:  CategoryCore,
			BaseValue: 0,
			Growth:    DefaultGrowth(),
		}
	}
	r, err := NewStatRegistry([]StatDefinition{
		mk("strength", "Strength"),
		mk("endurance", "Endurance"),
		mk("dexterity", "Dexterity"),
	})
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the definition with exactly this id.
func (r *StatRegistry) Get(id string) (StatDefinition, bool) {
	i, ok := r.index[id]
	if !ok {
		return StatDefinition{}, false
	}
	return r.stats[i], true
}

// Resolve looks up id, then its local part, then a unique entry whose
// local part matches. "base:strength" and "strength" resolve to each other.
func (r *StatRegistry) Resolve(id string) (StatDefinition, bool) {
	i, ok := resolveIndex(r.index, id, func(i int) string { return r.stats[i].ID }, len(r.stats))
	if !ok {
		return StatDefinition{}, false
	}
	return r.stats[i], true
}

// All returns the definitions in registry order.
func (r *StatRegistry) All() []StatDefinition {
	return append([]StatDefinition(nil), r.stats...)
}

// Len returns the number of stats.
func (r *StatRegistry) Len() int {
	return len(r.stats)
}

// ByCategory returns the stats of one category in registry order.
func (r *StatRegistry) ByCategory(c Category) []StatDefinition {
	var out []StatDefinition
	for _, s := range r.stats {
		if s.Category == c {
			out = append(out, s)
		}
	}
	return out
}

// CreateDefaultState seeds every stat at its base value.
func (r *StatRegistry) CreateDefaultState() map[string]StatPoints {
	out := make(map[string]StatPoints, len(r.stats))
	for _, s := range r.stats {
		out[s.ID] = StatPoints{Points: s.BaseValue}
	}
	return out
}

// Sanitize returns a stats map with exactly one entry per registered
// stat. Points come from input when finite, otherwise the base value,
// and are clamped into [baseValue, cap]. Input may be a typed map or a
// raw decoded object.
func (r *StatRegistry) Sanitize(input any) map[string]StatPoints {
	out := make(map[string]StatPoints, len(r.stats))
	for _, s := range r.stats {
		points, ok := rawPoints(input, s.ID)
		if !ok {
			points = s.BaseValue
		}
		out[s.ID] = StatPoints{Points: s.Clamp(points)}
	}
	return out
}

func rawPoints(input any, id string) (float64, bool) {
	switch in := input.(type) {
	case map[string]StatPoints:
		sp, ok := in[id]
		if !ok {
			return 0, false
		}
		return rawval.Float(sp.Points)
	case map[string]any:
		entry, ok := rawval.Map(in[id])
		if !ok {
			return 0, false
		}
		return rawval.Float(entry["points"])
	default:
		return 0, false
	}
}
