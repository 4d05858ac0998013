// Package progress holds the per-task progress record and the mastery math.
package progress

import (
	"math"

	"github.com/felixgeelhaar/idleforge/internal/rawval"
)

const (
	// MasteryLevelStep is the number of task levels per mastery tier.
	MasteryLevelStep = 100
	// MasteryBonusStep is the reward bonus added per mastery tier.
	MasteryBonusStep = 0.05
)

// TaskProgress is the mutable state of one non-idle task.
type TaskProgress struct {
	Level             float64 `json:"level"`
	MasteryTier       int     `json:"masteryTier"`
	MasteryMultiplier float64 `json:"masteryMultiplier"`
	Elapsed           float64 `json:"elapsed"`
}

// New returns a zeroed record.
func New() TaskProgress {
	return TaskProgress{MasteryMultiplier: 1}
}

// Normalize coerces any value into a complete record. Fields that are
// missing or not finite numbers take their zero-progress defaults, so
// the result never carries NaN or Inf. Level and elapsed are never
// negative, and tier and multiplier always follow from the level.
func Normalize(source any) TaskProgress {
	m, ok := rawval.Map(source)
	if !ok {
		if tp, ok := source.(TaskProgress); ok {
			return tp.Normalized()
		}
		return New()
	}

	return TaskProgress{
		Level:   rawval.FloatOr(m["level"], 0),
		Elapsed: rawval.FloatOr(m["elapsed"], 0),
	}.Normalized()
}

// Normalized repairs a typed record: non-finite or negative level and
// elapsed become 0, and mastery is recomputed from the level.
func (p TaskProgress) Normalized() TaskProgress {
	out := p
	if !finite(out.Level) || out.Level < 0 {
		out.Level = 0
	}
	if !finite(out.Elapsed) || out.Elapsed < 0 {
		out.Elapsed = 0
	}
	out.RecomputeMastery()
	return out
}

// RecomputeMastery sets tier and multiplier from the current level.
func (p *TaskProgress) RecomputeMastery() {
	p.MasteryTier = MasteryTier(p.Level)
	p.MasteryMultiplier = MasteryMultiplier(p.MasteryTier)
}

// MaxMasteryTier bounds the tier of absurdly high levels.
const MaxMasteryTier = math.MaxInt32

// MasteryTier is floor(level / MasteryLevelStep), never negative and
// never above MaxMasteryTier.
func MasteryTier(level float64) int {
	if math.IsNaN(level) || level <= 0 {
		return 0
	}
	tier := math.Floor(level / MasteryLevelStep)
	if tier >= MaxMasteryTier {
		return MaxMasteryTier
	}
	return int(tier)
}

// MasteryMultiplier is 1 + tier * MasteryBonusStep.
func MasteryMultiplier(tier int) float64 {
	return 1 + float64(tier)*MasteryBonusStep
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
