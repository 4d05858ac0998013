package engine

import (
	"math"

	"github.com/felixgeelhaar/idleforge/internal/catalog"
)

// TaskView is a read model of one task for display.
type TaskView struct {
	ID                string       `json:"id" yaml:"id"`
	Label             string       `json:"label" yaml:"label"`
	Kind              catalog.Kind `json:"kind" yaml:"kind"`
	Active            bool         `json:"active" yaml:"active"`
	Level             float64      `json:"level" yaml:"level"`
	MasteryTier       int          `json:"masteryTier" yaml:"masteryTier"`
	MasteryMultiplier float64      `json:"masteryMultiplier" yaml:"masteryMultiplier"`
	// SecondsNeeded is -1 for tasks that never complete.
	SecondsNeeded    float64 `json:"secondsNeeded" yaml:"secondsNeeded"`
	SecondsRemaining float64 `json:"secondsRemaining" yaml:"secondsRemaining"`
	// Fraction is the progress toward the next completion in [0, 1].
	Fraction float64 `json:"fraction" yaml:"fraction"`
}

// TaskView returns the read model of id.
func (e *Engine) TaskView(id string) (TaskView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.taskViewLocked(id)
}

// TaskViews returns every task in catalog order, idle last.
func (e *Engine) TaskViews() []TaskView {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := e.catalog.Tasks.Order()
	views := make([]TaskView, 0, len(ids))
	for _, id := range ids {
		if v, ok := e.taskViewLocked(id); ok {
			views = append(views, v)
		}
	}
	return views
}

func (e *Engine) taskViewLocked(id string) (TaskView, bool) {
	task, ok := e.catalog.Tasks.Get(id)
	if !ok {
		return TaskView{}, false
	}

	tp := e.state.TaskProgress[id]
	v := TaskView{
		ID:                id,
		Label:             task.TaskLabel(),
		Kind:              task.Kind(),
		Active:            id == e.active,
		Level:             tp.Level,
		MasteryTier:       tp.MasteryTier,
		MasteryMultiplier: tp.MasteryMultiplier,
		SecondsNeeded:     -1,
		SecondsRemaining:  -1,
	}
	if task.Kind() == catalog.KindIdle {
		v.MasteryMultiplier = 1
		return v, true
	}

	needed := e.secondsFor(task, tp.Level)
	if needed > 0 && !math.IsInf(needed, 0) {
		v.SecondsNeeded = needed
		v.SecondsRemaining = math.Max(needed-tp.Elapsed, 0)
		v.Fraction = math.Min(tp.Elapsed/needed, 1)
	}
	return v, true
}
