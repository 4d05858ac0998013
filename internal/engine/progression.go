package engine

import (
	"context"
	"math"

	"github.com/felixgeelhaar/idleforge/internal/catalog"
	"github.com/felixgeelhaar/idleforge/internal/events"
	"github.com/felixgeelhaar/idleforge/internal/progress"
)

const (
	// Timings used when a task's stat or job link is broken.
	FallbackJobBaseSeconds  = 4
	FallbackJobScaleFactor  = 0.2
	FallbackStatBaseSeconds = 2.5
	FallbackStatScaleFactor = 0.3
)

// Completion is one reward application.
type Completion struct {
	TaskID         string       `json:"taskId"`
	Kind           catalog.Kind `json:"kind"`
	Level          float64      `json:"level"`
	MasteryTier    int          `json:"masteryTier"`
	MasteryChanged bool         `json:"masteryChanged"`
	StatID         string       `json:"statId,omitempty"`
	StatGain       float64      `json:"statGain,omitempty"`
	MoneyGain      float64      `json:"moneyGain,omitempty"`
	XPGain         float64      `json:"xpGain,omitempty"`
	JobLevelsGain  int          `json:"jobLevelsGain,omitempty"`
}

// SecondsForNextCompletion is the time the task needs at its current
// level. Idle tasks and unknown ids never complete.
func (e *Engine) SecondsForNextCompletion(taskID string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	task, ok := e.catalog.Tasks.Get(taskID)
	if !ok {
		return math.Inf(1)
	}
	return e.secondsFor(task, e.state.TaskProgress[taskID].Level)
}

func (e *Engine) secondsFor(task catalog.Task, level float64) float64 {
	base, scale := e.timing(task)
	return base * (1 + level*scale)
}

// timing returns the base seconds and scale factor of task.
func (e *Engine) timing(task catalog.Task) (float64, float64) {
	switch t := task.(type) {
	case catalog.JobTask:
		job, ok := e.catalog.Jobs.Resolve(t.JobID)
		if !ok {
			return FallbackJobBaseSeconds, FallbackJobScaleFactor
		}
		return job.BaseSeconds, job.ScaleFactor
	case catalog.StatTask:
		stat, ok := e.catalog.Stats.Resolve(t.StatID)
		if !ok {
			return FallbackStatBaseSeconds, FallbackStatScaleFactor
		}
		return stat.Growth.TaskBaseSeconds, stat.Growth.TaskScaleFactor
	default:
		return math.Inf(1), 0
	}
}

// GainJobExperience adds xp and applies every level-up it pays for.
// It returns the number of levels gained.
func (e *Engine) GainJobExperience(xp float64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gainJobXPLocked(xp)
}

func (e *Engine) gainJobXPLocked(xp float64) int {
	if math.IsNaN(xp) || math.IsInf(xp, 0) || xp <= 0 {
		return 0
	}

	job := &e.state.Job
	job.XP += xp
	gained := job.ApplyLevelUps()
	if gained > 0 {
		e.metrics.SetJobLevel(job.Level)
	}
	return gained
}

// Advance runs the active task for delta seconds. Elapsed time carries
// over between calls, and one call may apply several completions.
func (e *Engine) Advance(ctx context.Context, delta float64) []Completion {
	e.mu.Lock()
	completions, evts := e.advanceLocked(delta)
	e.mu.Unlock()

	e.publish(ctx, evts)
	return completions
}

func (e *Engine) advanceLocked(delta float64) ([]Completion, []events.Event) {
	if !(delta > 0) || math.IsInf(delta, 1) {
		return nil, nil
	}

	task, ok := e.catalog.Tasks.Get(e.active)
	if !ok || task.Kind() == catalog.KindIdle {
		return nil, nil
	}

	tp := e.state.TaskProgress[e.active].Normalized()
	tp.Elapsed += delta

	var (
		completions []Completion
		evts        []events.Event
	)
	needed := e.secondsFor(task, tp.Level)
	for needed > 0 && tp.Elapsed >= needed {
		tp.Elapsed -= needed

		prevTier := tp.MasteryTier
		tp.Level++
		tp.RecomputeMastery()

		c := e.applyRewardLocked(task, tp)
		c.MasteryChanged = tp.MasteryTier != prevTier
		completions = append(completions, c)

		evts = append(evts, events.Event{Type: events.TaskLevelChanged, TaskID: task.TaskID()})
		if c.MasteryChanged {
			evts = append(evts, events.Event{Type: events.TaskMasteryChanged, TaskID: task.TaskID()})
			e.metrics.RecordMasteryPromotion(task.TaskID())
		}
		e.metrics.RecordCompletion(task.TaskID(), string(task.Kind()))

		needed = e.secondsFor(task, tp.Level)
	}

	e.state.TaskProgress[e.active] = tp
	return completions, evts
}

// applyRewardLocked grants the reward of one completion at tp's level
// and mastery.
func (e *Engine) applyRewardLocked(task catalog.Task, tp progress.TaskProgress) Completion {
	c := Completion{
		TaskID:      task.TaskID(),
		Kind:        task.Kind(),
		Level:       tp.Level,
		MasteryTier: tp.MasteryTier,
	}

	switch t := task.(type) {
	case catalog.JobTask:
		job, _ := e.catalog.Jobs.Resolve(t.JobID)
		c.MoneyGain = job.MoneyBase * float64(e.state.Job.Level) * tp.MasteryMultiplier
		c.XPGain = job.XPBase * tp.MasteryMultiplier
		e.state.Money += c.MoneyGain
		e.metrics.RecordMoney(c.MoneyGain)
		c.JobLevelsGain = e.gainJobXPLocked(c.XPGain)

	case catalog.StatTask:
		reward := 1.0
		stat, ok := e.catalog.Stats.Resolve(t.StatID)
		if ok {
			reward = stat.Growth.RewardPerCompletion
		}
		c.StatID = t.StatID
		c.StatGain = reward * tp.MasteryMultiplier

		points := e.state.Stats[t.StatID].Points + c.StatGain
		if ok {
			points = stat.Clamp(points)
		}
		e.state.Stats[t.StatID] = catalog.StatPoints{Points: points}
	}
	return c
}
