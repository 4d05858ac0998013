package state

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/idleforge/internal/catalog"
	"github.com/felixgeelhaar/idleforge/internal/progress"
)

func TestNew(t *testing.T) {
	s := New(catalog.DefaultStats())

	assert.Len(t, s.Stats, 3)
	assert.Equal(t, 1, s.Job.Level)
	assert.Zero(t, s.Job.XP)
	assert.Zero(t, s.Money)
	assert.NotNil(t, s.OwnedEquipmentIDs)
	assert.NotNil(t, s.EquippedBySlot)

	empty := New(nil)
	assert.Empty(t, empty.Stats)
}

func TestClone(t *testing.T) {
	s := New(catalog.DefaultStats())
	s.TaskProgress["strength"] = progress.TaskProgress{Level: 2, MasteryMultiplier: 1}
	s.OwnedEquipmentIDs = append(s.OwnedEquipmentIDs, "gloves")
	s.EquippedBySlot["hands"] = "gloves"

	c := s.Clone()
	c.Stats["strength"] = catalog.StatPoints{Points: 99}
	c.TaskProgress["strength"] = progress.TaskProgress{Level: 50}
	c.OwnedEquipmentIDs[0] = "boots"
	c.EquippedBySlot["hands"] = "mittens"
	c.ItemXP["gloves"] = 3

	assert.Equal(t, 0.0, s.Stats["strength"].Points)
	assert.Equal(t, 2.0, s.TaskProgress["strength"].Level)
	assert.Equal(t, "gloves", s.OwnedEquipmentIDs[0])
	assert.Equal(t, "gloves", s.EquippedBySlot["hands"])
	assert.Empty(t, s.ItemXP)

	var zero RuntimeState
	assert.NotNil(t, zero.Clone().TaskProgress)
}

func TestJobXPRequired(t *testing.T) {
	assert.InDelta(t, 24.0, JobXPRequired(1), 1e-9)
	assert.InDelta(t, 30.72, JobXPRequired(2), 1e-9)
	assert.InDelta(t, 24*1.28*1.28, JobXPRequired(3), 1e-9)
	assert.Equal(t, JobXPRequired(1), JobXPRequired(0))
}

func TestJobApplyLevelUps(t *testing.T) {
	j := JobState{XP: JobXPRequired(1) + JobXPRequired(2) + 1, Level: 1}

	assert.Equal(t, 2, j.ApplyLevelUps())
	assert.Equal(t, 3, j.Level)
	assert.InDelta(t, 1.0, j.XP, 1e-9)

	assert.Zero(t, j.ApplyLevelUps())
}

func TestJobNormalized(t *testing.T) {
	tests := []struct {
		name string
		in   JobState
		want JobState
	}{
		{name: "valid", in: JobState{XP: 3.5, Level: 4}, want: JobState{XP: 3.5, Level: 4}},
		{name: "negative xp", in: JobState{XP: -50, Level: 2}, want: JobState{Level: 2}},
		{name: "nan xp", in: JobState{XP: math.NaN(), Level: 2}, want: JobState{Level: 2}},
		{name: "infinite xp", in: JobState{XP: math.Inf(1), Level: 2}, want: JobState{Level: 2}},
		{name: "level below one", in: JobState{XP: 1, Level: -3}, want: JobState{XP: 1, Level: 1}},
		{name: "xp at threshold", in: JobState{XP: 24, Level: 1}, want: JobState{Level: 2}},
		{name: "xp over two thresholds", in: JobState{XP: 24 + 30.72 + 2, Level: 1}, want: JobState{XP: 2, Level: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalized()
			assert.Equal(t, tt.want.Level, got.Level)
			assert.InDelta(t, tt.want.XP, got.XP, 1e-9)
			assert.GreaterOrEqual(t, got.XP, 0.0)
			assert.Less(t, got.XP, JobXPRequired(got.Level))
		})
	}
}
