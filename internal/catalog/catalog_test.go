package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/idleforge/internal/content"
)

func floatPtr(f float64) *float64 { return &f }

func TestDefaultRegistries(t *testing.T) {
	stats := DefaultStats()
	var ids []string
	for _, def := range stats.All() {
		ids = append(ids, def.ID)
	}
	assert.Equal(t, []string{"strength", "endurance", "dexterity"}, ids)

	str, ok := stats.Get("strength")
	require.True(t, ok)
	assert.Equal(t, CategoryCore, str.Category)
	assert.Equal(t, DefaultGrowth(), str.Growth)
	assert.True(t, math.IsInf(str.Cap(), 1))

	_, ok = stats.Get("charisma")
	assert.False(t, ok)

	jobs := DefaultJobs()
	courier, ok := jobs.Get("courier")
	require.True(t, ok)
	assert.Equal(t, 4.0, courier.BaseSeconds)
	assert.Equal(t, 9.0, courier.MoneyBase)
	assert.Len(t, jobs.All(), 3)
}

func TestStatRegistryResolve(t *testing.T) {
	stats, err := NewStatRegistry([]StatDefinition{
		{ID: "base:strength", Label: "Strength", Category: CategoryCore},
		{ID: "base:luck", Label: "Luck", Category: CategoryUtility},
		{ID: "dlc:luck", Label: "Luck", Category: CategoryUtility},
	})
	require.NoError(t, err)

	s, ok := stats.Resolve("strength")
	require.True(t, ok)
	assert.Equal(t, "base:strength", s.ID)

	s, ok = stats.Resolve("other:strength")
	require.True(t, ok)
	assert.Equal(t, "base:strength", s.ID)

	_, ok = stats.Resolve("luck")
	assert.False(t, ok, "ambiguous local id must not resolve")

	assert.Len(t, stats.ByCategory(CategoryUtility), 2)
	assert.Empty(t, stats.ByCategory(CategoryCombat))
}

func TestNewStatRegistryRejects(t *testing.T) {
	_, err := NewStatRegistry([]StatDefinition{{ID: "", Category: CategoryCore}})
	assert.Error(t, err)

	_, err = NewStatRegistry([]StatDefinition{
		{ID: "a", Category: CategoryCore},
		{ID: "a", Category: CategoryCore},
	})
	assert.ErrorContains(t, err, "duplicate id 'a'")

	_, err = NewStatRegistry([]StatDefinition{{ID: "a", Category: "magic"}})
	assert.ErrorContains(t, err, "unknown category")
}

func TestSanitize(t *testing.T) {
	stats, err := NewStatRegistry([]StatDefinition{
		{ID: "strength", Category: CategoryCore, BaseValue: 1, CapPoints: floatPtr(10)},
		{ID: "luck", Category: CategoryUtility, BaseValue: 0},
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input any
		want  map[string]StatPoints
	}{
		{
			name:  "nil input",
			input: nil,
			want:  map[string]StatPoints{"strength": {1}, "luck": {0}},
		},
		{
			name: "raw values clamped",
			input: map[string]any{
				"strength": map[string]any{"points": 50.0},
				"luck":     map[string]any{"points": -3.0},
				"unknown":  map[string]any{"points": 9.0},
			},
			want: map[string]StatPoints{"strength": {10}, "luck": {0}},
		},
		{
			name: "non-finite and malformed",
			input: map[string]any{
				"strength": map[string]any{"points": math.NaN()},
				"luck":     "lots",
			},
			want: map[string]StatPoints{"strength": {1}, "luck": {0}},
		},
		{
			name:  "typed input",
			input: map[string]StatPoints{"strength": {4.5}, "luck": {math.Inf(1)}},
			want:  map[string]StatPoints{"strength": {4.5}, "luck": {0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stats.Sanitize(tt.input)
			assert.Equal(t, tt.want, got)
			for _, def := range stats.All() {
				assert.GreaterOrEqual(t, got[def.ID].Points, def.BaseValue)
				assert.LessOrEqual(t, got[def.ID].Points, def.Cap())
			}
		})
	}
}

func TestCreateDefaultState(t *testing.T) {
	state := DefaultStats().CreateDefaultState()
	assert.Equal(t, map[string]StatPoints{
		"strength":  {0},
		"endurance": {0},
		"dexterity": {0},
	}, state)
}

func TestBuildTaskTable(t *testing.T) {
	stats := DefaultStats()
	jobs := DefaultJobs()

	t.Run("defaults", func(t *testing.T) {
		table := BuildTaskTable(DefaultTaskDefinitions(stats, jobs), stats, jobs)
		assert.Equal(t, []string{"strength", "endurance", "dexterity", "warehouse", "courier", "artisan", "idle"}, table.Order())
		assert.Equal(t, []string{"strength", "endurance", "dexterity", "warehouse", "courier", "artisan"}, table.ProgressIDs())

		task, ok := table.Get("strength")
		require.True(t, ok)
		st, ok := task.(StatTask)
		require.True(t, ok)
		assert.Equal(t, "Strength Training", st.Label)
		assert.Equal(t, "strength", st.StatID)
	})

	t.Run("skips bad entries and synthesizes idle", func(t *testing.T) {
		defs := []TaskDefinition{
			{ID: "", Type: "stat", Stat: "strength"},
			{ID: "base:lift", Type: "stat", Stat: "base:strength"},
			{ID: "base:lift", Type: "job", Job: "courier"},
			{ID: "base:ghost", Type: "stat", Stat: "charisma"},
			{ID: "base:deliver", Type: "job", Job: "base:courier", Label: "Deliver"},
			{ID: "base:dance", Type: "emote"},
		}
		table := BuildTaskTable(defs, stats, jobs)

		assert.Equal(t, []string{"base:lift", "base:deliver", "idle"}, table.Order())

		lift, _ := table.Get("base:lift")
		assert.Equal(t, KindStat, lift.Kind())
		assert.Equal(t, "strength", lift.(StatTask).StatID)
		assert.Equal(t, "Strength Training", lift.TaskLabel())

		deliver, _ := table.Get("base:deliver")
		assert.Equal(t, JobTask{ID: "base:deliver", Label: "Deliver", JobID: "courier"}, deliver)

		idle, ok := table.Get(IdleTaskID)
		require.True(t, ok)
		assert.Equal(t, KindIdle, idle.Kind())
		assert.False(t, table.Has("base:ghost"))
	})

	t.Run("authored idle keeps label", func(t *testing.T) {
		table := BuildTaskTable([]TaskDefinition{{ID: "idle", Type: "idle", Label: "Rest"}}, stats, jobs)
		idle, _ := table.Get(IdleTaskID)
		assert.Equal(t, "Rest", idle.TaskLabel())
		assert.Equal(t, []string{"idle"}, table.Order())
		assert.Empty(t, table.ProgressIDs())
	})
}

func TestFromContent(t *testing.T) {
	t.Run("nil merged is default", func(t *testing.T) {
		cat, err := FromContent(nil)
		require.NoError(t, err)
		assert.Equal(t, 3, cat.Stats.Len())
	})

	t.Run("pack stats and tasks", func(t *testing.T) {
		merged := &content.Merged{
			Stats: []content.Entry{
				{"id": "base:strength", "label": "Strength", "baseValue": 1.0, "sourcePackId": "base",
					"growth": map[string]any{"taskBaseSeconds": 3.0}},
				{"id": "base:wit", "category": "social", "caps": map[string]any{"points": 25}},
			},
			Tasks: []content.Entry{
				{"id": "base:strength", "type": "stat", "stat": "strength"},
				{"id": "base:warehouse", "type": "job", "job": "warehouse"},
			},
		}

		cat, err := FromContent(merged)
		require.NoError(t, err)

		str, ok := cat.Stats.Get("base:strength")
		require.True(t, ok)
		assert.Equal(t, 1.0, str.BaseValue)
		assert.Equal(t, 3.0, str.Growth.TaskBaseSeconds)
		assert.Equal(t, 1.0, str.Growth.RewardPerCompletion)

		wit, ok := cat.Stats.Get("base:wit")
		require.True(t, ok)
		assert.Equal(t, "wit", wit.Label)
		assert.Equal(t, CategorySocial, wit.Category)
		assert.Equal(t, 25.0, wit.Cap())

		assert.Equal(t, []string{"base:strength", "base:warehouse", "idle"}, cat.Tasks.Order())
		task, _ := cat.Tasks.Get("base:strength")
		assert.Equal(t, "base:strength", task.(StatTask).StatID)
	})

	t.Run("scalars written as strings", func(t *testing.T) {
		merged := &content.Merged{
			Stats: []content.Entry{
				{"id": "frontier:survival", "baseValue": "2", "category": "utility",
					"growth": map[string]any{"taskScaleFactor": "0.5"},
					"caps": map[string]any{"points": "1000"}},
			},
		}

		cat, err := FromContent(merged)
		require.NoError(t, err)

		survival, ok := cat.Stats.Get("frontier:survival")
		require.True(t, ok)
		assert.Equal(t, 2.0, survival.BaseValue)
		assert.Equal(t, 0.5, survival.Growth.TaskScaleFactor)
		assert.Equal(t, 1000.0, survival.Cap())
	})

	t.Run("unparseable number fails", func(t *testing.T) {
		_, err := DecodeStatDefinitions([]map[string]any{{"id": "base:x", "baseValue": "lots"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stat[0]")
	})

	t.Run("invalid category fails", func(t *testing.T) {
		_, err := FromContent(&content.Merged{Stats: []content.Entry{{"id": "base:x", "category": "magic"}}})
		assert.Error(t, err)
	})
}
