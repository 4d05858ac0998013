package content

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basePacks() map[string]RawPack {
	return map[string]RawPack{
		"base": {
			Pack:      map[string]any{"name": "Base", "version": "1.0.0"},
			Stats:     []any{map[string]any{"id": "strength", "baseValue": 1.0}},
			Equipment: []any{map[string]any{"id": "gloves", "name": "Gloves"}},
		},
		"expansion": {
			Pack: map[string]any{"name": "Expansion", "dependencies": []any{"base"}},
			Stats: map[string]any{
				"overrides": []any{map[string]any{"id": "base:strength", "baseValue": 5.0}},
			},
			Tasks: []any{map[string]any{"id": "quest", "type": "stat", "stat": "strength"}},
		},
	}
}

func TestMergeDeterministic(t *testing.T) {
	merged, err := Merge(basePacks(), []string{"expansion"})
	require.NoError(t, err)

	assert.Equal(t, []string{"expansion"}, merged.ActivePackIDs)
	assert.Equal(t, []string{"base", "expansion"}, merged.ResolvedOrder)

	require.Len(t, merged.Stats, 1)
	assert.Equal(t, "base:strength", merged.Stats[0]["id"])
	assert.Equal(t, 5.0, merged.Stats[0]["baseValue"])
	assert.Equal(t, "expansion", merged.Stats[0]["sourcePackId"])

	require.Len(t, merged.Equipment, 1)
	assert.Equal(t, "base:gloves", merged.Equipment[0]["id"])
	assert.Equal(t, "base", merged.Equipment[0]["sourcePackId"])

	require.Len(t, merged.Tasks, 1)
	assert.Equal(t, "expansion:quest", merged.Tasks[0]["id"])
	assert.Empty(t, merged.Skills)

	require.Len(t, merged.Metadata, 2)
	assert.Equal(t, PackMetadata{
		ID: "base", Name: "Base", Version: "1.0.0", Dependencies: []string{}, LoreNamespace: "base",
	}, merged.Metadata[0])
	assert.Equal(t, []string{"base"}, merged.Metadata[1].Dependencies)
	assert.Equal(t, "0.0.0", merged.Metadata[1].Version)
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	packs := basePacks()
	_, err := Merge(packs, nil)
	require.NoError(t, err)

	stats := packs["base"].Stats.([]any)
	assert.Equal(t, "strength", stats[0].(map[string]any)["id"])
	assert.Equal(t, 1.0, stats[0].(map[string]any)["baseValue"])
}

func TestMergeDigestStable(t *testing.T) {
	a, err := Merge(basePacks(), nil)
	require.NoError(t, err)
	b, err := Merge(basePacks(), []string{"base", "expansion", "base"})
	require.NoError(t, err)

	da, err := a.Digest()
	require.NoError(t, err)
	db, err := b.Digest()
	require.NoError(t, err)

	assert.Equal(t, da, db)
	assert.Len(t, da, 64)
}

func TestMergeErrors(t *testing.T) {
	tests := []struct {
		name    string
		packs   map[string]RawPack
		active  []string
		kind    error
		message string
	}{
		{
			name: "duplicate equipment across packs",
			packs: map[string]RawPack{
				"base":  {Equipment: []any{map[string]any{"id": "shared"}}},
				"other": {Equipment: []any{map[string]any{"id": "base:shared"}}},
			},
			kind:    ErrDuplicateID,
			message: "Duplicate content id collision in equipment: 'base:shared'.",
		},
		{
			name: "duplicate stat addition",
			packs: map[string]RawPack{
				"base": {Stats: []any{map[string]any{"id": "a"}, map[string]any{"id": "base:a"}}},
			},
			kind:    ErrDuplicateID,
			message: "Duplicate stat id collision: 'base:a'.",
		},
		{
			name: "missing dependency",
			packs: map[string]RawPack{
				"expansion": {Pack: map[string]any{"dependencies": []any{"base"}}},
			},
			kind:    ErrMissingDependency,
			message: "Missing pack 'base' required by active pack selection.",
		},
		{
			name: "cycle",
			packs: map[string]RawPack{
				"a": {Pack: map[string]any{"dependencies": []any{"b"}}},
				"b": {Pack: map[string]any{"dependencies": []any{"a"}}},
			},
			active:  []string{"a"},
			kind:    ErrDependencyCycle,
			message: "Detected cyclic pack dependency: a -> b -> a",
		},
		{
			name: "missing override target",
			packs: map[string]RawPack{
				"base": {Stats: map[string]any{"overrides": []any{map[string]any{"id": "ghost"}}}},
			},
			kind:    ErrMissingOverrideTarget,
			message: "Pack 'base' attempted to override missing stat 'base:ghost'.",
		},
		{
			name:    "unknown active pack",
			packs:   map[string]RawPack{"base": {}},
			active:  []string{"dlc"},
			kind:    ErrActivePackNotFound,
			message: "Active pack 'dlc' does not exist.",
		},
		{
			name:    "metadata not an object",
			packs:   map[string]RawPack{"base": {Pack: []any{}}},
			kind:    ErrInvalidPack,
			message: "Pack 'base' has invalid pack metadata.",
		},
		{
			name:    "blank dependency",
			packs:   map[string]RawPack{"base": {Pack: map[string]any{"dependencies": []any{""}}}},
			kind:    ErrInvalidPack,
			message: "Pack 'base' contains invalid dependency IDs.",
		},
		{
			name:    "tasks not a list",
			packs:   map[string]RawPack{"base": {Tasks: map[string]any{}}},
			kind:    ErrInvalidPack,
			message: "Pack 'base' tasks.json must be an array.",
		},
		{
			name:    "skill not an object",
			packs:   map[string]RawPack{"base": {Skills: []any{"fireball"}}},
			kind:    ErrInvalidPack,
			message: "Pack 'base' skills[0] must be an object.",
		},
		{
			name:    "stats wrong shape",
			packs:   map[string]RawPack{"base": {Stats: "strength"}},
			kind:    ErrInvalidPack,
			message: "Pack 'base' stats.json must be an array or { additions, overrides }.",
		},
		{
			name:    "entry without id",
			packs:   map[string]RawPack{"base": {Tasks: []any{map[string]any{"label": "x"}}}},
			kind:    ErrInvalidID,
			message: "content entry id must be a non-empty string.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, err := Merge(tt.packs, tt.active)
			require.Error(t, err)
			assert.Nil(t, merged)
			assert.True(t, errors.Is(err, tt.kind), "expected kind %v, got %v", tt.kind, err)
			assert.Equal(t, tt.message, err.Error())

			var mergeErr *MergeError
			assert.True(t, errors.As(err, &mergeErr))
		})
	}
}

func TestResolveOrderDependenciesSorted(t *testing.T) {
	packs := map[string]RawPack{
		"app":   {Pack: map[string]any{"dependencies": []any{"zeta", "alpha"}}},
		"zeta":  {Pack: map[string]any{"dependencies": []any{"core"}}},
		"alpha": {Pack: map[string]any{"dependencies": []any{"core"}}},
		"core":  {},
	}

	merged, err := Merge(packs, []string{"app"})
	require.NoError(t, err)
	assert.Equal(t, []string{"core", "alpha", "zeta", "app"}, merged.ResolvedOrder)
}

func TestResolveScopedID(t *testing.T) {
	tests := []struct {
		name    string
		packID  string
		rawID   any
		want    string
		wantErr bool
	}{
		{name: "prefixed", packID: "base", rawID: "gloves", want: "base:gloves"},
		{name: "already scoped", packID: "dlc", rawID: "base:gloves", want: "base:gloves"},
		{name: "empty namespace", packID: "base", rawID: ":gloves", wantErr: true},
		{name: "empty local", packID: "base", rawID: "base:", wantErr: true},
		{name: "empty pack", packID: "", rawID: "gloves", wantErr: true},
		{name: "non-string id", packID: "base", rawID: 7.0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveScopedID(tt.packID, tt.rawID)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
