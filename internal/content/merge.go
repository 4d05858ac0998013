package content

import (
	"sort"

	"github.com/felixgeelhaar/idleforge/internal/rawval"
)

type packRecord struct {
	meta   PackMetadata
	source RawPack
}

func toPackRecord(packID string, source RawPack) (packRecord, error) {
	metadata := map[string]any{}
	if source.Pack != nil {
		m, ok := rawval.Map(source.Pack)
		if !ok {
			return packRecord{}, mergeErrorf(ErrInvalidPack, "Pack '%s' has invalid pack metadata.", packID)
		}
		metadata = m
	}

	meta := PackMetadata{
		ID:            packID,
		Name:          packID,
		Version:       "0.0.0",
		LoreNamespace: packID,
		Dependencies:  []string{},
	}
	if name, ok := rawval.NonEmptyString(metadata["name"]); ok {
		meta.Name = name
	}
	if version, ok := rawval.NonEmptyString(metadata["version"]); ok {
		meta.Version = version
	}
	if lore, ok := rawval.NonEmptyString(metadata["loreNamespace"]); ok {
		meta.LoreNamespace = lore
	}
	if raw, present := metadata["dependencies"]; present && raw != nil {
		if _, isList := rawval.Slice(raw); isList {
			deps, ok := rawval.StringList(raw)
			if !ok {
				return packRecord{}, mergeErrorf(ErrInvalidPack, "Pack '%s' contains invalid dependency IDs.", packID)
			}
			meta.Dependencies = deps
		}
	}

	return packRecord{meta: meta, source: source}, nil
}

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// resolveOrder is a depth-first topological sort over the packs
// reachable from active. Dependencies come before dependents and are
// visited in lexicographic order.
func resolveOrder(active []string, packs map[string]packRecord) ([]string, error) {
	order := make([]string, 0, len(packs))
	states := make(map[string]visitState, len(packs))

	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		switch states[id] {
		case visited:
			return nil
		case visiting:
			return cycleError(append(append([]string(nil), path...), id))
		}

		pack, ok := packs[id]
		if !ok {
			return mergeErrorf(ErrMissingDependency, "Missing pack '%s' required by active pack selection.", id)
		}

		states[id] = visiting
		deps := append([]string(nil), pack.meta.Dependencies...)
		sort.Strings(deps)
		next := append(append([]string(nil), path...), id)
		for _, dep := range deps {
			if err := visit(dep, next); err != nil {
				return err
			}
		}
		states[id] = visited
		order = append(order, id)
		return nil
	}

	for _, id := range active {
		if err := visit(id, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

type collection struct {
	name    string
	entries []Entry
	index   map[string]int
}

func newCollection(name string) *collection {
	return &collection{name: name, entries: []Entry{}, index: map[string]int{}}
}

func (c *collection) add(packID string, entry Entry, duplicateMsg string) error {
	id, err := ResolveScopedID(packID, entry["id"])
	if err != nil {
		return err
	}
	if _, dup := c.index[id]; dup {
		return mergeErrorf(ErrDuplicateID, duplicateMsg, id)
	}
	merged := rawval.CloneMap(entry)
	merged["id"] = id
	merged["sourcePackId"] = packID
	c.index[id] = len(c.entries)
	c.entries = append(c.entries, merged)
	return nil
}

// mergeUnique appends entries of an equipment, tasks or skills source.
func (c *collection) mergeUnique(packID string, source any) error {
	if source == nil {
		return nil
	}
	items, ok := rawval.Slice(source)
	if !ok {
		return mergeErrorf(ErrInvalidPack, "Pack '%s' %s.json must be an array.", packID, c.name)
	}
	for i, item := range items {
		entry, ok := rawval.Map(item)
		if !ok {
			return mergeErrorf(ErrInvalidPack, "Pack '%s' %s[%d] must be an object.", packID, c.name, i)
		}
		if err := c.add(packID, entry, "Duplicate content id collision in "+c.name+": '%s'."); err != nil {
			return err
		}
	}
	return nil
}

// mergeStats accepts either a list of additions or an object with
// additions and overrides. Overrides shallow-merge onto an existing
// stat and re-tag it with the overriding pack.
func (c *collection) mergeStats(packID string, source any) error {
	if source == nil {
		return nil
	}

	var additions, overrides []any
	shapeErr := mergeErrorf(ErrInvalidPack, "Pack '%s' stats.json must be an array or { additions, overrides }.", packID)
	if list, ok := rawval.Slice(source); ok {
		additions = list
	} else if obj, ok := rawval.Map(source); ok {
		if raw := obj["additions"]; raw != nil {
			if additions, ok = rawval.Slice(raw); !ok {
				return shapeErr
			}
		}
		if raw := obj["overrides"]; raw != nil {
			if overrides, ok = rawval.Slice(raw); !ok {
				return shapeErr
			}
		}
	} else {
		return shapeErr
	}

	for i, item := range additions {
		entry, ok := rawval.Map(item)
		if !ok {
			return mergeErrorf(ErrInvalidPack, "Pack '%s' stats.additions[%d] must be an object.", packID, i)
		}
		if err := c.add(packID, entry, "Duplicate stat id collision: '%s'."); err != nil {
			return err
		}
	}

	for i, item := range overrides {
		entry, ok := rawval.Map(item)
		if !ok {
			return mergeErrorf(ErrInvalidPack, "Pack '%s' stats.overrides[%d] must be an object.", packID, i)
		}
		id, err := ResolveScopedID(packID, entry["id"])
		if err != nil {
			return err
		}
		pos, exists := c.index[id]
		if !exists {
			return mergeErrorf(ErrMissingOverrideTarget, "Pack '%s' attempted to override missing stat '%s'.", packID, id)
		}
		updated := rawval.CloneMap(c.entries[pos])
		for k, v := range entry {
			updated[k] = v
		}
		updated["id"] = id
		updated["sourcePackId"] = packID
		c.entries[pos] = updated
	}
	return nil
}

// Merge combines packs into one content set. When active is empty every
// pack is activated. Dependencies of active packs are pulled in and
// merged first. Any authoring error aborts the merge and no partial
// result is returned.
func Merge(packs map[string]RawPack, active []string) (*Merged, error) {
	packIDs := make([]string, 0, len(packs))
	for id := range packs {
		packIDs = append(packIDs, id)
	}
	sort.Strings(packIDs)

	records := make(map[string]packRecord, len(packIDs))
	for _, id := range packIDs {
		rec, err := toPackRecord(id, packs[id])
		if err != nil {
			return nil, err
		}
		records[id] = rec
	}

	activeIDs := dedupe(active)
	if len(activeIDs) == 0 {
		activeIDs = packIDs
	}
	for _, id := range activeIDs {
		if _, ok := records[id]; !ok {
			return nil, mergeErrorf(ErrActivePackNotFound, "Active pack '%s' does not exist.", id)
		}
	}

	order, err := resolveOrder(activeIDs, records)
	if err != nil {
		return nil, err
	}

	stats := newCollection("stats")
	equipment := newCollection("equipment")
	tasks := newCollection("tasks")
	skills := newCollection("skills")

	metadata := make([]PackMetadata, 0, len(order))
	for _, id := range order {
		rec := records[id]
		if err := stats.mergeStats(id, rec.source.Stats); err != nil {
			return nil, err
		}
		if err := equipment.mergeUnique(id, rec.source.Equipment); err != nil {
			return nil, err
		}
		if err := tasks.mergeUnique(id, rec.source.Tasks); err != nil {
			return nil, err
		}
		if err := skills.mergeUnique(id, rec.source.Skills); err != nil {
			return nil, err
		}

		meta := rec.meta
		meta.Dependencies = append([]string{}, meta.Dependencies...)
		metadata = append(metadata, meta)
	}

	return &Merged{
		ActivePackIDs: activeIDs,
		ResolvedOrder: order,
		Metadata:      metadata,
		Stats:         stats.entries,
		Equipment:     equipment.entries,
		Tasks:         tasks.entries,
		Skills:        skills.entries,
	}, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
