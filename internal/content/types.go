// Package content loads and merges declarative content packs.
package content

// Entry is one authored content record, as decoded from JSON or YAML.
type Entry = map[string]any

// RawPack is the decoded file set of one pack directory. Each field
// holds whatever the corresponding file contained, or nil when the
// file was absent.
type RawPack struct {
	Pack      any `json:"pack,omitempty"`
	Stats     any `json:"stats,omitempty"`
	Equipment any `json:"equipment,omitempty"`
	Tasks     any `json:"tasks,omitempty"`
	Skills    any `json:"skills,omitempty"`
}

// PackMetadata is the normalized pack.json of one pack.
type PackMetadata struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Version       string   `json:"version" yaml:"version"`
	Dependencies  []string `json:"dependencies" yaml:"dependencies"`
	LoreNamespace string   `json:"loreNamespace" yaml:"loreNamespace"`
}

// Merged is the collision-free union of the active packs and their
// transitive dependencies.
type Merged struct {
	ActivePackIDs []string       `json:"activePackIds" yaml:"activePackIds"`
	ResolvedOrder []string       `json:"resolvedOrder" yaml:"resolvedOrder"`
	Metadata      []PackMetadata `json:"metadata" yaml:"metadata"`
	Stats         []Entry        `json:"stats" yaml:"stats"`
	Equipment     []Entry        `json:"equipment" yaml:"equipment"`
	Tasks         []Entry        `json:"tasks" yaml:"tasks"`
	Skills        []Entry        `json:"skills" yaml:"skills"`
}

// EquipmentList returns the merged equipment as a raw list for schema
// validation.
func (m *Merged) EquipmentList() []any {
	out := make([]any, len(m.Equipment))
	for i, e := range m.Equipment {
		out[i] = e
	}
	return out
}
