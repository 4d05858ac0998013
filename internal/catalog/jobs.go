package catalog

import "fmt"

// JobDefinition describes one paid job.
type JobDefinition struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	BaseSeconds float64 `json:"baseSeconds"`
	ScaleFactor float64 `json:"scaleFactor"`
	MoneyBase   float64 `json:"moneyBase"`
	XPBase      float64 `json:"xpBase"`
}

// JobRegistry is an immutable, ordered set of job definitions.
type JobRegistry struct {
	jobs  []JobDefinition
	index map[string]int
}

// NewJobRegistry builds a registry. Ids must be non-empty and unique.
func NewJobRegistry(defs []JobDefinition) (*JobRegistry, error) {
	r := &JobRegistry{
		jobs:  make([]JobDefinition, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for i, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("job[%d]: id must be a non-empty string", i)
		}
		if _, dup := r.index[def.ID]; dup {
			return nil, fmt.Errorf("job[%d]: duplicate id '%s'", i, def.ID)
		}
		r.index[def.ID] = len(r.jobs)
		r.jobs = append(r.jobs, def)
	}
	return r, nil
}

// DefaultJobs returns the built-in job registry.
func DefaultJobs() *JobRegistry {
	r, err := NewJobRegistry([]JobDefinition{
		{ID: "warehouse", Label: "Warehouse Shift", BaseSeconds: 3.2, ScaleFactor: 0.22, MoneyBase: 6, XPBase: 4},
		{ID: "courier", Label: "Courier Route", BaseSeconds: 4, ScaleFactor: 0.18, MoneyBase: 9, XPBase: 5},
		{ID: "artisan", Label: "Artisan Contract", BaseSeconds: 5.6, ScaleFactor: 0.16, MoneyBase: 14, XPBase: 7},
	})
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the job with exactly this id.
func (r *JobRegistry) Get(id string) (JobDefinition, bool) {
	i, ok := r.index[id]
	if !ok {
		return JobDefinition{}, false
	}
	return r.jobs[i], true
}

// Resolve looks up id, then its local part, then a unique local-id match.
func (r *JobRegistry) Resolve(id string) (JobDefinition, bool) {
	i, ok := resolveIndex(r.index, id, func(i int) string { return r.jobs[i].ID }, len(r.jobs))
	if !ok {
		return JobDefinition{}, false
	}
	return r.jobs[i], true
}

// All returns the jobs in registry order.
func (r *JobRegistry) All() []JobDefinition {
	return append([]JobDefinition(nil), r.jobs...)
}
