package catalog

import "fmt"

// IdleTaskID is the reserved id of the task that never completes.
const IdleTaskID = "idle"

// Kind tags the task variants.
type Kind string

const (
	KindStat Kind = "stat"
	KindJob  Kind = "job"
	KindIdle Kind = "idle"
)

// Task is one selectable activity. Implementations are StatTask,
// JobTask and IdleTask; switch on the concrete type to dispatch.
type Task interface {
	TaskID() string
	TaskLabel() string
	Kind() Kind
	isTask()
}

// StatTask trains a stat.
type StatTask struct {
	ID     string
	Label  string
	StatID string
}

// JobTask earns money and job experience.
type JobTask struct {
	ID    string
	Label string
	JobID string
}

// IdleTask does nothing.
type IdleTask struct {
	ID    string
	Label string
}

func (t StatTask) TaskID() string    { return t.ID }
func (t StatTask) TaskLabel() string { return t.Label }
func (StatTask) Kind() Kind          { return KindStat }
func (StatTask) isTask()             {}

func (t JobTask) TaskID() string    { return t.ID }
func (t JobTask) TaskLabel() string { return t.Label }
func (JobTask) Kind() Kind          { return KindJob }
func (JobTask) isTask()             {}

func (t IdleTask) TaskID() string    { return t.ID }
func (t IdleTask) TaskLabel() string { return t.Label }
func (IdleTask) Kind() Kind          { return KindIdle }
func (IdleTask) isTask()             {}

// TaskDefinition is the authored shape of a task in tasks.json.
type TaskDefinition struct {
	ID    string `json:"id" mapstructure:"id"`
	Label string `json:"label,omitempty" mapstructure:"label"`
	Type  string `json:"type" mapstructure:"type"`
	Stat  string `json:"stat,omitempty" mapstructure:"stat"`
	Job   string `json:"job,omitempty" mapstructure:"job"`
}

// DefaultTaskDefinitions returns one training task per stat, one task
// per job and the idle task.
func DefaultTaskDefinitions(stats *StatRegistry, jobs *JobRegistry) []TaskDefinition {
	defs := make([]TaskDefinition, 0, stats.Len()+len(jobs.jobs)+1)
	for _, s := range stats.stats {
		defs = append(defs, TaskDefinition{ID: s.ID, Label: s.Label + " Training", Type: string(KindStat), Stat: s.ID})
	}
	for _, j := range jobs.jobs {
		defs = append(defs, TaskDefinition{ID: j.ID, Label: j.Label, Type: string(KindJob), Job: j.ID})
	}
	return append(defs, TaskDefinition{ID: IdleTaskID, Label: "Idle", Type: string(KindIdle)})
}

// DecodeTaskDefinitions converts merged raw task entries.
func DecodeTaskDefinitions(entries []map[string]any) ([]TaskDefinition, error) {
	defs := make([]TaskDefinition, 0, len(entries))
	for i, entry := range entries {
		var def TaskDefinition
		if err := decodeEntry(entry, &def); err != nil {
			return nil, fmt.Errorf("task[%d]: %w", i, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// TaskTable is the resolved set of tasks, always containing "idle".
type TaskTable struct {
	tasks map[string]Task
	order []string
}

// BuildTaskTable resolves definitions against the registries. Entries
// without an id, repeated ids, unknown types and links that resolve to
// no stat or job are skipped. An idle task is synthesized when absent
// and is always ordered last.
func BuildTaskTable(defs []TaskDefinition, stats *StatRegistry, jobs *JobRegistry) *TaskTable {
	t := &TaskTable{tasks: make(map[string]Task, len(defs)+1)}
	for _, def := range defs {
		if def.ID == "" {
			continue
		}
		if _, seen := t.tasks[def.ID]; seen {
			continue
		}

		var task Task
		switch Kind(def.Type) {
		case KindStat:
			link := def.Stat
			if link == "" {
				link = def.ID
			}
			stat, ok := stats.Resolve(link)
			if !ok {
				continue
			}
			label := def.Label
			if label == "" {
				label = stat.Label + " Training"
			}
			task = StatTask{ID: def.ID, Label: label, StatID: stat.ID}
		case KindJob:
			link := def.Job
			if link == "" {
				link = def.ID
			}
			job, ok := jobs.Resolve(link)
			if !ok {
				continue
			}
			label := def.Label
			if label == "" {
				label = job.Label
			}
			task = JobTask{ID: def.ID, Label: label, JobID: job.ID}
		case KindIdle:
			label := def.Label
			if label == "" {
				label = "Idle"
			}
			task = IdleTask{ID: def.ID, Label: label}
		default:
			continue
		}

		t.tasks[def.ID] = task
		if def.ID != IdleTaskID {
			t.order = append(t.order, def.ID)
		}
	}

	if _, ok := t.tasks[IdleTaskID]; !ok {
		t.tasks[IdleTaskID] = IdleTask{ID: IdleTaskID, Label: "Idle"}
	}
	t.order = append(t.order, IdleTaskID)
	return t
}

// Get returns the task with this id.
func (t *TaskTable) Get(id string) (Task, bool) {
	task, ok := t.tasks[id]
	return task, ok
}

// Order returns every task id with idle last.
func (t *TaskTable) Order() []string {
	return append([]string(nil), t.order...)
}

// ProgressIDs returns the ids that carry progress: every task that is
// not an idle task, in table order.
func (t *TaskTable) ProgressIDs() []string {
	ids := make([]string, 0, len(t.order))
	for _, id := range t.order {
		if t.tasks[id].Kind() != KindIdle {
			ids = append(ids, id)
		}
	}
	return ids
}

// Has reports whether id is a known task.
func (t *TaskTable) Has(id string) bool {
	_, ok := t.tasks[id]
	return ok
}

