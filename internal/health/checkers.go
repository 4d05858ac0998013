package health

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/felixgeelhaar/idleforge/internal/storage"
)

// CheckKey is written and removed by StoreChecker. It never collides
// with the save key.
const CheckKey = "health-check"

// StoreChecker verifies the save store accepts a write and returns it.
type StoreChecker struct {
	store storage.KeyValueStore
}

// NewStoreChecker creates a checker for store.
func NewStoreChecker(store storage.KeyValueStore) *StoreChecker {
	return &StoreChecker{store: store}
}

func (c *StoreChecker) Name() string { return "save-storage" }

func (c *StoreChecker) Check(ctx context.Context) *Result {
	if c.store == nil {
		return Degraded("no save storage configured, progress is not persisted")
	}

	want := strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := c.store.Set(ctx, CheckKey, want); err != nil {
		return Unhealthy("save storage rejected a write").WithDetail("error", err.Error())
	}
	defer func() { _ = c.store.Delete(context.WithoutCancel(ctx), CheckKey) }()

	got, ok, err := c.store.Get(ctx, CheckKey)
	switch {
	case err != nil:
		return Unhealthy("save storage failed a read").WithDetail("error", err.Error())
	case !ok || got != want:
		return Unhealthy("save storage did not return the value written")
	}
	return Healthy("save storage is writable")
}

// ContentChecker reports which content a session runs on. Built-in
// content after a rejected pack set is degraded.
type ContentChecker struct {
	packs []string
	err   error
}

// NewContentChecker creates a checker from the result of loading
// content: the resolved pack order and the error that forced the
// built-in fallback, if any.
func NewContentChecker(packs []string, loadErr error) *ContentChecker {
	return &ContentChecker{packs: packs, err: loadErr}
}

func (c *ContentChecker) Name() string { return "content" }

func (c *ContentChecker) Check(context.Context) *Result {
	if c.err != nil {
		return Degraded("content packs rejected, running on built-in content").
			WithDetail("error", c.err.Error())
	}
	if len(c.packs) == 0 {
		return Healthy("running on built-in content")
	}
	return Healthy(fmt.Sprintf("%d content pack(s) loaded", len(c.packs))).
		WithDetail("packs", c.packs)
}

// AutosaveChecker reports the outcome of the most recent save.
type AutosaveChecker struct {
	lastSave func() (time.Time, error)
	maxAge   time.Duration
	now      func() time.Time
}

// NewAutosaveChecker creates a checker over lastSave. A successful save
// older than maxAge is degraded.
func NewAutosaveChecker(lastSave func() (time.Time, error), maxAge time.Duration) *AutosaveChecker {
	return &AutosaveChecker{lastSave: lastSave, maxAge: maxAge, now: time.Now}
}

func (c *AutosaveChecker) Name() string { return "autosave" }

func (c *AutosaveChecker) Check(context.Context) *Result {
	at, err := c.lastSave()
	if err != nil {
		return Unhealthy("last save failed").WithDetail("error", err.Error())
	}
	if at.IsZero() {
		return Healthy("no save attempted yet")
	}

	age := c.now().Sub(at)
	if c.maxAge > 0 && age > c.maxAge {
		return Degraded("last save is stale").WithDetail("age", age.Round(time.Second).String())
	}
	return Healthy("last save succeeded").WithDetail("age", age.Round(time.Second).String())
}
