package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/idleforge/internal/storage"
)

type brokenStore struct{ storage.MemoryStore }

func (*brokenStore) Set(context.Context, string, string) error { return errors.New("disk full") }

type staticChecker struct {
	name   string
	result *Result
	delay  time.Duration
}

func (c staticChecker) Name() string { return c.name }

func (c staticChecker) Check(ctx context.Context) *Result {
	select {
	case <-time.After(c.delay):
		return c.result
	case <-ctx.Done():
		return Unhealthy("timed out")
	}
}

func TestStoreChecker(t *testing.T) {
	ctx := context.Background()

	mem := storage.NewMemoryStore()
	r := NewStoreChecker(mem).Check(ctx)
	assert.Equal(t, StatusHealthy, r.Status)
	_, ok, err := mem.Get(ctx, CheckKey)
	require.NoError(t, err)
	assert.False(t, ok, "check key is removed")

	r = NewStoreChecker(&brokenStore{}).Check(ctx)
	assert.Equal(t, StatusUnhealthy, r.Status)
	assert.Equal(t, "disk full", r.Details["error"])

	r = NewStoreChecker(nil).Check(ctx)
	assert.Equal(t, StatusDegraded, r.Status)
}

func TestContentChecker(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, StatusHealthy, NewContentChecker([]string{"base"}, nil).Check(ctx).Status)
	assert.Equal(t, StatusHealthy, NewContentChecker(nil, nil).Check(ctx).Status)
	assert.Equal(t, StatusDegraded, NewContentChecker(nil, errors.New("cycle")).Check(ctx).Status)
}

func TestAutosaveChecker(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		at   time.Time
		err  error
		want Status
	}{
		{"never saved", time.Time{}, nil, StatusHealthy},
		{"recent", now.Add(-5 * time.Second), nil, StatusHealthy},
		{"stale", now.Add(-10 * time.Minute), nil, StatusDegraded},
		{"failed", now.Add(-5 * time.Second), errors.New("quota exceeded"), StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewAutosaveChecker(func() (time.Time, error) { return tt.at, tt.err }, time.Minute)
			c.now = func() time.Time { return now }
			assert.Equal(t, tt.want, c.Check(context.Background()).Status)
		})
	}
}

func TestManagerCheck(t *testing.T) {
	m := NewManager().WithTimeout(50 * time.Millisecond)
	m.AddChecker(staticChecker{name: "ok", result: Healthy("fine")})
	m.AddChecker(staticChecker{name: "slow", result: Healthy("late"), delay: time.Second})
	m.AddChecker(staticChecker{name: "nil"})

	assert.Equal(t, []string{"ok", "slow", "nil"}, m.Names())

	results := m.Check(context.Background())
	require.Len(t, results, 3)
	assert.Equal(t, StatusHealthy, results["ok"].Status)
	assert.Equal(t, StatusUnhealthy, results["slow"].Status)
	assert.Equal(t, StatusUnhealthy, results["nil"].Status)
}

func TestOverallStatus(t *testing.T) {
	assert.Equal(t, StatusHealthy, OverallStatus(nil))
	assert.Equal(t, StatusDegraded, OverallStatus(map[string]*Result{
		"a": Healthy(""), "b": Degraded(""),
	}))
	assert.Equal(t, StatusUnhealthy, OverallStatus(map[string]*Result{
		"a": Degraded(""), "b": Unhealthy(""),
	}))
}

func TestReporter(t *testing.T) {
	ctx := context.Background()
	p := NewReporter("1.2.3")
	p.AddChecker(staticChecker{name: "content", result: Degraded("built-in")})

	live := p.Liveness(ctx)
	assert.Equal(t, StatusHealthy, live.Status)
	assert.Equal(t, "1.2.3", live.Version)
	assert.Empty(t, live.Checks)

	ready := p.Readiness(ctx)
	assert.Equal(t, StatusDegraded, ready.Status)
	assert.Contains(t, ready.Checks, "content")

	p.MarkShutdown()
	assert.True(t, p.IsShuttingDown())
	assert.Equal(t, StatusDegraded, p.Liveness(ctx).Status)
	assert.Equal(t, StatusUnhealthy, p.Readiness(ctx).Status)
}
