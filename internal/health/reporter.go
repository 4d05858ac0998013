package health

import (
	"context"
	"sync/atomic"
	"time"
)

// Reporter adds liveness and readiness on top of a Manager.
type Reporter struct {
	*Manager

	startTime  time.Time
	inShutdown atomic.Bool
	version    string
}

// NewReporter creates a reporter for version.
func NewReporter(version string) *Reporter {
	return &Reporter{
		Manager:   NewManager(),
		startTime: time.Now(),
		version:   version,
	}
}

// MarkShutdown makes readiness fail from now on.
func (r *Reporter) MarkShutdown() {
	r.inShutdown.Store(true)
}

// IsShuttingDown reports whether MarkShutdown was called.
func (r *Reporter) IsShuttingDown() bool {
	return r.inShutdown.Load()
}

// Report is the body of a health response.
type Report struct {
	Status    Status             `json:"status" yaml:"status"`
	Version   string             `json:"version,omitempty" yaml:"version,omitempty"`
	Uptime    string             `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Checks    map[string]*Result `json:"checks,omitempty" yaml:"checks,omitempty"`
	Timestamp time.Time          `json:"timestamp" yaml:"timestamp"`
}

func (r *Reporter) report(status Status, checks map[string]*Result) *Report {
	return &Report{
		Status:    status,
		Version:   r.version,
		Uptime:    time.Since(r.startTime).Round(time.Second).String(),
		Checks:    checks,
		Timestamp: time.Now(),
	}
}

// Liveness only reports that the process responds; it runs no checks.
func (r *Reporter) Liveness(context.Context) *Report {
	status := StatusHealthy
	if r.inShutdown.Load() {
		status = StatusDegraded
	}
	return r.report(status, nil)
}

// Readiness runs every check. It is unhealthy once shutdown started.
func (r *Reporter) Readiness(ctx context.Context) *Report {
	if r.inShutdown.Load() {
		return r.report(StatusUnhealthy, nil)
	}
	checks := r.Check(ctx)
	return r.report(OverallStatus(checks), checks)
}
