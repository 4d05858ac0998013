// Package health runs checks against the pieces a game session depends
// on: save storage, loaded content and autosave.
//
//	manager := health.NewManager()
//	manager.AddChecker(health.NewStoreChecker(store))
//	manager.AddChecker(health.NewContentChecker(result))
//
//	results := manager.Check(ctx)
//	status := health.OverallStatus(results)
package health

import (
	"context"
	"time"
)

// Checker is one health check.
type Checker interface {
	// Name is lowercase with hyphens, e.g. "save-storage".
	Name() string

	// Check should respect the context deadline.
	Check(ctx context.Context) *Result
}

// Status is the outcome of a check.
type Status string

const (
	StatusHealthy Status = "healthy"
	// StatusDegraded means the game runs with reduced functionality,
	// e.g. on built-in content.
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string {
	return string(s)
}

// Result is what a check reports.
type Result struct {
	Status  Status         `json:"status" yaml:"status"`
	Message string         `json:"message" yaml:"message"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	Latency time.Duration  `json:"latency" yaml:"latency"`
}

// NewResult creates a result with the given status and message.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]any),
	}
}

// WithDetail adds a detail and returns the result for chaining.
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}
