package observability

import (
	"context"
	"sort"
	"sync"
	"time"
)

// HealthStatus represents the health state of a dependency.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResult is the outcome of one check.
type HealthCheckResult struct {
	Name     string        `json:"name"`
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// HealthChecker probes one dependency.
type HealthChecker func(ctx context.Context) HealthCheckResult

// HealthReport aggregates the checks of one run.
type HealthReport struct {
	Status    HealthStatus        `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
	Checks    []HealthCheckResult `json:"checks"`
}

// HealthRegistry runs the registered checks concurrently.
type HealthRegistry struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{checkers: make(map[string]HealthChecker)}
}

// Register adds or replaces the checker for name.
func (r *HealthRegistry) Register(name string, checker HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// Check runs every checker and returns results sorted by name.
// The overall status is the worst individual status.
func (r *HealthRegistry) Check(ctx context.Context) HealthReport {
	r.mu.RLock()
	names := make([]string, 0, len(r.checkers))
	checkers := make([]HealthChecker, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		checkers = append(checkers, r.checkers[name])
	}
	r.mu.RUnlock()

	results := make([]HealthCheckResult, len(checkers))
	var wg sync.WaitGroup
	for i, checker := range checkers {
		wg.Add(1)
		go func(i int, checker HealthChecker) {
			defer wg.Done()
			start := time.Now()
			result := checker(ctx)
			result.Name = names[i]
			result.Duration = time.Since(start)
			results[i] = result
		}(i, checker)
	}
	wg.Wait()

	report := HealthReport{Status: HealthStatusHealthy, Timestamp: time.Now().UTC(), Checks: results}
	for _, result := range results {
		switch result.Status {
		case HealthStatusUnhealthy:
			report.Status = HealthStatusUnhealthy
		case HealthStatusDegraded:
			if report.Status == HealthStatusHealthy {
				report.Status = HealthStatusDegraded
			}
		}
	}
	return report
}

// PingChecker builds a checker from a ping function. Failures of a required
// dependency are unhealthy; optional ones only degrade.
func PingChecker(name string, required bool, ping func(ctx context.Context) error) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		if err := ping(ctx); err != nil {
			status := HealthStatusDegraded
			if required {
				status = HealthStatusUnhealthy
			}
			return HealthCheckResult{Status: status, Message: name + " unreachable: " + err.Error()}
		}
		return HealthCheckResult{Status: HealthStatusHealthy, Message: name + " reachable"}
	}
}
