package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pingOK(context.Context) error   { return nil }
func pingDown(context.Context) error { return errors.New("connection refused") }

func TestHealthRegistry_AllHealthy(t *testing.T) {
	r := NewHealthRegistry()
	r.Register("database", PingChecker("database", true, pingOK))
	r.Register("cache", PingChecker("redis", false, pingOK))

	report := r.Check(context.Background())

	assert.Equal(t, HealthStatusHealthy, report.Status)
	require.Len(t, report.Checks, 2)
	assert.Equal(t, "cache", report.Checks[0].Name)
	assert.Equal(t, "database", report.Checks[1].Name)
}

func TestHealthRegistry_OptionalFailureDegrades(t *testing.T) {
	r := NewHealthRegistry()
	r.Register("database", PingChecker("database", true, pingOK))
	r.Register("cache", PingChecker("redis", false, pingDown))

	report := r.Check(context.Background())

	assert.Equal(t, HealthStatusDegraded, report.Status)
	assert.Contains(t, report.Checks[0].Message, "connection refused")
}

func TestHealthRegistry_RequiredFailureIsUnhealthy(t *testing.T) {
	r := NewHealthRegistry()
	r.Register("cache", PingChecker("redis", false, pingDown))
	r.Register("database", PingChecker("database", true, pingDown))

	report := r.Check(context.Background())

	assert.Equal(t, HealthStatusUnhealthy, report.Status)
}

func TestHealthRegistry_Empty(t *testing.T) {
	report := NewHealthRegistry().Check(context.Background())

	assert.Equal(t, HealthStatusHealthy, report.Status)
	assert.Empty(t, report.Checks)
}
