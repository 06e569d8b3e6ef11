package observability

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// Metrics records calcompare's counters, gauges and distributions.
// Implementations must be safe for concurrent use.
type Metrics interface {
	Counter(name string, value int64, tags ...Tag)
	Gauge(name string, value float64, tags ...Tag)
	Histogram(name string, value float64, tags ...Tag)
	Timing(name string, duration time.Duration, tags ...Tag)
}

// Tag is a metric label.
type Tag struct {
	Key   string
	Value string
}

// T creates a new Tag.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) Counter(string, int64, ...Tag)        {}
func (NoopMetrics) Gauge(string, float64, ...Tag)        {}
func (NoopMetrics) Histogram(string, float64, ...Tag)    {}
func (NoopMetrics) Timing(string, time.Duration, ...Tag) {}

// series holds every observation recorded under one name and tag set.
type series struct {
	count   int64
	gauge   float64
	values  []float64
	timings []time.Duration
}

// InMemoryMetrics keeps observations in memory for tests and the CLI summary.
// Tag order does not matter when recording or reading.
type InMemoryMetrics struct {
	mu     sync.RWMutex
	series map[string]*series
}

// NewInMemoryMetrics creates an empty collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{series: make(map[string]*series)}
}

func (m *InMemoryMetrics) Counter(name string, value int64, tags ...Tag) {
	m.update(name, tags, func(s *series) { s.count += value })
}

func (m *InMemoryMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.update(name, tags, func(s *series) { s.gauge = value })
}

func (m *InMemoryMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.update(name, tags, func(s *series) { s.values = append(s.values, value) })
}

func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.update(name, tags, func(s *series) { s.timings = append(s.timings, duration) })
}

// GetCounter returns the sum of a counter.
func (m *InMemoryMetrics) GetCounter(name string, tags ...Tag) int64 {
	return m.read(name, tags).count
}

// GetGauge returns the last value set on a gauge.
func (m *InMemoryMetrics) GetGauge(name string, tags ...Tag) float64 {
	return m.read(name, tags).gauge
}

// GetHistogram returns a copy of the recorded values.
func (m *InMemoryMetrics) GetHistogram(name string, tags ...Tag) []float64 {
	return slices.Clone(m.read(name, tags).values)
}

// GetTimings returns a copy of the recorded durations.
func (m *InMemoryMetrics) GetTimings(name string, tags ...Tag) []time.Duration {
	return slices.Clone(m.read(name, tags).timings)
}

// Reset drops every series.
func (m *InMemoryMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.series)
}

func (m *InMemoryMetrics) update(name string, tags []Tag, fn func(*series)) {
	key := formatKey(name, tags)
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.series[key]
	if !ok {
		s = &series{}
		m.series[key] = s
	}
	fn(s)
}

func (m *InMemoryMetrics) read(name string, tags []Tag) series {
	key := formatKey(name, tags)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.series[key]; ok {
		return *s
	}
	return series{}
}

// formatKey renders name:k1=v1:k2=v2 with tags sorted by key.
func formatKey(name string, tags []Tag) string {
	if len(tags) == 0 {
		return name
	}
	sorted := slices.Clone(tags)
	slices.SortStableFunc(sorted, func(a, b Tag) int { return strings.Compare(a.Key, b.Key) })

	var b strings.Builder
	b.WriteString(name)
	for _, t := range sorted {
		b.WriteByte(':')
		b.WriteString(t.Key)
		b.WriteByte('=')
		b.WriteString(t.Value)
	}
	return b.String()
}

// Metric names.
const (
	MetricOperationTotal    = "calcompare.operation.total"
	MetricOperationDuration = "calcompare.operation.duration"
	MetricOperationErrors   = "calcompare.operation.errors"

	// Availability queries
	MetricQueries              = "calcompare.availability.queries"
	MetricParticipants         = "calcompare.availability.participants"
	MetricParticipantsDegraded = "calcompare.availability.participants_degraded"
	MetricCommonSlots          = "calcompare.availability.common_slots"
	MetricSuggestions          = "calcompare.availability.suggestions"
	MetricEventsSkipped        = "calcompare.availability.events_skipped"

	// Calendar fetches
	MetricCalendarFetches       = "calcompare.calendar.fetches"
	MetricCalendarFetchDuration = "calcompare.calendar.fetch_duration"
	MetricBreakerRejected       = "calcompare.calendar.breaker_rejected"
	MetricBreakerStateChange    = "calcompare.calendar.breaker_state_change"
	MetricEventCacheHits        = "calcompare.calendar.cache_hits"
	MetricEventCacheMisses      = "calcompare.calendar.cache_misses"

	// Event bus
	MetricEventsPublished     = "calcompare.events.published"
	MetricEventsPublishFailed = "calcompare.events.publish_failed"
	MetricEventsDeadLettered  = "calcompare.events.dead_lettered"
	MetricOutboxLag           = "calcompare.events.outbox_lag_seconds"
)
