package observability

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics records metrics into a Prometheus registry.
// Vectors are registered on first use with the label names of that call;
// later calls with a different label set are dropped.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

var _ Metrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates metrics backed by a fresh registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		registry:   prometheus.NewRegistry(),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// Registry returns the underlying registry.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the node exporter textfile format.
func (m *PrometheusMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *PrometheusMetrics) Counter(name string, value int64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vec, ok := m.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: promName(name),
			Help: name,
		}, labelNames(tags))
		if m.registry.Register(vec) != nil {
			return
		}
		m.counters[name] = vec
	}
	if c, err := vec.GetMetricWith(labels(tags)); err == nil {
		c.Add(float64(value))
	}
}

func (m *PrometheusMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vec, ok := m.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: promName(name),
			Help: name,
		}, labelNames(tags))
		if m.registry.Register(vec) != nil {
			return
		}
		m.gauges[name] = vec
	}
	if g, err := vec.GetMetricWith(labels(tags)); err == nil {
		g.Set(value)
	}
}

func (m *PrometheusMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.observe(promName(name), name, value, tags)
}

// Timing records the duration in seconds under <name>_seconds.
func (m *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.observe(promName(name)+"_seconds", name, duration.Seconds(), tags)
}

func (m *PrometheusMetrics) observe(metricName, help string, value float64, tags []Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vec, ok := m.histograms[metricName]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricName,
			Help:    help,
			Buckets: prometheus.DefBuckets,
		}, labelNames(tags))
		if m.registry.Register(vec) != nil {
			return
		}
		m.histograms[metricName] = vec
	}
	if h, err := vec.GetMetricWith(labels(tags)); err == nil {
		h.Observe(value)
	}
}

var promReplacer = strings.NewReplacer(".", "_", "-", "_")

func promName(name string) string {
	return promReplacer.Replace(name)
}

func labelNames(tags []Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = promName(t.Key)
	}
	return names
}

func labels(tags []Tag) prometheus.Labels {
	l := make(prometheus.Labels, len(tags))
	for _, t := range tags {
		l[promName(t.Key)] = t.Value
	}
	return l
}
