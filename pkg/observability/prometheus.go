package observability

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements Metrics on a Prometheus registry. Collectors
// are created on first use; the label names of a metric are fixed by its
// first observation and later tags are mapped onto them.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	labels     map[string][]string
}

// NewPrometheusMetrics creates a registry with the Go and process collectors.
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &PrometheusMetrics{
		registry:   registry,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		labels:     make(map[string][]string),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PrometheusMetrics) Counter(name string, value int64, tags ...Tag) {
	if value < 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	metric := promName(name) + "_total"
	vec, ok := m.counters[metric]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: metric, Help: name}, m.labelNames(metric, tags))
		m.registry.MustRegister(vec)
		m.counters[metric] = vec
	}
	vec.With(m.labelValues(metric, tags)).Add(float64(value))
}

func (m *PrometheusMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metric := promName(name)
	vec, ok := m.gauges[metric]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: metric, Help: name}, m.labelNames(metric, tags))
		m.registry.MustRegister(vec)
		m.gauges[metric] = vec
	}
	vec.With(m.labelValues(metric, tags)).Set(value)
}

func (m *PrometheusMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.observe(promName(name), name, value, prometheus.DefBuckets, tags)
}

// Timing records durations in seconds.
func (m *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.observe(promName(name)+"_seconds", name, duration.Seconds(), prometheus.DefBuckets, tags)
}

func (m *PrometheusMetrics) observe(metric, help string, value float64, buckets []float64, tags []Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vec, ok := m.histograms[metric]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: metric, Help: help, Buckets: buckets}, m.labelNames(metric, tags))
		m.registry.MustRegister(vec)
		m.histograms[metric] = vec
	}
	vec.With(m.labelValues(metric, tags)).Observe(value)
}

// labelNames fixes the label set of metric on first use. Callers hold mu.
func (m *PrometheusMetrics) labelNames(metric string, tags []Tag) []string {
	if names, ok := m.labels[metric]; ok {
		return names
	}
	names := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		key := promName(tag.Key)
		if !seen[key] {
			seen[key] = true
			names = append(names, key)
		}
	}
	sort.Strings(names)
	m.labels[metric] = names
	return names
}

// labelValues maps tags onto the fixed label set; unknown tags are dropped
// and missing ones are empty.
func (m *PrometheusMetrics) labelValues(metric string, tags []Tag) prometheus.Labels {
	labels := make(prometheus.Labels, len(m.labels[metric]))
	for _, name := range m.labels[metric] {
		labels[name] = ""
	}
	for _, tag := range tags {
		key := promName(tag.Key)
		if _, ok := labels[key]; ok {
			labels[key] = tag.Value
		}
	}
	return labels
}

// promName turns "cinema.schedule.commands" into "cinema_schedule_commands".
func promName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
