package observability

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Metrics provides basic in-memory counters exposed in Prometheus text format.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	latencySum   map[string]time.Duration
	errorCount   map[string]int64
}

// Sample is one labelled counter value.
type Sample struct {
	Labels []string
	Value  int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		latencySum:   make(map[string]time.Duration),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.latencySum[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Requests returns request counts labelled path, method, status.
func (m *Metrics) Requests() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return samples(m.requestCount)
}

// Errors returns error counts labelled path, method, code.
func (m *Metrics) Errors() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return samples(m.errorCount)
}

// WritePrometheus renders every counter in the Prometheus text exposition format.
func (m *Metrics) WritePrometheus(w io.Writer) {
	m.mu.Lock()
	requests := samples(m.requestCount)
	errors := samples(m.errorCount)
	latency := make(map[string]float64, len(m.latencySum))
	for k, v := range m.latencySum {
		latency[k] = v.Seconds()
	}
	m.mu.Unlock()

	_, _ = fmt.Fprintf(w, "# HELP tutor_connect_http_requests_total Total number of HTTP requests.\n")
	_, _ = fmt.Fprintf(w, "# TYPE tutor_connect_http_requests_total counter\n")
	for _, s := range requests {
		_, _ = fmt.Fprintf(w, "tutor_connect_http_requests_total{path=%q,method=%q,status=%q} %d\n", s.Labels[0], s.Labels[1], s.Labels[2], s.Value)
	}
	_, _ = fmt.Fprintf(w, "# HELP tutor_connect_http_request_duration_seconds_sum Total time spent serving requests.\n")
	_, _ = fmt.Fprintf(w, "# TYPE tutor_connect_http_request_duration_seconds_sum counter\n")
	for _, s := range requests {
		key := strings.Join(s.Labels, "|")
		_, _ = fmt.Fprintf(w, "tutor_connect_http_request_duration_seconds_sum{path=%q,method=%q,status=%q} %g\n", s.Labels[0], s.Labels[1], s.Labels[2], latency[key])
	}
	_, _ = fmt.Fprintf(w, "# HELP tutor_connect_http_errors_total Error responses by code.\n")
	_, _ = fmt.Fprintf(w, "# TYPE tutor_connect_http_errors_total counter\n")
	for _, s := range errors {
		_, _ = fmt.Fprintf(w, "tutor_connect_http_errors_total{path=%q,method=%q,code=%q} %d\n", s.Labels[0], s.Labels[1], s.Labels[2], s.Value)
	}
}

// Handler serves WritePrometheus output.
func (m *Metrics) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "text/plain; version=0.0.4")
		m.WritePrometheus(c)
		return nil
	}
}

func samples(counts map[string]int64) []Sample {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Sample, 0, len(keys))
	for _, k := range keys {
		out = append(out, Sample{Labels: strings.SplitN(k, "|", 3), Value: counts[k]})
	}
	return out
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
