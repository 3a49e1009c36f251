package metric

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric collects timings and error counts of the service.
type Metric struct {
	serviceTiming *prometheus.SummaryVec
	errorCounter  *prometheus.CounterVec
	gatherer      prometheus.Gatherer
}

// New creates the collectors and registers them in reg. A nil reg means the default registry.
func New(appID string, reg *prometheus.Registry) *Metric {
	r := strings.NewReplacer(
		"-", "_",
		" ", "_")
	serviceName := r.Replace(appID)

	m := &Metric{
		serviceTiming: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name: "service_timing",
				Help: fmt.Sprintf("%s timing", serviceName),
			},
			[]string{"op"},
		),
		errorCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "error_counter",
				Help: fmt.Sprintf("%s error counter", serviceName),
			},
			[]string{"event"},
		),
	}

	if reg == nil {
		prometheus.MustRegister(m.serviceTiming)
		prometheus.MustRegister(m.errorCounter)
		m.gatherer = prometheus.DefaultGatherer
		return m
	}

	reg.MustRegister(m.serviceTiming)
	reg.MustRegister(m.errorCounter)
	m.gatherer = reg

	return m
}

// ErrorCounter increments the error counter for the given event.
func (m *Metric) ErrorCounter(label string) {
	m.errorCounter.
		WithLabelValues(label).
		Inc()
}

// Timing observes the time passed since start.
func (m *Metric) Timing(start time.Time, label string) {
	m.serviceTiming.
		WithLabelValues(label).
		Observe(time.Since(start).Seconds())
}

// TimeTracker wraps next and records its duration under label.
func (m *Metric) TimeTracker(next http.HandlerFunc, label string) http.HandlerFunc {
	return func(response http.ResponseWriter, request *http.Request) {
		start := time.Now()
		next(response, request)
		m.Timing(start, label)
	}
}

// RouterHandlerHTTP exposes the collected metrics.
func (m *Metric) RouterHandlerHTTP() http.HandlerFunc {
	return m.stdToHTTPRouterMiddleware(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}

func (m *Metric) stdToHTTPRouterMiddleware(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
	}
}
