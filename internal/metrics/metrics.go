package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder bundles the service's Prometheus metrics. A nil *Recorder is a
// valid no-op, so components never need to check whether metrics are wired.
type Recorder struct {
	registry     *prom.Registry
	httpRequests *prom.CounterVec
	httpDuration *prom.HistogramVec
	fetchCycles  *prom.CounterVec
	logins       *prom.CounterVec
}

func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		registry: reg,
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "taskpad",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status",
		}, []string{"method", "status"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "taskpad",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration",
			Buckets:   prom.DefBuckets,
		}, []string{"method"}),
		fetchCycles: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "taskpad",
			Name:      "task_fetch_cycles_total",
			Help:      "Task fetch cycles by outcome",
		}, []string{"outcome"}),
		logins: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "taskpad",
			Name:      "logins_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(r.httpRequests, r.httpDuration, r.fetchCycles, r.logins)
	return r
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil || r.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (r *Recorder) ObserveHTTPRequest(method string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (r *Recorder) IncFetchCycle(outcome string) {
	if r == nil {
		return
	}
	r.fetchCycles.WithLabelValues(outcome).Inc()
}

func (r *Recorder) IncLogin(success bool) {
	if r == nil {
		return
	}
	outcome := "failed"
	if success {
		outcome = "success"
	}
	r.logins.WithLabelValues(outcome).Inc()
}
