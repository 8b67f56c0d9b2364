package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Webhook intake

	WebhookRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Name:      "webhook_requests_total",
		Help:      "Inbound webhook deliveries, by result.",
	}, []string{"result"})

	// Runner

	JobsClaimedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Name:      "jobs_claimed_total",
		Help:      "Jobs claimed for processing, by kind.",
	}, []string{"kind"})

	JobsCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Name:      "jobs_completed_total",
		Help:      "Jobs finished, by kind and outcome.",
	}, []string{"kind", "outcome"})

	JobPickupLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fulfillment",
		Name:      "job_pickup_latency_seconds",
		Help:      "Time from job creation to a runner claiming it.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fulfillment",
		Name:      "run_duration_seconds",
		Help:      "Duration of one runner pass.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	})

	// Reaper

	ReaperReleasedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Name:      "reaper_released_total",
		Help:      "Stale claimed jobs released back to pending.",
	})

	// HTTP

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fulfillment",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		WebhookRequestsTotal,
		JobsClaimedTotal,
		JobsCompletedTotal,
		JobPickupLatency,
		RunDuration,
		ReaperReleasedTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus liveness/readiness probes on its own port,
// away from the public API listener.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, health.HealthResult{Status: "up"}, http.StatusOK)
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		result := checker.Readiness(r.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		writeHealth(w, result, status)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}
