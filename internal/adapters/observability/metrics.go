package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hbnb", Name: "http_requests_total", Help: "HTTP requests served."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hbnb", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hbnb", Name: "external_requests_total", Help: "Calls to the HBnB API."},
		[]string{"method", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hbnb", Name: "external_request_duration_seconds",
			Help:    "HBnB API call duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hbnb", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	WorkflowOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hbnb", Name: "place_workflow_total", Help: "Place workflow outcomes."},
		[]string{"operation", "status"},
	)
	BatchItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hbnb", Name: "place_workflow_batch_items_total", Help: "Sub-resource attach calls."},
		[]string{"batch", "result"}, // result: ok|failed|skipped
	)
)

// Serve runs h on the side listener at addr. An empty addr disables it.
func Serve(addr string, h http.Handler) {
	if addr == "" {
		return
	}

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("internal server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents, WorkflowOutcomes, BatchItems)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

// ObserveExternal records one API call. status 0 means no response was received.
func ObserveExternal(method, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(method, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) {
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveWorkflow(operation, status string) {
	WorkflowOutcomes.WithLabelValues(operation, status).Inc()
}

func ObserveBatch(batch string, ok, failed, skipped int) {
	BatchItems.WithLabelValues(batch, "ok").Add(float64(ok))
	BatchItems.WithLabelValues(batch, "failed").Add(float64(failed))
	BatchItems.WithLabelValues(batch, "skipped").Add(float64(skipped))
}
