package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route pattern, method and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goonhub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPRequestDuration tracks request latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goonhub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// EventsPublished counts domain events by type and outcome
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goonhub_events_published_total",
			Help: "Total number of domain events dispatched",
		},
		[]string{"type", "status"},
	)

	// ActivitiesCreated counts activity rows written by type
	ActivitiesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goonhub_activities_created_total",
			Help: "Total number of activity records created",
		},
		[]string{"type"},
	)

	// FanoutTruncated counts fan-outs cut short by the configured cap
	FanoutTruncated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goonhub_activity_fanout_truncated_total",
			Help: "Number of follower fan-outs truncated by max_fanout",
		},
	)

	// ChatCompletions counts AI replies by outcome
	ChatCompletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goonhub_chat_completions_total",
			Help: "Total number of AI chat completions",
		},
		[]string{"status"},
	)

	// ChatCompletionDuration tracks AI completion latency
	ChatCompletionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "goonhub_chat_completion_duration_seconds",
			Help:    "AI chat completion duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// RateLimited counts requests rejected by the rate limiter
	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goonhub_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"route"},
	)

	// SolanaRPCRequests counts JSON-RPC calls by method and outcome
	SolanaRPCRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goonhub_solana_rpc_requests_total",
			Help: "Total number of Solana JSON-RPC requests",
		},
		[]string{"method", "status"},
	)

	// TipsLamports tracks tip sizes
	TipsLamports = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "goonhub_tip_amount_lamports",
			Help:    "Tip amount in lamports",
			Buckets: prometheus.ExponentialBuckets(1e5, 10, 7),
		},
	)

	// LiveStreams tracks streams currently live
	LiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "goonhub_live_streams",
			Help: "Number of live streams started minus ended since boot",
		},
	)
)

// Status returns "success" or "error" for a label value.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Middleware records request count and latency per chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
