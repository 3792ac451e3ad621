package telemetry

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SessionsCreated counts proxy consumer instances successfully created.
	SessionsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vane_proxy_sessions_created_total",
		Help: "Consumer sessions created on the REST proxy.",
	})

	// SessionsDeleted counts delete calls issued against consumer instances.
	SessionsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vane_proxy_sessions_deleted_total",
		Help: "Consumer sessions deleted on the REST proxy.",
	})

	// SessionFailures counts aborted cycles, labelled by the stage that failed.
	SessionFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vane_proxy_session_failures_total",
		Help: "Consumer session cycles aborted, by failing stage.",
	}, []string{"stage"})

	// PollAttempts counts individual record fetches, empty or not.
	PollAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vane_proxy_poll_attempts_total",
		Help: "Record poll requests issued against consumer sessions.",
	})

	// RecordsFetched counts records returned by the proxy, by topic.
	RecordsFetched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vane_proxy_records_total",
		Help: "Records fetched from the REST proxy.",
	}, []string{"topic"})

	// RequestSeconds tracks proxy request latency per operation.
	RequestSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vane_proxy_request_seconds",
		Help:    "REST proxy request duration.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"op"})

	// Snapshots counts dashboard snapshot builds by outcome.
	Snapshots = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vane_snapshots_total",
		Help: "Dashboard snapshots built, by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		SessionsCreated,
		SessionsDeleted,
		SessionFailures,
		PollAttempts,
		RecordsFetched,
		RequestSeconds,
		Snapshots,
	)
}

func Expose(port int) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		_ = http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
	}()
}
