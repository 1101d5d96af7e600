// Package metrics exposes Prometheus instrumentation for the pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TasksTotal counts per-URL task outcomes by terminal status.
	TasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scraper_tasks_total",
		Help: "The total number of per-URL tasks by terminal status.",
	}, []string{"status"})

	// TaskDuration observes how long each task's pipeline took.
	TaskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scraper_task_duration_seconds",
		Help:    "Per-task pipeline duration in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	// ImageRewriteFailures counts per-image rewrite fallbacks.
	ImageRewriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_image_rewrite_failures_total",
		Help: "The total number of image rewrite calls that fell back to the original URL.",
	})
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewServer builds the debug listener that serves collected metrics on
// /metrics for the duration of a run. The caller owns its lifecycle.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
