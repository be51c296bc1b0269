package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coursehub", Name: "http_requests_total", Help: "Handled HTTP requests",
	}, []string{"method", "route", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coursehub", Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	Enrollments = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coursehub", Name: "enrollments_total", Help: "Enrollment attempts by result",
	}, []string{"result"})
	SeatDriftOffers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "coursehub", Name: "seat_drift_offers", Help: "Offers whose seat count disagrees with their enrollments",
	})
	CleanupJobs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coursehub", Name: "cleanup_jobs_total", Help: "Stored upload deletions by result",
	}, []string{"result"})

	JobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coursehub", Name: "job_runs_total", Help: "Background job runs",
	}, []string{"job"})
	JobErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coursehub", Name: "job_errors_total", Help: "Background job errors",
	}, []string{"job"})
	JobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coursehub", Name: "job_duration_seconds", Help: "Background job duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, Enrollments, SeatDriftOffers, CleanupJobs, JobRuns, JobErrors, JobDuration)
}

func Handler() http.Handler { return promhttp.Handler() }
