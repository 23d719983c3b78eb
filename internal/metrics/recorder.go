// Package metrics exposes cycle telemetry in the Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"dcimsync/internal/app"
	"dcimsync/internal/domain"
	"dcimsync/internal/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dcimsync"

// Recorder implements app.Recorder on its own registry.
type Recorder struct {
	Registry *prometheus.Registry

	state          *prometheus.GaugeVec
	cycles         *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	fetched        *prometheus.CounterVec
	skipped        *prometheus.CounterVec
	attemptsFailed *prometheus.CounterVec
	uploads        *prometheus.CounterVec
	committed      *prometheus.CounterVec
	lastSuccess    prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "state",
			Help: "1 for the state the poll loop is in, 0 otherwise.",
		}, []string{"state"}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cycles_total",
			Help: "Processing cycles grouped by outcome.",
		}, []string{"outcome"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "cycle_duration_seconds",
			Help:    "Wall time of a processing cycle.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		fetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "files_fetched_total",
			Help: "Files staged, per source.",
		}, []string{"source"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "fetch_failures_total",
			Help: "Files given up on after all attempts, per source.",
		}, []string{"source"}),
		attemptsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "fetch_attempt_failures_total",
			Help: "Individual failed download attempts, per source.",
		}, []string{"source"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "uploads_total",
			Help: "Uploader runs grouped by result.",
		}, []string{"result"}),
		committed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "history_commits_total",
			Help: "File names appended to history, per source.",
		}, []string{"source"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_success_timestamp_seconds",
			Help: "Unix time of the last cycle that finished without error.",
		}),
	}
	r.Registry.MustRegister(r.state, r.cycles, r.cycleDuration, r.fetched, r.skipped,
		r.attemptsFailed, r.uploads, r.committed, r.lastSuccess)
	r.StateChanged(app.StateIdle)
	return r
}

func (r *Recorder) StateChanged(state app.State) {
	for _, s := range app.AllStates() {
		value := 0.0
		if s == state {
			value = 1
		}
		r.state.WithLabelValues(s.String()).Set(value)
	}
}

func (r *Recorder) CycleFinished(report domain.CycleReport) {
	outcome := "success"
	if report.Err != nil {
		outcome = "error"
		if errors.Is(report.Err, context.Canceled) {
			outcome = "cancelled"
		}
	} else {
		r.lastSuccess.Set(float64(report.Finished.Unix()))
	}
	r.cycles.WithLabelValues(outcome).Inc()
	if !report.Started.IsZero() && !report.Finished.IsZero() {
		r.cycleDuration.Observe(report.Finished.Sub(report.Started).Seconds())
	}
}

func (r *Recorder) FetchAttemptFailed(source string) {
	r.attemptsFailed.WithLabelValues(source).Inc()
}

func (r *Recorder) FileFetched(source string) {
	r.fetched.WithLabelValues(source).Inc()
}

func (r *Recorder) FileSkipped(source string) {
	r.skipped.WithLabelValues(source).Inc()
}

func (r *Recorder) UploadFinished(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	r.uploads.WithLabelValues(result).Inc()
}

func (r *Recorder) Committed(source string, count int) {
	r.committed.WithLabelValues(source).Add(float64(count))
}

// Server serves /metrics for a Recorder.
type Server struct {
	http   *http.Server
	logger logging.Logger
}

func NewServer(addr string, r *Recorder, logger logging.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{}))
	return &Server{
		http:   &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		logger: logger,
	}
}

// Start listens in the background.
func (s *Server) Start() {
	s.logger.Infof("Metrics listening on %s", s.http.Addr)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("Metrics server error: %v", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
