package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	GamesStarted  prometheus.Counter
	GamesFinished *prometheus.CounterVec
	GuessOutcomes *prometheus.CounterVec
	Substitutions prometheus.Counter
	Resumptions   prometheus.Counter
	TurnsExpired  prometheus.Counter
	SSEClients    prometheus.Gauge
}

// New creates a Metrics instance with its own registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "codewords_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "codewords_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		GamesStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "codewords_games_started_total",
			Help: "Games started",
		}),
		GamesFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "codewords_games_finished_total",
			Help: "Games finished by winning team",
		}, []string{"winner"}),
		GuessOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "codewords_guesses_total",
			Help: "Accepted guesses by outcome",
		}, []string{"outcome"}),
		Substitutions: factory.NewCounter(prometheus.CounterOpts{
			Name: "codewords_substitutions_total",
			Help: "Bot substitutions for disconnected players",
		}),
		Resumptions: factory.NewCounter(prometheus.CounterOpts{
			Name: "codewords_resumptions_total",
			Help: "Substitutions reversed by returning players",
		}),
		TurnsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "codewords_turns_expired_total",
			Help: "Turns force-ended by the turn timer",
		}),
		SSEClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "codewords_sse_clients",
			Help: "Currently connected event stream clients",
		}),
	}
}

// Handler returns the /metrics scrape handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the response status code for labelling
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush passes through so SSE streaming keeps working behind the recorder
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware instruments handlers with request count and latency metrics.
// The route label should be the pattern, not the raw path, to bound
// cardinality
func (m *Metrics) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
