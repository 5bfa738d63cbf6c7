package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Davis1233798/proxyrotator-go/pkg/rotator"
)

// Collector records rotator attempts and fetches as prometheus metrics.
type Collector struct {
	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	fetches         *prometheus.CounterVec
	fetchAttempts   prometheus.Histogram
}

var _ rotator.Observer = (*Collector)(nil)

func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "proxyrotator_attempts_total",
			Help: "The total number of proxy attempts by outcome",
		}, []string{"proxy", "outcome"}),

		attemptDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "proxyrotator_attempt_duration_seconds",
			Help:    "Duration of single proxy attempts",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}, []string{"proxy"}),

		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "proxyrotator_fetches_total",
			Help: "The total number of fetch calls by result",
		}, []string{"result"}),

		fetchAttempts: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "proxyrotator_fetch_attempts",
			Help:    "Number of attempts spent per fetch call",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
	}
}

func (c *Collector) ObserveAttempt(proxy string, d time.Duration, err error) {
	c.attempts.WithLabelValues(proxy, attemptOutcome(err)).Inc()
	c.attemptDuration.WithLabelValues(proxy).Observe(d.Seconds())
}

func (c *Collector) ObserveFetch(attempts int, err error) {
	c.fetches.WithLabelValues(fetchResult(err)).Inc()
	if attempts > 0 {
		c.fetchAttempts.Observe(float64(attempts))
	}
}

func attemptOutcome(err error) string {
	var statusErr *rotator.StatusError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, rotator.ErrAttemptTimeout):
		return "timeout"
	case errors.As(err, &statusErr):
		return "status"
	default:
		return "error"
	}
}

func fetchResult(err error) string {
	var (
		cfgErr       *rotator.ConfigError
		exhaustedErr *rotator.ExhaustedError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &cfgErr):
		return "config_error"
	case errors.As(err, &exhaustedErr):
		return "exhausted"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// StartServer serves the gatherer on /metrics in the background. A listen
// failure is logged and does not stop the caller.
func StartServer(port int, gatherer prometheus.Gatherer, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", srv.Addr).Msg("metrics server stopped")
		}
	}()
	return srv
}
