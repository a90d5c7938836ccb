package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can build as many as they like.
type Collector struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	recomputations  prometheus.Counter
	levels          *prometheus.CounterVec
	rateLimitedHits prometheus.Counter
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		recomputations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evaluation_recomputations_total",
			Help: "Evaluation score recomputations.",
		}),
		levels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evaluation_performance_level_total",
			Help: "Performance levels produced by recomputation.",
		}, []string{"level"}),
		rateLimitedHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}),
	}
	c.registry.MustRegister(
		c.requests,
		c.duration,
		c.recomputations,
		c.levels,
		c.rateLimitedHits,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) Record(method string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(method).Observe(duration.Seconds())
	if status == http.StatusTooManyRequests {
		c.rateLimitedHits.Inc()
	}
}

// ObserveRecompute counts one evaluation recomputation ending at the given level.
func (c *Collector) ObserveRecompute(level int) {
	c.recomputations.Inc()
	c.levels.WithLabelValues(strconv.Itoa(level)).Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
