// Package metrics exposes scoring and labeling counters to Prometheus.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pbaille/sentiment/internal/domain"
)

// Collector holds the metrics of one process on its own registry
type Collector struct {
	registry *prometheus.Registry

	scoredTotal        *prometheus.CounterVec
	disagreementsTotal prometheus.Counter
	rejectedTotal      prometheus.Counter
	labelsTotal        *prometheus.CounterVec
	predictSeconds     prometheus.Histogram
}

// New creates and registers the collector's metrics
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		scoredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentiment_scored_total",
				Help: "Count of scored records by score kind and class",
			},
			[]string{"kind", "class"},
		),
		disagreementsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentiment_disagreements_total",
			Help: "Count of records whose text-only and combined classes differ",
		}),
		rejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentiment_rejected_ratings_total",
			Help: "Count of ratings rejected as missing or out of range",
		}),
		labelsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentiment_labels_submitted_total",
				Help: "Count of accepted pseudo-labels by value",
			},
			[]string{"label"},
		),
		predictSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentiment_predict_duration_seconds",
			Help:    "Latency of text classifier predictions",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	c.registry.MustRegister(c.scoredTotal, c.disagreementsTotal, c.rejectedTotal, c.labelsTotal, c.predictSeconds)
	return c
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile dumps the registry in the node_exporter textfile format, for
// commands that exit before anything could scrape them
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func (c *Collector) ObservePredict(d time.Duration) {
	c.predictSeconds.Observe(d.Seconds())
}

func (c *Collector) ObserveScore(res domain.ScoreResult) {
	c.scoredTotal.WithLabelValues("text", className(res.TextClass)).Inc()
	c.scoredTotal.WithLabelValues("combined", className(res.CombinedClass)).Inc()
	if res.Disagrees() {
		c.disagreementsTotal.Inc()
	}
}

func (c *Collector) ObserveRejected() {
	c.rejectedTotal.Inc()
}

func (c *Collector) ObserveLabel(label int) {
	c.labelsTotal.WithLabelValues(strconv.Itoa(label)).Inc()
}

func className(c domain.SentimentClass) string {
	return strings.ToLower(c.String())
}
