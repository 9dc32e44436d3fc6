// Package metrics exposes training, prediction and HTTP metrics through
// Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name
const DefaultNamespace = "lagforest"

// Recorder records forecasting metrics. It satisfies forecast.Observer so
// it can be passed straight to forecast.Train.
type Recorder struct {
	entityFits       *prometheus.CounterVec
	entityFitSeconds prometheus.Histogram
	trainingRuns     *prometheus.CounterVec
	trainingSeconds  prometheus.Histogram
	entitiesFitted   prometheus.Gauge
	predictions      *prometheus.CounterVec
	predictedRows    prometheus.Counter
	predictSeconds   prometheus.Histogram
	modelReloads     *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registers the forecasting metrics on reg. A nil reg uses the default
// Prometheus registerer.
func New(namespace string, reg prometheus.Registerer) *Recorder {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		entityFits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entity_fits_total",
				Help:      "Total number of per-entity model fits",
			},
			[]string{"status"},
		),
		entityFitSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "entity_fit_duration_seconds",
				Help:      "Duration of a single entity fit in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
		),
		trainingRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "training_runs_total",
				Help:      "Total number of training runs",
			},
			[]string{"status"},
		),
		trainingSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "training_duration_seconds",
				Help:      "Duration of training runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
			},
		),
		entitiesFitted: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "entities_fitted",
				Help:      "Number of entities fitted by the last training run",
			},
		),
		predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "predictions_total",
				Help:      "Total number of prediction calls",
			},
			[]string{"status"},
		),
		predictedRows: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "predicted_rows_total",
				Help:      "Total number of forecast rows produced",
			},
		),
		predictSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "prediction_duration_seconds",
				Help:      "Duration of prediction calls in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		modelReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_reloads_total",
				Help:      "Total number of model store reloads",
			},
			[]string{"status"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method"},
		),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// EntityFitted records one per-entity fit
func (r *Recorder) EntityFitted(_ string, _ int, elapsed time.Duration, err error) {
	r.entityFits.WithLabelValues(status(err)).Inc()
	if err == nil {
		r.entityFitSeconds.Observe(elapsed.Seconds())
	}
}

// TrainingFinished records the outcome of a training run
func (r *Recorder) TrainingFinished(fitted, failed int, elapsed time.Duration) {
	label := "ok"
	switch {
	case fitted == 0:
		label = "error"
	case failed > 0:
		label = "partial"
	}
	r.trainingRuns.WithLabelValues(label).Inc()
	r.trainingSeconds.Observe(elapsed.Seconds())
	r.entitiesFitted.Set(float64(fitted))
}

// PredictionServed records a prediction call and the rows it produced
func (r *Recorder) PredictionServed(rows int, elapsed time.Duration, err error) {
	r.predictions.WithLabelValues(status(err)).Inc()
	if err != nil {
		return
	}
	r.predictedRows.Add(float64(rows))
	r.predictSeconds.Observe(elapsed.Seconds())
}

// ModelReloaded records a model store reload
func (r *Recorder) ModelReloaded(err error) {
	r.modelReloads.WithLabelValues(status(err)).Inc()
}

// FiberMiddleware records request counts and latency per route template
func (r *Recorder) FiberMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		code := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			} else if code < fiber.StatusBadRequest {
				code = fiber.StatusInternalServerError
			}
		}

		r.httpRequests.WithLabelValues(route, c.Method(), strconv.Itoa(code)).Inc()
		r.httpDuration.WithLabelValues(route, c.Method()).Observe(time.Since(start).Seconds())
		return err
	}
}
