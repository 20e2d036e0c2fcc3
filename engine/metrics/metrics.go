// Package metrics exports render and control loop statistics to Prometheus.
package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Carmen-Shannon/oxy-corridor/engine/control"
	"github.com/Carmen-Shannon/oxy-corridor/engine/frame"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "corridor"

// Metrics holds the corridor's collectors on a private registry. It implements frame.Observer and
// control.Observer so both loops report into it directly.
type Metrics struct {
	registry *prometheus.Registry

	framesRendered  prometheus.Counter
	frameSeconds    prometheus.Histogram
	predictions     *prometheus.CounterVec
	predictLatency  prometheus.Histogram
	worldExtensions prometheus.Counter
	sceneObjects    prometheus.Gauge
	cameraZ         prometheus.Gauge
	worldFrontier   prometheus.Gauge
}

var (
	_ frame.Observer   = &Metrics{}
	_ control.Observer = &Metrics{}
)

// NewMetrics creates and registers the corridor collectors.
//
// Returns:
//   - *Metrics: the metrics set
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		framesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rendered_total",
			Help:      "Render submissions completed by the Frame Scheduler.",
		}),
		frameSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_seconds",
			Help:      "Time spent in one Frame Scheduler tick.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Classifier predictions by resulting decision.",
		}, []string{"decision"}),
		predictLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_latency_seconds",
			Help:      "Classifier round-trip time per prediction.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		worldExtensions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "world_extensions_total",
			Help:      "Corridor extensions triggered by the Control Loop.",
		}),
		sceneObjects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scene_objects",
			Help:      "Live corridor objects.",
		}),
		cameraZ: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "camera_z",
			Help:      "Camera position on the forward axis.",
		}),
		worldFrontier: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "world_frontier",
			Help:      "Most negative z the corridor has been extended to.",
		}),
	}
	m.registry.MustRegister(
		m.framesRendered, m.frameSeconds, m.predictions, m.predictLatency,
		m.worldExtensions, m.sceneObjects, m.cameraZ, m.worldFrontier,
	)
	return m
}

// Registry returns the private registry holding the corridor collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// FrameRendered records one completed render submission.
func (m *Metrics) FrameRendered(elapsed time.Duration, objects int) {
	m.framesRendered.Inc()
	m.frameSeconds.Observe(elapsed.Seconds())
	m.sceneObjects.Set(float64(objects))
}

// Predicted records one classifier prediction.
func (m *Metrics) Predicted(decision control.Decision, latency time.Duration) {
	m.predictions.WithLabelValues(decision.String()).Inc()
	m.predictLatency.Observe(latency.Seconds())
}

// Stepped records the outcome of one Control Loop step.
func (m *Metrics) Stepped(outcome control.Outcome, objects int) {
	if outcome.Extended {
		m.worldExtensions.Inc()
	}
	m.cameraZ.Set(float64(outcome.CameraZ))
	m.worldFrontier.Set(float64(outcome.Frontier))
	m.sceneObjects.Set(float64(objects))
}

// SetFrontier records the frontier, used once after seeding.
func (m *Metrics) SetFrontier(z float32) {
	m.worldFrontier.Set(float64(z))
}

// Serve exposes /metrics on addr until ctx is done.
//
// Parameters:
//   - ctx: stops the listener
//   - addr: listen address, e.g. ":2112"
//
// Returns:
//   - error: the listener error, or nil after a clean shutdown
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[Metrics] Serving /metrics on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
