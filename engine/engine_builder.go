package engine

import (
	"github.com/Carmen-Shannon/oxy-corridor/engine/control"
	"github.com/Carmen-Shannon/oxy-corridor/engine/frame"
	"github.com/Carmen-Shannon/oxy-corridor/engine/metrics"
	"github.com/Carmen-Shannon/oxy-corridor/engine/renderer"
	"github.com/Carmen-Shannon/oxy-corridor/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Options override the components NewEngine would otherwise build from configuration.
type EngineBuilderOption func(*engine)

// WithWindow sets the window the WebGPU renderer presents to. The window also becomes the
// Frame Scheduler's viewport unless WithViewport is given.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer replaces the configured renderer.
//
// Parameters:
//   - r: the renderer to draw into
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithViewport sets the source of client size and pixel ratio for resize detection.
//
// Parameters:
//   - v: the viewport
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithViewport(v frame.Viewport) EngineBuilderOption {
	return func(e *engine) {
		e.viewport = v
	}
}

// WithRefreshSource replaces the ticker that paces the Frame Scheduler.
//
// Parameters:
//   - r: the refresh source
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRefreshSource(r frame.RefreshSource) EngineBuilderOption {
	return func(e *engine) {
		e.refresh = r
	}
}

// WithClassifier replaces the configured classifier.
//
// Parameters:
//   - c: the classifier
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClassifier(c control.Classifier) EngineBuilderOption {
	return func(e *engine) {
		e.classifier = c
	}
}

// WithCaptureOpener replaces how the capture source is acquired during bootstrap.
//
// Parameters:
//   - open: the opener
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCaptureOpener(open CaptureOpener) EngineBuilderOption {
	return func(e *engine) {
		e.open = open
	}
}

// WithMetrics shares an existing metrics instance.
//
// Parameters:
//   - m: the metrics
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMetrics(m *metrics.Metrics) EngineBuilderOption {
	return func(e *engine) {
		e.metrics = m
	}
}

// WithControlObserver adds an observer notified of every Control Loop prediction and step, alongside
// the engine metrics.
//
// Parameters:
//   - o: the observer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithControlObserver(o control.Observer) EngineBuilderOption {
	return func(e *engine) {
		e.observer = o
	}
}

// WithSession sets the session id instead of generating one.
//
// Parameters:
//   - id: the session id
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSession(id string) EngineBuilderOption {
	return func(e *engine) {
		e.session = id
	}
}
