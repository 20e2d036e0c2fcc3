package frame

import "github.com/Carmen-Shannon/oxy-corridor/engine/profiler"

// SchedulerBuilderOption is a functional option for configuring a Scheduler.
type SchedulerBuilderOption func(*scheduler)

// WithViewport sets the source of client size and pixel ratio.
//
// Parameters:
//   - v: the viewport
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithViewport(v Viewport) SchedulerBuilderOption {
	return func(s *scheduler) {
		if v != nil {
			s.viewport = v
		}
	}
}

// WithRefreshSource sets the refresh pacing. Defaults to a 60 Hz ticker.
//
// Parameters:
//   - r: the refresh source
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithRefreshSource(r RefreshSource) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.refresh = r
	}
}

// WithTimeScale sets the factor applied to the millisecond timestamp to produce shader time.
//
// Parameters:
//   - scale: time scale (default 0.0001)
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithTimeScale(scale float32) SchedulerBuilderOption {
	return func(s *scheduler) {
		if scale > 0 {
			s.timeScale = scale
		}
	}
}

// WithObserver registers a receiver for per-frame statistics.
//
// Parameters:
//   - o: the observer
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithObserver(o Observer) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.observer = o
	}
}

// WithProfiler enables periodic FPS and memory logging.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.profiler = p
	}
}
