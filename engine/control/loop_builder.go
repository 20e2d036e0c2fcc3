package control

// LoopBuilderOption is a functional option for configuring a Loop.
type LoopBuilderOption func(*loop)

// WithThresholds sets the decision thresholds. Values below low move forward, values above high move back.
//
// Parameters:
//   - low, high: the thresholds
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithThresholds(low, high float64) LoopBuilderOption {
	return func(l *loop) {
		l.low = low
		l.high = high
	}
}

// WithCameraStep sets the distance the camera moves per decisive prediction.
//
// Parameters:
//   - step: distance in world units
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithCameraStep(step float32) LoopBuilderOption {
	return func(l *loop) {
		l.cameraStep = step
	}
}

// WithExtendEvery sets how many forward predictions trigger one world extension.
//
// Parameters:
//   - n: samples per extension
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithExtendEvery(n int) LoopBuilderOption {
	return func(l *loop) {
		l.counter = NewExtensionCounter(n)
	}
}

// WithObserver registers a receiver for per-prediction statistics.
//
// Parameters:
//   - o: the observer
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithObserver(o Observer) LoopBuilderOption {
	return func(l *loop) {
		l.observer = o
	}
}
