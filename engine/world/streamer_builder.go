package world

import (
	"math/rand/v2"

	"github.com/Carmen-Shannon/oxy-corridor/engine/style"
)

// StreamerBuilderOption is a functional option for configuring a Streamer during construction.
type StreamerBuilderOption func(*streamer)

// WithLaneOffset sets the lateral distance of each lane from the corridor's center line.
//
// Parameters:
//   - offset: lateral offset in world units
//
// Returns:
//   - StreamerBuilderOption: functional option to set the lane offset
func WithLaneOffset(offset float32) StreamerBuilderOption {
	return func(s *streamer) {
		s.laneOffset = offset
	}
}

// WithStep sets the distance between consecutive pairs along the forward axis.
//
// Parameters:
//   - step: spacing in world units
//
// Returns:
//   - StreamerBuilderOption: functional option to set the step
func WithStep(step float32) StreamerBuilderOption {
	return func(s *streamer) {
		s.step = step
	}
}

// WithHeightRange sets the closed integer range heights are sampled from.
//
// Parameters:
//   - lo, hi: inclusive bounds
//
// Returns:
//   - StreamerBuilderOption: functional option to set the height range
func WithHeightRange(lo, hi int) StreamerBuilderOption {
	return func(s *streamer) {
		s.minHeight = lo
		s.maxHeight = hi
	}
}

// WithRand sets the random source used for heights and tints.
//
// Parameters:
//   - r: the random source
//
// Returns:
//   - StreamerBuilderOption: functional option to set the random source
func WithRand(r *rand.Rand) StreamerBuilderOption {
	return func(s *streamer) {
		s.rng = r
	}
}

// WithDrawableSink sets the backend that new objects are registered with.
//
// Parameters:
//   - sink: the drawable sink
//
// Returns:
//   - StreamerBuilderOption: functional option to set the sink
func WithDrawableSink(sink DrawableSink) StreamerBuilderOption {
	return func(s *streamer) {
		s.sink = sink
	}
}

// WithRetainBehind enables eviction of objects more than dist units behind the camera.
//
// Parameters:
//   - dist: retain distance; 0 disables eviction
//
// Returns:
//   - StreamerBuilderOption: functional option to set the retain distance
func WithRetainBehind(dist float32) StreamerBuilderOption {
	return func(s *streamer) {
		s.retainBehind = dist
	}
}

// WithStyleBank sets the shared style bank referenced by every object's material.
//
// Parameters:
//   - bank: the style bank
//
// Returns:
//   - StreamerBuilderOption: functional option to set the style bank
func WithStyleBank(bank style.Bank) StreamerBuilderOption {
	return func(s *streamer) {
		s.bank = bank
	}
}
