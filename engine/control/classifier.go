package control

import (
	"context"

	"github.com/Carmen-Shannon/oxy-corridor/engine/capture"
)

// PredictionSample is one classifier output. Value is an opaque scalar, nominally in [0, 1].
type PredictionSample struct {
	Value float64
	// Seq is the capture frame sequence number the prediction was made for.
	Seq uint64
}

// Classifier is the contract for the external model pipeline observing the video feed.
type Classifier interface {
	// Ready blocks until the model pipeline can accept a Load.
	//
	// Parameters:
	//   - ctx: bounds the wait
	//
	// Returns:
	//   - error: an error if the pipeline failed to initialize
	Ready(ctx context.Context) error

	// Load loads the regression head from a named resource.
	//
	// Parameters:
	//   - ctx: bounds the load
	//   - resource: model name or path
	//
	// Returns:
	//   - error: an error if the model could not be loaded
	Load(ctx context.Context, resource string) error

	// Predict runs the model on one capture frame.
	//
	// Parameters:
	//   - ctx: cancels the prediction
	//   - frame: the frame to classify
	//
	// Returns:
	//   - PredictionSample: the model output
	//   - error: an error if prediction failed
	Predict(ctx context.Context, frame capture.Frame) (PredictionSample, error)

	// Close releases the model pipeline.
	//
	// Returns:
	//   - error: an error if shutdown failed
	Close() error
}
