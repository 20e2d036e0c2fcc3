// Package classifier implements the model pipelines that steer the corridor camera.
//
// Three implementations satisfy control.Classifier:
//   - remote: an inference service reached over a websocket
//   - linear: a regression head over grid luminance features, evaluated in process
//   - scripted: a fixed value sequence for demos and tests
package classifier

import "errors"

var (
	// ErrNotLoaded is returned by Predict before a model has been loaded.
	ErrNotLoaded = errors.New("classifier: model not loaded")

	// ErrNotConnected is returned when the remote classifier is used before Ready succeeds.
	ErrNotConnected = errors.New("classifier: not connected")
)
