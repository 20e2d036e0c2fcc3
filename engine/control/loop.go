// Package control runs the loop that turns classifier predictions into camera movement and corridor growth.
package control

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-corridor/engine/capture"
	"github.com/Carmen-Shannon/oxy-corridor/engine/scene"
)

// ErrPrediction is returned by the Control Loop when the classifier fails.
var ErrPrediction = errors.New("control: prediction failed")

// Outcome describes what one Step did.
type Outcome struct {
	Decision Decision
	Extended bool
	// Frontier is the remembered frontier after the step.
	Frontier float32
	CameraZ  float32
}

// Observer receives per-prediction statistics.
type Observer interface {
	// Predicted is called after every successful prediction.
	Predicted(decision Decision, latency time.Duration)

	// Stepped is called after the decision rule has been applied.
	Stepped(outcome Outcome, objects int)
}

type loop struct {
	mu *sync.Mutex

	scene      *scene.Scene
	classifier Classifier
	source     capture.Source

	low        float64
	high       float64
	cameraStep float32

	counter  *ExtensionCounter
	frontier float32

	observer Observer
}

// Loop defines the Control Loop.
type Loop interface {
	// Step applies the decision rule to one sample: update the camera, then run the extension check.
	//
	// Parameters:
	//   - sample: the prediction
	//
	// Returns:
	//   - Outcome: what the step did
	//   - error: an error if the world could not be extended
	Step(sample PredictionSample) (Outcome, error)

	// Run awaits a prediction for the latest capture frame and applies Step, forever, until ctx is done
	// or the classifier fails.
	//
	// Parameters:
	//   - ctx: stops the loop
	//
	// Returns:
	//   - error: nil on cancellation, ErrPrediction wrapping a classifier failure, or a Step error
	Run(ctx context.Context) error

	// Frontier returns the frontier the next extension will grow from.
	//
	// Returns:
	//   - float32: the remembered frontier
	Frontier() float32

	// Pending returns the low-confidence samples counted since the last extension.
	//
	// Returns:
	//   - int: the extension counter value
	Pending() int
}

var _ Loop = &loop{}

// NewLoop creates a Control Loop. The remembered frontier is taken from the scene's streamer, so the
// corridor must be seeded first.
//
// Parameters:
//   - sc: the shared scene
//   - c: the classifier
//   - src: the capture source
//   - options: functional options to configure the loop
//
// Returns:
//   - Loop: the new loop
func NewLoop(sc *scene.Scene, c Classifier, src capture.Source, options ...LoopBuilderOption) Loop {
	if sc == nil || c == nil || src == nil {
		panic("control: NewLoop requires a scene, a classifier and a capture source")
	}
	l := &loop{
		mu:         &sync.Mutex{},
		scene:      sc,
		classifier: c,
		source:     src,
		low:        0.4,
		high:       0.6,
		cameraStep: 0.1,
		counter:    NewExtensionCounter(10),
	}
	for _, opt := range options {
		opt(l)
	}
	l.frontier = sc.Streamer().Frontier()
	return l
}

func (l *loop) Step(sample PredictionSample) (Outcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cam := l.scene.Camera()
	streamer := l.scene.Streamer()
	out := Outcome{Decision: Decide(sample.Value, l.low, l.high)}

	switch out.Decision {
	case DecisionForward:
		cam.Advance(l.cameraStep)
		if l.counter.Observe() {
			next, _, err := streamer.Extend(l.frontier)
			if err != nil {
				return out, fmt.Errorf("control: extend from %.2f: %w", l.frontier, err)
			}
			l.frontier = next
			out.Extended = true
		}
	case DecisionBackward:
		cam.Retreat(l.cameraStep)
	}

	out.CameraZ = cam.Z()
	out.Frontier = l.frontier
	if out.Decision != DecisionHold {
		streamer.Evict(out.CameraZ)
	}
	if l.observer != nil {
		l.observer.Stepped(out, streamer.Count())
	}
	return out, nil
}

func (l *loop) Run(ctx context.Context) error {
	log.Printf("[Control] Loop started (low=%.2f high=%.2f step=%.2f)", l.low, l.high, l.cameraStep)
	for {
		frame, err := l.awaitFrame(ctx)
		if err != nil {
			log.Printf("[Control] Loop stopped")
			return nil
		}

		start := time.Now()
		sample, err := l.classifier.Predict(ctx, frame)
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("[Control] Loop stopped")
				return nil
			}
			log.Printf("[Control] Loop halted: %v", err)
			return fmt.Errorf("%w: %w", ErrPrediction, err)
		}
		if sample.Seq == 0 {
			sample.Seq = frame.Seq
		}

		decision := Decide(sample.Value, l.low, l.high)
		if l.observer != nil {
			l.observer.Predicted(decision, time.Since(start))
		}
		if _, err := l.Step(sample); err != nil {
			log.Printf("[Control] Loop halted: %v", err)
			return err
		}
	}
}

// awaitFrame returns the latest capture frame, waiting for the first one if necessary.
func (l *loop) awaitFrame(ctx context.Context) (capture.Frame, error) {
	if err := ctx.Err(); err != nil {
		return capture.Frame{}, err
	}
	if f, ok := l.source.Latest(); ok {
		return f, nil
	}
	select {
	case <-ctx.Done():
		return capture.Frame{}, ctx.Err()
	case <-l.source.Ready():
	}
	f, _ := l.source.Latest()
	return f, nil
}

func (l *loop) Frontier() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frontier
}

func (l *loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counter.Count()
}
