package classifier

import (
	"context"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-corridor/engine/capture"
	"github.com/Carmen-Shannon/oxy-corridor/engine/control"
)

type scripted struct {
	mu       *sync.Mutex
	values   []float64
	loop     bool
	interval time.Duration
	next     int
}

var _ control.Classifier = &scripted{}

// NewScripted creates a classifier that replays values in order. When the sequence is exhausted it
// starts over if loop is set and otherwise repeats the last value. An empty sequence always yields 0.5.
//
// Parameters:
//   - values: the prediction values
//   - loop: replay from the start when exhausted
//   - interval: minimum time per prediction, 0 for none
//
// Returns:
//   - control.Classifier: the scripted classifier
func NewScripted(values []float64, loop bool, interval time.Duration) control.Classifier {
	v := make([]float64, len(values))
	copy(v, values)
	return &scripted{
		mu:       &sync.Mutex{},
		values:   v,
		loop:     loop,
		interval: interval,
	}
}

func (s *scripted) Ready(ctx context.Context) error {
	return ctx.Err()
}

func (s *scripted) Load(ctx context.Context, _ string) error {
	return ctx.Err()
}

func (s *scripted) Predict(ctx context.Context, frame capture.Frame) (control.PredictionSample, error) {
	if s.interval > 0 {
		t := time.NewTimer(s.interval)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return control.PredictionSample{}, ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return control.PredictionSample{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return control.PredictionSample{Value: 0.5, Seq: frame.Seq}, nil
	}
	if s.next >= len(s.values) {
		if s.loop {
			s.next = 0
		} else {
			s.next = len(s.values) - 1
		}
	}
	v := s.values[s.next]
	s.next++
	return control.PredictionSample{Value: v, Seq: frame.Seq}, nil
}

func (s *scripted) Close() error {
	return nil
}
