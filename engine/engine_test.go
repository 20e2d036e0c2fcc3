package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-corridor/engine/camera"
	"github.com/Carmen-Shannon/oxy-corridor/engine/capture"
	"github.com/Carmen-Shannon/oxy-corridor/engine/config"
	"github.com/Carmen-Shannon/oxy-corridor/engine/control"
	"github.com/Carmen-Shannon/oxy-corridor/engine/frame"
	"github.com/Carmen-Shannon/oxy-corridor/engine/renderer"
	"github.com/Carmen-Shannon/oxy-corridor/engine/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(values ...float64) *config.Config {
	cfg := config.Default()
	cfg.Renderer.Backend = "headless"
	cfg.Capture.Source = "pattern"
	cfg.Capture.Width = 64
	cfg.Capture.Height = 48
	cfg.Capture.FPS = 60
	cfg.Classifier.Kind = "scripted"
	cfg.Classifier.Values = values
	cfg.Classifier.Loop = true
	cfg.Classifier.IntervalMS = 1
	cfg.Frame.RefreshHz = 200
	cfg.World.Seed = 7
	cfg.Style.NoiseSize = 16
	return cfg
}

// runAsync starts e.Run and returns a cancel func plus a channel delivering Run's result.
func runAsync(e Engine) (context.CancelFunc, <-chan error) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()
	return cancel, done
}

func TestNewEngineSeedsCorridor(t *testing.T) {
	e, err := NewEngine(testConfig(0.5), WithSession("test-session"))
	require.NoError(t, err)

	sc := e.Scene()
	assert.Equal(t, 20, sc.Streamer().Count())
	assert.Equal(t, float32(-13.5), sc.Streamer().Frontier())
	assert.Equal(t, 20, e.Renderer().DrawableCount())
	assert.Equal(t, renderer.BackendTypeHeadless, e.Renderer().BackendType())
	assert.Equal(t, float32(2), sc.Camera().Z())
	assert.Equal(t, "test-session", e.Session())
	assert.NotNil(t, e.Metrics())
	assert.Equal(t, "perlin", sc.Bank().NoiseTexture().Name)
}

func TestNewEngineGeneratesSession(t *testing.T) {
	a, err := NewEngine(testConfig())
	require.NoError(t, err)
	b, err := NewEngine(testConfig())
	require.NoError(t, err)
	assert.Len(t, a.Session(), 36)
	assert.NotEqual(t, a.Session(), b.Session())
}

func TestNewEngineWGPURequiresWindow(t *testing.T) {
	cfg := testConfig()
	cfg.Renderer.Backend = "wgpu"
	_, err := NewEngine(cfg)
	require.Error(t, err)
}

func TestNewEngineMissingNoiseTexture(t *testing.T) {
	cfg := testConfig()
	cfg.Style.NoiseTexture = "does-not-exist.png"
	_, err := NewEngine(cfg)
	require.Error(t, err)
}

// fixedStream emits its values once, then blocks until ctx is done.
type fixedStream struct {
	mu     sync.Mutex
	values []float64
}

func (f *fixedStream) Ready(context.Context) error        { return nil }
func (f *fixedStream) Load(context.Context, string) error { return nil }
func (f *fixedStream) Close() error                       { return nil }

func (f *fixedStream) Predict(ctx context.Context, frame capture.Frame) (control.PredictionSample, error) {
	f.mu.Lock()
	if len(f.values) > 0 {
		v := f.values[0]
		f.values = f.values[1:]
		f.mu.Unlock()
		return control.PredictionSample{Value: v, Seq: frame.Seq}, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return control.PredictionSample{}, ctx.Err()
}

type stepRecorder struct {
	mu       sync.Mutex
	outcomes []control.Outcome
}

func (r *stepRecorder) Predicted(control.Decision, time.Duration) {}

func (r *stepRecorder) Stepped(o control.Outcome, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *stepRecorder) snapshot() []control.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]control.Outcome(nil), r.outcomes...)
}

func TestRunHighConfidenceRetreatsWithoutExtending(t *testing.T) {
	rec := &stepRecorder{}
	e, err := NewEngine(testConfig(),
		WithClassifier(&fixedStream{values: []float64{0.9, 0.9, 0.9}}),
		WithControlObserver(rec),
	)
	require.NoError(t, err)
	sc := e.Scene()

	cancel, done := runAsync(e)
	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 3 && e.Renderer().Frames() > 3
	}, 5*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	outcomes := rec.snapshot()
	require.Len(t, outcomes, 3)
	prev := float32(2)
	for i, o := range outcomes {
		assert.Equal(t, control.DecisionBackward, o.Decision, "step %d", i)
		assert.False(t, o.Extended, "step %d", i)
		assert.Greater(t, o.CameraZ, prev, "step %d", i)
		prev = o.CameraZ
	}
	assert.InDelta(t, 2.3, sc.Camera().Z(), 1e-5)

	assert.Equal(t, 20, sc.Streamer().Count())
	assert.Equal(t, float32(-13.5), sc.Streamer().Frontier())
	assert.Equal(t, [3]float32{1280, 720, 1}, sc.Bank().Resolution())
	assert.Greater(t, sc.Bank().Time(), float32(0))
}

func TestRunLowConfidenceAdvancesAndExtends(t *testing.T) {
	e, err := NewEngine(testConfig(0.1))
	require.NoError(t, err)
	sc := e.Scene()

	cancel, done := runAsync(e)
	require.Eventually(t, func() bool {
		return sc.Streamer().Count() >= 22
	}, 5*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Less(t, sc.Camera().Z(), float32(1.5))
	assert.LessOrEqual(t, sc.Streamer().Frontier(), float32(-15))
	assert.Equal(t, sc.Streamer().Count(), e.Renderer().DrawableCount())
}

func TestRunNeutralPredictionsHold(t *testing.T) {
	e, err := NewEngine(testConfig(0.5))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	require.NoError(t, e.Run(ctx))

	assert.Equal(t, float32(2), e.Scene().Camera().Z())
	assert.Equal(t, 20, e.Scene().Streamer().Count())
}

func TestRunCaptureDenied(t *testing.T) {
	denied := errors.New("permission denied")
	e, err := NewEngine(testConfig(0.1), WithCaptureOpener(func(context.Context) (capture.Source, error) {
		return nil, denied
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	err = e.Run(ctx)
	require.ErrorIs(t, err, ErrCaptureDenied)
	require.ErrorIs(t, err, denied)

	assert.Greater(t, e.Renderer().Frames(), uint64(0), "frame scheduler keeps running")
	assert.Equal(t, float32(2), e.Scene().Camera().Z())
}

func TestRunModelLoadFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Classifier.Kind = "linear"
	cfg.Classifier.Model = "does-not-exist.json"
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	err = e.Run(ctx)
	require.ErrorIs(t, err, ErrModelLoad)
	assert.Contains(t, err.Error(), "does-not-exist.json")
}

func TestRunClassifierNotReady(t *testing.T) {
	cfg := testConfig()
	cfg.Classifier.Kind = "remote"
	cfg.Classifier.URL = "ws://127.0.0.1:1/predict"
	cfg.Classifier.ReadyTimeoutMS = 100
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, e.Run(ctx), ErrClassifierNotReady)
}

// failingRenderer rejects every render submission after the first.
type failingRenderer struct {
	renderer.Renderer
	mu    sync.Mutex
	calls int
}

func (f *failingRenderer) Render(cam camera.Snapshot, u style.Uniforms) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls > 1 {
		return errors.New("device lost")
	}
	return f.Renderer.Render(cam, u)
}

func TestRenderFailureDoesNotStopControlLoop(t *testing.T) {
	r := &failingRenderer{Renderer: renderer.NewHeadless()}
	e, err := NewEngine(testConfig(0.9), WithRenderer(r))
	require.NoError(t, err)
	sc := e.Scene()

	cancel, done := runAsync(e)
	require.Eventually(t, func() bool {
		return sc.Camera().Z() > 2.5
	}, 5*time.Second, 5*time.Millisecond)
	cancel()

	err = <-done
	require.ErrorIs(t, err, frame.ErrRenderSubmission)
}

func TestRunJoinsBothLoopErrors(t *testing.T) {
	r := &failingRenderer{Renderer: renderer.NewHeadless()}
	denied := errors.New("permission denied")
	e, err := NewEngine(testConfig(0.5), WithRenderer(r), WithCaptureOpener(func(context.Context) (capture.Source, error) {
		return nil, denied
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = e.Run(ctx)
	require.ErrorIs(t, err, frame.ErrRenderSubmission)
	require.ErrorIs(t, err, ErrCaptureDenied)
	require.ErrorIs(t, err, denied)
}
