package frame

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-corridor/engine/camera"
	"github.com/Carmen-Shannon/oxy-corridor/engine/scene"
	"github.com/Carmen-Shannon/oxy-corridor/engine/style"
	"github.com/Carmen-Shannon/oxy-corridor/engine/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	mu      sync.Mutex
	resizes [][2]int
	renders []style.Uniforms
	cams    []camera.Snapshot
	err     error
}

func (f *fakeSubmitter) Resize(w, h int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resizes = append(f.resizes, [2]int{w, h})
}

func (f *fakeSubmitter) Render(cam camera.Snapshot, u style.Uniforms) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.renders = append(f.renders, u)
	f.cams = append(f.cams, cam)
	return nil
}

type mutableViewport struct {
	mu    sync.Mutex
	w, h  int
	ratio float32
}

func (v *mutableViewport) ClientSize() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.w, v.h
}

func (v *mutableViewport) PixelRatio() float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ratio
}

func (v *mutableViewport) set(w, h int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.w, v.h = w, h
}

// stepRefresh emits a fixed list of timestamps, then blocks until ctx is done.
type stepRefresh struct {
	ts []time.Duration
}

func (r *stepRefresh) Next(ctx context.Context) (time.Duration, error) {
	if len(r.ts) > 0 {
		ts := r.ts[0]
		r.ts = r.ts[1:]
		return ts, nil
	}
	<-ctx.Done()
	return 0, ctx.Err()
}

func (r *stepRefresh) Stop() {}

type countingObserver struct {
	frames int
}

func (c *countingObserver) FrameRendered(time.Duration, int) { c.frames++ }

func newTestScene() *scene.Scene {
	return scene.NewScene(camera.NewCamera(), world.NewStreamer(), style.NewBank())
}

func TestDetectResize(t *testing.T) {
	w, h, changed := DetectResize(800, 400, 1.5, 0, 0)
	assert.Equal(t, 1200, w)
	assert.Equal(t, 600, h)
	assert.True(t, changed)

	_, _, changed = DetectResize(800, 400, 1.5, 1200, 600)
	assert.False(t, changed)

	w, h, _ = DetectResize(333, 111, 1.25, 0, 0)
	assert.Equal(t, 416, w, "fractional pixels are truncated")
	assert.Equal(t, 138, h)
}

func TestTickWritesScaledTime(t *testing.T) {
	sc := newTestScene()
	sub := &fakeSubmitter{}
	s := NewScheduler(sc, sub)

	require.NoError(t, s.Tick(1500*time.Millisecond))
	assert.InDelta(t, 0.15, sc.Bank().Time(), 1e-6)
	require.Len(t, sub.renders, 1)
	assert.InDelta(t, 0.15, sub.renders[0].Time, 1e-6)
}

func TestTickResizesOnlyOnChange(t *testing.T) {
	sc := newTestScene()
	sub := &fakeSubmitter{}
	vp := &mutableViewport{w: 1000, h: 500, ratio: 2}
	s := NewScheduler(sc, sub, WithViewport(vp))

	require.NoError(t, s.Tick(time.Millisecond))
	require.NoError(t, s.Tick(2*time.Millisecond))
	assert.Equal(t, [][2]int{{2000, 1000}}, sub.resizes, "same dimensions twice resize once")
	assert.Equal(t, [3]float32{2000, 1000, 1}, sc.Bank().Resolution())
	assert.Equal(t, float32(2), sc.Camera().Aspect())

	vp.set(600, 600)
	require.NoError(t, s.Tick(3*time.Millisecond))
	assert.Equal(t, [2]int{1200, 1200}, sub.resizes[1])
	assert.Equal(t, float32(1), sc.Camera().Aspect())
	w, h := s.BackingSize()
	assert.Equal(t, 1200, w)
	assert.Equal(t, 1200, h)
}

func TestTickSurvivesMinimize(t *testing.T) {
	sc := newTestScene()
	sub := &fakeSubmitter{}
	vp := &mutableViewport{w: 800, h: 600, ratio: 1}
	s := NewScheduler(sc, sub, WithViewport(vp))

	require.NoError(t, s.Tick(time.Millisecond))

	vp.set(0, 0)
	require.NoError(t, s.Tick(2*time.Millisecond))
	require.NoError(t, s.Tick(3*time.Millisecond))
	w, h := s.BackingSize()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.Equal(t, [3]float32{800, 600, 1}, sc.Bank().Resolution())
	assert.Len(t, sub.renders, 1, "no draws while minimized")

	vp.set(800, 600)
	require.NoError(t, s.Tick(4*time.Millisecond))
	assert.Equal(t, [][2]int{{800, 600}}, sub.resizes, "restoring the same size does not resize")
	assert.Len(t, sub.renders, 2)
	assert.InDelta(t, 4*0.0001, sub.renders[1].Time, 1e-9)
}

func TestTickRenderFailure(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("device lost")}
	s := NewScheduler(newTestScene(), sub)
	err := s.Tick(time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRenderSubmission)
}

func TestTickUsesCurrentCamera(t *testing.T) {
	sc := newTestScene()
	sub := &fakeSubmitter{}
	s := NewScheduler(sc, sub)

	require.NoError(t, s.Tick(time.Millisecond))
	sc.Camera().Advance(0.1)
	require.NoError(t, s.Tick(2*time.Millisecond))
	assert.InDelta(t, 1.9, sub.cams[1].Position[2], 1e-6)
}

func TestRunStopsCleanlyOnCancel(t *testing.T) {
	sc := newTestScene()
	sub := &fakeSubmitter{}
	obs := &countingObserver{}
	refresh := &stepRefresh{ts: []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond}}
	s := NewScheduler(sc, sub, WithRefreshSource(refresh), WithObserver(obs), WithTimeScale(0.001))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool {
		sub.mu.Lock()
		defer sub.mu.Unlock()
		return len(sub.renders) == 3
	}, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.InDelta(t, 0.03, sc.Bank().Time(), 1e-6)
	assert.Equal(t, 3, obs.frames)
}

func TestRunReturnsRenderError(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("lost")}
	refresh := &stepRefresh{ts: []time.Duration{time.Millisecond}}
	s := NewScheduler(newTestScene(), sub, WithRefreshSource(refresh))
	err := s.Run(context.Background())
	assert.ErrorIs(t, err, ErrRenderSubmission)
}

func TestTickerRefreshMonotonic(t *testing.T) {
	r := NewTickerRefresh(500)
	defer r.Stop()
	ctx := context.Background()
	a, err := r.Next(ctx)
	require.NoError(t, err)
	b, err := r.Next(ctx)
	require.NoError(t, err)
	assert.Greater(t, b, a)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = r.Next(cctx)
	assert.ErrorIs(t, err, context.Canceled)
}
