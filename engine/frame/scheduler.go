// Package frame drives the per-refresh render loop: it keeps the style time and resolution in sync with the
// wall clock and the viewport and submits one render per refresh.
package frame

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-corridor/engine/camera"
	"github.com/Carmen-Shannon/oxy-corridor/engine/profiler"
	"github.com/Carmen-Shannon/oxy-corridor/engine/scene"
	"github.com/Carmen-Shannon/oxy-corridor/engine/style"
)

// ErrRenderSubmission is returned by the Frame Scheduler when the backend rejects a frame.
var ErrRenderSubmission = errors.New("frame: render submission failed")

// Submitter is the subset of the rendering backend the scheduler drives.
type Submitter interface {
	// Resize reconfigures the backing store.
	Resize(width, height int)

	// Render draws one frame with the given camera and style state.
	Render(cam camera.Snapshot, uniforms style.Uniforms) error
}

// Observer receives per-frame statistics.
type Observer interface {
	// FrameRendered is called after every successful submission.
	FrameRendered(elapsed time.Duration, objects int)
}

type scheduler struct {
	mu *sync.Mutex

	scene     *scene.Scene
	renderer  Submitter
	viewport  Viewport
	refresh   RefreshSource
	timeScale float32

	backingW int
	backingH int

	observer Observer
	profiler *profiler.Profiler
}

// Scheduler defines the Frame Scheduler.
type Scheduler interface {
	// Tick performs one frame: update time, detect and apply resizes, submit one render. While the viewport
	// has no area (minimized) only the time is updated.
	//
	// Parameters:
	//   - ts: monotonically increasing timestamp since the loop started
	//
	// Returns:
	//   - error: ErrRenderSubmission wrapping the backend error
	Tick(ts time.Duration) error

	// Run calls Tick on every refresh until ctx is done or a render submission fails.
	//
	// Parameters:
	//   - ctx: stops the loop
	//
	// Returns:
	//   - error: nil on cancellation, otherwise the Tick error
	Run(ctx context.Context) error

	// BackingSize returns the backing-store size applied by the last resize.
	//
	// Returns:
	//   - width, height: backing-store size in pixels
	BackingSize() (width, height int)
}

var _ Scheduler = &scheduler{}

// NewScheduler creates a Frame Scheduler for the given scene and backend. The backing size starts at
// zero so the first Tick always performs a resize.
//
// Parameters:
//   - sc: the shared scene
//   - r: the rendering backend
//   - options: functional options to configure the scheduler
//
// Returns:
//   - Scheduler: the new scheduler
func NewScheduler(sc *scene.Scene, r Submitter, options ...SchedulerBuilderOption) Scheduler {
	if sc == nil || r == nil {
		panic("frame: NewScheduler requires a scene and a renderer")
	}
	s := &scheduler{
		mu:        &sync.Mutex{},
		scene:     sc,
		renderer:  r,
		viewport:  FixedViewport{Width: 800, Height: 400, Ratio: 1},
		timeScale: 0.0001,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scheduler) Tick(ts time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	bank := s.scene.Bank()
	t := float32(float64(ts)/float64(time.Millisecond)) * s.timeScale

	bank.SetTime(t)

	clientW, clientH := s.viewport.ClientSize()
	w, h, changed := DetectResize(clientW, clientH, s.viewport.PixelRatio(), s.backingW, s.backingH)
	if w <= 0 || h <= 0 {
		// Minimized: keep the last backing size and skip the draw until the window has an area again.
		return nil
	}
	if changed {
		s.renderer.Resize(w, h)
		if clientH > 0 {
			s.scene.Camera().SetAspect(float32(clientW) / float32(clientH))
		}
		bank.SetResolution(w, h)
		s.backingW, s.backingH = w, h
	}

	f := s.scene.Frame()
	if err := s.renderer.Render(f.Camera, f.Style); err != nil {
		return fmt.Errorf("%w: %w", ErrRenderSubmission, err)
	}

	if s.observer != nil {
		s.observer.FrameRendered(time.Since(start), f.Objects)
	}
	if s.profiler != nil {
		s.profiler.Tick(f.Objects, f.Camera.Position[2])
	}
	return nil
}

func (s *scheduler) Run(ctx context.Context) error {
	if s.refresh == nil {
		s.refresh = NewTickerRefresh(60)
	}
	defer s.refresh.Stop()

	log.Printf("[Frame] Scheduler started for scene %q", s.scene.Name())
	for {
		ts, err := s.refresh.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("[Frame] Scheduler stopped")
				return nil
			}
			return fmt.Errorf("frame: refresh: %w", err)
		}
		if err := s.Tick(ts); err != nil {
			log.Printf("[Frame] Scheduler halted: %v", err)
			return err
		}
	}
}

func (s *scheduler) BackingSize() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backingW, s.backingH
}
