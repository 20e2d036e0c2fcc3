// Package engine wires the corridor together: it builds the shared scene from configuration, seeds the
// world, and runs the Frame Scheduler and the Control Loop side by side.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-corridor/engine/camera"
	"github.com/Carmen-Shannon/oxy-corridor/engine/capture"
	"github.com/Carmen-Shannon/oxy-corridor/engine/classifier"
	"github.com/Carmen-Shannon/oxy-corridor/engine/config"
	"github.com/Carmen-Shannon/oxy-corridor/engine/control"
	"github.com/Carmen-Shannon/oxy-corridor/engine/frame"
	"github.com/Carmen-Shannon/oxy-corridor/engine/metrics"
	"github.com/Carmen-Shannon/oxy-corridor/engine/profiler"
	"github.com/Carmen-Shannon/oxy-corridor/engine/renderer"
	"github.com/Carmen-Shannon/oxy-corridor/engine/scene"
	"github.com/Carmen-Shannon/oxy-corridor/engine/style"
	"github.com/Carmen-Shannon/oxy-corridor/engine/window"
	"github.com/Carmen-Shannon/oxy-corridor/engine/world"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrCaptureDenied is returned by Run when the capture source cannot be opened.
	ErrCaptureDenied = errors.New("capture denied")

	// ErrClassifierNotReady is returned by Run when the classifier does not become ready in time.
	ErrClassifierNotReady = errors.New("classifier not ready")

	// ErrModelLoad is returned by Run when the classifier cannot load its regression head.
	ErrModelLoad = errors.New("model load failed")
)

// CaptureOpener opens the capture source during bootstrap.
type CaptureOpener func(ctx context.Context) (capture.Source, error)

type engine struct {
	cfg     *config.Config
	session string

	window   window.Window
	viewport frame.Viewport
	refresh  frame.RefreshSource

	scene      *scene.Scene
	renderer   renderer.Renderer
	classifier control.Classifier
	open       CaptureOpener
	metrics    *metrics.Metrics
	observer   control.Observer
}

// Engine owns the corridor scene and its two loops.
type Engine interface {
	// Scene returns the shared scene.
	//
	// Returns:
	//   - *scene.Scene: the scene both loops operate on
	Scene() *scene.Scene

	// Renderer returns the renderer the scene draws into.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Metrics returns the engine's metrics collectors.
	//
	// Returns:
	//   - *metrics.Metrics: the metrics
	Metrics() *metrics.Metrics

	// Session returns the id identifying this run to the classifier service and in logs.
	//
	// Returns:
	//   - string: the session id
	Session() string

	// Run starts the Frame Scheduler immediately and, in parallel, bootstraps the Control Loop
	// (capture, classifier ready, model load). It returns once both loops have exited.
	// A failure in one loop does not stop the other; cancellation of ctx stops both cleanly.
	//
	// Parameters:
	//   - ctx: stops both loops
	//
	// Returns:
	//   - error: the joined loop errors, nil after a clean shutdown
	Run(ctx context.Context) error
}

var _ Engine = &engine{}

// NewEngine builds the scene from cfg and seeds the corridor. A nil cfg uses config.Default().
//
// Parameters:
//   - cfg: the runtime configuration
//   - options: variadic list of EngineBuilderOption functions overriding configured components
//
// Returns:
//   - Engine: the ready-to-run engine
//   - error: an error if the noise texture, renderer or initial corridor could not be created
func NewEngine(cfg *config.Config, options ...EngineBuilderOption) (Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &engine{cfg: cfg}
	for _, opt := range options {
		opt(e)
	}
	if e.session == "" {
		e.session = uuid.NewString()
	}

	noise, err := loadNoise(cfg.Style)
	if err != nil {
		return nil, err
	}
	bank := style.NewBank(style.WithNoiseTexture(noise))

	if e.renderer == nil {
		if e.renderer, err = newRenderer(cfg, e.window, noise); err != nil {
			return nil, err
		}
	}

	cam := camera.NewCamera(
		camera.WithFovDegrees(cfg.Camera.FovDegrees),
		camera.WithAspect(cfg.Camera.Aspect),
		camera.WithClipPlanes(cfg.Camera.Near, cfg.Camera.Far),
		camera.WithStartZ(*cfg.Camera.StartZ),
		camera.WithHeight(*cfg.Camera.Height),
	)

	streamerOpts := []world.StreamerBuilderOption{
		world.WithLaneOffset(cfg.World.LaneOffset),
		world.WithStep(cfg.World.Step),
		world.WithHeightRange(cfg.World.MinHeight, cfg.World.MaxHeight),
		world.WithRetainBehind(cfg.World.RetainBehind),
		world.WithDrawableSink(e.renderer),
		world.WithStyleBank(bank),
	}
	if cfg.World.Seed != 0 {
		seed := uint64(cfg.World.Seed)
		streamerOpts = append(streamerOpts, world.WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))))
	}
	streamer := world.NewStreamer(streamerOpts...)

	e.scene = scene.NewScene(cam, streamer, bank)
	if err := streamer.Seed(cfg.World.InitialSteps); err != nil {
		return nil, fmt.Errorf("seed corridor: %w", err)
	}

	if e.metrics == nil {
		e.metrics = metrics.NewMetrics()
	}
	e.metrics.SetFrontier(streamer.Frontier())

	if e.viewport == nil {
		if e.window != nil {
			e.viewport = e.window
		} else {
			e.viewport = frame.FixedViewport{Width: cfg.Window.Width, Height: cfg.Window.Height, Ratio: 1}
		}
	}
	if e.refresh == nil {
		e.refresh = frame.NewTickerRefresh(cfg.Frame.RefreshHz)
	}
	if e.classifier == nil {
		e.classifier = newClassifier(cfg.Classifier, e.session)
	}
	if e.open == nil {
		e.open = captureOpener(cfg.Capture)
	}

	return e, nil
}

func (e *engine) Scene() *scene.Scene {
	return e.scene
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Metrics() *metrics.Metrics {
	return e.metrics
}

func (e *engine) Session() string {
	return e.session
}

func (e *engine) Run(ctx context.Context) error {
	log.Printf("[Engine] Session %s: %d objects, frontier z=%.2f", e.session, e.scene.Streamer().Count(), e.scene.Streamer().Frontier())

	schedOpts := []frame.SchedulerBuilderOption{
		frame.WithViewport(e.viewport),
		frame.WithRefreshSource(e.refresh),
		frame.WithTimeScale(e.cfg.Frame.TimeScale),
		frame.WithObserver(e.metrics),
	}
	if e.cfg.Frame.Profile {
		schedOpts = append(schedOpts, frame.WithProfiler(profiler.NewProfiler(time.Second)))
	}
	scheduler := frame.NewScheduler(e.scene, e.renderer, schedOpts...)

	metricsCtx, stopMetrics := context.WithCancel(ctx)
	defer stopMetrics()
	var metricsWG sync.WaitGroup
	if addr := e.cfg.Metrics.Listen; addr != "" {
		metricsWG.Add(1)
		go func() {
			defer metricsWG.Done()
			if err := e.metrics.Serve(metricsCtx, addr); err != nil {
				log.Printf("[Metrics] Listener stopped: %v", err)
			}
		}()
	}

	// The group is not derived from ctx: a failing loop must not cancel the other one.
	var g errgroup.Group
	var frameErr, controlErr error
	g.Go(func() error {
		frameErr = scheduler.Run(ctx)
		if frameErr != nil {
			log.Printf("[Frame] Scheduler stopped: %v", frameErr)
		}
		return frameErr
	})
	g.Go(func() error {
		controlErr = e.runControl(ctx)
		if controlErr != nil {
			log.Printf("[Control] Loop stopped: %v", controlErr)
		}
		return controlErr
	})
	// Wait reports only the first failure. Both loop errors are joined below instead.
	_ = g.Wait()

	stopMetrics()
	metricsWG.Wait()
	log.Printf("[Engine] Session %s stopped after %d frames", e.session, e.renderer.Frames())
	return errors.Join(frameErr, controlErr)
}

// runControl performs the bootstrap sequence and then runs the Control Loop until ctx is done.
func (e *engine) runControl(ctx context.Context) error {
	src, err := e.open(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrCaptureDenied, err)
	}
	defer src.Close()

	readyCtx, cancel := context.WithTimeout(ctx, time.Duration(e.cfg.Classifier.ReadyTimeoutMS)*time.Millisecond)
	err = e.classifier.Ready(readyCtx)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrClassifierNotReady, err)
	}
	defer e.classifier.Close()

	model := e.cfg.Classifier.Model
	if err := e.classifier.Load(ctx, model); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%w: %s: %w", ErrModelLoad, model, err)
	}
	log.Printf("[Engine] Classifier %s ready with model %s", e.cfg.Classifier.Kind, model)

	loop := control.NewLoop(e.scene, e.classifier, src,
		control.WithThresholds(*e.cfg.Control.Low, *e.cfg.Control.High),
		control.WithCameraStep(e.cfg.Control.CameraStep),
		control.WithExtendEvery(e.cfg.Control.ExtendEvery),
		control.WithObserver(e.controlObserver()),
	)
	return loop.Run(ctx)
}

// controlObservers fans Control Loop statistics out to several observers.
type controlObservers []control.Observer

func (o controlObservers) Predicted(decision control.Decision, latency time.Duration) {
	for _, obs := range o {
		obs.Predicted(decision, latency)
	}
}

func (o controlObservers) Stepped(outcome control.Outcome, objects int) {
	for _, obs := range o {
		obs.Stepped(outcome, objects)
	}
}

func (e *engine) controlObserver() control.Observer {
	if e.observer == nil {
		return e.metrics
	}
	return controlObservers{e.metrics, e.observer}
}

func loadNoise(cfg config.StyleConfig) (*style.NoiseTexture, error) {
	if cfg.NoiseTexture == "" {
		return style.GenerateNoiseTexture(cfg.NoiseSize, cfg.NoiseSeed), nil
	}
	tex, err := style.LoadNoiseTexture(cfg.NoiseTexture)
	if err != nil {
		return nil, fmt.Errorf("load noise texture: %w", err)
	}
	return tex, nil
}

func newRenderer(cfg *config.Config, win window.Window, noise *style.NoiseTexture) (renderer.Renderer, error) {
	opts := []renderer.RendererBuilderOption{renderer.WithNoiseTexture(noise)}
	if cfg.Renderer.Backend == renderer.BackendTypeHeadless.String() {
		return renderer.NewHeadless(opts...), nil
	}
	if win == nil {
		return nil, errors.New("the wgpu renderer requires a window")
	}
	mode := renderer.PresentModeUncapped
	if *cfg.Renderer.VSync {
		mode = renderer.PresentModeVSync
	}
	return renderer.NewWGPU(win, append(opts, renderer.WithPresentMode(mode))...)
}

func newClassifier(cfg config.ClassifierConfig, session string) control.Classifier {
	switch cfg.Kind {
	case "linear":
		return classifier.NewLinear()
	case "scripted":
		return classifier.NewScripted(cfg.Values, cfg.Loop, time.Duration(cfg.IntervalMS)*time.Millisecond)
	default:
		return classifier.NewRemote(cfg.URL,
			classifier.WithSession(session),
			classifier.WithTimeout(time.Duration(cfg.ReadyTimeoutMS)*time.Millisecond),
		)
	}
}

func captureOpener(cfg config.CaptureConfig) CaptureOpener {
	opts := []capture.SourceBuilderOption{
		capture.WithDevice(cfg.Device),
		capture.WithSize(cfg.Width, cfg.Height),
		capture.WithFPS(int(cfg.FPS)),
	}
	if cfg.Source == "pattern" {
		return func(context.Context) (capture.Source, error) {
			return capture.NewPattern(opts...), nil
		}
	}
	return func(ctx context.Context) (capture.Source, error) {
		return capture.OpenV4L2(ctx, opts...)
	}
}
