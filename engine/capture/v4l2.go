package capture

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

const startupTimeout = 5 * time.Second

type v4l2Source struct {
	*latestFrame

	cfg      sourceConfig
	pipeline *gst.Pipeline
	seq      atomic.Uint64

	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ Source = &v4l2Source{}

// OpenV4L2 opens a webcam through GStreamer:
//
//	v4l2src → videoconvert → videoscale → capsfilter(RGBA) → appsink
//
// It blocks until the pipeline reports PLAYING, an element reports an error, or ctx is done.
// Any failure is reported as ErrDeviceUnavailable.
//
// Parameters:
//   - ctx: bounds the startup wait
//   - options: functional options for device, size and frame rate
//
// Returns:
//   - Source: the running source
//   - error: ErrDeviceUnavailable wrapping the underlying cause
func OpenV4L2(ctx context.Context, options ...SourceBuilderOption) (Source, error) {
	cfg := newSourceConfig(options...)
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("%w: create pipeline: %w", ErrDeviceUnavailable, err)
	}

	src, err := gst.NewElement("v4l2src")
	if err != nil {
		return nil, fmt.Errorf("%w: create v4l2src: %w", ErrDeviceUnavailable, err)
	}
	src.SetProperty("device", cfg.device)

	convert, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("%w: create videoconvert: %w", ErrDeviceUnavailable, err)
	}
	scale, err := gst.NewElement("videoscale")
	if err != nil {
		return nil, fmt.Errorf("%w: create videoscale: %w", ErrDeviceUnavailable, err)
	}

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("%w: create capsfilter: %w", ErrDeviceUnavailable, err)
	}
	capsfilter.SetProperty("caps", gst.NewCapsFromString(
		fmt.Sprintf("video/x-raw,format=RGBA,width=%d,height=%d", cfg.width, cfg.height),
	))

	appsink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("%w: create appsink: %w", ErrDeviceUnavailable, err)
	}
	appsink.SetProperty("sync", false)
	appsink.SetProperty("max-buffers", 1)
	appsink.SetProperty("drop", true)

	pipeline.AddMany(src, convert, scale, capsfilter, appsink.Element)
	if err := gst.ElementLinkMany(src, convert, scale, capsfilter, appsink.Element); err != nil {
		return nil, fmt.Errorf("%w: link pipeline: %w", ErrDeviceUnavailable, err)
	}

	s := &v4l2Source{
		latestFrame: newLatestFrame(),
		cfg:         cfg,
		pipeline:    pipeline,
		quit:        make(chan struct{}),
	}
	appsink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: s.onNewSample,
	})

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		pipeline.SetState(gst.StateNull)
		return nil, fmt.Errorf("%w: start pipeline: %w", ErrDeviceUnavailable, err)
	}
	if err := s.awaitPlaying(ctx); err != nil {
		pipeline.SetState(gst.StateNull)
		return nil, err
	}

	s.wg.Add(1)
	go s.monitor()

	log.Printf("[Capture] Opened %s at %dx%d", cfg.device, cfg.width, cfg.height)
	return s, nil
}

// awaitPlaying polls the bus until the pipeline is playing or fails.
func (s *v4l2Source) awaitPlaying(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	bus := s.pipeline.GetPipelineBus()
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %s did not start: %w", ErrDeviceUnavailable, s.cfg.device, err)
		}
		msg := bus.TimedPop(50 * time.Millisecond)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageError:
			gerr := msg.ParseError()
			return fmt.Errorf("%w: %s: %s", ErrDeviceUnavailable, s.cfg.device, gerr.Error())
		case gst.MessageStateChanged:
			if _, newState := msg.ParseStateChanged(); newState == gst.StatePlaying {
				return nil
			}
		}
	}
}

// monitor logs pipeline errors after startup until the source is closed.
func (s *v4l2Source) monitor() {
	defer s.wg.Done()
	bus := s.pipeline.GetPipelineBus()
	for {
		select {
		case <-s.quit:
			return
		default:
		}
		msg := bus.TimedPop(50 * time.Millisecond)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageEOS:
			log.Printf("[Capture] End of stream on %s", s.cfg.device)
			return
		case gst.MessageError:
			log.Printf("[Capture] Pipeline error on %s: %s", s.cfg.device, msg.ParseError().Error())
			return
		}
	}
}

func (s *v4l2Source) onNewSample(sink *app.Sink) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		return gst.FlowOK
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		return gst.FlowOK
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) == 0 {
		buffer.Unmap()
		return gst.FlowOK
	}
	pix := make([]byte, len(data))
	copy(pix, data)
	buffer.Unmap()

	s.store(Frame{
		Seq:       s.seq.Add(1),
		Timestamp: time.Now(),
		Width:     s.cfg.width,
		Height:    s.cfg.height,
		Pix:       pix,
		TraceID:   uuid.New().String(),
	})
	return gst.FlowOK
}

func (s *v4l2Source) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.quit)
		s.wg.Wait()
		if serr := s.pipeline.SetState(gst.StateNull); serr != nil {
			err = fmt.Errorf("capture: stop pipeline: %w", serr)
		}
		log.Printf("[Capture] Closed %s", s.cfg.device)
	})
	return err
}
