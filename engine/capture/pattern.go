package capture

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type patternSource struct {
	*latestFrame

	cfg sourceConfig
	seq uint64

	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ Source = &patternSource{}

// NewPattern creates a synthetic source emitting a moving gradient at the configured frame rate.
// The first frame is available before NewPattern returns.
//
// Parameters:
//   - options: functional options for size and frame rate (the device option is ignored)
//
// Returns:
//   - Source: the running source
func NewPattern(options ...SourceBuilderOption) Source {
	s := &patternSource{
		latestFrame: newLatestFrame(),
		cfg:         newSourceConfig(options...),
		quit:        make(chan struct{}),
	}
	s.emit()

	s.wg.Add(1)
	go s.handle()
	log.Printf("[Capture] Pattern source at %dx%d, %d fps", s.cfg.width, s.cfg.height, s.cfg.fps)
	return s
}

func (s *patternSource) handle() {
	defer s.wg.Done()
	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.fps))
	defer ticker.Stop()
	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
			s.emit()
		}
	}
}

// emit renders the next gradient frame. Only the ticker goroutine calls it after construction.
func (s *patternSource) emit() {
	s.seq++
	w, h := s.cfg.width, s.cfg.height
	pix := make([]byte, w*h*4)
	shift := int(s.seq)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			pix[i+0] = uint8((x + shift) * 255 / max(w, 1))
			pix[i+1] = uint8(y * 255 / max(h, 1))
			pix[i+2] = uint8(shift)
			pix[i+3] = 0xFF
		}
	}
	s.store(Frame{
		Seq:       s.seq,
		Timestamp: time.Now(),
		Width:     w,
		Height:    h,
		Pix:       pix,
		TraceID:   uuid.New().String(),
	})
}

func (s *patternSource) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
		s.wg.Wait()
	})
	return nil
}
