// Package capture provides the live video frames the classifier observes.
package capture

import (
	"errors"
	"sync"
	"time"
)

// ErrDeviceUnavailable is returned when a capture device cannot be opened or refuses to start.
var ErrDeviceUnavailable = errors.New("capture: device unavailable")

// Frame is one RGBA video frame.
type Frame struct {
	Seq       uint64
	Timestamp time.Time
	Width     int
	Height    int
	// Pix holds Width*Height*4 bytes of tightly packed RGBA.
	Pix     []byte
	TraceID string
}

// Source is a live frame producer. Only the most recent frame is kept.
type Source interface {
	// Latest returns the most recent frame.
	//
	// Returns:
	//   - Frame: the latest frame
	//   - bool: false if no frame has arrived yet
	Latest() (Frame, bool)

	// Ready returns a channel that is closed once the first frame is available.
	//
	// Returns:
	//   - <-chan struct{}: the readiness channel
	Ready() <-chan struct{}

	// Close stops the source and releases the device. Safe to call multiple times.
	//
	// Returns:
	//   - error: an error if the device could not be stopped cleanly
	Close() error
}

// latestFrame is a single-slot frame store shared by every Source implementation.
type latestFrame struct {
	mu        *sync.Mutex
	frame     Frame
	has       bool
	ready     chan struct{}
	readyOnce sync.Once
}

func newLatestFrame() *latestFrame {
	return &latestFrame{
		mu:    &sync.Mutex{},
		ready: make(chan struct{}),
	}
}

func (l *latestFrame) store(f Frame) {
	l.mu.Lock()
	l.frame = f
	l.has = true
	l.mu.Unlock()
	l.readyOnce.Do(func() { close(l.ready) })
}

func (l *latestFrame) Latest() (Frame, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frame, l.has
}

func (l *latestFrame) Ready() <-chan struct{} {
	return l.ready
}
