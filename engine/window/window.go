package window

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the desktop window the corridor is presented in.
//
// Sizes are cached by the platform callbacks on the main thread, so ClientSize, FramebufferSize and
// PixelRatio may be read from any goroutine. Everything else must be called from the thread that created
// the window.
type Window interface {
	// SetUpdateCallback sets a function invoked once per message pump iteration.
	//
	// Parameters:
	//   - callback: the function to invoke
	SetUpdateCallback(callback func())

	// SurfaceDescriptor returns the descriptor used to create a WebGPU surface for this window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// ClientSize returns the window's client area in screen coordinates.
	//
	// Returns:
	//   - int: width
	//   - int: height
	ClientSize() (int, int)

	// FramebufferSize returns the window's drawable area in pixels.
	//
	// Returns:
	//   - int: width
	//   - int: height
	FramebufferSize() (int, int)

	// PixelRatio returns framebuffer pixels per client unit, 1 on standard displays.
	//
	// Returns:
	//   - float32: the ratio
	PixelRatio() float32

	// IsRunning reports whether the window is open and no close has been requested.
	//
	// Returns:
	//   - bool: true while running
	IsRunning() bool

	// RequestClose asks the message pump to stop. Safe to call from any goroutine.
	RequestClose()

	// ProcessMessages pumps platform events until the window is closed or RequestClose is called.
	ProcessMessages()

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window is not initialized
	Close() error
}

type engineWindow struct {
	mu *sync.Mutex

	title     string
	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int
	width     int
	height    int

	clientWidth  int
	clientHeight int
	fbWidth      int
	fbHeight     int

	closeRequested atomic.Bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate func()
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a platform window. Must be called on the main thread.
//
// Parameters:
//   - options: variadic list of WindowBuilderOption functions to configure the window
//
// Returns:
//   - Window: the created window
//   - error: an error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		mu:        &sync.Mutex{},
		title:     "Corridor",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) ClientSize() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clientWidth, w.clientHeight
}

func (w *engineWindow) FramebufferSize() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fbWidth, w.fbHeight
}

func (w *engineWindow) PixelRatio() float32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return pixelRatio(w.clientWidth, w.fbWidth)
}

func (w *engineWindow) IsRunning() bool {
	return !w.closeRequested.Load() && platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	w.closeRequested.Store(true)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

// setSizes records the latest client and framebuffer sizes reported by the platform.
func (w *engineWindow) setSizes(clientWidth, clientHeight, fbWidth, fbHeight int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clientWidth, w.clientHeight = clientWidth, clientHeight
	w.fbWidth, w.fbHeight = fbWidth, fbHeight
}

// pixelRatio is 1 while the window is minimized or not yet sized.
func pixelRatio(clientWidth, fbWidth int) float32 {
	if clientWidth <= 0 || fbWidth <= 0 {
		return 1
	}
	return float32(fbWidth) / float32(clientWidth)
}
