package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// pollTimeout bounds how long the message pump blocks waiting for events, in seconds.
const pollTimeout = 1.0 / 120

type glfwWindow struct {
	window  *glfw.Window
	running bool
}

// newPlatformWindow initializes GLFW and creates the native window. GLFW must be driven from the thread
// that initialized it, so the calling goroutine is locked to its OS thread.
//
// Parameters:
//   - w: the engineWindow to attach the native window to
//
// Returns:
//   - error: an error if GLFW or the window could not be initialized
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// WebGPU owns the swapchain; no client API context is needed.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	gw := &glfwWindow{
		window:  win,
		running: true,
	}
	w.internalWindow = gw

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			gw.running = false
			win.SetShouldClose(true)
		}
	})

	// Client and framebuffer sizes differ on high-DPI displays; both are cached so other goroutines
	// can compute the pixel ratio without calling into GLFW.
	refresh := func() {
		cw, ch := win.GetSize()
		fw, fh := win.GetFramebufferSize()
		w.setSizes(cw, ch, fw, fh)
	}
	win.SetSizeCallback(func(_ *glfw.Window, _, _ int) { refresh() })
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, _, _ int) { refresh() })
	refresh()

	return nil
}

// platformGetSurfaceDescriptor creates a platform-appropriate wgpu.SurfaceDescriptor from the GLFW window.
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	if w.internalWindow == nil {
		return nil
	}
	gw := w.internalWindow.(*glfwWindow)
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func platformIsRunningCheck(w *engineWindow) bool {
	if w.internalWindow == nil {
		return false
	}
	gw := w.internalWindow.(*glfwWindow)
	return gw.running && !gw.window.ShouldClose()
}

func platformCloseWindow(w *engineWindow) error {
	if w.internalWindow == nil {
		return errors.New("window is not initialized")
	}
	gw := w.internalWindow.(*glfwWindow)
	gw.running = false
	gw.window.Destroy()
	glfw.Terminate()
	w.internalWindow = nil
	return nil
}

// platformProcessMessages waits briefly for pending GLFW events and dispatches them.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#WaitEventsTimeout
func platformProcessMessages(w *engineWindow) bool {
	glfw.WaitEventsTimeout(pollTimeout)
	return platformIsRunningCheck(w)
}
