package renderer

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-corridor/engine/camera"
	"github.com/Carmen-Shannon/oxy-corridor/engine/frame"
	"github.com/Carmen-Shannon/oxy-corridor/engine/style"
	"github.com/Carmen-Shannon/oxy-corridor/engine/window"
	"github.com/Carmen-Shannon/oxy-corridor/engine/world"
)

// marshalChunk is the number of instance records packed by one worker task.
const marshalChunk = 256

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	drawables map[uint64]style.ObjectParams
	order     []uint64
	dirty     bool

	instanceData []byte
	pool         worker.DynamicWorkerPool
	workers      int

	width, height int
	resizeErr     error
	frames        uint64

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	noise                *style.NoiseTexture
}

// Renderer draws the corridor: one instanced box per drawable, shaded with the shared style uniforms.
//
// A Renderer is both the World Streamer's drawable sink and the Frame Scheduler's submitter.
// All methods are safe for concurrent use.
type Renderer interface {
	// AddDrawable registers an object for drawing. Objects are drawn in insertion order.
	//
	// Parameters:
	//   - obj: the object to draw
	//
	// Returns:
	//   - error: an error if obj is nil or already registered
	AddDrawable(obj *world.SceneObject) error

	// RemoveDrawable stops drawing the object with the given id. Unknown ids are ignored.
	//
	// Parameters:
	//   - id: the object id
	RemoveDrawable(id uint64)

	// Resize reconfigures the backing store. Non-positive sizes are ignored. A failure is reported by the next
	// Render call.
	//
	// Parameters:
	//   - width: the new backing-store width in pixels
	//   - height: the new backing-store height in pixels
	Resize(width, height int)

	// Render draws one frame from the given camera and style state.
	//
	// Parameters:
	//   - cam: the camera snapshot for this frame
	//   - uniforms: the style uniforms for this frame
	//
	// Returns:
	//   - error: an error if the frame could not be submitted
	Render(cam camera.Snapshot, uniforms style.Uniforms) error

	// DrawableCount returns the number of registered drawables.
	//
	// Returns:
	//   - int: the drawable count
	DrawableCount() int

	// Frames returns the number of frames submitted successfully.
	//
	// Returns:
	//   - uint64: the frame count
	Frames() uint64

	// BackendType returns the backend in use.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	BackendType() RendererBackendType

	// Release frees the backend's resources. The Renderer must not be used afterwards.
	Release()
}

var (
	_ Renderer           = &renderer{}
	_ world.DrawableSink = &renderer{}
	_ frame.Submitter    = &renderer{}
)

// NewHeadless creates a Renderer that records submissions without touching a GPU.
// It is used for tests and for running the corridor without a display.
//
// Parameters:
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the headless renderer
func NewHeadless(options ...RendererBuilderOption) Renderer {
	r := newRenderer(BackendTypeHeadless, options...)
	r.backend = newHeadlessRendererBackend(nil)
	if err := r.backend.InitNoise(r.noise); err != nil {
		panic(err)
	}
	return r
}

// NewWGPU creates a WebGPU Renderer presenting to the given window's surface.
// Must be called on the thread that owns the window.
//
// Parameters:
//   - win: the window providing the surface descriptor and initial framebuffer size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the WebGPU renderer
//   - error: an error if the adapter, device, surface or pipeline could not be created
func NewWGPU(win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	if win == nil {
		panic("renderer: window is nil")
	}
	r := newRenderer(BackendTypeWGPU, options...)

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	backend, err := newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	if err != nil {
		return nil, err
	}
	r.backend = backend

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	w, h := win.FramebufferSize()
	if err := r.backend.ConfigureSurface(w, h); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("configure surface: %w", err)
	}
	r.width, r.height = w, h

	if err := backend.InitPipeline(); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("create pipeline: %w", err)
	}
	if err := r.backend.InitNoise(r.noise); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("upload noise texture: %w", err)
	}
	log.Printf("[Renderer] WebGPU backend ready (%dx%d, msaa %d)", w, h, msaa)
	return r, nil
}

func newRenderer(backendType RendererBackendType, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		drawables:   make(map[uint64]style.ObjectParams),
		workers:     runtime.NumCPU(),
	}
	for _, opt := range options {
		opt(r)
	}
	if r.noise == nil {
		r.noise = style.GenerateNoiseTexture(64, 1)
	}
	r.pool = worker.NewDynamicWorkerPool(max(r.workers, 1), 256, 1*time.Second)
	return r
}

func (r *renderer) AddDrawable(obj *world.SceneObject) error {
	if obj == nil {
		return errors.New("drawable is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drawables[obj.ID()]; exists {
		return fmt.Errorf("drawable %d already registered", obj.ID())
	}
	r.drawables[obj.ID()] = obj.Params()
	r.order = append(r.order, obj.ID())
	r.dirty = true
	return nil
}

func (r *renderer) RemoveDrawable(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drawables[id]; !exists {
		return
	}
	delete(r.drawables, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.dirty = true
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	if width == r.width && height == r.height && r.resizeErr == nil {
		return
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		r.resizeErr = fmt.Errorf("resize to %dx%d: %w", width, height, err)
		return
	}
	r.width, r.height = width, height
	r.resizeErr = nil
}

func (r *renderer) Render(cam camera.Snapshot, uniforms style.Uniforms) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resizeErr != nil {
		return r.resizeErr
	}

	if r.dirty {
		if err := r.backend.WriteInstances(r.packInstances()); err != nil {
			return fmt.Errorf("upload instances: %w", err)
		}
		r.dirty = false
	}

	r.backend.WriteGlobals(marshalGlobals(cam, uniforms))

	if err := r.backend.DrawFrame(len(r.order)); err != nil {
		return err
	}
	r.frames++
	return nil
}

func (r *renderer) DrawableCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

func (r *renderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
}

// packInstances marshals every drawable's ObjectParams in draw order. Chunks are packed in parallel on the
// worker pool; the WaitGroup is the per-call barrier. Callers must hold r.mu.
func (r *renderer) packInstances() []byte {
	n := len(r.order)
	size := n * style.ObjectParamsSize
	if cap(r.instanceData) < size {
		r.instanceData = make([]byte, size, size*2)
	}
	data := r.instanceData[:size]

	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < n; start += marshalChunk {
		ids := r.order[start:min(start+marshalChunk, n)]
		offset := start * style.ObjectParamsSize
		wg.Add(1)
		r.pool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				for i, id := range ids {
					at := offset + i*style.ObjectParamsSize
					r.drawables[id].MarshalTo(data[at : at+style.ObjectParamsSize])
				}
				return nil, nil
			},
		})
		taskID++
	}
	wg.Wait()
	return data
}

// marshalGlobals lays out the camera uniform followed by the style uniforms, matching the WGSL Globals struct.
func marshalGlobals(cam camera.Snapshot, uniforms style.Uniforms) []byte {
	cu := cam.Uniform()
	buf := make([]byte, 0, GlobalsSize)
	buf = append(buf, cu.Marshal()...)
	buf = append(buf, uniforms.Marshal()...)
	return buf
}
