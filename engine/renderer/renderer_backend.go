package renderer

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-corridor/engine/style"
)

// CorridorShaderSource is the WGSL program used for every corridor object.
// Its Globals struct matches the layout written by marshalGlobals.
//
//go:embed assets/corridor.wgsl
var CorridorShaderSource string

// GlobalsSize is the byte size of the per-frame uniform block: the camera uniform followed by the style uniforms.
const GlobalsSize = 112

// RendererBackendType identifies the backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeHeadless selects a backend that records submissions without a GPU.
	BackendTypeHeadless
)

// String returns the configuration name of the backend type.
func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeHeadless:
		return "headless"
	default:
		return "unknown"
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the contract between the Renderer and a concrete graphics API.
// The Renderer serializes all calls; implementations need not be thread-safe on their own.
type RendererBackend interface {
	// ConfigureSurface (re)creates the swapchain and depth attachments for the given size.
	//
	// Parameters:
	//   - width: the backing-store width in pixels
	//   - height: the backing-store height in pixels
	//
	// Returns:
	//   - error: an error if the attachments could not be created
	ConfigureSurface(width, height int) error

	// SetPresentMode sets the surface present mode. Takes effect on the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// InitNoise uploads the noise texture and creates its sampler.
	//
	// Parameters:
	//   - tex: the noise texture to bind to the shader's noise sampler
	//
	// Returns:
	//   - error: an error if the texture or sampler could not be created
	InitNoise(tex *style.NoiseTexture) error

	// WriteGlobals uploads the per-frame uniform block (GlobalsSize bytes).
	//
	// Parameters:
	//   - data: the marshaled camera and style uniforms
	WriteGlobals(data []byte)

	// WriteInstances uploads the packed ObjectParams records, growing the instance buffer when needed.
	//
	// Parameters:
	//   - data: len(data)/style.ObjectParamsSize marshaled records
	//
	// Returns:
	//   - error: an error if the instance buffer could not be grown
	WriteInstances(data []byte) error

	// DrawFrame acquires the next surface texture, draws instanceCount boxes and presents the result.
	//
	// Parameters:
	//   - instanceCount: the number of records written by the last WriteInstances call to draw
	//
	// Returns:
	//   - error: an error if the frame could not be acquired or submitted
	DrawFrame(instanceCount int) error

	// Release frees every GPU resource held by the backend.
	Release()
}
