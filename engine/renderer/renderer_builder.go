package renderer

import "github.com/Carmen-Shannon/oxy-corridor/engine/style"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewWGPU or NewHeadless.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
//
// Parameters:
//   - count: the MSAASampleCount to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithNoiseTexture sets the texture bound to the shader's noise sampler.
// When not specified, a 64x64 procedural texture is generated.
//
// Parameters:
//   - tex: the noise texture
//
// Returns:
//   - RendererBuilderOption: a function that applies the noise texture option to a renderer
func WithNoiseTexture(tex *style.NoiseTexture) RendererBuilderOption {
	return func(r *renderer) {
		r.noise = tex
	}
}

// WithMarshalWorkers sets the number of workers that pack instance records in parallel.
// Defaults to runtime.NumCPU().
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - RendererBuilderOption: a function that applies the worker count option to a renderer
func WithMarshalWorkers(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.workers = n
	}
}
