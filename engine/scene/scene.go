// Package scene holds the state shared by the render and control loops.
package scene

import (
	"github.com/Carmen-Shannon/oxy-corridor/engine/camera"
	"github.com/Carmen-Shannon/oxy-corridor/engine/style"
	"github.com/Carmen-Shannon/oxy-corridor/engine/world"
)

// Scene owns the camera, the world streamer and the style bank. It is created once at startup and
// passed by pointer into both loops. Each component guards its own state, so the Scene itself is
// immutable after construction and safe for concurrent use.
type Scene struct {
	name     string
	cam      camera.Camera
	streamer world.Streamer
	bank     style.Bank
}

// Frame is a consistent-enough view of the scene for one render submission. Each field is read
// under its owner's lock; fields may come from different commits of the control loop.
type Frame struct {
	Camera  camera.Snapshot
	Style   style.Uniforms
	Objects int
}

// NewScene creates a Scene from its three components. All are required and NewScene panics if any
// of them is nil.
//
// Parameters:
//   - cam: the rail camera
//   - streamer: the world streamer
//   - bank: the style uniform bank
//   - options: functional options to further configure the scene
//
// Returns:
//   - *Scene: the newly created scene
func NewScene(cam camera.Camera, streamer world.Streamer, bank style.Bank, options ...SceneBuilderOption) *Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if streamer == nil {
		panic("scene: NewScene requires a non-nil Streamer")
	}
	if bank == nil {
		panic("scene: NewScene requires a non-nil style Bank")
	}

	s := &Scene{
		name:     "corridor",
		cam:      cam,
		streamer: streamer,
		bank:     bank,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Name returns the scene's identifier.
func (s *Scene) Name() string {
	return s.name
}

// Camera returns the scene's rail camera.
func (s *Scene) Camera() camera.Camera {
	return s.cam
}

// Streamer returns the scene's world streamer.
func (s *Scene) Streamer() world.Streamer {
	return s.streamer
}

// Bank returns the scene's style uniform bank.
func (s *Scene) Bank() style.Bank {
	return s.bank
}

// Frame captures the state needed for one render submission.
//
// Returns:
//   - Frame: camera snapshot, style uniforms and live object count
func (s *Scene) Frame() Frame {
	return Frame{
		Camera:  s.cam.Snapshot(),
		Style:   s.bank.Snapshot(),
		Objects: s.streamer.Count(),
	}
}
