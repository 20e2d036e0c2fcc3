package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-corridor/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	up       [3]float32
	position [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32
}

// Camera defines the interface for the corridor's rail camera.
// The camera moves along the Z axis only and always looks down -Z. Lateral and vertical offsets are fixed
// at construction. Matrices are recomputed eagerly on every mutation so readers never observe a stale projection.
type Camera interface {
	// Z returns the camera's position along the forward axis.
	//
	// Returns:
	//   - float32: the current z coordinate
	Z() float32

	// Advance moves the camera forward (toward -Z).
	//
	// Parameters:
	//   - step: distance to move, must be non-negative
	Advance(step float32)

	// Retreat moves the camera backward (toward +Z).
	//
	// Parameters:
	//   - step: distance to move, must be non-negative
	Retreat(step float32)

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - x, y, z: world-space camera position
	Position() (x, y, z float32)

	// Target returns the look-at point one unit ahead of the camera.
	//
	// Returns:
	//   - x, y, z: world-space target position
	Target() (x, y, z float32)

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetAspect sets the aspect ratio (width / height) and recomputes the projection.
	//
	// Parameters:
	//   - aspect: the aspect ratio, ignored if not positive
	SetAspect(aspect float32)

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the current 4x4 view matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the current combined view-projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	ViewProjectionMatrix() [16]float32

	// Snapshot returns a consistent copy of the camera state for one render submission.
	//
	// Returns:
	//   - Snapshot: position, aspect and view-projection captured under a single lock
	Snapshot() Snapshot
}

// Snapshot is an immutable copy of the camera state taken at the start of a frame.
type Snapshot struct {
	Position [3]float32
	Aspect   float32
	ViewProj [16]float32
}

// Uniform converts the snapshot into its GPU representation.
//
// Returns:
//   - GPUCameraUniform: the uniform block ready for marshaling
func (s Snapshot) Uniform() GPUCameraUniform {
	return GPUCameraUniform{ViewProj: s.ViewProj, CameraPosition: s.Position}
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with the corridor's default perspective:
// 40 degree vertical fov, aspect 2, near 0.1, far 1000, positioned at (0, 0.5, 2).
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		up:       [3]float32{0, 1, 0},
		position: [3]float32{0, 0.5, 2},
		fov:      40.0 * (math.Pi / 180.0),
		aspect:   2,
		near:     0.1,
		far:      1000,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Z() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position[2]
}

func (c *cameraImpl) Advance(step float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position[2] -= step
	c.updateMatrices()
}

func (c *cameraImpl) Retreat(step float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position[2] += step
	c.updateMatrices()
}

func (c *cameraImpl) Position() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position[0], c.position[1], c.position[2]
}

func (c *cameraImpl) Target() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.target()
	return t[0], t[1], t[2]
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Position: c.position,
		Aspect:   c.aspect,
		ViewProj: c.viewProjectionMatrix,
	}
}

// target is the point one unit down -Z from the camera. Caller must hold the mutex.
func (c *cameraImpl) target() [3]float32 {
	return [3]float32{c.position[0], c.position[1], c.position[2] - 1}
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	common.LookAt(c.viewMatrix[:], c.position, c.target(), c.up)
	common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}
