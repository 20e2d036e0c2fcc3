package camera

import "math"

type CameraBuilderOption func(*cameraImpl)

// WithFovDegrees sets the camera's vertical field of view.
//
// Parameters:
//   - degrees: field of view in degrees
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFovDegrees(degrees float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = degrees * (math.Pi / 180.0)
	}
}

// WithAspect sets the camera's initial aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets both clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithStartZ sets the camera's initial position on the forward axis.
//
// Parameters:
//   - z: the starting z coordinate
//
// Returns:
//   - CameraBuilderOption: a function that sets the starting z
func WithStartZ(z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position[2] = z
	}
}

// WithHeight sets the camera's fixed vertical offset.
//
// Parameters:
//   - y: eye height above the floor plane
//
// Returns:
//   - CameraBuilderOption: a function that sets the eye height
func WithHeight(y float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position[1] = y
	}
}
