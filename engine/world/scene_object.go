package world

import "github.com/Carmen-Shannon/oxy-corridor/engine/style"

// SceneObject is one box in the corridor. It is immutable once created by the Streamer.
type SceneObject struct {
	id       uint64
	position [3]float32
	height   float32
	material Material
}

// ID returns the object's identity, which is its insertion order starting at 0.
func (o *SceneObject) ID() uint64 {
	return o.id
}

// Position returns the object's center. Y is always half the height so the box rests on the floor.
func (o *SceneObject) Position() [3]float32 {
	return o.position
}

// Height returns the box height in world units.
func (o *SceneObject) Height() float32 {
	return o.height
}

// Material returns the object's shading state.
func (o *SceneObject) Material() Material {
	return o.material
}

// Params returns the per-instance GPU record for this object.
//
// Returns:
//   - style.ObjectParams: position, height and tint
func (o *SceneObject) Params() style.ObjectParams {
	return style.ObjectParams{
		Position: o.position,
		Height:   o.height,
		Tint:     o.material.Tint(),
	}
}
