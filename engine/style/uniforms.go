// Package style holds the shader parameters shared by every corridor object: elapsed time,
// viewport resolution and the noise texture. Tint is forked per object (see Tint and ObjectParams).
package style

import (
	"encoding/binary"
	"math"
	"sync"
)

// UniformsSize is the byte size of the marshaled Uniforms block (std140: f32 + pad, vec3 + pad).
const UniformsSize = 32

// Uniforms is an immutable snapshot of the shared shader parameters.
// Matches the WGSL Style struct layout (see assets/corridor.wgsl in the renderer package).
type Uniforms struct {
	Time       float32    // offset 0
	Resolution [3]float32 // offset 16 (vec3 aligned to 16 bytes)
}

// Marshal serializes the snapshot into a buffer suitable for GPU upload.
//
// Returns:
//   - []byte: UniformsSize bytes, little endian
func (u Uniforms) Marshal() []byte {
	buf := make([]byte, UniformsSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(u.Time))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(u.Resolution[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(u.Resolution[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(u.Resolution[2]))
	return buf
}

type bank struct {
	mu *sync.Mutex

	time       float32
	resolution [3]float32
	noise      *NoiseTexture
}

// Bank is the mutable Style Uniform Bank written by the Frame Scheduler and read by the renderer.
// Thread-safe.
type Bank interface {
	// Time returns the current shader time value.
	//
	// Returns:
	//   - float32: elapsed time in shader units
	Time() float32

	// SetTime sets the shader time value.
	//
	// Parameters:
	//   - t: elapsed time in shader units
	SetTime(t float32)

	// Resolution returns the viewport resolution as (width, height, 1).
	//
	// Returns:
	//   - [3]float32: the resolution vector
	Resolution() [3]float32

	// SetResolution updates the viewport resolution. The z component is always 1.
	//
	// Parameters:
	//   - width, height: backing-store size in pixels
	SetResolution(width, height int)

	// NoiseTexture returns the noise texture bound to the shader's noise sampler, or nil if none is set.
	//
	// Returns:
	//   - *NoiseTexture: the noise texture
	NoiseTexture() *NoiseTexture

	// Snapshot returns a consistent copy of the time and resolution values.
	//
	// Returns:
	//   - Uniforms: the current values
	Snapshot() Uniforms
}

var _ Bank = &bank{}

// NewBank creates a Style Uniform Bank. Time starts at 1 and resolution at (1, 1, 1), matching the
// values the shader sees before the first frame.
//
// Parameters:
//   - options: functional options to configure the bank
//
// Returns:
//   - Bank: the new bank
func NewBank(options ...BankBuilderOption) Bank {
	b := &bank{
		mu:         &sync.Mutex{},
		time:       1,
		resolution: [3]float32{1, 1, 1},
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *bank) Time() float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.time
}

func (b *bank) SetTime(t float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.time = t
}

func (b *bank) Resolution() [3]float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resolution
}

func (b *bank) SetResolution(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resolution = [3]float32{float32(width), float32(height), 1}
}

func (b *bank) NoiseTexture() *NoiseTexture {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.noise
}

func (b *bank) Snapshot() Uniforms {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Uniforms{Time: b.time, Resolution: b.resolution}
}
