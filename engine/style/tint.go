package style

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
)

// ObjectParamsSize is the byte size of one marshaled ObjectParams record.
const ObjectParamsSize = 32

// Tint is an RGB color multiplier applied by the corridor shader. Channels are not clamped to [0, 1];
// the shader treats them as intensities.
type Tint [3]float32

// RandomTint samples a tint where each channel is a random byte value
// divided by ten, giving intensities in [0, 25.5].
//
// Parameters:
//   - r: the random source
//
// Returns:
//   - Tint: the sampled tint
func RandomTint(r *rand.Rand) Tint {
	var t Tint
	for i := range t {
		t[i] = float32(math.Round(r.Float64()*255)) / 10
	}
	return t
}

// ObjectParams is the per-instance GPU record for one corridor object.
// Matches the WGSL Instance struct: vec3 position + f32 height, vec3 tint + pad.
type ObjectParams struct {
	Position [3]float32 // offset 0
	Height   float32    // offset 12
	Tint     Tint       // offset 16
}

// MarshalTo writes the record into dst, which must hold at least ObjectParamsSize bytes.
//
// Parameters:
//   - dst: destination buffer
func (p ObjectParams) MarshalTo(dst []byte) {
	_ = dst[ObjectParamsSize-1]
	putFloats(dst[0:12], p.Position[:])
	binary.LittleEndian.PutUint32(dst[12:16], math.Float32bits(p.Height))
	putFloats(dst[16:28], p.Tint[:])
	binary.LittleEndian.PutUint32(dst[28:32], 0)
}

func putFloats(dst []byte, values []float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}
