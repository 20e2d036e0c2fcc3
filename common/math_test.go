package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestMul4Identity(t *testing.T) {
	var id, m, out [16]float32
	Identity(id[:])
	for i := range m {
		m[i] = float32(i + 1)
	}

	Mul4(out[:], id[:], m[:])
	assert.Equal(t, m, out)

	Mul4(out[:], m[:], id[:])
	assert.Equal(t, m, out)
}

func TestLookAtDownNegativeZ(t *testing.T) {
	var view [16]float32
	LookAt(view[:], [3]float32{0, 0.5, 2}, [3]float32{0, 0.5, 1}, [3]float32{0, 1, 0})

	// A point straight ahead of the eye lands on the view-space -Z axis.
	x, y, z := transform(view, [3]float32{0, 0.5, -3})
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)
	assert.InDelta(t, -5, z, 1e-5)
}

func TestPerspectiveDepthRange(t *testing.T) {
	var proj [16]float32
	near, far := float32(0.1), float32(1000)
	Perspective(proj[:], 40*math32.Pi/180, 2, near, far)

	depth := func(z float32) float32 {
		clipZ := proj[10]*z + proj[14]
		clipW := proj[11] * z
		return clipZ / clipW
	}
	assert.InDelta(t, 0, depth(-near), 1e-4)
	assert.InDelta(t, 1, depth(-far), 1e-4)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 4))
	assert.Equal(t, "a", Coalesce("", "a"))
	assert.Equal(t, float32(0), Coalesce[float32]())
}

func transform(m [16]float32, p [3]float32) (x, y, z float32) {
	x = m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12]
	y = m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13]
	z = m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14]
	return
}
