package style

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankDefaultsAndUpdates(t *testing.T) {
	b := NewBank()
	assert.Equal(t, float32(1), b.Time())
	assert.Equal(t, [3]float32{1, 1, 1}, b.Resolution())
	assert.Nil(t, b.NoiseTexture())

	b.SetTime(0.25)
	b.SetResolution(1920, 1080)
	assert.Equal(t, Uniforms{Time: 0.25, Resolution: [3]float32{1920, 1080, 1}}, b.Snapshot())
}

func TestBankConcurrentAccess(t *testing.T) {
	b := NewBank()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.SetTime(float32(j))
				b.SetResolution(i+1, j+1)
				_ = b.Snapshot()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, float32(1), b.Resolution()[2])
}

func TestUniformsMarshalLayout(t *testing.T) {
	buf := Uniforms{Time: 1.5, Resolution: [3]float32{800, 600, 1}}.Marshal()
	require.Len(t, buf, UniformsSize)

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(1.5), f(0))
	assert.Equal(t, float32(800), f(16))
	assert.Equal(t, float32(600), f(20))
	assert.Equal(t, float32(1), f(24))
}

func TestObjectParamsMarshal(t *testing.T) {
	buf := make([]byte, ObjectParamsSize)
	ObjectParams{
		Position: [3]float32{-1.5, 1, -3},
		Height:   2,
		Tint:     Tint{16.8, 5, 5.6},
	}.MarshalTo(buf)

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(-1.5), f(0))
	assert.Equal(t, float32(-3), f(8))
	assert.Equal(t, float32(2), f(12))
	assert.Equal(t, float32(16.8), f(16))
	assert.Equal(t, float32(5.6), f(24))
}

func TestRandomTintRange(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		tint := RandomTint(r)
		for _, c := range tint {
			assert.GreaterOrEqual(t, c, float32(0))
			assert.LessOrEqual(t, c, float32(25.5))
			// Each channel is an integer byte value divided by ten.
			assert.InDelta(t, math.Round(float64(c)*10), float64(c)*10, 1e-3)
		}
	}
}

func TestGenerateNoiseTexture(t *testing.T) {
	tex := GenerateNoiseTexture(48, 7)
	assert.Equal(t, "perlin", tex.Name)
	assert.Equal(t, uint32(64), tex.Staging.Width)
	assert.Equal(t, uint32(64), tex.Staging.Height)
	assert.Len(t, tex.Staging.Pixels, 64*64*4)
	assert.Equal(t, NearestRepeatSampler(), tex.Sampler)

	again := GenerateNoiseTexture(48, 7)
	assert.Equal(t, tex.Staging.Pixels, again.Staging.Pixels, "same seed yields the same texture")
}

func TestLoadNoiseTextureResamplesToPowerOfTwo(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 6, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 6; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 40), uint8(y * 80), 0, 255})
		}
	}
	path := filepath.Join(t.TempDir(), "bayer.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	tex, err := LoadNoiseTexture(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), tex.Staging.Width)
	assert.Equal(t, uint32(4), tex.Staging.Height)
	assert.Len(t, tex.Staging.Pixels, 8*4*4)
	assert.Equal(t, wgpu.FilterModeNearest, tex.Sampler.MagFilter)
	assert.Equal(t, wgpu.AddressModeRepeat, tex.Sampler.AddressModeV)
}

func TestLoadNoiseTextureMissing(t *testing.T) {
	_, err := LoadNoiseTexture(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestNextPowerOfTwo(t *testing.T) {
	for in, want := range map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 64: 64, 65: 128} {
		assert.Equal(t, want, nextPowerOfTwo(in), "n=%d", in)
	}
}
