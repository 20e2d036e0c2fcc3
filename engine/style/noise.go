package style

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math/bits"
	"os"

	"github.com/Carmen-Shannon/oxy-corridor/common"
	"github.com/aquilax/go-perlin"
	"github.com/cogentcore/webgpu/wgpu"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// NoiseTexture is the static bitmap sampled by the corridor shader as its noise source.
// It is loaded once at startup and never mutated.
type NoiseTexture struct {
	// Name identifies the source (file path or "perlin").
	Name string
	// Staging holds the RGBA pixels pending GPU upload. Width and height are powers of two.
	Staging common.TextureStagingData
	// Sampler is always nearest-neighbor with repeat wrapping on U and V.
	Sampler common.SamplerStagingData
}

// NearestRepeatSampler returns the sampler configuration used for the noise texture:
// nearest filtering for magnification and minification and tiling wrap on both axes.
//
// Returns:
//   - common.SamplerStagingData: the sampler configuration
func NearestRepeatSampler() common.SamplerStagingData {
	return common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeRepeat,
		AddressModeV: wgpu.AddressModeRepeat,
		AddressModeW: wgpu.AddressModeRepeat,
		MagFilter:    wgpu.FilterModeNearest,
		MinFilter:    wgpu.FilterModeNearest,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
	}
}

// LoadNoiseTexture decodes a PNG, JPEG or BMP file into a NoiseTexture. Images whose sides are not
// powers of two are resampled up to the next power of two with nearest-neighbor scaling so tiling
// stays seamless.
//
// Parameters:
//   - path: the image file to load
//
// Returns:
//   - *NoiseTexture: the decoded texture
//   - error: an error if the file cannot be opened or decoded
func LoadNoiseTexture(path string) (*NoiseTexture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("style: open noise texture %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("style: decode noise texture %s: %w", path, err)
	}
	return newNoiseTexture(path, img), nil
}

// GenerateNoiseTexture builds a procedural RGBA noise texture from three decorrelated perlin fields,
// used when no bitmap is configured.
//
// Parameters:
//   - size: side length in pixels, rounded up to a power of two
//   - seed: perlin seed
//
// Returns:
//   - *NoiseTexture: the generated texture
func GenerateNoiseTexture(size int, seed int64) *NoiseTexture {
	side := nextPowerOfTwo(size)
	p := perlin.NewPerlin(2, 2, 3, seed)

	img := image.NewRGBA(image.Rect(0, 0, side, side))
	const freq = 8.0
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			u := float64(x) / float64(side) * freq
			v := float64(y) / float64(side) * freq
			i := img.PixOffset(x, y)
			img.Pix[i+0] = toByte(p.Noise2D(u, v))
			img.Pix[i+1] = toByte(p.Noise2D(u+31.7, v+17.3))
			img.Pix[i+2] = toByte(p.Noise2D(u+73.1, v+59.9))
			img.Pix[i+3] = 0xFF
		}
	}
	return newNoiseTexture("perlin", img)
}

func newNoiseTexture(name string, img image.Image) *NoiseTexture {
	b := img.Bounds()
	w, h := nextPowerOfTwo(b.Dx()), nextPowerOfTwo(b.Dy())

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.NearestNeighbor.Scale(rgba, rgba.Bounds(), img, b, draw.Src, nil)
	}

	return &NoiseTexture{
		Name: name,
		Staging: common.TextureStagingData{
			Pixels: rgba.Pix,
			Width:  uint32(w),
			Height: uint32(h),
		},
		Sampler: NearestRepeatSampler(),
	}
}

// toByte maps perlin output in [-1, 1] to [0, 255].
func toByte(n float64) uint8 {
	v := (n + 1) / 2 * 255
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
