package frame

// Viewport reports the logical size of the drawing area and the device pixel ratio.
// The window package implements it; FixedViewport serves headless runs.
type Viewport interface {
	// ClientSize returns the drawing area size in logical (CSS-like) pixels.
	ClientSize() (width, height int)

	// PixelRatio returns the number of backing-store pixels per logical pixel.
	PixelRatio() float32
}

// FixedViewport is a Viewport with constant dimensions.
type FixedViewport struct {
	Width  int
	Height int
	Ratio  float32
}

var _ Viewport = FixedViewport{}

func (v FixedViewport) ClientSize() (int, int) {
	return v.Width, v.Height
}

func (v FixedViewport) PixelRatio() float32 {
	if v.Ratio <= 0 {
		return 1
	}
	return v.Ratio
}

// DetectResize computes the backing-store size for the given client size and pixel ratio and
// reports whether it differs from the current backing size. Fractional pixels are truncated toward zero.
//
// Parameters:
//   - clientW, clientH: client size in logical pixels
//   - ratio: device pixel ratio
//   - backingW, backingH: current backing-store size
//
// Returns:
//   - w, h: the desired backing-store size
//   - changed: true if the backing store must be resized
func DetectResize(clientW, clientH int, ratio float32, backingW, backingH int) (w, h int, changed bool) {
	w = int(float32(clientW) * ratio)
	h = int(float32(clientH) * ratio)
	return w, h, w != backingW || h != backingH
}
