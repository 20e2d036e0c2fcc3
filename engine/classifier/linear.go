package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"os"
	"sync"

	"github.com/Carmen-Shannon/oxy-corridor/engine/capture"
	"github.com/Carmen-Shannon/oxy-corridor/engine/control"
	"golang.org/x/image/draw"
)

// LinearModel is a regression head over grid luminance features.
type LinearModel struct {
	Grid    int       `json:"grid"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// Validate checks that the weight vector matches the grid.
func (m LinearModel) Validate() error {
	if m.Grid < 1 {
		return fmt.Errorf("classifier: grid must be positive, got %d", m.Grid)
	}
	if len(m.Weights) != m.Grid*m.Grid {
		return fmt.Errorf("classifier: %d weights for a %dx%d grid", len(m.Weights), m.Grid, m.Grid)
	}
	return nil
}

type linear struct {
	mu    *sync.Mutex
	model *LinearModel
}

var _ control.Classifier = &linear{}

// NewLinear creates an in-process classifier. Load must be called before Predict.
//
// Returns:
//   - control.Classifier: the linear classifier
func NewLinear() control.Classifier {
	return &linear{mu: &sync.Mutex{}}
}

func (l *linear) Ready(ctx context.Context) error {
	return ctx.Err()
}

func (l *linear) Load(ctx context.Context, resource string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(resource)
	if err != nil {
		return fmt.Errorf("classifier: read model %s: %w", resource, err)
	}
	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("classifier: parse model %s: %w", resource, err)
	}
	if err := m.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	l.model = &m
	l.mu.Unlock()
	log.Printf("[Classifier] Loaded linear head %s (%dx%d grid)", resource, m.Grid, m.Grid)
	return nil
}

func (l *linear) Predict(ctx context.Context, frame capture.Frame) (control.PredictionSample, error) {
	if err := ctx.Err(); err != nil {
		return control.PredictionSample{}, err
	}
	l.mu.Lock()
	m := l.model
	l.mu.Unlock()
	if m == nil {
		return control.PredictionSample{}, ErrNotLoaded
	}

	features, err := LuminanceGrid(frame, m.Grid)
	if err != nil {
		return control.PredictionSample{}, err
	}
	v := m.Bias
	for i, f := range features {
		v += f * m.Weights[i]
	}
	return control.PredictionSample{Value: v, Seq: frame.Seq}, nil
}

func (l *linear) Close() error {
	return nil
}

// LuminanceGrid downsamples an RGBA frame to grid x grid cells and returns each cell's luminance in [0, 1],
// row-major from the top-left.
//
// Parameters:
//   - frame: the RGBA frame
//   - grid: cells per side
//
// Returns:
//   - []float64: grid*grid luminance values
//   - error: an error if the frame's pixel buffer does not match its size
func LuminanceGrid(frame capture.Frame, grid int) ([]float64, error) {
	if frame.Width <= 0 || frame.Height <= 0 || len(frame.Pix) < frame.Width*frame.Height*4 {
		return nil, fmt.Errorf("classifier: frame %d has %d bytes for %dx%d", frame.Seq, len(frame.Pix), frame.Width, frame.Height)
	}
	src := &image.RGBA{
		Pix:    frame.Pix,
		Stride: frame.Width * 4,
		Rect:   image.Rect(0, 0, frame.Width, frame.Height),
	}
	dst := image.NewRGBA(image.Rect(0, 0, grid, grid))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	out := make([]float64, grid*grid)
	for i := range out {
		p := dst.Pix[i*4 : i*4+3]
		out[i] = (0.299*float64(p[0]) + 0.587*float64(p[1]) + 0.114*float64(p[2])) / 255
	}
	return out, nil
}
