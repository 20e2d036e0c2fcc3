package renderer

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-corridor/engine/style"
)

// headlessStats is a snapshot of what a headless backend has been asked to do.
type headlessStats struct {
	Width, Height int
	Configures    int
	Frames        int
	Instances     int
	Globals       []byte
	InstanceData  []byte
	NoiseName     string
}

type headlessRendererBackendImpl struct {
	mu *sync.Mutex

	stats    headlessStats
	failDraw error
	released bool
}

var _ RendererBackend = &headlessRendererBackendImpl{}

func newHeadlessRendererBackend(failDraw error) *headlessRendererBackendImpl {
	return &headlessRendererBackendImpl{
		mu:       &sync.Mutex{},
		failDraw: failDraw,
	}
}

func (b *headlessRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return errors.New("backend released")
	}
	if width <= 0 || height <= 0 {
		return errors.New("surface size must be positive")
	}
	b.stats.Width = width
	b.stats.Height = height
	b.stats.Configures++
	return nil
}

func (b *headlessRendererBackendImpl) SetPresentMode(_ PresentMode) {}

func (b *headlessRendererBackendImpl) InitNoise(tex *style.NoiseTexture) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if tex == nil {
		return errors.New("noise texture is nil")
	}
	b.stats.NoiseName = tex.Name
	return nil
}

func (b *headlessRendererBackendImpl) WriteGlobals(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Globals = append(b.stats.Globals[:0], data...)
}

func (b *headlessRendererBackendImpl) WriteInstances(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.InstanceData = append(b.stats.InstanceData[:0], data...)
	return nil
}

func (b *headlessRendererBackendImpl) DrawFrame(instanceCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return errors.New("backend released")
	}
	if b.failDraw != nil {
		return b.failDraw
	}
	b.stats.Frames++
	b.stats.Instances = instanceCount
	return nil
}

func (b *headlessRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = true
}

func (b *headlessRendererBackendImpl) snapshot() headlessStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.stats
	s.Globals = append([]byte(nil), b.stats.Globals...)
	s.InstanceData = append([]byte(nil), b.stats.InstanceData...)
	return s
}
