package profiler

import (
	"log"
	"runtime"
	"time"
)

// Profiler tracks frame rate, corridor size and memory statistics for the render loop.
// Outputs stats to the log at a configurable interval. Not safe for concurrent use; the
// Frame Scheduler is its only caller.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastFPS        float64
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - interval: how often to log; defaults to 1 second if <= 0
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: interval,
	}
}

// Tick should be called once per rendered frame.
// Logs FPS, live object count, camera position, heap usage and GC count when the interval has elapsed.
//
// Parameters:
//   - objects: number of live corridor objects
//   - cameraZ: camera position on the forward axis
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(objects int, cameraZ float32) bool {
	p.frameCount++
	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	p.lastFPS = float64(p.frameCount) / elapsed.Seconds()
	runtime.ReadMemStats(&p.memStats)
	heapMB := float64(p.memStats.Alloc) / 1024 / 1024
	gcDelta := p.memStats.NumGC - p.lastGCCount

	log.Printf("[Profiler] FPS: %.2f | Objects: %d | Camera z: %.2f | Heap: %.2f MB | GC: +%d",
		p.lastFPS, objects, cameraZ, heapMB, gcDelta)

	p.frameCount = 0
	p.lastTime = now
	p.lastGCCount = p.memStats.NumGC
	return true
}

// FPS returns the frame rate computed at the last logged interval.
func (p *Profiler) FPS() float64 {
	return p.lastFPS
}
