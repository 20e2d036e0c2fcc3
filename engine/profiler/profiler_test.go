package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickLogsAfterInterval(t *testing.T) {
	p := NewProfiler(20 * time.Millisecond)
	assert.False(t, p.Tick(4, 2))
	assert.Zero(t, p.FPS())

	time.Sleep(25 * time.Millisecond)
	assert.True(t, p.Tick(4, 2))
	assert.Greater(t, p.FPS(), 0.0)
	assert.False(t, p.Tick(4, 2), "counter resets after logging")
}

func TestDefaultInterval(t *testing.T) {
	p := NewProfiler(0)
	assert.Equal(t, time.Second, p.updateInterval)
}
