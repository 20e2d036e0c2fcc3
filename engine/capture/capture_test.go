package capture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestFrameReadiness(t *testing.T) {
	l := newLatestFrame()
	_, ok := l.Latest()
	assert.False(t, ok)

	select {
	case <-l.Ready():
		t.Fatal("ready before first frame")
	default:
	}

	l.store(Frame{Seq: 1})
	l.store(Frame{Seq: 2})
	<-l.Ready()
	f, ok := l.Latest()
	require.True(t, ok)
	assert.Equal(t, uint64(2), f.Seq)
}

func TestPatternSourceProducesFrames(t *testing.T) {
	src := NewPattern(WithSize(16, 8), WithFPS(200))
	defer src.Close()

	f, ok := src.Latest()
	require.True(t, ok, "first frame is available immediately")
	assert.Equal(t, 16, f.Width)
	assert.Equal(t, 8, f.Height)
	assert.Len(t, f.Pix, 16*8*4)
	assert.NotEmpty(t, f.TraceID)

	assert.Eventually(t, func() bool {
		next, _ := src.Latest()
		return next.Seq > f.Seq
	}, time.Second, 5*time.Millisecond)
}

func TestPatternSourceCloseIsIdempotent(t *testing.T) {
	src := NewPattern(WithSize(4, 4))
	require.NoError(t, src.Close())
	require.NoError(t, src.Close())
}

func TestSourceConfigDefaults(t *testing.T) {
	cfg := newSourceConfig(WithSize(0, 10), WithFPS(-1), WithDevice(""))
	assert.Equal(t, sourceConfig{device: "/dev/video0", width: 640, height: 480, fps: 30}, cfg)
}
