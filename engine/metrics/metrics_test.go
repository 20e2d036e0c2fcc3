package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-corridor/engine/control"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserversUpdateCollectors(t *testing.T) {
	m := NewMetrics()

	m.FrameRendered(2*time.Millisecond, 20)
	m.FrameRendered(3*time.Millisecond, 20)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.framesRendered))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.sceneObjects))

	m.Predicted(control.DecisionForward, 10*time.Millisecond)
	m.Predicted(control.DecisionForward, 10*time.Millisecond)
	m.Predicted(control.DecisionHold, 10*time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.predictions.WithLabelValues("forward")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.predictions.WithLabelValues("hold")))

	m.Stepped(control.Outcome{Decision: control.DecisionForward, Extended: true, Frontier: -15, CameraZ: 1}, 22)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.worldExtensions))
	assert.Equal(t, -15.0, testutil.ToFloat64(m.worldFrontier))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cameraZ))
	assert.Equal(t, 22.0, testutil.ToFloat64(m.sceneObjects))
}

func TestServeExposesRegistry(t *testing.T) {
	m := NewMetrics()
	m.SetFrontier(-13.5)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, addr) }()

	var body string
	assert.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, strings.Contains(body, "corridor_world_frontier -13.5"))

	cancel()
	require.NoError(t, <-done)
}
