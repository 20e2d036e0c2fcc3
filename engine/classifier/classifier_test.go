package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-corridor/engine/capture"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidFrame(seq uint64, w, h int, r, g, b uint8) capture.Frame {
	pix := make([]byte, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = r, g, b, 255
	}
	return capture.Frame{Seq: seq, Width: w, Height: h, Pix: pix}
}

// inferenceServer speaks the classifier protocol. Predictions are the first red byte / 255.
func inferenceServer(t *testing.T, sessions chan<- string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		dec, _ := zstd.NewReader(nil)
		defer dec.Close()

		for {
			kind, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if kind == websocket.BinaryMessage {
				hdr, payload, err := DecodeFrameHeader(data)
				if err != nil {
					return
				}
				pix, err := dec.DecodeAll(payload, nil)
				if err != nil || len(pix) != int(hdr.Width*hdr.Height*4) {
					_ = conn.WriteJSON(Message{Type: TypeError, Message: "bad frame"})
					continue
				}
				stale := 0.0
				if hdr.Seq > 1 {
					_ = conn.WriteJSON(Message{Type: TypePrediction, Seq: hdr.Seq - 1, Value: &stale})
				}
				v := float64(pix[0]) / 255
				_ = conn.WriteJSON(Message{Type: TypePrediction, Seq: hdr.Seq, Value: &v})
				continue
			}

			var m Message
			if err := json.Unmarshal(data, &m); err != nil {
				return
			}
			switch m.Type {
			case TypeHello:
				if sessions != nil {
					sessions <- m.Session
				}
				_ = conn.WriteJSON(Message{Type: TypeWelcome})
			case TypeLoad:
				if m.Model == "missing" {
					_ = conn.WriteJSON(Message{Type: TypeError, Message: "no such model"})
				} else {
					_ = conn.WriteJSON(Message{Type: TypeReady})
				}
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestRemoteHandshakeAndPredict(t *testing.T) {
	sessions := make(chan string, 1)
	srv := inferenceServer(t, sessions)
	defer srv.Close()

	c := NewRemote(wsURL(srv), WithSession("test-session"), WithTimeout(2*time.Second))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Ready(ctx))
	assert.Equal(t, "test-session", <-sessions)
	require.NoError(t, c.Load(ctx, "model.json"))

	s, err := c.Predict(ctx, solidFrame(1, 4, 4, 51, 0, 0))
	require.NoError(t, err)
	assert.InDelta(t, 0.2, s.Value, 1e-9)
	assert.Equal(t, uint64(1), s.Seq)

	s, err = c.Predict(ctx, solidFrame(2, 4, 4, 255, 0, 0))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s.Value, 1e-9, "stale predictions are skipped")
	assert.Equal(t, uint64(2), s.Seq)
}

func TestRemoteLoadFailure(t *testing.T) {
	srv := inferenceServer(t, nil)
	defer srv.Close()

	c := NewRemote(wsURL(srv))
	defer c.Close()
	require.NoError(t, c.Ready(context.Background()))
	err := c.Load(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such model")

	_, err = c.Predict(context.Background(), solidFrame(1, 1, 1, 0, 0, 0))
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestRemoteRequiresReady(t *testing.T) {
	c := NewRemote("ws://127.0.0.1:1/none")
	assert.ErrorIs(t, c.Load(context.Background(), "m"), ErrNotConnected)
	_, err := c.Predict(context.Background(), capture.Frame{})
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, c.Close())
}

func TestRemoteDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	err := NewRemote(wsURL(srv)).Ready(context.Background())
	assert.Error(t, err)
}

func TestRemoteCancelUnblocksPredict(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			kind, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if kind != websocket.TextMessage {
				continue // never answer frames
			}
			var m Message
			_ = json.Unmarshal(data, &m)
			switch m.Type {
			case TypeHello:
				_ = conn.WriteJSON(Message{Type: TypeWelcome})
			case TypeLoad:
				_ = conn.WriteJSON(Message{Type: TypeReady})
			}
		}
	}))
	defer srv.Close()

	c := NewRemote(wsURL(srv))
	defer c.Close()
	require.NoError(t, c.Ready(context.Background()))
	require.NoError(t, c.Load(context.Background(), "m"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Predict(ctx, solidFrame(1, 2, 2, 0, 0, 0))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFrameHeaderRoundTrip(t *testing.T) {
	b := append(EncodeFrameHeader(FrameHeader{Seq: 9, Width: 640, Height: 480}), 1, 2, 3)
	h, rest, err := DecodeFrameHeader(b)
	require.NoError(t, err)
	assert.Equal(t, FrameHeader{Seq: 9, Width: 640, Height: 480}, h)
	assert.Equal(t, []byte{1, 2, 3}, rest)

	_, _, err = DecodeFrameHeader([]byte{1, 2})
	assert.Error(t, err)
}

func writeModel(t *testing.T, m LinearModel) string {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLinearPredict(t *testing.T) {
	weights := make([]float64, 4)
	for i := range weights {
		weights[i] = 0.25
	}
	path := writeModel(t, LinearModel{Grid: 2, Weights: weights, Bias: 0.1})

	c := NewLinear()
	ctx := context.Background()
	require.NoError(t, c.Ready(ctx))

	_, err := c.Predict(ctx, solidFrame(1, 8, 8, 255, 255, 255))
	assert.ErrorIs(t, err, ErrNotLoaded)

	require.NoError(t, c.Load(ctx, path))
	s, err := c.Predict(ctx, solidFrame(3, 8, 8, 255, 255, 255))
	require.NoError(t, err)
	assert.InDelta(t, 1.1, s.Value, 1e-6, "output is not clamped")
	assert.Equal(t, uint64(3), s.Seq)

	s, err = c.Predict(ctx, solidFrame(4, 8, 8, 0, 0, 0))
	require.NoError(t, err)
	assert.InDelta(t, 0.1, s.Value, 1e-6)
}

func TestLinearLoadErrors(t *testing.T) {
	c := NewLinear()
	ctx := context.Background()
	assert.Error(t, c.Load(ctx, filepath.Join(t.TempDir(), "absent.json")))
	assert.Error(t, c.Load(ctx, writeModel(t, LinearModel{Grid: 8, Weights: []float64{1}})))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	assert.Error(t, c.Load(ctx, bad))
}

func TestLuminanceGrid(t *testing.T) {
	f := solidFrame(1, 16, 16, 0, 255, 0)
	lum, err := LuminanceGrid(f, 8)
	require.NoError(t, err)
	require.Len(t, lum, 64)
	for _, v := range lum {
		assert.InDelta(t, 0.587, v, 1e-3)
	}

	_, err = LuminanceGrid(capture.Frame{Width: 4, Height: 4, Pix: make([]byte, 8)}, 8)
	assert.Error(t, err)
}

func TestScriptedSequence(t *testing.T) {
	ctx := context.Background()
	c := NewScripted([]float64{0.1, 0.9}, false, 0)
	var got []float64
	for i := 0; i < 4; i++ {
		s, err := c.Predict(ctx, capture.Frame{})
		require.NoError(t, err)
		got = append(got, s.Value)
	}
	assert.Equal(t, []float64{0.1, 0.9, 0.9, 0.9}, got)

	looping := NewScripted([]float64{0.1, 0.9}, true, 0)
	got = got[:0]
	for i := 0; i < 4; i++ {
		s, err := looping.Predict(ctx, capture.Frame{})
		require.NoError(t, err)
		got = append(got, s.Value)
	}
	assert.Equal(t, []float64{0.1, 0.9, 0.1, 0.9}, got)

	s, err := NewScripted(nil, false, 0).Predict(ctx, capture.Frame{})
	require.NoError(t, err)
	assert.Equal(t, 0.5, s.Value)
}

func TestScriptedIntervalRespectsContext(t *testing.T) {
	c := NewScripted([]float64{0.1}, false, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Predict(ctx, capture.Frame{})
	assert.ErrorIs(t, err, context.Canceled)
}
