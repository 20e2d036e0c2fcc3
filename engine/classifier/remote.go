package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-corridor/engine/capture"
	"github.com/Carmen-Shannon/oxy-corridor/engine/control"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"
)

type remote struct {
	mu *sync.Mutex

	url     string
	session string
	dialer  websocket.Dialer
	timeout time.Duration

	conn   *websocket.Conn
	enc    *zstd.Encoder
	loaded bool
}

var _ control.Classifier = &remote{}

// NewRemote creates a classifier backed by an inference service at url. No connection is made until Ready.
//
// Parameters:
//   - url: websocket endpoint, e.g. ws://127.0.0.1:8765/predict
//   - options: functional options to configure the client
//
// Returns:
//   - control.Classifier: the remote classifier
func NewRemote(url string, options ...RemoteBuilderOption) control.Classifier {
	r := &remote{
		mu:      &sync.Mutex{},
		url:     url,
		session: uuid.NewString(),
		dialer:  websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		timeout: 10 * time.Second,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *remote) Ready(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		return nil
	}

	conn, resp, err := r.dialer.DialContext(ctx, r.url, http.Header{})
	if err != nil {
		return fmt.Errorf("classifier: dial %s: %w", r.url, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("classifier: zstd encoder: %w", err)
	}
	r.conn, r.enc = conn, enc

	if err := r.writeJSON(ctx, Message{Type: TypeHello, Session: r.session}); err != nil {
		r.closeLocked()
		return err
	}
	if _, err := r.await(ctx, TypeWelcome, 0); err != nil {
		r.closeLocked()
		return err
	}
	log.Printf("[Classifier] Connected to %s (session %s)", r.url, r.session)
	return nil
}

func (r *remote) Load(ctx context.Context, resource string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return ErrNotConnected
	}
	if err := r.writeJSON(ctx, Message{Type: TypeLoad, Model: resource}); err != nil {
		return err
	}
	if _, err := r.await(ctx, TypeReady, 0); err != nil {
		return fmt.Errorf("classifier: load %q: %w", resource, err)
	}
	r.loaded = true
	log.Printf("[Classifier] Model %q ready", resource)
	return nil
}

func (r *remote) Predict(ctx context.Context, frame capture.Frame) (control.PredictionSample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return control.PredictionSample{}, ErrNotConnected
	}
	if !r.loaded {
		return control.PredictionSample{}, ErrNotLoaded
	}

	payload := EncodeFrameHeader(FrameHeader{
		Seq:    frame.Seq,
		Width:  uint32(frame.Width),
		Height: uint32(frame.Height),
	})
	payload = r.enc.EncodeAll(frame.Pix, payload)

	r.setWriteDeadline(ctx)
	if err := r.conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		return control.PredictionSample{}, fmt.Errorf("classifier: send frame %d: %w", frame.Seq, err)
	}

	msg, err := r.await(ctx, TypePrediction, frame.Seq)
	if err != nil {
		return control.PredictionSample{}, err
	}
	if msg.Value == nil {
		return control.PredictionSample{}, fmt.Errorf("classifier: prediction %d has no value", frame.Seq)
	}
	return control.PredictionSample{Value: *msg.Value, Seq: msg.Seq}, nil
}

func (r *remote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeLocked()
}

// closeLocked sends a close frame and drops the connection. Caller must hold the mutex.
func (r *remote) closeLocked() error {
	if r.conn == nil {
		return nil
	}
	_ = r.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	err := r.conn.Close()
	if r.enc != nil {
		_ = r.enc.Close()
	}
	r.conn, r.enc, r.loaded = nil, nil, false
	return err
}

func (r *remote) writeJSON(ctx context.Context, m Message) error {
	r.setWriteDeadline(ctx)
	if err := r.conn.WriteJSON(m); err != nil {
		return fmt.Errorf("classifier: send %s: %w", m.Type, err)
	}
	return nil
}

func (r *remote) setWriteDeadline(ctx context.Context) {
	deadline := time.Now().Add(r.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = r.conn.SetWriteDeadline(deadline)
}

// await reads text frames until one of the wanted type arrives. Predictions for older frames are skipped.
// An error message from the service is returned as an error. Cancelling ctx unblocks the read.
func (r *remote) await(ctx context.Context, want string, seq uint64) (Message, error) {
	_ = r.conn.SetReadDeadline(time.Now().Add(r.timeout))
	stop := context.AfterFunc(ctx, func() {
		_ = r.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return Message{}, ctx.Err()
			}
			return Message{}, fmt.Errorf("classifier: awaiting %s: %w", want, err)
		}
		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			return Message{}, fmt.Errorf("classifier: decode %s: %w", want, err)
		}
		switch {
		case m.Type == TypeError:
			return Message{}, fmt.Errorf("classifier: service error: %s", m.Message)
		case m.Type != want:
			continue
		case want == TypePrediction && m.Seq < seq:
			continue
		}
		return m, nil
	}
}
