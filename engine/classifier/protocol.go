package classifier

import (
	"encoding/binary"
	"fmt"
)

// Message types exchanged with the inference service as JSON text frames.
const (
	TypeHello      = "hello"
	TypeWelcome    = "welcome"
	TypeLoad       = "load"
	TypeReady      = "ready"
	TypePrediction = "prediction"
	TypeError      = "error"
)

// frameHeaderSize is the length of the binary header preceding the zstd-compressed RGBA payload:
// sequence (u64), width (u32), height (u32), little endian.
const frameHeaderSize = 16

// Message is the JSON envelope used for every text frame.
type Message struct {
	Type    string   `json:"type"`
	Session string   `json:"session,omitempty"`
	Model   string   `json:"model,omitempty"`
	Seq     uint64   `json:"seq,omitempty"`
	Value   *float64 `json:"value,omitempty"`
	Message string   `json:"message,omitempty"`
}

// FrameHeader describes a binary frame payload.
type FrameHeader struct {
	Seq    uint64
	Width  uint32
	Height uint32
}

// EncodeFrameHeader writes the header in wire order.
func EncodeFrameHeader(h FrameHeader) []byte {
	buf := make([]byte, frameHeaderSize)
	binary.LittleEndian.PutUint64(buf[0:8], h.Seq)
	binary.LittleEndian.PutUint32(buf[8:12], h.Width)
	binary.LittleEndian.PutUint32(buf[12:16], h.Height)
	return buf
}

// DecodeFrameHeader splits a binary frame into its header and compressed payload.
func DecodeFrameHeader(b []byte) (FrameHeader, []byte, error) {
	if len(b) < frameHeaderSize {
		return FrameHeader{}, nil, fmt.Errorf("classifier: frame too short (%d bytes)", len(b))
	}
	return FrameHeader{
		Seq:    binary.LittleEndian.Uint64(b[0:8]),
		Width:  binary.LittleEndian.Uint32(b[8:12]),
		Height: binary.LittleEndian.Uint32(b[12:16]),
	}, b[frameHeaderSize:], nil
}
