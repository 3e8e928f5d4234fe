// Package transport moves encoded envelopes between peers as explicit
// messages.
//
// A Pipe is a one-directional byte stream of protocol frames from one peer
// to another. Sending appends a frame; the receiving peer drains the pipe in
// a separate delivery step:
//
//	host ──Send(seq=1)──┐
//	host ──Send(seq=2)──┼──→ Pipe(host → client) ──Next()──→ client.Deliver
//	host ──Heartbeat()──┘
//
// Network is the route table that hands out pipes by (from, to) address.
package transport

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"entity-rpc/protocol"
)

// DefaultCompressThreshold is the body size at which frames are compressed.
const DefaultCompressThreshold = 4096

// Packet is one decoded frame with its body already decompressed.
type Packet struct {
	MsgType    protocol.MsgType
	CodecType  byte
	Seq        uint32
	Compressed bool // the body travelled zstd-compressed
	Body       []byte
}

// Pipe is safe for use by one writer and one reader at a time.
type Pipe struct {
	mu                sync.Mutex
	buf               bytes.Buffer // Encoded frames not yet read
	seq               uint32       // Last assigned sequence number
	compressThreshold int          // Bodies at or above this size are compressed; <=0 disables
}

func NewPipe(compressThreshold int) *Pipe {
	return &Pipe{compressThreshold: compressThreshold}
}

// Send writes one frame and returns its sequence number.
func (p *Pipe) Send(msgType protocol.MsgType, codecType byte, body []byte) (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	header := protocol.Header{
		CodecType: codecType,
		MsgType:   msgType,
		Seq:       p.seq,
	}
	if p.compressThreshold > 0 && len(body) >= p.compressThreshold {
		body = protocol.Compress(body)
		header.Flags |= protocol.FlagCompressed
	}
	header.BodyLen = uint32(len(body))

	if err := protocol.Encode(&p.buf, &header, body); err != nil {
		return 0, err
	}
	return header.Seq, nil
}

// Heartbeat writes an empty heartbeat frame.
func (p *Pipe) Heartbeat() error {
	_, err := p.Send(protocol.MsgTypeHeartbeat, protocol.CodecTypeJSON, nil)
	return err
}

// Next reads the next frame. It returns io.EOF when the pipe is drained.
// A frame that fails validation is consumed and reported as an error; the
// pipe is reset because frame boundaries can no longer be trusted.
func (p *Pipe) Next() (*Packet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.buf.Len() == 0 {
		return nil, io.EOF
	}
	header, body, err := protocol.Decode(&p.buf)
	if err != nil {
		p.buf.Reset()
		return nil, fmt.Errorf("transport: read frame: %w", err)
	}
	if header.Compressed() {
		if body, err = protocol.Decompress(body); err != nil {
			return nil, fmt.Errorf("transport: decompress frame %d: %w", header.Seq, err)
		}
	}
	return &Packet{
		MsgType:    header.MsgType,
		CodecType:  header.CodecType,
		Seq:        header.Seq,
		Compressed: header.Compressed(),
		Body:       body,
	}, nil
}

// Pending reports the number of unread bytes.
func (p *Pipe) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.Len()
}

// Write appends raw bytes to the stream, bypassing framing.
func (p *Pipe) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.Write(b)
}
