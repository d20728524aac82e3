package object

import (
	"fmt"

	"github.com/robert-malhotra/go-rfml/internal/binary"
	"github.com/robert-malhotra/go-rfml/internal/message"
)

// MinGroupChunk is the chunk size reserved for new group headers so a few
// links can be added before the header has to grow.
const MinGroupChunk = 120

// messageHeaderSize is the per-message prefix in a v2 chunk without
// creation order tracking.
const messageHeaderSize = 4

// maxMessageSize is the largest body a v2 message size field can describe.
const maxMessageSize = 0xFFFF

// Encode lays out msgs as a complete version 2 object header whose first
// chunk holds at least minChunk bytes of messages. Continuation and symbol
// table messages are dropped; everything else must be serializable.
func Encode(cfg binary.Config, msgs []message.Message, minChunk int) ([]byte, error) {
	bodies := make([][]byte, 0, len(msgs))
	kept := make([]message.Message, 0, len(msgs))
	used := 0
	for _, m := range msgs {
		switch m.Type() {
		case message.TypeNIL, message.TypeObjectHeaderContinuation, message.TypeSymbolTable:
			continue
		}
		s, ok := m.(message.Serializable)
		if !ok {
			return nil, fmt.Errorf("%w: message type %#x cannot be written", ErrInvalidHeader, m.Type())
		}
		w, buf := binary.NewBufferWriter(cfg)
		if err := s.Serialize(w); err != nil {
			return nil, fmt.Errorf("serialize message %#x: %w", m.Type(), err)
		}
		body := buf.Bytes()
		if len(body) > maxMessageSize {
			return nil, fmt.Errorf("%w: message type %#x is %d bytes", ErrInvalidHeader, m.Type(), len(body))
		}
		bodies = append(bodies, body)
		kept = append(kept, m)
		used += messageHeaderSize + len(body)
	}

	chunk := used
	if chunk < minChunk {
		chunk = minChunk
	}
	pad := chunk - used
	if pad > 0 && pad < messageHeaderSize {
		pad = messageHeaderSize
		chunk = used + pad
	}

	width := chunkSizeWidth(chunk)
	flags := uint8(0)
	switch width {
	case 2:
		flags = 1
	case 4:
		flags = 2
	case 8:
		flags = 3
	}

	w, buf := binary.NewBufferWriter(cfg)
	w.WriteBytes(signatureV2)
	w.WriteUint8(2)
	w.WriteUint8(flags)
	w.WriteUintN(uint64(chunk), width)
	for i, m := range kept {
		var mflags uint8
		if u, ok := m.(*message.Unknown); ok {
			mflags = u.Flags
		}
		w.WriteUint8(uint8(m.Type()))
		w.WriteUint16(uint16(len(bodies[i])))
		w.WriteUint8(mflags)
		w.WriteBytes(bodies[i])
	}
	for pad > 0 {
		n := pad - messageHeaderSize
		if n > maxMessageSize {
			n = maxMessageSize
		}
		w.WriteUint8(uint8(message.TypeNIL))
		w.WriteUint16(uint16(n))
		w.WriteUint8(0)
		if err := w.WriteZeros(n); err != nil {
			return nil, err
		}
		pad -= messageHeaderSize + n
	}
	if err := w.WriteUint32(binary.Lookup3Checksum(buf.Bytes())); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func chunkSizeWidth(n int) int {
	switch {
	case n <= 0xFF:
		return 1
	case n <= 0xFFFF:
		return 2
	case n <= 0xFFFFFFFF:
		return 4
	}
	return 8
}

// GroupMessages are the messages of a compact new-style group holding links.
func GroupMessages(links []*message.Link) []message.Message {
	msgs := []message.Message{message.NewLinkInfo(), message.NewGroupInfo()}
	for _, l := range links {
		msgs = append(msgs, l)
	}
	return msgs
}

// DatasetMessages are the messages of a dataset without attributes.
func DatasetMessages(ds *message.Dataspace, dt *message.Datatype, layout *message.DataLayout) []message.Message {
	return []message.Message{ds, dt, layout}
}
