package beast

import (
	"fmt"
	"strings"

	"gomlat/internal/modes"
)

// SyncByte is the Beast escape byte. On the wire it doubles as the frame
// start marker when followed by a type byte.
const SyncByte = 0x1a

// Beast frame type markers.
const (
	TypeModeAC     = 0x31 // 2-byte Mode A/C reply
	TypeModeSShort = 0x32 // 7-byte short Mode S frame
	TypeModeSLong  = 0x33 // 14-byte long Mode S frame
)

// frameLength returns the unescaped body length of a frame type, type marker
// included: marker + 6-byte timestamp + signal byte + payload.
func frameLength(kind byte) int {
	switch kind {
	case TypeModeAC:
		return 10
	case TypeModeSShort:
		return 15
	case TypeModeSLong:
		return 22
	}
	return 0
}

func isFrameType(b byte) bool {
	return frameLength(b) != 0
}

// FramingError describes a frame body that could not be extracted: either an
// unrecognized type marker or a body whose length does not match its type.
// Len is the unescaped body length; the rendered byte counts include the
// leading escape byte, matching what a protocol trace shows.
type FramingError struct {
	Kind byte
	Len  int
}

func (e *FramingError) Error() string {
	if isFrameType(e.Kind) {
		return fmt.Sprintf("invalid frame: type 0x%02x expects %d bytes, received %d",
			e.Kind, frameLength(e.Kind)+1, e.Len+1)
	}
	return fmt.Sprintf("invalid frame: type 0x%02x is not one of 0x31, 0x32, 0x33", e.Kind)
}

// RawFrame is one deframed Beast frame before Mode S decoding.
type RawFrame struct {
	Kind      byte
	Timestamp uint64
	Signal    uint8
	Payload   []byte
}

// extractFrame splits an unescaped frame body into its fields. The body
// starts with the type marker; the 48-bit timestamp is big-endian.
func extractFrame(body []byte) (*RawFrame, error) {
	kind := body[0]
	if !isFrameType(kind) || len(body) != frameLength(kind) {
		return nil, &FramingError{Kind: kind, Len: len(body)}
	}

	var ts uint64
	for _, b := range body[1:7] {
		ts = ts<<8 | uint64(b)
	}

	return &RawFrame{
		Kind:      kind,
		Timestamp: ts,
		Signal:    body[7],
		Payload:   body[8:],
	}, nil
}

// Frames is a batch of decoded messages from one buffer.
type Frames []*modes.Message

// String renders the batch for diagnostics.
func (fs Frames) String() string {
	var sb strings.Builder
	sb.WriteString("Frames:")
	for _, m := range fs {
		fmt.Fprintf(&sb, "\n Timestamp: %d,\n Signal: %02x,\n Data: %s", m.Timestamp, m.Signal, m)
	}
	return sb.String()
}
