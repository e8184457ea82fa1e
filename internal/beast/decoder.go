package beast

import (
	"errors"

	"github.com/sirupsen/logrus"

	"gomlat/internal/modes"
)

// ErrNoFrame is returned by DecodeFrame when the buffer contains no frame
// data at all.
var ErrNoFrame = errors.New("no frame data in buffer")

// Decoder recovers Mode S frames from the Beast byte-stuffed stream. It
// holds no stream state: the carried remainder is passed explicitly into
// and out of every DecodeBuffer call and is owned by the caller, so one
// Decoder may serve several streams as long as each stream's calls are
// serialized.
type Decoder struct {
	logger *logrus.Logger
}

// NewDecoder creates a Beast decoder.
func NewDecoder(logger *logrus.Logger) *Decoder {
	return &Decoder{logger: logger}
}

// scan walks buf applying the escape rules and calls emit for every
// completed frame body (type marker first, unescaped). It returns the
// in-progress body left at end of buffer.
//
// Escape rules: 0x1a 0x1a is one literal 0x1a; 0x1a followed by a type
// marker terminates the current body and starts a new frame; a 0x1a that is
// the last byte of the buffer is kept as a literal, since the next chunk is
// needed to disambiguate it; 0x1a followed by anything else is a literal.
func scan(buf []byte, emit func([]byte)) []byte {
	msg := make([]byte, 0, frameLength(TypeModeSLong))
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b != SyncByte {
			msg = append(msg, b)
			continue
		}
		switch {
		case i+1 >= len(buf):
			msg = append(msg, b)
		case buf[i+1] == SyncByte:
			msg = append(msg, SyncByte)
			i++
		case isFrameType(buf[i+1]):
			if len(msg) > 0 {
				emit(msg)
				msg = make([]byte, 0, frameLength(TypeModeSLong))
			}
		default:
			msg = append(msg, b)
		}
	}
	return msg
}

// restuff rebuilds the wire form of an in-progress body so the next scan
// resumes in a consistent state: literal 0x1a bytes are doubled again and a
// single 0x1a is prefixed. A trailing literal 0x1a stays single, so the
// trailing-escape rule re-applies when the rest of the pair arrives.
func restuff(msg []byte) []byte {
	rest := make([]byte, 0, 2*len(msg)+1)
	rest = append(rest, SyncByte)
	for i, b := range msg {
		if b == SyncByte && i < len(msg)-1 {
			rest = append(rest, SyncByte, SyncByte)
		} else {
			rest = append(rest, b)
		}
	}
	return rest
}

// DecodeBuffer is the steady-state streaming entry point. It deframes
// remainder followed by data, decodes every completed frame and returns the
// new remainder to carry into the next call. Frames that fail to deframe
// are skipped and reported in the aggregated error; decoding continues past
// them.
func (d *Decoder) DecodeBuffer(data, remainder []byte) (Frames, []byte, error) {
	buf := make([]byte, 0, len(remainder)+len(data))
	buf = append(buf, remainder...)
	buf = append(buf, data...)

	var bodies [][]byte
	tail := scan(buf, func(body []byte) {
		bodies = append(bodies, body)
	})

	var rest []byte
	if len(tail) > 0 {
		rest = restuff(tail)
	}

	var msgs Frames
	var errs []error
	for _, body := range bodies {
		frame, err := extractFrame(body)
		if err != nil {
			d.logger.WithError(err).WithField("body_len", len(body)).Debug("Skipping undecodable frame")
			errs = append(errs, err)
			continue
		}
		msgs = append(msgs, modes.FromBuffer(frame.Timestamp, frame.Signal, frame.Payload))
	}

	if len(msgs) > 0 {
		d.logger.WithFields(logrus.Fields{
			"frames":    len(msgs),
			"skipped":   len(errs),
			"remainder": len(rest),
		}).Debug("Deframed buffer")
	}

	return msgs, rest, errors.Join(errs...)
}

// DecodeFrame decodes a single self-contained frame. Unlike DecodeBuffer it
// aborts on the first error and keeps no remainder; if the buffer holds
// several frames, only the last one is returned. Callers must not rely on
// partial results.
func (d *Decoder) DecodeFrame(data []byte) (*modes.Message, error) {
	body := scan(data, func([]byte) {})
	if len(body) == 0 {
		return nil, ErrNoFrame
	}
	frame, err := extractFrame(body)
	if err != nil {
		return nil, err
	}
	return modes.FromBuffer(frame.Timestamp, frame.Signal, frame.Payload), nil
}
