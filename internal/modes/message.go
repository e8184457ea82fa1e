package modes

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Special DF values for records that do not come off the wire. Real downlink
// formats occupy 0..31; these sentinels sit above that range.
const (
	DFModeAC                 = 32 // Mode A/C reply carried in a Beast type-1 frame
	DFEventTimestampJump     = 33
	DFEventModeChange        = 34
	DFEventEpochRollover     = 35
	DFEventRadarcapeStatus   = 36
	DFEventRadarcapePosition = 37
)

// EventName returns the diagnostic name for an event DF value. The second
// return value is false for wire formats and for DFModeAC, which renders as
// a plain DF number.
func EventName(df uint32) (string, bool) {
	switch df {
	case DFEventTimestampJump:
		return "DF_EVENT_TIMESTAMP_JUMP", true
	case DFEventModeChange:
		return "DF_EVENT_MODE_CHANGE", true
	case DFEventEpochRollover:
		return "DF_EVENT_EPOCH_ROLLOVER", true
	case DFEventRadarcapeStatus:
		return "DF_EVENT_RADARCAPE_STATUS", true
	case DFEventRadarcapePosition:
		return "DF_EVENT_RADARCAPE_POSITION", true
	}
	return "", false
}

// Message is one decoded Mode S record. It is constructed by FromBuffer or
// NewEventMessage and never mutated afterwards; re-decoding means building a
// new record.
type Message struct {
	Timestamp uint64 // 48-bit receiver clock, zero-extended
	Signal    uint8

	DF  uint32 // downlink format, or one of the DF* sentinels
	NUC uint32 // navigation uncertainty category, 0 if not applicable

	EvenCPR  bool // CPR even-format flag
	OddCPR   bool // CPR odd-format flag
	Valid    bool // decode succeeded and the address extraction is trustworthy
	CRC      uint32
	Address  int32 // 24-bit ICAO address, 0 if unknown
	Altitude int32 // feet, 0 if absent or undecodable

	Data []byte // raw Mode S payload, empty for event records

	eventData map[string]string
}

// FromBuffer builds a message from a deframed payload and decodes it. The
// payload bytes are copied; decode failures leave Valid false rather than
// returning an error.
func FromBuffer(timestamp uint64, signal uint8, data []byte) *Message {
	m := &Message{
		Timestamp: timestamp,
		Signal:    signal,
		Data:      append([]byte(nil), data...),
	}
	m.decode()
	return m
}

// NewEventMessage builds a synthetic record carrying diagnostic key/value
// data instead of wire bytes. Valid stays false and the payload stays empty.
func NewEventMessage(df uint32, timestamp uint64, eventData map[string]string) *Message {
	return &Message{
		DF:        df,
		Timestamp: timestamp,
		eventData: eventData,
	}
}

// EventData returns the diagnostic mapping of an event record, nil otherwise.
func (m *Message) EventData() map[string]string {
	return m.eventData
}

// decode runs the per-format state machine over a freshly constructed record.
func (m *Message) decode() {
	if len(m.Data) == 0 {
		return
	}

	if len(m.Data) == 2 {
		// Mode A/C: the two payload bytes are the reply, no CRC or altitude.
		m.DF = DFModeAC
		m.Address = int32(m.Data[0])<<8 | int32(m.Data[1])
		m.Valid = true
		return
	}

	m.DF = uint32(m.Data[0]>>3) & 31
	if (m.DF < 16 && len(m.Data) != 7) || (m.DF >= 16 && len(m.Data) != 14) {
		// wrong length for the format, no further processing
		return
	}
	switch m.DF {
	case 0, 4, 5, 11, 16, 17, 18, 20, 21:
	default:
		// format we do not know how to handle
		return
	}

	m.CRC = Residual(m.Data)

	switch m.DF {
	case 0, 4, 16, 20:
		// Interrogation replies: the residual is the interrogating address.
		m.Address = int32(m.CRC)
		if alt, ok := DecodeAC13(uint32(m.Data[2]&0x1f)<<8 | uint32(m.Data[3])); ok {
			m.Altitude = alt
		}
		m.Valid = true

	case 5, 21, 24:
		m.Address = int32(m.CRC)
		m.Valid = true

	case 11:
		// All-call reply: the low 7 residual bits carry the interrogator ID.
		m.Valid = m.CRC&^0x7f == 0
		if m.Valid {
			m.Address = int32(m.Data[1])<<16 | int32(m.Data[2])<<8 | int32(m.Data[3])
		}

	case 17, 18:
		m.Valid = ChecksumCompare(m.Data, 0)
		if m.Valid {
			m.Address = int32(m.Data[1])<<16 | int32(m.Data[2])<<8 | int32(m.Data[3])
			metype := m.Data[4] >> 3
			if (metype >= 9 && metype <= 18) || (metype >= 20 && metype < 22) {
				switch {
				case metype == 22:
					m.NUC = 0
				case metype <= 18:
					m.NUC = uint32(18 - metype)
				default:
					m.NUC = uint32(29 - metype)
				}
				if m.Data[6]&0x04 != 0 {
					m.OddCPR = true
				} else {
					m.EvenCPR = true
				}
				if alt, ok := DecodeAC12(uint32(m.Data[5])<<4 | uint32(m.Data[6]&0xf0)>>4); ok {
					m.Altitude = alt
				}
			}
		}
	}
}

// Hash mixes at most the first 4 payload bytes with the Jenkins
// one-at-a-time function. Used to accelerate deduplication, not
// cryptographic.
func (m *Message) Hash() uint32 {
	var h uint32
	n := len(m.Data)
	if n > 4 {
		n = 4
	}
	for i := 0; i < n; i++ {
		h += uint32(m.Data[i])
		h += h << 10
		h ^= h >> 6
	}
	h += h << 3
	h ^= h >> 11
	h += h << 15
	return h
}

// Compare orders messages by payload length, then lexicographically by
// payload bytes. Decoded fields do not participate.
func (m *Message) Compare(other *Message) int {
	if len(m.Data) != len(other.Data) {
		if len(m.Data) < len(other.Data) {
			return -1
		}
		return 1
	}
	return bytes.Compare(m.Data, other.Data)
}

// String renders wire records as lowercase hex and event records as
// NAME@timestamp:{key: value, ...} with keys in sorted order.
func (m *Message) String() string {
	if len(m.Data) > 0 {
		return hex.EncodeToString(m.Data)
	}

	name, ok := EventName(m.DF)
	if !ok {
		name = fmt.Sprintf("DF%d", m.DF)
	}

	keys := make([]string, 0, len(m.eventData))
	for k := range m.eventData {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s@%d:{", name, m.Timestamp)
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %s", k, m.eventData[k])
	}
	sb.WriteString("}")
	return sb.String()
}
