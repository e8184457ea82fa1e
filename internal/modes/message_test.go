package modes

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromHex(t *testing.T, s string) []byte {
	t.Helper()
	data, err := hex.DecodeString(s)
	require.NoError(t, err)
	return data
}

func TestDecodeModeAC(t *testing.T) {
	m := FromBuffer(1, 5, []byte{0x12, 0x34})

	assert.True(t, m.Valid)
	assert.Equal(t, uint32(DFModeAC), m.DF)
	assert.Equal(t, int32(0x1234), m.Address)
	assert.Equal(t, uint64(1), m.Timestamp)
	assert.Equal(t, uint8(5), m.Signal)
	assert.Zero(t, m.CRC)
	assert.Zero(t, m.Altitude)
}

func TestDecodeDF17Position(t *testing.T) {
	// Airborne position, even CPR frame, barometric altitude 38000 ft.
	m := FromBuffer(42, 7, fromHex(t, "8d40621d58c382d690c8ac2863a7"))

	assert.True(t, m.Valid)
	assert.Equal(t, uint32(17), m.DF)
	assert.Equal(t, int32(0x40621d), m.Address)
	assert.Equal(t, uint32(7), m.NUC)
	assert.True(t, m.EvenCPR)
	assert.False(t, m.OddCPR)
	assert.Equal(t, int32(38000), m.Altitude)
	assert.Equal(t, uint32(0), m.CRC)
}

func TestDecodeDF17Identification(t *testing.T) {
	// Aircraft identification: valid, but no position fields.
	m := FromBuffer(0, 0, fromHex(t, "8d4840d6202cc371c32ce0576098"))

	assert.True(t, m.Valid)
	assert.Equal(t, uint32(17), m.DF)
	assert.Equal(t, int32(0x4840d6), m.Address)
	assert.False(t, m.EvenCPR)
	assert.False(t, m.OddCPR)
	assert.Zero(t, m.NUC)
	assert.Zero(t, m.Altitude)
}

func TestDecodeDF17Corrupted(t *testing.T) {
	data := fromHex(t, "8d40621d58c382d690c8ac2863a7")
	data[9] ^= 0x10

	m := FromBuffer(0, 0, data)

	assert.False(t, m.Valid)
	assert.Zero(t, m.Address)
	assert.False(t, m.EvenCPR)
	assert.False(t, m.OddCPR)
	assert.NotZero(t, m.CRC)
}

func TestDecodeDF11(t *testing.T) {
	build := func() []byte {
		data := []byte{0x58, 0x48, 0x40, 0xd6, 0, 0, 0}
		crc := Checksum(data, 0)
		data[4] = byte(crc >> 16)
		data[5] = byte(crc >> 8)
		data[6] = byte(crc)
		return data
	}

	t.Run("zero residual", func(t *testing.T) {
		m := FromBuffer(0, 0, build())
		assert.True(t, m.Valid)
		assert.Equal(t, uint32(11), m.DF)
		assert.Equal(t, int32(0x4840d6), m.Address)
	})

	t.Run("interrogator ID in low bits", func(t *testing.T) {
		data := build()
		data[6] ^= 0x55 // only the transmitted CRC bits change
		m := FromBuffer(0, 0, data)
		assert.True(t, m.Valid)
		assert.Equal(t, uint32(0x55), m.CRC)
		assert.Equal(t, int32(0x4840d6), m.Address)
	})

	t.Run("high residual bit", func(t *testing.T) {
		data := build()
		data[4] ^= 0x80
		m := FromBuffer(0, 0, data)
		assert.False(t, m.Valid)
		assert.Zero(t, m.Address)
	})
}

func TestDecodeDF0Altitude(t *testing.T) {
	// DF0 carries AC13 altitude in bytes 2-3; validity does not depend on
	// the residual, which instead yields the interrogating address.
	data := []byte{0x00, 0x00, 0x18, 0x38, 0x00, 0x00, 0x00}
	m := FromBuffer(0, 0, data)

	assert.True(t, m.Valid)
	assert.Equal(t, uint32(0), m.DF)
	assert.Equal(t, int32(38000), m.Altitude)
	assert.Equal(t, int32(m.CRC), m.Address)
}

func TestDecodeRejections(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"DF17 with short payload", []byte{0x8d, 0x40, 0x62, 0x1d, 0x58, 0xc3, 0x82}},
		{"DF0 with long payload", make([]byte, 14)},
		{"unhandled DF24", append([]byte{0xc0}, make([]byte, 13)...)},
		{"empty payload", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FromBuffer(0, 0, tt.data)
			assert.False(t, m.Valid)
			assert.Zero(t, m.Address)
			assert.Zero(t, m.CRC)
		})
	}
}

func TestEventMessage(t *testing.T) {
	m := NewEventMessage(DFEventTimestampJump, 12345, map[string]string{
		"now":  "99",
		"last": "1",
	})

	assert.False(t, m.Valid)
	assert.Empty(t, m.Data)
	assert.Equal(t, uint32(DFEventTimestampJump), m.DF)
	assert.Equal(t, "DF_EVENT_TIMESTAMP_JUMP@12345:{last: 1, now: 99}", m.String())
	assert.Equal(t, "99", m.EventData()["now"])
}

func TestEventNameUnnamedFormats(t *testing.T) {
	m := NewEventMessage(DFModeAC, 7, nil)
	assert.Equal(t, "DF32@7:{}", m.String())

	_, ok := EventName(17)
	assert.False(t, ok)
}

func TestStringHex(t *testing.T) {
	m := FromBuffer(0, 0, []byte{0x8d, 0x48, 0x40, 0xd6, 0x20, 0x2c, 0xc3})
	assert.Equal(t, "8d4840d6202cc3", m.String())
}

func TestHash(t *testing.T) {
	a := FromBuffer(0, 0, []byte{0x12, 0x34})
	b := FromBuffer(99, 3, []byte{0x12, 0x34})
	c := FromBuffer(0, 0, []byte{0x12, 0x35})

	// The hash covers payload bytes only.
	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())

	// Bytes past the fourth do not participate.
	d := FromBuffer(0, 0, []byte{1, 2, 3, 4, 5, 6, 7})
	e := FromBuffer(0, 0, []byte{1, 2, 3, 4, 9, 9, 9})
	assert.Equal(t, d.Hash(), e.Hash())
}

func TestCompare(t *testing.T) {
	short := FromBuffer(0, 0, []byte{0xff, 0xff})
	long := FromBuffer(0, 0, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	lowBytes := FromBuffer(0, 0, []byte{0x01, 0x02})
	highBytes := FromBuffer(0, 0, []byte{0x01, 0x03})

	// Length dominates, then payload bytes; decoded fields never matter.
	assert.Negative(t, short.Compare(long))
	assert.Positive(t, long.Compare(short))
	assert.Negative(t, lowBytes.Compare(highBytes))
	assert.Zero(t, lowBytes.Compare(FromBuffer(55, 9, []byte{0x01, 0x02})))
}
