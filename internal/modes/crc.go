package modes

// Mode S CRC-24 generator polynomial. The parity table below is the
// precomputed XOR contribution of every bit position under this polynomial;
// the table is what the hot path actually uses.
const generatorPoly = 0xfff409

// Mode S frame widths in bits.
const (
	LongMsgBits  = 112
	ShortMsgBits = 56
)

// parityTable holds one entry per bit of a long (112-bit) Mode S frame.
// Computing a checksum means XORing together the entries for every set bit.
// Short (56-bit) frames use the last 56 entries. The final 24 entries are
// zero so the transmitted checksum bits never contribute to the result.
var parityTable = [LongMsgBits]uint32{
	0x3935ea, 0x1c9af5, 0xf1b77e, 0x78dbbf, 0xc397db, 0x9e31e9, 0xb0e2f0, 0x587178,
	0x2c38bc, 0x161c5e, 0x0b0e2f, 0xfa7d13, 0x82c48d, 0xbe9842, 0x5f4c21, 0xd05c14,
	0x682e0a, 0x341705, 0xe5f186, 0x72f8c3, 0xc68665, 0x9cb936, 0x4e5c9b, 0xd8d449,
	0x939020, 0x49c810, 0x24e408, 0x127204, 0x093902, 0x049c81, 0xfdb444, 0x7eda22,
	0x3f6d11, 0xe04c8c, 0x702646, 0x381323, 0xe3f395, 0x8e03ce, 0x4701e7, 0xdc7af7,
	0x91c77f, 0xb719bb, 0xa476d9, 0xadc168, 0x56e0b4, 0x2b705a, 0x15b82d, 0xf52612,
	0x7a9309, 0xc2b380, 0x6159c0, 0x30ace0, 0x185670, 0x0c2b38, 0x06159c, 0x030ace,
	0x018567, 0xff38b7, 0x80665f, 0xbfc92b, 0xa01e91, 0xaff54c, 0x57faa6, 0x2bfd53,
	0xea04ad, 0x8af852, 0x457c29, 0xdd4410, 0x6ea208, 0x375104, 0x1ba882, 0x0dd441,
	0xf91024, 0x7c8812, 0x3e4409, 0xe0d800, 0x706c00, 0x383600, 0x1c1b00, 0x0e0d80,
	0x0706c0, 0x038360, 0x01c1b0, 0x00e0d8, 0x00706c, 0x003836, 0x001c1b, 0xfff409,
	0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000,
	0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000,
	0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000,
}

// inferBits maps a payload length to its frame width. Returns 0 when the
// length matches neither a short nor a long frame.
func inferBits(data []byte, bits int) int {
	if bits != 0 {
		return bits
	}
	switch len(data) * 8 {
	case ShortMsgBits:
		return ShortMsgBits
	case LongMsgBits:
		return LongMsgBits
	}
	return 0
}

// Checksum computes the Mode S parity checksum over the first bits bits of
// data. Pass bits == 0 to infer the width from the payload length; an
// unrecognized length yields 0 (the checksum is undefined there). Short
// frames index the parity table at an offset of 56 since the table is laid
// out for long-frame bit positions.
func Checksum(data []byte, bits int) uint32 {
	bits = inferBits(data, bits)
	if bits == 0 {
		return 0
	}

	offset := 0
	if bits != LongMsgBits {
		offset = LongMsgBits - ShortMsgBits
	}

	var crc uint32
	for j := 0; j < bits; j++ {
		b := j / 8
		mask := byte(1 << (7 - j%8))
		if b < len(data) && data[b]&mask != 0 {
			crc ^= parityTable[j+offset]
		}
	}
	return crc
}

// BufferCRC extracts the transmitted 24-bit checksum from the last 3 bytes
// of the frame (big-endian). Pass bits == 0 to use the full payload length.
// Frames shorter than 3 bytes yield 0 rather than an error so the decoder
// stays total.
func BufferCRC(data []byte, bits int) uint32 {
	bytes := len(data)
	if bits != 0 {
		bytes = bits / 8
	}
	if bytes < 3 || bytes > len(data) {
		return 0
	}
	return uint32(data[bytes-3])<<16 | uint32(data[bytes-2])<<8 | uint32(data[bytes-1])
}

// ChecksumCompare reports whether the computed checksum matches the
// transmitted one. This is the authoritative validity test for DF11 and
// DF17/18, the formats whose checksum is not XORed with an interrogation
// address.
func ChecksumCompare(data []byte, bits int) bool {
	bits = inferBits(data, bits)
	if bits == 0 {
		return false
	}
	return Checksum(data, bits) == BufferCRC(data, bits)
}

// Residual is the checksum XORed with the transmitted CRC bits. It is zero
// for an undamaged DF11/17/18 frame; for interrogation replies it equals the
// interrogating address.
func Residual(data []byte) uint32 {
	bits := inferBits(data, 0)
	if bits == 0 {
		return 0
	}
	return Checksum(data, bits) ^ BufferCRC(data, bits)
}
