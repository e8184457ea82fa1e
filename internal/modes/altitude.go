package modes

// DecodeAC13 decodes a 13-bit AC altitude field into feet. The second return
// value is false when the field is zero, uses the unsupported metric M-bit
// encoding, or is not a legal Gillham code.
func DecodeAC13(ac13 uint32) (int32, bool) {
	if ac13 == 0 || ac13&0x0040 != 0 { // M bit: metric altitude, unsupported
		return 0, false
	}

	if ac13&0x0010 != 0 {
		// Q bit: 25 ft increments. Reassemble the 11-bit count around the
		// M and Q bit positions.
		n := (ac13&0x1f80)>>2 | (ac13&0x0020)>>1 | ac13&0x000f
		return int32(n)*25 - 1000, true
	}

	// Gillham (gray) code.
	if ac13&0x1500 == 0 {
		return 0, false
	}

	var h, f int32
	if ac13&0x1000 != 0 { // C1
		h ^= 7
	}
	if ac13&0x0400 != 0 { // C2
		h ^= 3
	}
	if ac13&0x0100 != 0 { // C4
		h ^= 1
	}
	if h&5 != 0 {
		h ^= 5
	}
	if h > 5 {
		return 0, false
	}

	if ac13&0x0010 != 0 { // D1
		f ^= 0x1ff
	}
	if ac13&0x0004 != 0 { // D2
		f ^= 0x0ff
	}
	if ac13&0x0001 != 0 { // D4
		f ^= 0x07f
	}
	if ac13&0x0800 != 0 { // A1
		f ^= 0x03f
	}
	if ac13&0x0200 != 0 { // A2
		f ^= 0x01f
	}
	if ac13&0x0080 != 0 { // A4
		f ^= 0x00f
	}
	if ac13&0x0020 != 0 { // B1
		f ^= 0x007
	}
	if ac13&0x0008 != 0 { // B2
		f ^= 0x003
	}
	if ac13&0x0002 != 0 { // B4
		f ^= 0x001
	}

	if f&1 != 0 {
		h = 6 - h
	}

	a := 500*f + 100*h - 1300
	if a < -1200 {
		return 0, false
	}
	return a, true
}

// DecodeAC12 decodes the 12-bit AC field used by DF17/18 position messages
// by widening it to AC13 form (the 12-bit field simply omits the M bit).
func DecodeAC12(ac12 uint32) (int32, bool) {
	ac13 := (ac12&0x0fc0)<<1 | ac12&0x003f
	return DecodeAC13(ac13)
}
