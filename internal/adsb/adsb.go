// Package adsb defines the capability boundary to an external ADS-B payload
// decoder. The deframer and Mode S core never interpret extended squitter
// payloads themselves; a full position/velocity/identification decoder plugs
// in behind this interface and can be swapped without touching them.
package adsb

// Result is the structured outcome of a semantic payload decode. The core
// only ever renders it, so the surface is deliberately minimal.
type Result interface {
	String() string
}

// Decoder interprets the semantic content of raw Mode S payload bytes.
type Decoder interface {
	// Decode parses a 7- or 14-byte Mode S payload and returns the
	// structured result, or an error when the payload cannot be
	// interpreted.
	Decode(data []byte) (Result, error)
}
