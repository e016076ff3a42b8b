// Package random produces seeds for the dice roller.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed reads a seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// ResolveSeed returns the requested seed, or a fresh one when requested is nil.
// Callers echo the resolved seed so a roll can be replayed.
func ResolveSeed(requested *int64) (int64, error) {
	if requested != nil {
		return *requested, nil
	}
	return NewSeed()
}
