package bus

import (
	"math/rand/v2"
)

// Ram is a fully mutable byte store.
type Ram struct {
	Data []uint8
}

var _ Bus = (*Ram)(nil)

// NewRam creates a zeroed store of size bytes.
func NewRam(size int) *Ram {
	return &Ram{Data: make([]uint8, size)}
}

// NewRamFrom creates a store holding a copy of data.
func NewRamFrom(data []uint8) *Ram {
	ram := NewRam(len(data))
	copy(ram.Data, data)
	return ram
}

// NewRandomRam creates a store of size bytes filled from rng.
func NewRandomRam(size int, rng *rand.Rand) *Ram {
	ram := NewRam(size)
	for n := range ram.Data {
		ram.Data[n] = uint8(rng.Uint32())
	}
	return ram
}

func (ram *Ram) Read8(addr uint16) uint8 {
	if int(addr) >= len(ram.Data) {
		return 0
	}
	return ram.Data[addr]
}

func (ram *Ram) Write8(addr uint16, value uint8) {
	if int(addr) >= len(ram.Data) {
		return
	}
	ram.Data[addr] = value
}

// Load copies an image into the store starting at addr. The destination
// address wraps at 0xffff; bytes landing outside the store are dropped.
func (ram *Ram) Load(addr uint16, data []uint8) {
	for n, value := range data {
		ram.Write8(addr+uint16(n), value)
	}
}

// Reset zeroes the store.
func (ram *Ram) Reset() {
	clear(ram.Data)
}
