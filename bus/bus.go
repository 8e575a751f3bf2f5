// Package bus provides the byte-addressable memory space of the Melo
// system. A Bus exposes 65536 byte slots; all wider accesses are built from
// the two byte primitives so that any container presenting them can back
// the CPU.
package bus

import (
	"fmt"
	"iter"
	"maps"
)

const (
	RAM_SIZE = 1 << 16 // Size of the full address space.
)

var _bus_defines = map[string]string{
	"RAM_SIZE": fmt.Sprintf("%#x", RAM_SIZE),
}

// Bus is the byte-level capability consumed by the CPU.
//
// Reading an address outside the backing store returns 0, and writing to
// such an address is dropped. Neither operation fails.
type Bus interface {
	// Read8 returns the byte at addr.
	Read8(addr uint16) uint8
	// Write8 stores value at addr.
	Write8(addr uint16, value uint8)
}

// Defines for the bus.
func Defines() iter.Seq2[string, string] {
	return maps.All(_bus_defines)
}

// ReadLeWord reads a little-endian word: low byte at addr, high byte at addr+1.
func ReadLeWord(b Bus, addr uint16) uint16 {
	lo := b.Read8(addr)
	hi := b.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// WriteLeWord writes a little-endian word.
func WriteLeWord(b Bus, addr uint16, value uint16) {
	b.Write8(addr, uint8(value))
	b.Write8(addr+1, uint8(value>>8))
}

// ReadBeWord reads a big-endian word: high byte at addr, low byte at addr+1.
func ReadBeWord(b Bus, addr uint16) uint16 {
	hi := b.Read8(addr)
	lo := b.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// WriteBeWord writes a big-endian word.
func WriteBeWord(b Bus, addr uint16, value uint16) {
	b.Write8(addr, uint8(value>>8))
	b.Write8(addr+1, uint8(value))
}
