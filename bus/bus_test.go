package bus

import (
	"io"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRam_ReadWrite(t *testing.T) {
	assert := assert.New(t)

	ram := NewRam(16)
	assert.Equal(16, len(ram.Data))

	ram.Write8(3, 0xa5)
	assert.Equal(uint8(0xa5), ram.Read8(3))
	assert.Equal(uint8(0xa5), ram.Data[3])
	assert.Equal(uint8(0), ram.Read8(4))
}

func TestRam_OutOfRange(t *testing.T) {
	assert := assert.New(t)

	ram := NewRam(4)
	ram.Write8(4, 0x12)
	ram.Write8(0xffff, 0x34)
	assert.Equal([]uint8{0, 0, 0, 0}, ram.Data)
	assert.Equal(uint8(0), ram.Read8(4))
	assert.Equal(uint8(0), ram.Read8(0xffff))

	empty := &Ram{}
	empty.Write8(0, 1)
	assert.Equal(uint8(0), empty.Read8(0))
}

func TestRam_Load(t *testing.T) {
	assert := assert.New(t)

	ram := NewRam(8)
	ram.Load(6, []uint8{1, 2, 3, 4})
	assert.Equal([]uint8{0, 0, 0, 0, 0, 0, 1, 2}, ram.Data)

	full := NewRam(RAM_SIZE)
	full.Load(0xfffe, []uint8{0xa, 0xb, 0xc})
	assert.Equal(uint8(0xa), full.Read8(0xfffe))
	assert.Equal(uint8(0xb), full.Read8(0xffff))
	assert.Equal(uint8(0xc), full.Read8(0x0000))

	full.Reset()
	assert.Equal(uint8(0), full.Read8(0xfffe))
}

func TestRam_From(t *testing.T) {
	assert := assert.New(t)

	data := []uint8{1, 2, 3}
	ram := NewRamFrom(data)
	data[0] = 9
	assert.Equal(uint8(1), ram.Read8(0))
}

func TestRam_Random(t *testing.T) {
	assert := assert.New(t)

	a := NewRandomRam(64, rand.New(rand.NewPCG(1, 2)))
	b := NewRandomRam(64, rand.New(rand.NewPCG(1, 2)))
	assert.Equal(a.Data, b.Data)
}

func TestRom_IgnoresWrites(t *testing.T) {
	assert := assert.New(t)

	rom := NewRom([]uint8{0x10, 0x20})
	rom.Write8(0, 0xff)
	WriteLeWord(rom, 0, 0xbeef)
	assert.Equal(uint8(0x10), rom.Read8(0))
	assert.Equal(uint16(0x2010), ReadLeWord(rom, 0))
	assert.Equal(uint8(0), rom.Read8(2))
}

func TestWords(t *testing.T) {
	table := [](struct {
		name  string
		addr  uint16
		value uint16
	}){
		{"low", 0x0000, 0x1234},
		{"mid", 0x8000, 0xabcd},
		{"wrap", 0xffff, 0x55aa},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			ram := NewRam(RAM_SIZE)
			WriteLeWord(ram, entry.addr, entry.value)
			assert.Equal(uint8(entry.value), ram.Read8(entry.addr))
			assert.Equal(uint8(entry.value>>8), ram.Read8(entry.addr+1))
			assert.Equal(entry.value, ReadLeWord(ram, entry.addr))
			assert.Equal(entry.value>>8|entry.value<<8, ReadBeWord(ram, entry.addr))

			WriteBeWord(ram, entry.addr, entry.value)
			assert.Equal(uint8(entry.value>>8), ram.Read8(entry.addr))
			assert.Equal(uint8(entry.value), ram.Read8(entry.addr+1))
			assert.Equal(entry.value, ReadBeWord(ram, entry.addr))
		})
	}
}

func TestDefines(t *testing.T) {
	assert := assert.New(t)

	defs := map[string]string{}
	for key, value := range Defines() {
		defs[key] = value
	}
	assert.Equal("0x10000", defs["RAM_SIZE"])
}

func TestOverlay(t *testing.T) {
	assert := assert.New(t)

	ram := NewRam(RAM_SIZE)
	ram.Load(0, []uint8{9, 9, 9, 9})
	ov := NewOverlay(NewRom([]uint8{1, 2}), ram)

	assert.Equal(uint8(1), ov.Read8(0))
	assert.Equal(uint8(2), ov.Read8(1))
	assert.Equal(uint8(9), ov.Read8(2))

	ov.Write8(1, 0x55)
	assert.Equal(uint8(2), ov.Read8(1))
	assert.Equal(uint8(9), ram.Read8(1))

	ov.Write8(0x8000, 0x55)
	assert.Equal(uint8(0x55), ov.Read8(0x8000))
	assert.Equal(uint8(0x55), ram.Read8(0x8000))

	WriteLeWord(ov, 1, 0xbeef)
	assert.Equal(uint16(0xbe02), ReadLeWord(ov, 1))
}

func TestByteAccessNames(t *testing.T) {
	assert := assert.New(t)

	// The byte accessors take an address, so no store may be mistaken
	// for a stream.
	for _, b := range []Bus{NewRam(1), NewRom(nil), NewOverlay(NewRom(nil), NewRam(1))} {
		_, reader := b.(io.ByteReader)
		_, writer := b.(io.ByteWriter)
		assert.False(reader)
		assert.False(writer)
	}
}
