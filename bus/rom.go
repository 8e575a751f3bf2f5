package bus

// Rom is a read-only byte store. Writes are silently ignored.
type Rom struct {
	Data []uint8
}

var _ Bus = (*Rom)(nil)

// NewRom creates a store holding a copy of data.
func NewRom(data []uint8) *Rom {
	rom := &Rom{Data: make([]uint8, len(data))}
	copy(rom.Data, data)
	return rom
}

func (rom *Rom) Read8(addr uint16) uint8 {
	if int(addr) >= len(rom.Data) {
		return 0
	}
	return rom.Data[addr]
}

func (rom *Rom) Write8(addr uint16, value uint8) {
}
