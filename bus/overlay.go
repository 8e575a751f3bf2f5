package bus

// Overlay places a Rom over the low addresses of a Ram. Addresses covered
// by the Rom read from it and drop writes; all others go to the Ram.
type Overlay struct {
	Rom *Rom
	Ram *Ram
}

var _ Bus = (*Overlay)(nil)

// NewOverlay creates an overlay of rom on ram.
func NewOverlay(rom *Rom, ram *Ram) *Overlay {
	return &Overlay{Rom: rom, Ram: ram}
}

func (ov *Overlay) covers(addr uint16) bool {
	return int(addr) < len(ov.Rom.Data)
}

func (ov *Overlay) Read8(addr uint16) uint8 {
	if ov.covers(addr) {
		return ov.Rom.Read8(addr)
	}
	return ov.Ram.Read8(addr)
}

func (ov *Overlay) Write8(addr uint16, value uint8) {
	if ov.covers(addr) {
		return
	}
	ov.Ram.Write8(addr, value)
}
