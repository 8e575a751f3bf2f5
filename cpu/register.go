package cpu

// Register indices. Pairs are little-endian, low byte at the even index.
const (
	REG_PC   = uint8(0) // Program counter pair (0-1).
	REG_SP   = uint8(2) // Stack pointer pair (2-3).
	REG_FLAG = uint8(4) // Flag register.
	REG_A0   = uint8(5) // Operand scratch 0.
	REG_A1   = uint8(6) // Operand scratch 1.
	REG_A2   = uint8(7) // Operand scratch 2.
	REG_R8   = uint8(8) // First general-purpose register.

	REG_COUNT = 16     // Number of registers.
	REG_MASK  = 0b1111 // Mask of a register index.
)

// Get returns the register at idx, masked into 0-15.
func (cpu *Cpu) Get(idx uint8) uint8 {
	return cpu.Register[idx&REG_MASK]
}

// Set stores value in the register at idx, masked into 0-15.
func (cpu *Cpu) Set(idx uint8, value uint8) {
	cpu.Register[idx&REG_MASK] = value
}

func (cpu *Cpu) incReg(idx uint8, amount uint8) {
	cpu.Set(idx, cpu.Get(idx)+amount)
}

func (cpu *Cpu) decReg(idx uint8, amount uint8) {
	cpu.Set(idx, cpu.Get(idx)-amount)
}

// GetPair returns the 16-bit register pair containing idx.
func (cpu *Cpu) GetPair(idx uint8) uint16 {
	idx &^= 1
	return uint16(cpu.Get(idx+1))<<8 | uint16(cpu.Get(idx))
}

// SetPair stores a 16-bit value in the register pair containing idx.
func (cpu *Cpu) SetPair(idx uint8, value uint16) {
	idx &^= 1
	cpu.Set(idx, uint8(value))
	cpu.Set(idx+1, uint8(value>>8))
}

func (cpu *Cpu) incPair(idx uint8, amount uint16) {
	cpu.SetPair(idx, cpu.GetPair(idx)+amount)
}

// Pc returns the program counter.
func (cpu *Cpu) Pc() uint16 {
	return cpu.GetPair(REG_PC)
}

// SetPc sets the program counter.
func (cpu *Cpu) SetPc(pc uint16) {
	cpu.SetPair(REG_PC, pc)
}

// Sp returns the stack pointer.
func (cpu *Cpu) Sp() uint16 {
	return cpu.GetPair(REG_SP)
}

// SetSp sets the stack pointer.
func (cpu *Cpu) SetSp(sp uint16) {
	cpu.SetPair(REG_SP, sp)
}
