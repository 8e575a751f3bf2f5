package cpu

import (
	"strings"
)

// Flag is a mask of bits in the flag register.
type Flag uint8

// Flag register bits, MSB first.
const (
	FLAG_COND  = Flag(1 << 7) // Result of the last any/all predicate.
	FLAG_HALT  = Flag(1 << 6) // Execution stopped.
	FLAG_GT    = Flag(1 << 5) // Last cmp: left > right.
	FLAG_EQ    = Flag(1 << 4) // Last cmp: left == right.
	FLAG_LT    = Flag(1 << 3) // Last cmp: left < right.
	FLAG_NEG   = Flag(1 << 2) // Bit 7 of the last result.
	FLAG_ZERO  = Flag(1 << 1) // Last result was zero.
	FLAG_CARRY = Flag(1 << 0) // Carry out of the last arithmetic result.
)

// flagNames in bit order, MSB first.
var flagNames = [8]string{"cond", "halt", "gt", "eq", "lt", "neg", "zero", "carry"}

// String returns the names of the set bits, joined by '|'.
func (fl Flag) String() string {
	var names []string
	for n, name := range flagNames {
		if fl&(1<<(7-n)) != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, "|")
}

// Flag tests the flags in mask. The result is the masked flag bits.
func (cpu *Cpu) Flag(mask Flag) Flag {
	return Flag(cpu.Get(REG_FLAG)) & mask
}

// SetFlag sets the flags in mask.
func (cpu *Cpu) SetFlag(mask Flag) {
	cpu.Set(REG_FLAG, cpu.Get(REG_FLAG)|uint8(mask))
}

// ClearFlag clears the flags in mask.
func (cpu *Cpu) ClearFlag(mask Flag) {
	cpu.Set(REG_FLAG, cpu.Get(REG_FLAG)&^uint8(mask))
}

// putFlag sets or clears mask depending on state.
func (cpu *Cpu) putFlag(mask Flag, state bool) {
	if state {
		cpu.SetFlag(mask)
	} else {
		cpu.ClearFlag(mask)
	}
}

// Flags returns the raw flag register.
func (cpu *Cpu) Flags() Flag {
	return Flag(cpu.Get(REG_FLAG))
}

// SetFlags replaces the raw flag register.
func (cpu *Cpu) SetFlags(flags Flag) {
	cpu.Set(REG_FLAG, uint8(flags))
}

// updateMathFlags sets NEG, ZERO and CARRY from an untruncated sum.
func (cpu *Cpu) updateMathFlags(value uint16) {
	cpu.putFlag(FLAG_NEG, value&0x80 != 0)
	cpu.putFlag(FLAG_ZERO, uint8(value) == 0)
	cpu.putFlag(FLAG_CARRY, value > 0xff)
}

// updateLogicFlags sets NEG and ZERO from an 8-bit result. CARRY is left alone.
func (cpu *Cpu) updateLogicFlags(value uint8) {
	cpu.putFlag(FLAG_NEG, value&0x80 != 0)
	cpu.putFlag(FLAG_ZERO, value == 0)
}
