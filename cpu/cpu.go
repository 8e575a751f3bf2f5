package cpu

import (
	"fmt"
	"iter"
	"maps"
	"math/rand/v2"

	"github.com/ezrec/melo/bus"
)

var _cpu_defines = map[string]string{
	"REG_PC":     fmt.Sprintf("%d", REG_PC),
	"REG_SP":     fmt.Sprintf("%d", REG_SP),
	"REG_FLAG":   fmt.Sprintf("%d", REG_FLAG),
	"REG_A0":     fmt.Sprintf("%d", REG_A0),
	"REG_A1":     fmt.Sprintf("%d", REG_A1),
	"REG_A2":     fmt.Sprintf("%d", REG_A2),
	"FLAG_COND":  fmt.Sprintf("%#02x", uint8(FLAG_COND)),
	"FLAG_HALT":  fmt.Sprintf("%#02x", uint8(FLAG_HALT)),
	"FLAG_GT":    fmt.Sprintf("%#02x", uint8(FLAG_GT)),
	"FLAG_EQ":    fmt.Sprintf("%#02x", uint8(FLAG_EQ)),
	"FLAG_LT":    fmt.Sprintf("%#02x", uint8(FLAG_LT)),
	"FLAG_NEG":   fmt.Sprintf("%#02x", uint8(FLAG_NEG)),
	"FLAG_ZERO":  fmt.Sprintf("%#02x", uint8(FLAG_ZERO)),
	"FLAG_CARRY": fmt.Sprintf("%#02x", uint8(FLAG_CARRY)),
}

// Cpu is the complete state of a Melo processor.
type Cpu struct {
	Register [REG_COUNT]uint8 // Register file, flags included.
}

// NewCpu creates a zeroed CPU, ready to run from address 0.
func NewCpu() Cpu {
	return Cpu{}
}

// NewRandomCpu creates a CPU with every register filled from rng, then
// reset so that it runs from address 0.
func NewRandomCpu(rng *rand.Rand) (cpu Cpu) {
	for n := range cpu.Register {
		cpu.Register[n] = uint8(rng.Uint32())
	}
	cpu.Reset()
	return
}

// Defines for the cpu.
func Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset sets the program counter to 0 and clears HALT.
// All other registers are left untouched.
func (cpu *Cpu) Reset() {
	cpu.SetPc(0)
	cpu.ClearFlag(FLAG_HALT)
}

// Halt stops execution.
func (cpu *Cpu) Halt() {
	cpu.SetFlag(FLAG_HALT)
}

// ClearHalt resumes execution at the current program counter.
func (cpu *Cpu) ClearHalt() {
	cpu.ClearFlag(FLAG_HALT)
}

// Halted returns true if the HALT flag is set.
func (cpu *Cpu) Halted() bool {
	return cpu.Flag(FLAG_HALT) != 0
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() string {
	r := &cpu.Register
	return fmt.Sprintf("PC: $%04x, SP: $%04x\n", cpu.Pc(), cpu.Sp()) +
		fmt.Sprintf("FLAG: %%%08b [%v]\n", r[REG_FLAG], cpu.Flags()) +
		fmt.Sprintf("A0: $%02x, A1: $%02x, A2: $%02x\n", r[REG_A0], r[REG_A1], r[REG_A2]) +
		fmt.Sprintf("R8: $%02x, R9: $%02x, R10: $%02x, R11: $%02x\n", r[8], r[9], r[10], r[11]) +
		fmt.Sprintf("R12: $%02x, R13: $%02x, R14: $%02x, R15: $%02x", r[12], r[13], r[14], r[15])
}

// fetch reads the byte at the program counter and advances it.
func (cpu *Cpu) fetch(b bus.Bus) uint8 {
	value := b.Read8(cpu.Pc())
	cpu.incPair(REG_PC, 1)
	return value
}

// Tick executes a single instruction from b.
//
// A halted CPU does nothing. Otherwise the opcode and its operand bytes are
// fetched into a0-a2, and the instruction runs unless it is predicated and
// COND is clear. Operand registers beyond the instruction's count keep
// their previous contents.
func (cpu *Cpu) Tick(b bus.Bus) {
	if cpu.Halted() {
		return
	}

	opcode := cpu.fetch(b)
	argc := opcode >> OPCODE_ARGC_SHIFT
	for n := range argc {
		cpu.Set(REG_A0+n, cpu.fetch(b))
	}

	if opcode&OPCODE_PREDICATED != 0 && cpu.Flag(FLAG_COND) == 0 {
		return
	}

	cpu.Execute(Selector(opcode&OP_MASK), b)
}
