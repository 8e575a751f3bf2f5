package cpu

import (
	"math/bits"

	"github.com/ezrec/melo/bus"
)

// Execute runs one instruction using the operands already in a0-a2.
func (cpu *Cpu) Execute(sel Selector, b bus.Bus) {
	arg := cpu.Get(REG_A0)
	dest, src := arg>>4, arg&REG_MASK

	switch sel & OP_MASK {
	case OP_NOP:
	case OP_CMP:
		cpu.cmp(dest, src)
	case OP_ANY:
		cpu.putFlag(FLAG_COND, cpu.Flag(Flag(arg)) != 0)
	case OP_ALL:
		cpu.putFlag(FLAG_COND, cpu.Flag(Flag(arg)) == Flag(arg))
	case OP_SWAP:
		lhs, rhs := cpu.Get(dest), cpu.Get(src)
		cpu.Set(dest, rhs)
		cpu.Set(src, lhs)
	case OP_REV:
		cpu.Set(dest, bits.Reverse8(cpu.Get(src)))
	case OP_ZEROS:
		cpu.Set(dest, uint8(8-bits.OnesCount8(cpu.Get(src))))
	case OP_ONES:
		cpu.Set(dest, uint8(bits.OnesCount8(cpu.Get(src))))
	case OP_MOV:
		cpu.Set(dest, cpu.Get(src))
	case OP_MOV16:
		cpu.SetPair(dest, cpu.GetPair(src))
	case OP_CALL:
		cpu.call(dest, src, b)
	case OP_RET:
		cpu.ret(dest, b)
	case OP_LOAD:
		cpu.Set(dest, b.Read8(cpu.GetPair(src)))
	case OP_STORE:
		b.Write8(cpu.GetPair(dest), cpu.Get(src))
	case OP_PUSH:
		b.Write8(cpu.Sp(), cpu.Get(src))
		cpu.incReg(REG_SP, 1)
	case OP_POP:
		cpu.decReg(REG_SP, 1)
		cpu.Set(dest, b.Read8(cpu.Sp()))
	case OP_AND:
		cpu.logic(dest, cpu.Get(dest)&cpu.Get(src))
	case OP_OR:
		cpu.logic(dest, cpu.Get(dest)|cpu.Get(src))
	case OP_XOR:
		cpu.logic(dest, cpu.Get(dest)^cpu.Get(src))
	case OP_NOT:
		cpu.logic(dest, ^cpu.Get(src))
	case OP_ADD:
		cpu.addCarry(dest, cpu.Get(dest), cpu.Get(src))
	case OP_SUB:
		cpu.addCarry(dest, cpu.Get(dest), ^cpu.Get(src))
	case OP_RSUB:
		cpu.addCarry(dest, ^cpu.Get(dest), cpu.Get(src))
	case OP_NEG:
		cpu.logic(dest, -cpu.Get(src))
	case OP_SHL:
		cpu.Set(dest, shl(cpu.Get(dest), cpu.Get(src)))
	case OP_SHR:
		cpu.Set(dest, shr(cpu.Get(dest), cpu.Get(src)))
	case OP_SHLIMM:
		cpu.Set(dest, shl(cpu.Get(dest), src))
	case OP_SHRIMM:
		cpu.Set(dest, shr(cpu.Get(dest), src))
	case OP_INC:
		cpu.add(dest, cpu.Get(dest), src, 0)
	case OP_DEC:
		cpu.add(dest, cpu.Get(dest), ^src, 1)
	case OP_SET:
		cpu.SetFlag(Flag(arg))
	case OP_CLEAR:
		cpu.ClearFlag(Flag(arg))
	}
}

// cmp compares two registers as unsigned values. NEG and ZERO reflect the
// right-hand operand, so 'cmp rN rN' tests rN against zero.
func (cpu *Cpu) cmp(dest, src uint8) {
	lhs, rhs := cpu.Get(dest), cpu.Get(src)
	cpu.putFlag(FLAG_GT, lhs > rhs)
	cpu.putFlag(FLAG_EQ, lhs == rhs)
	cpu.putFlag(FLAG_LT, lhs < rhs)
	cpu.updateLogicFlags(rhs)
}

// call pushes the pair dest and loads it from the pair src.
func (cpu *Cpu) call(dest, src uint8, b bus.Bus) {
	bus.WriteLeWord(b, cpu.Sp(), cpu.GetPair(dest))
	cpu.incReg(REG_SP, 2)
	cpu.SetPair(dest, cpu.GetPair(src))
}

// ret pops the pair dest.
func (cpu *Cpu) ret(dest uint8, b bus.Bus) {
	cpu.decReg(REG_SP, 2)
	cpu.SetPair(dest, bus.ReadLeWord(b, cpu.Sp()))
}

func (cpu *Cpu) logic(dest uint8, value uint8) {
	cpu.updateLogicFlags(value)
	cpu.Set(dest, value)
}

func (cpu *Cpu) add(dest uint8, lhs, rhs, carry uint8) {
	sum := uint16(lhs) + uint16(rhs) + uint16(carry)
	cpu.updateMathFlags(sum)
	cpu.Set(dest, uint8(sum))
}

func (cpu *Cpu) addCarry(dest uint8, lhs, rhs uint8) {
	cpu.add(dest, lhs, rhs, uint8(cpu.Flag(FLAG_CARRY)))
}

// shl shifts left; shifts of 8 or more clear the value.
func shl(value, amount uint8) uint8 {
	if amount >= 8 {
		return 0
	}
	return value << amount
}

// shr shifts right; shifts of 8 or more clear the value.
func shr(value, amount uint8) uint8 {
	if amount >= 8 {
		return 0
	}
	return value >> amount
}
