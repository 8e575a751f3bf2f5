package cpu

import (
	"fmt"

	"github.com/ezrec/melo/bus"
)

// Selector is the 5-bit instruction selector of an opcode byte.
type Selector uint8

//go:generate go tool stringer -linecomment -type=Selector
const (
	OP_NOP    = Selector(0x00) // nop
	OP_CMP    = Selector(0x01) // cmp
	OP_ANY    = Selector(0x02) // any
	OP_ALL    = Selector(0x03) // all
	OP_SWAP   = Selector(0x04) // swap
	OP_REV    = Selector(0x05) // rev
	OP_ZEROS  = Selector(0x06) // zeros
	OP_ONES   = Selector(0x07) // ones
	OP_MOV    = Selector(0x08) // mov
	OP_MOV16  = Selector(0x09) // mov16
	OP_CALL   = Selector(0x0a) // call
	OP_RET    = Selector(0x0b) // ret
	OP_LOAD   = Selector(0x0c) // load
	OP_STORE  = Selector(0x0d) // store
	OP_PUSH   = Selector(0x0e) // push
	OP_POP    = Selector(0x0f) // pop
	OP_AND    = Selector(0x10) // and
	OP_OR     = Selector(0x11) // or
	OP_XOR    = Selector(0x12) // xor
	OP_NOT    = Selector(0x13) // not
	OP_ADD    = Selector(0x14) // add
	OP_SUB    = Selector(0x15) // sub
	OP_RSUB   = Selector(0x16) // rsub
	OP_NEG    = Selector(0x17) // neg
	OP_SHL    = Selector(0x18) // shl
	OP_SHR    = Selector(0x19) // shr
	OP_SHLIMM = Selector(0x1a) // shlimm
	OP_SHRIMM = Selector(0x1b) // shrimm
	OP_INC    = Selector(0x1c) // inc
	OP_DEC    = Selector(0x1d) // dec
	OP_SET    = Selector(0x1e) // set
	OP_CLEAR  = Selector(0x1f) // clear

	OP_MASK = 0x1f // Mask of the selector bits.
)

// Form is the operand layout an instruction expects in a0.
type Form int

const (
	FORM_NONE   = Form(0) // No operands.
	FORM_REGS   = Form(1) // dest/src register nibbles.
	FORM_PAIRS  = Form(2) // dest/src with src naming a register pair.
	FORM_NIBBLE = Form(3) // dest register, src 4-bit immediate.
	FORM_MASK   = Form(4) // a0 is a flag mask.
	FORM_SRC    = Form(5) // src register only.
	FORM_DEST   = Form(6) // dest register (or pair) only.
	FORM_STORE  = Form(7) // dest register pair address, src register.
)

// Form returns the operand layout of the selector.
func (sel Selector) Form() Form {
	switch sel & OP_MASK {
	case OP_NOP:
		return FORM_NONE
	case OP_ANY, OP_ALL, OP_SET, OP_CLEAR:
		return FORM_MASK
	case OP_MOV16, OP_CALL, OP_LOAD:
		return FORM_PAIRS
	case OP_STORE:
		return FORM_STORE
	case OP_SHLIMM, OP_SHRIMM, OP_INC, OP_DEC:
		return FORM_NIBBLE
	case OP_PUSH:
		return FORM_SRC
	case OP_RET, OP_POP:
		return FORM_DEST
	}
	return FORM_REGS
}

// Opcode byte layout.
const (
	OPCODE_ARGC_SHIFT = 6             // Operand count, 0-3.
	OPCODE_PREDICATED = uint8(1 << 5) // Execute only if COND is set.
)

// Code is a single decoded instruction: the opcode byte and its operands.
type Code struct {
	Opcode uint8
	Args   []uint8
}

// MakeCode creates an instruction. At most three operand bytes are allowed.
func MakeCode(predicated bool, sel Selector, args ...uint8) Code {
	if len(args) > 3 {
		panic("melo: more than three operand bytes")
	}

	opcode := uint8(len(args))<<OPCODE_ARGC_SHIFT | uint8(sel&OP_MASK)
	if predicated {
		opcode |= OPCODE_PREDICATED
	}

	return Code{Opcode: opcode, Args: args}
}

// Nibbles packs a dest and src register (or immediate) into an a0 byte.
func Nibbles(dest, src uint8) uint8 {
	return (dest&REG_MASK)<<4 | (src & REG_MASK)
}

// Decode reads the instruction at pc without changing any state.
func Decode(b bus.Bus, pc uint16) (code Code) {
	code.Opcode = b.Read8(pc)
	argc := int(code.Opcode >> OPCODE_ARGC_SHIFT)
	for n := range argc {
		code.Args = append(code.Args, b.Read8(pc+1+uint16(n)))
	}
	return
}

// ArgCount returns the number of operand bytes following the opcode.
func (code Code) ArgCount() int {
	return int(code.Opcode >> OPCODE_ARGC_SHIFT)
}

// Predicated returns true if the instruction only executes when COND is set.
func (code Code) Predicated() bool {
	return code.Opcode&OPCODE_PREDICATED != 0
}

// Selector returns the instruction selector.
func (code Code) Selector() Selector {
	return Selector(code.Opcode & OP_MASK)
}

// Len returns the encoded length in bytes.
func (code Code) Len() int {
	return 1 + code.ArgCount()
}

// Bytes returns the encoded instruction.
func (code Code) Bytes() []uint8 {
	return append([]uint8{code.Opcode}, code.Args...)
}

// regNames are the assembler names of the registers.
var regNames = [REG_COUNT]string{
	"pc", "r1", "sp", "r3", "flag", "a0", "a1", "a2",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	sel := code.Selector()

	out = sel.String()
	if code.Predicated() {
		out = "? " + out
	}

	args := code.Args
	if len(args) == 0 {
		if sel.Form() != FORM_NONE {
			// operands are whatever a0 held before.
			out += " -"
		}
		return
	}

	arg := args[0]
	args = args[1:]
	dest, src := arg>>4, arg&REG_MASK

	switch sel.Form() {
	case FORM_NONE:
		args = code.Args
	case FORM_MASK:
		if arg == 0 {
			out += " 0"
		} else {
			out += " " + Flag(arg).String()
		}
	case FORM_SRC:
		out += " " + regNames[src]
	case FORM_DEST:
		out += " " + regNames[dest]
	case FORM_NIBBLE:
		out += fmt.Sprintf(" %v %d", regNames[dest], src)
	case FORM_PAIRS:
		out += " " + regNames[dest]
		if src == REG_A1 && len(args) == 2 {
			out += fmt.Sprintf(" %#04x", uint16(args[1])<<8|uint16(args[0]))
			args = nil
		} else {
			out += " " + regNames[src]
		}
	case FORM_STORE:
		if dest == REG_A1 && len(args) == 2 {
			out += fmt.Sprintf(" %#04x", uint16(args[1])<<8|uint16(args[0]))
			args = nil
		} else {
			out += " " + regNames[dest]
		}
		out += " " + regNames[src]
	case FORM_REGS:
		out += " " + regNames[dest]
		if src == REG_A1 && len(args) >= 1 {
			out += fmt.Sprintf(" %#02x", args[0])
			args = args[1:]
		} else {
			out += " " + regNames[src]
		}
	}

	if len(args) != 0 {
		out += fmt.Sprintf(" % x", args)
	}

	return
}
