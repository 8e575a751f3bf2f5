package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and generated instructions.
type Opcode struct {
	LineNo    int
	Pc        int
	Words     []string
	Codes     []Code
	Data      []uint8
	LinkLabel string
}

// Len returns the number of bytes the line assembles to.
func (op *Opcode) Len() (size int) {
	for _, code := range op.Codes {
		size += code.Len()
	}
	return size + len(op.Data)
}

// Bytes returns the assembled bytes of the line.
func (op *Opcode) Bytes() (data []uint8) {
	for _, code := range op.Codes {
		data = append(data, code.Bytes()...)
	}
	return append(data, op.Data...)
}

// link patches the trailing 16-bit immediate of the line with pc.
func (op *Opcode) link(pc uint16) {
	var imm []uint8
	if len(op.Codes) > 0 {
		imm = op.Codes[len(op.Codes)-1].Args
	} else {
		imm = op.Data
	}
	if len(imm) < 2 {
		return
	}
	imm[len(imm)-2] = uint8(pc)
	imm[len(imm)-1] = uint8(pc >> 8)
}

// Program is an assembled program listing.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the listing line containing an address.
type Debug struct {
	*Opcode
	Index int // Byte offset of the address within the line.
}

// Debug returns the listing line containing pc. The Opcode is nil if pc
// lies outside the program.
func (prog *Program) Debug(pc uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(pc) >= op.Pc && int(pc) < op.Pc+op.Len() {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(pc) - op.Pc,
			}
			break
		}
	}

	return
}

// Size returns the number of bytes spanned by the program.
func (prog *Program) Size() int {
	if len(prog.Opcodes) == 0 {
		return 0
	}
	last := &prog.Opcodes[len(prog.Opcodes)-1]
	return last.Pc + last.Len()
}

// Binary returns the memory image of the program, starting at address 0.
func (prog *Program) Binary() (bins []uint8) {
	bins = make([]uint8, prog.Size())
	for n := range prog.Opcodes {
		op := &prog.Opcodes[n]
		copy(bins[op.Pc:], op.Bytes())
	}

	return
}

// Codes iterates over the instructions of the program and their addresses.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(pc uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			pc := uint16(op.Pc)
			for _, code := range op.Codes {
				if !yield(pc, code) {
					return
				}
				pc += uint16(code.Len())
			}
		}
	}
}
