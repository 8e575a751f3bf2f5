// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"slices"

	"github.com/ezrec/melo/bus"
	"github.com/ezrec/melo/cpu"
	"github.com/ezrec/melo/internal"
)

const (
	STACK_BASE = 0x8000 // Stack page used by the demo programs.
)

var _emulator_defines = map[string]string{
	"STACK_BASE": fmt.Sprintf("%#x", STACK_BASE),
}

// Emulator state. CPU + memory + program listing.
type Emulator struct {
	Verbose bool         // If set, enables verbose logging.
	Rom     bool         // If set, the program image is write protected.
	Cpu     cpu.Cpu      // CPU simulation.
	Memory  bus.Bus      // Memory the CPU is attached to.
	Program *cpu.Program // Reference to the currently running program listing.
	Ticks   int          // Instructions stepped since the last reset.
}

// NewEmulator creates a new emulator, with a zeroed RAM.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Memory:  bus.NewRam(bus.RAM_SIZE),
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		cpu.Defines(),
		bus.Defines(),
	)
}

// Assemble parses source text into the emulator's program.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for name, value := range maps.All(_emulator_defines) {
		asm.Predefine(name, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	if prog.Size() > bus.RAM_SIZE {
		err = ErrImageSize
		return
	}

	emu.Program = prog

	return
}

// LoadImage replaces the program with a raw memory image.
func (emu *Emulator) LoadImage(image []uint8) (err error) {
	if len(image) > bus.RAM_SIZE {
		err = ErrImageSize
		return
	}

	prog := &cpu.Program{}
	if len(image) > 0 {
		prog.Opcodes = []cpu.Opcode{{Data: slices.Clone(image)}}
	}
	emu.Program = prog

	return
}

// ram returns the RAM backing the memory, creating one if needed.
func (emu *Emulator) ram() *bus.Ram {
	switch mem := emu.Memory.(type) {
	case *bus.Ram:
		return mem
	case *bus.Overlay:
		return mem.Ram
	}
	return bus.NewRam(bus.RAM_SIZE)
}

// Reset loads the program image into memory and resets the CPU.
//
// An existing RAM is kept, so any contents outside of the image survive.
// With Rom set, the image is overlaid write protected on that RAM.
func (emu *Emulator) Reset() (err error) {
	if emu.Program == nil {
		emu.Program = &cpu.Program{}
	}

	image := emu.Program.Binary()
	if len(image) > bus.RAM_SIZE {
		err = ErrImageSize
		return
	}

	if emu.Verbose {
		log.Printf("reset: %d byte image, rom %v", len(image), emu.Rom)
	}

	ram := emu.ram()
	if emu.Rom {
		emu.Memory = bus.NewOverlay(bus.NewRom(image), ram)
	} else {
		ram.Load(0, image)
		emu.Memory = ram
	}

	emu.Cpu.Reset()
	emu.Ticks = 0

	return
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Cpu.Pc())
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Code returns the instruction at the program counter.
func (emu *Emulator) Code() cpu.Code {
	if emu.Memory == nil {
		return cpu.Code{}
	}

	return cpu.Decode(emu.Memory, emu.Cpu.Pc())
}

// Tick performs a single tick of the emulator. done is set once the CPU
// has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	if emu.Memory == nil {
		err = ErrMemoryMissing
		return
	}

	if emu.Cpu.Halted() {
		done = true
		return
	}

	if emu.Verbose {
		log.Printf("%04x: %v", emu.Cpu.Pc(), emu.Code())
	}

	emu.Cpu.Tick(emu.Memory)
	emu.Ticks++

	done = emu.Cpu.Halted()

	return
}

// Run ticks until the CPU halts. If limit is positive, at most limit
// ticks are performed before ErrTickLimit is returned.
func (emu *Emulator) Run(limit int) (err error) {
	for n := 0; limit <= 0 || n < limit; n++ {
		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}

	err = &ErrRuntime{LineNo: emu.LineNo(), Err: ErrTickLimit}
	return
}
