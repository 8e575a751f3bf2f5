package emulator

import (
	"bytes"
	"errors"
	"log"
	"math/rand/v2"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/melo/bus"
	"github.com/ezrec/melo/cpu"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.False(emu.Rom)
	assert.Equal(cpu.NewCpu(), emu.Cpu)
	assert.NotNil(emu.Memory)
	assert.Equal(0, emu.Program.Size())

	defines := map[string]string{}
	for name, value := range emu.Defines() {
		defines[name] = value
	}
	assert.Equal("0x8000", defines["STACK_BASE"])
	assert.Equal("0x10000", defines["RAM_SIZE"])
	assert.Equal("0x40", defines["FLAG_HALT"])

	// Empty memory executes nops forever.
	assert.NoError(emu.Reset())
	done, err := emu.Tick()
	assert.NoError(err)
	assert.False(done)
	assert.Equal(uint16(1), emu.Cpu.Pc())
	assert.Equal(1, emu.Ticks)
}

// doRunSingle steps through straight line code, checking the listing
// follows the program counter.
func doRunSingle(emu *Emulator, program []string, t *testing.T) {
	assert := assert.New(t)

	err := emu.Assemble(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	err = emu.Reset()
	assert.NoError(err)

	prog := emu.Program
	for _, op := range prog.Opcodes {
		here := program[op.LineNo-1]
		pc := uint16(op.Pc)
		for _, code := range op.Codes {
			assert.Equal(op.LineNo, emu.LineNo(), here)
			assert.Equal(pc, emu.Cpu.Pc(), here)
			assert.Equal(code, emu.Code(), here)
			debug := emu.Program.Debug(pc)
			assert.Equal(code, debug.Codes[0], here)
			done, err := emu.Tick()
			assert.NoError(err, here)
			if err != nil {
				t.Log(emu.Cpu.String())
				t.Fatalf("%v", err)
			}
			if done {
				return
			}
			pc += uint16(code.Len())
		}
	}
	t.Fatal("program did not halt")
}

// doRunBranch runs a program until it halts.
func doRunBranch(emu *Emulator, program string, t *testing.T) {
	assert := assert.New(t)

	err := emu.Assemble(strings.NewReader(program))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	err = emu.Reset()
	assert.NoError(err)

	err = emu.Run(100_000)
	assert.NoError(err)
	if err != nil {
		t.Log(emu.Cpu.String())
		t.Fatal(err)
	}
}

func TestEmulatorAdd(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := strings.Split(strings.TrimSpace(DEMO_ADD), "\n")

	doRunSingle(emu, program, t)

	assert.True(emu.Cpu.Halted())
	assert.Equal(uint8(0x89), emu.Cpu.Get(10))
	assert.Equal(cpu.Flag(0), emu.Cpu.Flag(cpu.FLAG_CARRY))
	assert.Equal(6, emu.Ticks)

	// Further ticks do nothing.
	state := emu.Cpu
	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.Equal(state, emu.Cpu)
	assert.Equal(6, emu.Ticks)
}

func TestEmulatorFactorial(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doRunBranch(emu, DEMO_FACTORIAL, t)

	assert.True(emu.Cpu.Halted())
	assert.Equal(uint8(120), emu.Cpu.Get(15))
	assert.Equal(uint8(0), emu.Cpu.Get(8))
	assert.Equal(uint16(STACK_BASE), emu.Cpu.Sp())
}

func TestEmulatorPredefine(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		"mov16 r8 STACK_BASE",
		"mov r10 $(RAM_SIZE >> 12)",
		"mov r11 $(LINENO)",
		"halt",
	}

	doRunSingle(emu, program, t)

	assert.Equal(uint16(0x8000), emu.Cpu.GetPair(8))
	assert.Equal(uint8(0x10), emu.Cpu.Get(10))
	assert.Equal(uint8(3), emu.Cpu.Get(11))
}

func TestEmulatorLabel(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := `
        mov16 sp STACK_BASE
        jump Part0
AddOneToR8:
        inc r8 1
        return
Part1:  mov r9 0x20
        jump Part2
Part0: AND_ALSO:
        mov r8 0x10
        jump Part1
Part2:
        call AddOneToR8
        call AddOneToR8

        mov r10 0x30
        mov r11 0x40
        halt
`

	doRunBranch(emu, program, t)

	assert.Equal(uint8(0x12), emu.Cpu.Get(8))
	assert.Equal(uint8(0x20), emu.Cpu.Get(9))
	assert.Equal(uint8(0x30), emu.Cpu.Get(10))
	assert.Equal(uint8(0x40), emu.Cpu.Get(11))
}

func TestEmulatorMacro(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := `
.macro SETADD rn a b
        mov rn a
        clear carry
        add rn b
.endm
        SETADD r8 8 8
.equ CONST_10 0x10
        SETADD r9 CONST_10 CONST_10
        SETADD r10 $(CONST_10 + CONST_10) r8
        SETADD r11 r10 r8
        halt
`

	doRunBranch(emu, program, t)

	assert.Equal(uint8(0x10), emu.Cpu.Get(8))
	assert.Equal(uint8(0x20), emu.Cpu.Get(9))
	assert.Equal(uint8(0x30), emu.Cpu.Get(10))
	assert.Equal(uint8(0x40), emu.Cpu.Get(11))
}

func TestEmulatorTickLimit(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.Assemble(strings.NewReader("loop: jump loop"))
	assert.NoError(err)
	assert.NoError(emu.Reset())

	err = emu.Run(10)
	assert.ErrorIs(err, ErrTickLimit)
	var rt *ErrRuntime
	if assert.True(errors.As(err, &rt)) {
		assert.Equal(1, rt.LineNo)
	}
	assert.Equal(10, emu.Ticks)

	// Exactly enough ticks to halt is not a limit error.
	err = emu.Assemble(strings.NewReader("nop\nhalt"))
	assert.NoError(err)
	assert.NoError(emu.Reset())
	assert.NoError(emu.Run(2))
	assert.True(emu.Cpu.Halted())
}

func TestEmulatorRom(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Rom = true
	program := `
        mov r8 0x55
        store data r8
        load r9 data
        halt
data:   .byte 0xaa
`

	doRunBranch(emu, program, t)

	assert.IsType(&bus.Overlay{}, emu.Memory)
	assert.Equal(uint8(0x55), emu.Cpu.Get(8))
	assert.Equal(uint8(0xaa), emu.Cpu.Get(9))

	emu.Rom = false
	doRunBranch(emu, program, t)

	assert.IsType(&bus.Ram{}, emu.Memory)
	assert.Equal(uint8(0x55), emu.Cpu.Get(9))
}

func TestEmulatorRomStack(t *testing.T) {
	assert := assert.New(t)

	// The stack lives in RAM above a write protected image.
	emu := NewEmulator()
	emu.Rom = true
	doRunBranch(emu, DEMO_FACTORIAL, t)

	assert.True(emu.Cpu.Halted())
	assert.Equal(uint8(120), emu.Cpu.Get(15))
	assert.Equal(uint16(STACK_BASE), emu.Cpu.Sp())
}

func TestEmulatorZero(t *testing.T) {
	assert := assert.New(t)

	emu := &Emulator{}
	assert.Equal(0, emu.LineNo())

	done, err := emu.Tick()
	assert.False(done)
	assert.ErrorIs(err, ErrMemoryMissing)

	assert.NoError(emu.Reset())
	assert.NotNil(emu.Memory)
	done, err = emu.Tick()
	assert.NoError(err)
	assert.False(done)
}

func TestEmulatorLoadImage(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	err := emu.LoadImage(make([]uint8, bus.RAM_SIZE+1))
	assert.ErrorIs(err, ErrImageSize)

	image := []uint8{
		0x88, 0x86, 0x20,
		0x88, 0x96, 0x69,
		0x48, 0xa8,
		0x5f, 0x01,
		0x54, 0xa9,
		0x5e, 0x40,
	}
	assert.NoError(emu.LoadImage(image))
	assert.Equal(image, emu.Program.Binary())
	assert.NoError(emu.Reset())
	assert.Equal(0, emu.LineNo())
	assert.NoError(emu.Run(0))
	assert.Equal(uint8(0x89), emu.Cpu.Get(10))

	assert.NoError(emu.LoadImage(nil))
	assert.Equal(0, emu.Program.Size())
}

func TestEmulatorRandom(t *testing.T) {
	assert := assert.New(t)

	rng := rand.New(rand.NewPCG(1, 2))

	emu := NewEmulator()
	emu.Cpu = cpu.NewRandomCpu(rng)
	emu.Memory = bus.NewRandomRam(bus.RAM_SIZE, rng)
	ram := emu.Memory.(*bus.Ram)
	tail := ram.Data[0x100]

	assert.NoError(emu.Assemble(strings.NewReader(DEMO_ADD)))
	assert.NoError(emu.Reset())

	// Image is loaded over the random contents, the rest survive.
	assert.Equal(emu.Program.Binary(), ram.Data[:emu.Program.Size()])
	assert.Equal(tail, ram.Data[0x100])
	assert.Equal(uint16(0), emu.Cpu.Pc())

	assert.NoError(emu.Run(0))
	assert.Equal(uint8(0x89), emu.Cpu.Get(10))
}

func TestEmulatorMemoryMissing(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Memory = nil

	_, err := emu.Tick()
	assert.ErrorIs(err, ErrMemoryMissing)
	assert.Equal(cpu.Code{}, emu.Code())
}

func TestEmulatorVerbose(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	emu := NewEmulator()
	emu.Verbose = true
	assert.NoError(emu.Assemble(strings.NewReader(DEMO_ADD)))
	assert.NoError(emu.Reset())
	assert.NoError(emu.Run(0))

	assert.Contains(buf.String(), "0000: mov r8 0x20")
	assert.Contains(buf.String(), "000c: set halt")
}

func TestDemo(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{"add", "factorial"}, DemoNames())

	source, err := Demo("factorial")
	assert.NoError(err)
	assert.Equal(DEMO_FACTORIAL, source)

	_, err = Demo("nothing")
	assert.ErrorIs(err, ErrDemoUnknown)
}
