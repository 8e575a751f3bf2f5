// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/ezrec/melo/bus"
	"github.com/ezrec/melo/cpu"
	"github.com/ezrec/melo/emulator"
)

// step runs the emulator one instruction per key press. 'q' quits.
func step(emu *emulator.Emulator, limit int) (err error) {
	fd := int(os.Stdin.Fd())
	newline := "\n"
	if term.IsTerminal(fd) {
		var state *term.State
		state, err = term.MakeRaw(fd)
		if err != nil {
			return
		}
		defer term.Restore(fd, state)
		newline = "\r\n"
	}

	show := func() {
		text := fmt.Sprintf("line %d: %v\n%v\n", emu.LineNo(), emu.Code(), emu.Cpu.String())
		fmt.Print(strings.ReplaceAll(text, "\n", newline))
	}

	key := make([]byte, 1)
	for limit <= 0 || emu.Ticks < limit {
		show()
		_, err = os.Stdin.Read(key)
		if err != nil {
			return
		}
		if key[0] == 'q' || key[0] == 0x03 {
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			show()
			return
		}
	}

	err = emulator.ErrTickLimit
	return
}

func main() {
	var compile string
	var input string
	var output string
	var demo string
	var rom bool
	var random bool
	var seed uint64
	var stepping bool
	var bench bool
	var limit int
	var verbose bool

	flag.StringVar(&compile, "c", "", ".ms file to assemble")
	flag.StringVar(&input, "i", "", "Raw binary image to load")
	flag.StringVar(&output, "o", "", "Write the assembled image, do not execute")
	flag.StringVar(&demo, "demo", "", fmt.Sprintf("Built-in demo to run %v", emulator.DemoNames()))
	flag.BoolVar(&rom, "rom", false, "Write protect the image, the rest of memory stays RAM")
	flag.BoolVar(&random, "random", false, "Start from a random CPU and memory state")
	flag.Uint64Var(&seed, "seed", 0, "Seed for -random (0 uses the clock)")
	flag.BoolVar(&stepping, "step", false, "Single step, one instruction per key")
	flag.BoolVar(&bench, "bench", false, "Report ticks and ticks per second")
	flag.IntVar(&limit, "limit", 0, "Tick limit (0 is unlimited)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Rom = rom

	switch {
	case len(demo) != 0:
		source, err := emulator.Demo(demo)
		if err != nil {
			log.Fatalf("%v: %v", os.Args[0], err)
		}
		err = emu.Assemble(strings.NewReader(source))
		if err != nil {
			log.Fatalf("%v: %v", demo, err)
		}
	case len(compile) != 0:
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		err = emu.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	case len(input) != 0:
		image, err := os.ReadFile(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		err = emu.LoadImage(image)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
	default:
		log.Fatalf("%v: one of -c, -i or -demo is required", os.Args[0])
	}

	if len(output) != 0 {
		err := os.WriteFile(output, emu.Program.Binary(), 0o644)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	if random {
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		rng := rand.New(rand.NewPCG(seed, seed))
		emu.Cpu = cpu.NewRandomCpu(rng)
		emu.Memory = bus.NewRandomRam(bus.RAM_SIZE, rng)
		if verbose {
			log.Printf("random: seed %d", seed)
		}
	}

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	if stepping {
		err = step(emu, limit)
	} else {
		err = emu.Run(limit)
	}
	elapsed := time.Since(start)

	fmt.Println(emu.Cpu.String())

	if bench {
		rate := float64(emu.Ticks) / elapsed.Seconds()
		fmt.Printf("%d ticks in %v (%.0f ticks/s)\n", emu.Ticks, elapsed, rate)
	}

	if err != nil {
		log.Fatal(err)
	}
}
