package emulator

import (
	"fmt"
	"maps"
	"slices"
)

// DEMO_ADD adds two bytes, and halts.
const DEMO_ADD = `; r10 = 0x20 + 0x69
        mov r8 0x20
        mov r9 0x69
        mov r10 r8
        clear carry
        add r10 r9
        set halt
`

// DEMO_FACTORIAL computes 5! into r15, multiplying by repeated addition.
const DEMO_FACTORIAL = `; r15 = N!
.equ N 5

        mov16 sp STACK_BASE
        mov r8 N
        mov r15 1
fact_loop:
        cmp r8 r8
        any zero
        ? halt
        mov r13 r15
        mov r14 r8
        call mul
        mov r15 r12
        dec r8 1
        jump fact_loop

; r12 = r13 * r14, destroys r14
mul:    mov r12 0
mul_loop:
        cmp r14 r14
        any zero
        ? return
        clear carry
        add r12 r13
        dec r14 1
        jump mul_loop
`

var demos = map[string]string{
	"add":       DEMO_ADD,
	"factorial": DEMO_FACTORIAL,
}

// Demo returns the source of a built-in demo program.
func Demo(name string) (source string, err error) {
	source, ok := demos[name]
	if !ok {
		err = fmt.Errorf("%w: %q", ErrDemoUnknown, name)
	}
	return
}

// DemoNames returns the sorted names of the built-in demos.
func DemoNames() []string {
	return slices.Sorted(maps.Keys(demos))
}
