// Package cpu implements the processor and assembler for the Melo fantasy console.
//
// The CPU consists of sixteen 8-bit registers: a 16-bit program counter (pc)
// and stack pointer (sp) held as little-endian register pairs, a flag byte,
// three operand scratch registers (a0-a2) loaded by every instruction fetch,
// and eight general-purpose registers (r8-r15). All 32 instructions may be
// predicated on the COND flag, which the 'any' and 'all' instructions set
// from the other flags.
//
// The CPU state is a plain value: copy it to take a snapshot, compare it
// with ==. Memory is not part of the state; a bus.Bus is lent to each Tick.
//
// The assembler provides a small assembly language for the Melo instruction
// set, supporting macros, labels, equates, and compile-time expression
// evaluation.
package cpu
