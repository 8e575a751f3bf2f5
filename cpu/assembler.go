// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/melo/bus"
	"github.com/ezrec/melo/internal"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Assembler is a single pass macro assembler for the Melo CPU.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of jump labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansion int // Count of macro expansions, for '@' local labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to register indices.
var regMap = map[string]uint8{
	"pc":   REG_PC,
	"sp":   REG_SP,
	"flag": REG_FLAG,
	"a0":   REG_A0,
	"a1":   REG_A1,
	"a2":   REG_A2,
}

func init() {
	for n := range REG_COUNT {
		regMap[fmt.Sprintf("r%d", n)] = uint8(n)
	}
}

// flagMap maps flag names to flag masks.
var flagMap = map[string]Flag{
	"cond":  FLAG_COND,
	"halt":  FLAG_HALT,
	"gt":    FLAG_GT,
	"eq":    FLAG_EQ,
	"lt":    FLAG_LT,
	"neg":   FLAG_NEG,
	"zero":  FLAG_ZERO,
	"carry": FLAG_CARRY,
}

// selectorMap maps mnemonics to instruction selectors.
var selectorMap = map[string]Selector{}

func init() {
	for n := range OP_MASK + 1 {
		selectorMap[Selector(n).String()] = Selector(n)
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}

	value, err = strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if invert {
		value = ^value
	}

	return
}

// byteOf returns the 8-bit value of a word. Negative values down to -128
// are stored in two's complement.
func (asm *Assembler) byteOf(word string) (value uint8, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if v64 < -0x80 || v64 > 0xff {
		err = ErrValueRange
		return
	}
	value = uint8(v64)
	return
}

// wordOf returns the 16-bit value of a word.
func (asm *Assembler) wordOf(word string) (value uint16, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if v64 < -0x8000 || v64 > 0xffff {
		err = ErrValueRange
		return
	}
	value = uint16(v64)
	return
}

// flagsOf returns the flag mask of '|' separated flag names or values.
func (asm *Assembler) flagsOf(words ...string) (mask Flag, err error) {
	if len(words) == 0 {
		err = ErrOpcodeValueMissing
		return
	}

	for _, word := range words {
		for _, name := range strings.Split(word, "|") {
			if len(name) == 0 {
				continue
			}
			flag, ok := flagMap[strings.ToLower(name)]
			if !ok {
				var value uint8
				value, err = asm.byteOf(name)
				if err != nil {
					err = ErrParseFlag(name)
					return
				}
				flag = Flag(value)
			}
			mask |= flag
		}
	}

	return
}

// isLabel returns true if the word could only be a label reference.
func isLabel(word string) bool {
	if _, ok := regMap[word]; ok {
		return false
	}
	first := word[0]
	return first == '_' || first == '.' || (first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z')
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	err = nil
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
)

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentPc()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansion++
		local := fmt.Sprintf("%v_%v_", name, asm.expansion)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, macro.LineNo+n)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentPc gets the address of the next assembled byte.
func (asm *Assembler) currentPc() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Pc + last.Len()
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.expansion = 0
	asm.Equate = maps.Collect(internal.IterSeq2Concat(Defines(), bus.Defines()))
	asm.Equate["LINENO"] = "0"
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	if asm.currentPc() > bus.RAM_SIZE {
		err = ErrProgramSize
		return
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		pc, ok := asm.Label[label]
		if !ok {
			line = strings.Join(op.Words, " ")
			lineno = op.LineNo
			err = ErrLabelMissing(label)
			return
		}
		op.link(uint16(pc))
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// register returns the register index named by word.
func (asm *Assembler) register(word string) (reg uint8, err error) {
	reg, ok := regMap[strings.ToLower(word)]
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// regOrByte encodes a register, or an 8-bit immediate passed through a1.
func (asm *Assembler) regOrByte(word string) (reg uint8, imms []uint8, err error) {
	reg, err = asm.register(word)
	if err == nil {
		return
	}

	var value uint8
	value, err = asm.byteOf(word)
	if err != nil {
		if _, ok := err.(ErrParseNumber); ok {
			err = ErrParseValue(word)
		}
		return
	}

	reg = REG_A1
	imms = []uint8{value}
	return
}

// pairOrWord encodes a register pair, or a 16-bit immediate (or label)
// passed through the a1/a2 pair.
func (asm *Assembler) pairOrWord(word string) (reg uint8, imms []uint8, label string, err error) {
	reg, err = asm.register(word)
	if err == nil {
		return
	}

	reg = REG_A1
	if isLabel(word) {
		label = word
		imms = []uint8{0, 0}
		err = nil
		return
	}

	var value uint16
	value, err = asm.wordOf(word)
	if err != nil {
		if _, ok := err.(ErrParseNumber); ok {
			err = ErrParseValue(word)
		}
		return
	}

	imms = []uint8{uint8(value), uint8(value >> 8)}
	return
}

// nibbleOf returns a 4-bit immediate.
func (asm *Assembler) nibbleOf(word string) (value uint8, err error) {
	value, err = asm.byteOf(word)
	if err != nil {
		return
	}
	if value > REG_MASK {
		err = ErrValueRange
	}
	return
}

// wantArgs checks the operand count of an instruction.
func wantArgs(words []string, count int) (err error) {
	switch {
	case len(words) < count:
		err = ErrOpcodeValueMissing
	case len(words) > count:
		err = ErrOpcodeExtraArgs
	}
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []Code
	var data []uint8
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(codes) == 0 && len(data) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Pc: asm.currentPc(), Words: initial_words, Codes: codes, Data: data, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	// Directives
	switch words[0] {
	case ".byte":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var value uint8
			value, err = asm.byteOf(word)
			if err != nil {
				return
			}
			data = append(data, value)
		}
		return
	case ".word":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) == 2 && isLabel(words[1]) {
			data = []uint8{0, 0}
			label = words[1]
			return
		}
		for _, word := range words[1:] {
			var value uint16
			value, err = asm.wordOf(word)
			if err != nil {
				return
			}
			data = append(data, uint8(value), uint8(value>>8))
		}
		return
	case ".org":
		if len(words) != 2 {
			err = ErrOrgSyntax
			return
		}
		var value uint16
		value, err = asm.wordOf(words[1])
		if err != nil {
			return
		}
		pc := asm.currentPc()
		if int(value) < pc {
			err = ErrOrgBackwards
			return
		}
		data = make([]uint8, int(value)-pc)
		return
	}

	predicated := false
	if words[0] == "?" {
		predicated = true
		words = words[1:]
		if len(words) == 0 {
			err = ErrInstructionInvalid
			return
		}
	}

	// Alternate syntax substitutions
	switch {
	case len(words) == 1 && words[0] == "return":
		// return => ret pc
		words = []string{"ret", "pc"}
	case len(words) == 1 && words[0] == "ret":
		words = []string{"ret", "pc"}
	case len(words) == 1 && words[0] == "halt":
		// halt => set halt
		words = []string{"set", "halt"}
	case len(words) == 2 && words[0] == "jump":
		// jump TARGET => mov16 pc TARGET
		words = []string{"mov16", "pc", words[1]}
	case len(words) == 2 && words[0] == "call":
		// call TARGET => call pc TARGET
		words = []string{"call", "pc", words[1]}
	default:
		// unchanged
	}

	sel, ok := selectorMap[strings.ToLower(words[0])]
	if !ok {
		err = ErrInstructionInvalid
		return
	}
	args := words[1:]

	var a0 uint8
	var imms []uint8

	switch sel.Form() {
	case FORM_NONE:
		err = wantArgs(args, 0)
		if err != nil {
			return
		}
		codes = append(codes, MakeCode(predicated, sel))
		return
	case FORM_MASK:
		var mask Flag
		mask, err = asm.flagsOf(args...)
		if err != nil {
			return
		}
		a0 = uint8(mask)
	case FORM_REGS:
		err = wantArgs(args, 2)
		if err != nil {
			return
		}
		var dest, src uint8
		dest, err = asm.register(args[0])
		if err != nil {
			return
		}
		src, imms, err = asm.regOrByte(args[1])
		if err != nil {
			return
		}
		a0 = Nibbles(dest, src)
	case FORM_PAIRS:
		err = wantArgs(args, 2)
		if err != nil {
			return
		}
		var dest, src uint8
		dest, err = asm.register(args[0])
		if err != nil {
			return
		}
		src, imms, label, err = asm.pairOrWord(args[1])
		if err != nil {
			return
		}
		a0 = Nibbles(dest, src)
	case FORM_STORE:
		err = wantArgs(args, 2)
		if err != nil {
			return
		}
		var dest, src uint8
		dest, imms, label, err = asm.pairOrWord(args[0])
		if err != nil {
			return
		}
		src, err = asm.register(args[1])
		if err != nil {
			return
		}
		a0 = Nibbles(dest, src)
	case FORM_NIBBLE:
		err = wantArgs(args, 2)
		if err != nil {
			return
		}
		var dest, src uint8
		dest, err = asm.register(args[0])
		if err != nil {
			return
		}
		src, err = asm.nibbleOf(args[1])
		if err != nil {
			return
		}
		a0 = Nibbles(dest, src)
	case FORM_SRC:
		err = wantArgs(args, 1)
		if err != nil {
			return
		}
		var src uint8
		src, imms, err = asm.regOrByte(args[0])
		if err != nil {
			return
		}
		a0 = Nibbles(0, src)
	case FORM_DEST:
		err = wantArgs(args, 1)
		if err != nil {
			return
		}
		var dest uint8
		dest, err = asm.register(args[0])
		if err != nil {
			return
		}
		a0 = Nibbles(dest, 0)
	default:
		err = ErrOpcodeInvalid
		return
	}

	codes = append(codes, MakeCode(predicated, sel, append([]uint8{a0}, imms...)...))

	return
}
