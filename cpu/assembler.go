// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Assembler is a single pass assembler for the simulator's instruction set.
//
// Lines are split on single spaces. A line whose first word starts with '.'
// is a directive: either a jump label, or '.equ NAME VALUE'. All other lines
// are instructions, decoded once into a Code.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of jump labels to opcode indexes.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// opMap maps mnemonics to operations.
var opMap = map[string]CodeOp{
	"add":  OP_ADD,
	"sub":  OP_SUB,
	"mul":  OP_MUL,
	"div":  OP_DIV,
	"addi": OP_ADDI,
	"subi": OP_SUBI,
	"li":   OP_LI,
	"lw":   OP_LW,
	"sw":   OP_SW,
	"beq":  OP_BEQ,
	"bne":  OP_BNE,
	"blt":  OP_BLT,
	"bgt":  OP_BGT,
	"bge":  OP_BGE,
	"jal":  OP_JAL,
	"ret":  OP_RET,
}

// equate returns the value of word if it is an equate, or word itself.
func (asm *Assembler) equate(word string) string {
	value, ok := asm.Equate[word]
	if ok {
		return value
	}
	return word
}

// valueOf returns the value of an immediate word.
func (asm *Assembler) valueOf(word string) (value int32, err error) {
	word = asm.equate(word)

	v64, err := strconv.ParseInt(word, 10, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 < math.MinInt32 || v64 > math.MaxUint32 {
		err = ErrImmediateRange(word)
		return
	}

	value = int32(uint32(v64))
	return
}

// register returns the index of an x<N> register word.
func (asm *Assembler) register(word string) (reg CodeReg, err error) {
	word = asm.equate(word)

	digits, ok := strings.CutPrefix(word, "x")
	if !ok {
		err = ErrParseRegister(word)
		return
	}

	index, perr := strconv.ParseUint(digits, 10, 32)
	if perr != nil {
		err = ErrParseRegister(word)
		return
	}

	if index >= REGISTER_COUNT {
		err = ErrRegisterBounds(index)
		return
	}

	reg = CodeReg(index)
	return
}

// address decodes an offset(register) word.
func (asm *Assembler) address(word string) (offset int32, base CodeReg, err error) {
	off, reg, ok := strings.Cut(word, "(")
	if !ok || !strings.HasSuffix(reg, ")") {
		err = ErrParseAddress(word)
		return
	}

	offset, err = asm.valueOf(off)
	if err != nil {
		err = errors.Join(ErrParseAddress(word), err)
		return
	}

	base, err = asm.register(strings.TrimSuffix(reg, ")"))
	if err != nil {
		err = errors.Join(ErrParseAddress(word), err)
		return
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "expr"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, perr := strconv.ParseInt(str, 10, 64)
		if perr != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrImmediateRange(expr)
		return
	}
	return
}

// parenExpand replaces each $(...) in the line with its decimal value.
func (asm *Assembler) parenExpand(line string) (out string, err error) {
	for {
		start := strings.Index(line, "$(")
		if start < 0 {
			break
		}

		end := -1
		depth := 0
		for n := start + 1; n < len(line) && end < 0; n++ {
			switch line[n] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					end = n
				}
			}
		}
		if end < 0 {
			err = ErrParseExpression(line[start+2:])
			return
		}

		var value int64
		value, err = asm.parenEval(line[start+2 : end])
		if err != nil {
			return
		}

		out += line[:start] + strconv.FormatInt(value, 10)
		line = line[end+1:]
	}

	out += line
	return
}

// parseDirective handles a '.' line: a label, or an equate.
func (asm *Assembler) parseDirective(words []string) (err error) {
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
		asm.Equate[words[1]] = asm.equate(words[2])
		return
	}

	if len(words) != 1 {
		err = ErrLabelSyntax
		return
	}

	label := words[0]
	_, ok := asm.Label[label]
	if ok {
		err = ErrLabelDuplicate
		return
	}

	asm.Label[label] = asm.currentIp()
	return
}

// parseLine splits a single trimmed line into words. Directives are
// consumed here, and yield no words.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = strconv.Itoa(lineno)

	line, err = asm.parenExpand(line)
	if err != nil {
		return
	}

	words = strings.Split(line, " ")

	if strings.HasPrefix(words[0], ".") {
		err = asm.parseDirective(words)
		words = nil
		return
	}

	return
}

// currentIp gets the index the next instruction will occupy.
func (asm *Assembler) currentIp() int {
	return len(asm.Opcode)
}

// parseWords decodes the words of an instruction line into an opcode.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	if len(words) == 0 {
		return
	}

	op, ok := opMap[words[0]]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	args := words[1:]
	need := op.Form().Arity()
	if len(args) < need {
		err = ErrOpcodeMissing
		return
	}
	if len(args) > need {
		err = ErrOpcodeExtraArgs
		return
	}

	code := Code{Op: op}
	var label string

	switch op.Form() {
	case FORM_RRR:
		if code.Rd, err = asm.register(args[0]); err != nil {
			return
		}
		if code.Rs1, err = asm.register(args[1]); err != nil {
			return
		}
		if code.Rs2, err = asm.register(args[2]); err != nil {
			return
		}
	case FORM_RRI:
		if code.Rd, err = asm.register(args[0]); err != nil {
			return
		}
		if code.Rs1, err = asm.register(args[1]); err != nil {
			return
		}
		if code.Imm, err = asm.valueOf(args[2]); err != nil {
			return
		}
	case FORM_RI:
		if code.Rd, err = asm.register(args[0]); err != nil {
			return
		}
		if code.Imm, err = asm.valueOf(args[1]); err != nil {
			return
		}
	case FORM_RM:
		if code.Rd, err = asm.register(args[0]); err != nil {
			return
		}
		if code.Imm, code.Rs1, err = asm.address(args[1]); err != nil {
			return
		}
	case FORM_RRL:
		if code.Rs1, err = asm.register(args[0]); err != nil {
			return
		}
		if code.Rs2, err = asm.register(args[1]); err != nil {
			return
		}
		label = args[2]
	case FORM_RL:
		if code.Rd, err = asm.register(args[0]); err != nil {
			return
		}
		label = args[1]
	case FORM_NONE:
		// no operands
	}

	opcode := Opcode{LineNo: lineno, Ip: asm.currentIp(), Words: words, Code: code, LinkLabel: label}
	asm.Opcode = append(asm.Opcode, opcode)

	return
}

// reset clears all state from a prior assembly.
func (asm *Assembler) reset() {
	asm.Opcode = asm.Opcode[:0]
	if asm.Label == nil {
		asm.Label = make(map[string]int, 16)
	}
	clear(asm.Label)

	asm.Equate = maps.Clone(_cpu_defines)
	asm.Equate["LINENO"] = "0"
	asm.Equate["MEMORY_SIZE"] = fmt.Sprintf("%d", MEMORY_SIZE)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}
}

// Assemble assembles an ordered sequence of raw source lines into a linked
// Program. Lines are numbered from 1 by their position in lines.
func (asm *Assembler) Assemble(lines []string) (prog *Program, err error) {
	asm.reset()

	for n, text := range lines {
		lineno := n + 1
		line := strings.TrimSpace(text)
		if len(line) == 0 {
			continue
		}

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, line)
		}

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err == nil {
			err = asm.parseWords(words, lineno)
		}
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
			return
		}
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		ip, ok := asm.Label[label]
		if !ok {
			err = &ErrSyntax{LineNo: op.LineNo, Line: strings.Join(op.Words, " "), Err: ErrLabelMissing(label)}
			return
		}
		op.Code.Target = ip
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
		Label:   maps.Clone(asm.Label),
	}

	return
}

// Parse loads an input stream, and assembles it into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	lines, err := Load(input)
	if err != nil {
		return
	}

	return asm.Assemble(lines)
}
