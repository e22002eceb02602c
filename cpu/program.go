package cpu

import (
	"iter"
)

// Program is an assembled, linked instruction sequence.
type Program struct {
	Opcodes []Opcode
	Label   map[string]int // Map of jump labels to instruction indexes.
}

// Len returns the number of instructions.
func (prog *Program) Len() int {
	return len(prog.Opcodes)
}

// Debug returns the opcode at the instruction index, or nil.
func (prog *Program) Debug(pc int) (op *Opcode) {
	if pc >= 0 && pc < len(prog.Opcodes) {
		op = &prog.Opcodes[pc]
	}

	return
}

// Text returns the decoded instructions, for loading into a Cpu.
func (prog *Program) Text() (text []Code) {
	text = make([]Code, 0, len(prog.Opcodes))
	for _, code := range prog.Codes() {
		text = append(text, code)
	}

	return
}

func (prog *Program) Codes() iter.Seq2[int, Code] {
	return func(yield func(pc int, code Code) bool) {
		for _, op := range prog.Opcodes {
			if !yield(op.Ip, op.Code) {
				return
			}
		}
	}
}
