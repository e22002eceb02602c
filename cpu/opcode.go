package cpu

import (
	"fmt"
	"strings"
)

// CodeOp is an instruction operation.
type CodeOp int

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_ADD  = CodeOp(0)  // add
	OP_SUB  = CodeOp(1)  // sub
	OP_MUL  = CodeOp(2)  // mul
	OP_DIV  = CodeOp(3)  // div
	OP_ADDI = CodeOp(4)  // addi
	OP_SUBI = CodeOp(5)  // subi
	OP_LI   = CodeOp(6)  // li
	OP_LW   = CodeOp(7)  // lw
	OP_SW   = CodeOp(8)  // sw
	OP_BEQ  = CodeOp(9)  // beq
	OP_BNE  = CodeOp(10) // bne
	OP_BLT  = CodeOp(11) // blt
	OP_BGT  = CodeOp(12) // bgt
	OP_BGE  = CodeOp(13) // bge
	OP_JAL  = CodeOp(14) // jal
	OP_RET  = CodeOp(15) // ret

	OP_COUNT = 16 // Number of operations.
)

// CodeForm is the operand pattern of an operation.
type CodeForm int

const (
	FORM_NONE = CodeForm(0) // ret
	FORM_RRR  = CodeForm(1) // rd rs1 rs2
	FORM_RRI  = CodeForm(2) // rd rs1 imm
	FORM_RI   = CodeForm(3) // rd imm
	FORM_RM   = CodeForm(4) // rd imm(rs1)
	FORM_RRL  = CodeForm(5) // rs1 rs2 label
	FORM_RL   = CodeForm(6) // rd label
)

// Arity returns the number of operand words of the form.
func (form CodeForm) Arity() int {
	switch form {
	case FORM_RRR, FORM_RRI, FORM_RRL:
		return 3
	case FORM_RI, FORM_RM, FORM_RL:
		return 2
	}
	return 0
}

// Form returns the operand pattern of the operation.
func (op CodeOp) Form() CodeForm {
	switch op {
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV:
		return FORM_RRR
	case OP_ADDI, OP_SUBI:
		return FORM_RRI
	case OP_LI:
		return FORM_RI
	case OP_LW, OP_SW:
		return FORM_RM
	case OP_BEQ, OP_BNE, OP_BLT, OP_BGT, OP_BGE:
		return FORM_RRL
	case OP_JAL:
		return FORM_RL
	}
	return FORM_NONE
}

// CodeReg is a general purpose register index.
type CodeReg int

// Valid returns true if the register index names one of x0-x31.
func (reg CodeReg) Valid() bool {
	return reg >= 0 && reg < REGISTER_COUNT
}

func (reg CodeReg) String() string {
	return fmt.Sprintf("x%d", int(reg))
}

// Code is a single decoded instruction.
type Code struct {
	Op     CodeOp
	Rd     CodeReg
	Rs1    CodeReg
	Rs2    CodeReg
	Imm    int32
	Target int // Instruction index of a linked label.
}

// String returns the assembly language representation of this instruction.
// Linked labels are shown as their instruction index.
func (code Code) String() (out string) {
	words := []string{code.Op.String()}

	switch code.Op.Form() {
	case FORM_RRR:
		words = append(words, code.Rd.String(), code.Rs1.String(), code.Rs2.String())
	case FORM_RRI:
		words = append(words, code.Rd.String(), code.Rs1.String(), fmt.Sprint(code.Imm))
	case FORM_RI:
		words = append(words, code.Rd.String(), fmt.Sprint(code.Imm))
	case FORM_RM:
		words = append(words, code.Rd.String(), fmt.Sprintf("%d(%v)", code.Imm, code.Rs1))
	case FORM_RRL:
		words = append(words, code.Rs1.String(), code.Rs2.String(), fmt.Sprintf("@%d", code.Target))
	case FORM_RL:
		words = append(words, code.Rd.String(), fmt.Sprintf("@%d", code.Target))
	}

	out = strings.Join(words, " ")
	return
}

// Opcode represents a line of assembled code with its source location.
type Opcode struct {
	LineNo    int
	Ip        int
	Words     []string
	Code      Code
	LinkLabel string
}
