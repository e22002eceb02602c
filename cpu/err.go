package cpu

import (
	"errors"
	"strconv"

	"github.com/ezrec/rvsim/translate"
)

var f = translate.From

var (
	// Loader errors
	ErrLoad = errors.New(f("program load failed"))

	// Cpu errors
	ErrPcEmpty      = errors.New(f("pc past end of program"))
	ErrPcBounds     = errors.New(f("pc out of bounds"))
	ErrDivideByZero = errors.New(f("division by zero"))

	// Instruction decode errors
	ErrOpcodeDecode = errors.New(f("decode"))
	ErrOpcodeAlu    = errors.New(f("alu"))
	ErrOpcodeMem    = errors.New(f("mem"))
	ErrOpcodeBranch = errors.New(f("branch"))
	ErrOpcodeRd     = errors.New(f("rd"))
	ErrOpcodeRs1    = errors.New(f("rs1"))
	ErrOpcodeRs2    = errors.New(f("rs2"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelSyntax        = errors.New(f("label syntax"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeMissing      = errors.New(f("argument missing"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrOpcode marks a fault raised while executing a decoded instruction.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("bad opcode '%v'", Code(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrRegisterBounds is a register index outside of x0-x31.
type ErrRegisterBounds int

func (err ErrRegisterBounds) Error() string {
	return f("register x%v out of bounds", strconv.Itoa(int(err)))
}

func (err ErrRegisterBounds) Is(target error) (ok bool) {
	_, ok = target.(ErrRegisterBounds)
	return
}

// ErrMemoryBounds is an effective address outside of memory.
type ErrMemoryBounds int64

func (err ErrMemoryBounds) Error() string {
	return f("address %v out of bounds", strconv.FormatInt(int64(err), 10))
}

func (err ErrMemoryBounds) Is(target error) (ok bool) {
	_, ok = target.(ErrMemoryBounds)
	return
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %v '%v' %v", strconv.Itoa(err.LineNo), err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseRegister string

func (err ErrParseRegister) Error() string {
	return f("'%v' is not a register", string(err))
}

type ErrParseAddress string

func (err ErrParseAddress) Error() string {
	return f("'%v' is not an offset(register) address", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrImmediateRange is an immediate that does not fit in 32 bits.
type ErrImmediateRange string

func (err ErrImmediateRange) Error() string {
	return f("'%v' does not fit in 32 bits", string(err))
}
