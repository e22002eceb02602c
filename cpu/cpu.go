package cpu

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
)

const (
	REGISTER_COUNT = 32 // General purpose registers x0-x31.
	REGISTER_LINK  = 1  // x1 holds the return address for ret.
)

var _cpu_defines = map[string]string{
	"REGISTER_COUNT": fmt.Sprintf("%d", REGISTER_COUNT),
	"REGISTER_LINK":  fmt.Sprintf("%d", REGISTER_LINK),
}

// Cpu is the simulation context for the machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Pc       int                   // Index of the next instruction to execute.
	Register [REGISTER_COUNT]int32 // Register bank. x0 is not hardwired.
	Memory   Memory                // Data and stack memory.
	Text     []Code                // Instruction memory.

	Ticks int // Instructions executed since reset.
}

// NewCpu creates a new CPU with a specifically sized memory.
func NewCpu(size uint) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: NewMemory(size),
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	defines := maps.Clone(_cpu_defines)
	defines["MEMORY_SIZE"] = fmt.Sprintf("%d", cpu.Memory.Len())
	return maps.All(defines)
}

// Reset the CPU state.
// - Clears the registers and memory.
// - Zeros the tick counter.
// - Installs text as the instruction memory, and starts at index 0.
func (cpu *Cpu) Reset(text []Code) {
	if cpu.Verbose {
		log.Printf("cpu: reset, %d instructions", len(text))
	}

	clear(cpu.Register[:])
	cpu.Memory.Reset()
	cpu.Text = text
	cpu.Pc = 0
	cpu.Ticks = 0
}

// Halted returns true once the program counter has run past the program.
func (cpu *Cpu) Halted() bool {
	return cpu.Pc >= len(cpu.Text)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text = fmt.Sprintf("% 5s: %d\n", "pc", cpu.Pc)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 5s: %08X (%d)\n", CodeReg(n).String(), uint32(val), val)
	}

	return
}

// DumpRegisters writes every register, one per line.
// Negative words are followed by their unsigned reading.
func (cpu *Cpu) DumpRegisters(w io.Writer) (err error) {
	for n, val := range cpu.Register {
		if val < 0 {
			_, err = fmt.Fprintf(w, "x%-2d: %d (%d)\n", n, val, uint32(val))
		} else {
			_, err = fmt.Fprintf(w, "x%-2d: %d\n", n, val)
		}
		if err != nil {
			return
		}
	}

	return
}

// DumpMemory writes the first count memory cells, one per line.
func (cpu *Cpu) DumpMemory(w io.Writer, count int) (err error) {
	count = min(count, cpu.Memory.Len())
	for n := range count {
		_, err = fmt.Fprintf(w, "%-4d: %d\n", n, cpu.Memory.Data[n])
		if err != nil {
			return
		}
	}

	return
}

// FetchCode fetches the instruction at the program counter.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	if cpu.Pc < 0 {
		if cpu.Verbose {
			log.Printf("cpu: pc %d < 0", cpu.Pc)
		}
		err = ErrPcBounds
		return
	}

	if cpu.Halted() {
		err = ErrPcEmpty
		return
	}

	code = cpu.Text[cpu.Pc]
	return
}

// Tick executes a single CPU instruction cycle.
func (cpu *Cpu) Tick() (err error) {
	code, err := cpu.FetchCode()
	if err != nil {
		return
	}

	err = cpu.Execute(code)
	return
}

// Execute executes a single decoded instruction.
// On error the machine state is left as it was before the instruction.
func (cpu *Cpu) Execute(code Code) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()
	if cpu.Verbose {
		log.Printf("%03d: %v", cpu.Pc, code)
	}

	next_pc := cpu.Pc + 1

	switch code.Op {
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV:
		var a, b int32
		a, err = cpu.getValue(code.Rs1)
		if err != nil {
			err = errors.Join(ErrOpcodeAlu, ErrOpcodeRs1, err)
			return
		}
		b, err = cpu.getValue(code.Rs2)
		if err != nil {
			err = errors.Join(ErrOpcodeAlu, ErrOpcodeRs2, err)
			return
		}
		var output int32
		output, err = cpu.doAlu(code.Op, a, b)
		if err != nil {
			err = errors.Join(ErrOpcodeAlu, err)
			return
		}
		err = cpu.setValue(code.Rd, output)
		if err != nil {
			err = errors.Join(ErrOpcodeAlu, ErrOpcodeRd, err)
			return
		}
	case OP_ADDI, OP_SUBI:
		var a int32
		a, err = cpu.getValue(code.Rs1)
		if err != nil {
			err = errors.Join(ErrOpcodeAlu, ErrOpcodeRs1, err)
			return
		}
		op := OP_ADD
		if code.Op == OP_SUBI {
			op = OP_SUB
		}
		output, _ := cpu.doAlu(op, a, code.Imm)
		err = cpu.setValue(code.Rd, output)
		if err != nil {
			err = errors.Join(ErrOpcodeAlu, ErrOpcodeRd, err)
			return
		}
	case OP_LI:
		err = cpu.setValue(code.Rd, code.Imm)
		if err != nil {
			err = errors.Join(ErrOpcodeAlu, ErrOpcodeRd, err)
			return
		}
	case OP_LW, OP_SW:
		var base int32
		base, err = cpu.getValue(code.Rs1)
		if err != nil {
			err = errors.Join(ErrOpcodeMem, ErrOpcodeRs1, err)
			return
		}
		addr := int64(base) + int64(code.Imm)
		if code.Op == OP_LW {
			if !code.Rd.Valid() {
				err = errors.Join(ErrOpcodeMem, ErrOpcodeRd, ErrRegisterBounds(code.Rd))
				return
			}
			var value int32
			value, err = cpu.Memory.Load(addr)
			if err != nil {
				err = errors.Join(ErrOpcodeMem, err)
				return
			}
			cpu.Register[code.Rd] = value
		} else {
			var value int32
			value, err = cpu.getValue(code.Rd)
			if err != nil {
				err = errors.Join(ErrOpcodeMem, ErrOpcodeRd, err)
				return
			}
			err = cpu.Memory.Store(addr, value)
			if err != nil {
				err = errors.Join(ErrOpcodeMem, err)
				return
			}
		}
	case OP_BEQ, OP_BNE, OP_BLT, OP_BGT, OP_BGE:
		var a, b int32
		a, err = cpu.getValue(code.Rs1)
		if err != nil {
			err = errors.Join(ErrOpcodeBranch, ErrOpcodeRs1, err)
			return
		}
		b, err = cpu.getValue(code.Rs2)
		if err != nil {
			err = errors.Join(ErrOpcodeBranch, ErrOpcodeRs2, err)
			return
		}
		if cpu.doCond(code.Op, a, b) {
			next_pc = code.Target
		}
	case OP_JAL:
		// Link to the instruction after the jal.
		err = cpu.setValue(code.Rd, int32(next_pc))
		if err != nil {
			err = errors.Join(ErrOpcodeBranch, ErrOpcodeRd, err)
			return
		}
		next_pc = code.Target
	case OP_RET:
		link := cpu.Register[REGISTER_LINK]
		if link < 0 {
			err = errors.Join(ErrOpcodeBranch, ErrPcBounds)
			return
		}
		next_pc = int(link)
	default:
		err = ErrOpcodeDecode
		return
	}

	cpu.Pc = next_pc
	cpu.Ticks += 1

	return
}

// getValue reads a register.
func (cpu *Cpu) getValue(reg CodeReg) (value int32, err error) {
	if !reg.Valid() {
		err = ErrRegisterBounds(reg)
		return
	}

	value = cpu.Register[reg]
	return
}

// setValue writes a register.
func (cpu *Cpu) setValue(reg CodeReg, value int32) (err error) {
	if !reg.Valid() {
		err = ErrRegisterBounds(reg)
		return
	}

	cpu.Register[reg] = value
	return
}

// wrap reduces a full precision result modulo 2^32.
func wrap(value int64) int32 {
	return int32(uint32(value))
}

// doAlu performs the requested ALU action, and returns the output value.
func (cpu *Cpu) doAlu(op CodeOp, a, b int32) (output int32, err error) {
	switch op {
	case OP_ADD:
		output = wrap(int64(a) + int64(b))
	case OP_SUB:
		output = wrap(int64(a) - int64(b))
	case OP_MUL:
		output = wrap(int64(a) * int64(b))
	case OP_DIV:
		if b == 0 {
			err = ErrDivideByZero
			return
		}
		output = wrap(floorDiv(int64(a), int64(b)))
	default:
		err = ErrOpcodeDecode
	}

	return
}

// floorDiv divides, rounding toward negative infinity.
func floorDiv(a, b int64) (q int64) {
	q = a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return
}

// doCond evaluates a signed branch condition.
func (cpu *Cpu) doCond(op CodeOp, a, b int32) bool {
	switch op {
	case OP_BEQ:
		return a == b
	case OP_BNE:
		return a != b
	case OP_BLT:
		return a < b
	case OP_BGT:
		return a > b
	case OP_BGE:
		return a >= b
	}
	return false
}
