package emulator

import (
	"errors"
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/rvsim/cpu"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.Equal(cpu.MEMORY_SIZE, emu.Cpu.Memory.Len())
	assert.Equal(0, emu.Program.Len())

	assert.Equal(64, NewEmulator(64).Cpu.Memory.Len())
}

// doRunSingle steps a straight-line program, checking that each tick
// executes the next source line.
func doRunSingle(emu *Emulator, program []string, t *testing.T) {
	assert := assert.New(t)

	err := emu.Assemble(program)
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	err = emu.Reset()
	assert.NoError(err)

	for n, op := range emu.Program.Opcodes {
		here := program[op.LineNo-1]
		assert.Equal(n, emu.Cpu.Pc, here)
		assert.Equal(op.LineNo, emu.LineNo(), here)
		assert.Equal(op.Code, emu.Code(), here)
		done, err := emu.Tick()
		if err != nil {
			t.Log(emu.Cpu.String())
			t.Fatalf("%v", err)
		}
		assert.False(done, here)
	}

	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.Equal(0, emu.LineNo())
}

// doRunBranch runs a program to completion.
func doRunBranch(emu *Emulator, program []string, t *testing.T) {
	assert := assert.New(t)

	err := emu.Assemble(program)
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	err = emu.Reset()
	assert.NoError(err)

	err = emu.Run()
	assert.NoError(err)
	if err != nil {
		t.Log(emu.Cpu.String())
		t.Fatal(err)
	}
	assert.True(emu.Cpu.Halted())
}

func TestEmulatorRegisters(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)
	program := []string{
		"li x5 10",
		"li x6 20",
		"add x7 x5 x6",
		"sw x7 0(x0)",
		"lw x8 0(x0)",
	}

	doRunSingle(emu, program, t)

	regs := emu.Registers()
	assert.Equal(int32(10), regs[5])
	assert.Equal(int32(20), regs[6])
	assert.Equal(int32(30), regs[7])
	assert.Equal(int32(30), regs[8])
	assert.Equal([]int32{30, 0}, emu.MemorySnapshot(2))
	assert.Equal(5, emu.Cpu.Ticks)
}

func TestEmulatorLi(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)
	program := []string{
		"li x0 7",
		"li x1 -1",
		"li x2 2147483647",
		"li x3 -2147483648",
		"li x4 4294967295",
		"li x31 123456",
	}

	doRunSingle(emu, program, t)

	regs := emu.Registers()
	assert.Equal(int32(7), regs[0])
	assert.Equal(int32(-1), regs[1])
	assert.Equal(int32(2147483647), regs[2])
	assert.Equal(int32(-2147483648), regs[3])
	assert.Equal(int32(-1), regs[4]) // 2^32-1 and -1 are the same 32 bits
	assert.Equal(int32(123456), regs[31])
}

func TestEmulatorAlu(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)
	program := []string{
		"li x1 4294967295",
		"li x2 2",
		"add x3 x1 x2",
		"add x4 x2 x1",
		"sub x5 x2 x1",
		"mul x6 x1 x1",
		"li x7 -7",
		"div x8 x7 x2",
		"addi x9 x2 -10",
		"subi x10 x2 -10",
	}

	doRunSingle(emu, program, t)

	regs := emu.Registers()
	assert.Equal(int32(1), regs[3])
	assert.Equal(int32(1), regs[4])
	assert.Equal(int32(3), regs[5])
	assert.Equal(int32(1), regs[6])
	assert.Equal(int32(-4), regs[8])
	assert.Equal(int32(-8), regs[9])
	assert.Equal(int32(12), regs[10])
}

func TestEmulatorLoop(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)
	program := []string{
		"li x2 3",
		"li x1 0",
		".start",
		"addi x1 x1 1",
		"blt x1 x2 .start",
	}

	doRunBranch(emu, program, t)

	assert.Equal(int32(3), emu.Registers()[1])
	assert.Equal(2+3*2, emu.Cpu.Ticks)
}

func TestEmulatorBranch(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)

	// Not taken: falls through to the next instruction.
	err := emu.Assemble([]string{
		"li x1 1",
		"beq x1 x0 .skip",
		"li x2 2",
		".skip",
		"li x3 3",
	})
	assert.NoError(err)
	assert.NoError(emu.Reset())
	for range 2 {
		_, err = emu.Tick()
		assert.NoError(err)
	}
	assert.Equal(2, emu.Cpu.Pc)

	// Taken: lands exactly on the labeled instruction.
	assert.NoError(emu.Reset())
	_, err = emu.Tick()
	assert.NoError(err)
	emu.Cpu.Register[1] = 0
	_, err = emu.Tick()
	assert.NoError(err)
	assert.Equal(emu.Program.Label[".skip"], emu.Cpu.Pc)
	assert.Equal(3, emu.Cpu.Pc)
	assert.Equal(5, emu.LineNo())
}

func TestEmulatorForwardLabel(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)
	program := []string{
		"li x1 5",
		"bge x1 x0 .done",
		"li x2 99",
		".done",
		"bgt x1 x0 .positive",
		"li x3 99",
		".positive",
		"bne x1 x0 .end",
		"li x4 99",
		".end",
	}

	doRunBranch(emu, program, t)

	regs := emu.Registers()
	assert.Equal(int32(0), regs[2])
	assert.Equal(int32(0), regs[3])
	assert.Equal(int32(0), regs[4])
	assert.Equal(4, emu.Cpu.Ticks)
}

func TestEmulatorCall(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)
	program := []string{
		"li x10 0",
		"jal x1 .inc",
		"jal x1 .inc",
		"jal x1 .inc",
		"beq x0 x0 .exit",
		".inc",
		"addi x10 x10 1",
		"ret",
		".exit",
	}

	doRunBranch(emu, program, t)

	assert.Equal(int32(3), emu.Registers()[10])
	assert.Equal(int32(4), emu.Registers()[1]) // after the last jal
}

func TestEmulatorStack(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)

	// Recursive sum 1..n using memory as a stack, x2 as stack pointer.
	program := []string{
		".equ SP x2",
		"li SP MEMORY_SIZE",
		"li x10 5",
		"li x11 0",
		"jal x1 .sum",
		"beq x0 x0 .exit",
		".sum",
		"beq x10 x0 .sum_done",
		"subi SP SP 2",
		"sw x1 0(SP)",
		"sw x10 1(SP)",
		"subi x10 x10 1",
		"jal x1 .sum",
		"lw x10 1(SP)",
		"lw x1 0(SP)",
		"addi SP SP 2",
		"add x11 x11 x10",
		".sum_done",
		"ret",
		".exit",
	}

	doRunBranch(emu, program, t)

	regs := emu.Registers()
	assert.Equal(int32(15), regs[11])
	assert.Equal(int32(cpu.MEMORY_SIZE), regs[2])
}

func TestEmulatorStoreLoad(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)
	program := []string{
		"li x2 100",
		"li x5 -12345",
		"sw x5 0(x2)",
		"lw x6 0(x2)",
		"sw x5 -100(x2)",
		"lw x7 $(-100)(x2)",
	}

	doRunSingle(emu, program, t)

	regs := emu.Registers()
	assert.Equal(regs[5], regs[6])
	assert.Equal(regs[5], regs[7])
	assert.Equal(int32(-12345), emu.Cpu.Memory.Data[100])
	assert.Equal(int32(-12345), emu.Cpu.Memory.Data[0])
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(256)
	emu.Predefine("COUNT", "4")

	defines := maps.Collect(emu.Defines())
	assert.Equal("256", defines["MEMORY_SIZE"])
	assert.Equal("4", defines["COUNT"])
	assert.Equal("32", defines["REGISTER_COUNT"])

	doRunSingle(emu, []string{
		"li x1 COUNT",
		"li x2 $(MEMORY_SIZE - COUNT)",
	}, t)

	assert.Equal(int32(4), emu.Registers()[1])
	assert.Equal(int32(252), emu.Registers()[2])
}

func TestEmulatorErrRuntime(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []string
		lineno  int
		pc      int
		err     error
	}){
		{"div_zero", []string{"li x1 1", "", "div x3 x1 x2"}, 3, 1, cpu.ErrDivideByZero},
		{"lw_bounds", []string{"li x1 1024", "lw x2 0(x1)"}, 2, 1, cpu.ErrMemoryBounds(1024)},
		{"sw_bounds", []string{"li x1 -1", "sw x2 0(x1)"}, 2, 1, cpu.ErrMemoryBounds(-1)},
		{"ret_negative", []string{"li x1 -5", "ret"}, 2, 1, cpu.ErrPcBounds},
	}

	for _, entry := range table {
		emu := NewEmulator(0)
		err := emu.Assemble(entry.program)
		assert.NoError(err, entry.name)
		assert.NoError(emu.Reset(), entry.name)

		err = emu.Run()
		var re *ErrRuntime
		if assert.True(errors.As(err, &re), entry.name) {
			assert.Equal(entry.lineno, re.LineNo, entry.name)
			assert.Equal(entry.pc, re.Pc, entry.name)
		}
		assert.ErrorIs(err, entry.err, entry.name)
	}
}

func TestEmulatorTickLimit(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)
	emu.MaxTicks = 10

	err := emu.Assemble([]string{
		".forever",
		"beq x0 x0 .forever",
	})
	assert.NoError(err)
	assert.NoError(emu.Reset())

	err = emu.Run()
	assert.ErrorIs(err, ErrTickLimit)
	assert.Equal(10, emu.Cpu.Ticks)

	// A program that halts within the limit is unaffected.
	emu.MaxTicks = 1
	assert.NoError(emu.Assemble([]string{"li x1 1"}))
	assert.NoError(emu.Reset())
	assert.NoError(emu.Run())
}

func TestEmulatorAssembleError(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)
	assert.NoError(emu.Assemble([]string{"li x1 1"}))
	prog := emu.Program

	err := emu.Assemble([]string{"li x1 1", "li x32 1"})
	var se *cpu.ErrSyntax
	if assert.True(errors.As(err, &se)) {
		assert.Equal(2, se.LineNo)
		assert.Equal("li x32 1", se.Line)
	}
	assert.ErrorIs(err, cpu.ErrRegisterBounds(32))

	// The previous program is untouched.
	assert.Same(prog, emu.Program)

	emu.Program = nil
	assert.ErrorIs(emu.Reset(), ErrNoProgram)
}

func TestEmulatorMemorySnapshot(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(4)
	emu.Cpu.Memory.Data[0] = 9

	snap := emu.MemorySnapshot(10)
	assert.Equal([]int32{9, 0, 0, 0}, snap)
	snap[0] = 1
	assert.Equal(int32(9), emu.Cpu.Memory.Data[0])

	assert.Equal([]int32{}, emu.MemorySnapshot(0))
	assert.Equal([]int32{}, emu.MemorySnapshot(-1))

	regs := emu.Registers()
	regs[0] = 5
	assert.Equal(int32(0), emu.Cpu.Register[0])
}
