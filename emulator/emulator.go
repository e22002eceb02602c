// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/rvsim/cpu"
	"github.com/ezrec/rvsim/internal"
)

// Emulator state. CPU + assembled program.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.
	MaxTicks int          // If non-zero, the most instructions a run may execute.

	predefine map[string]string
}

// NewEmulator creates a new emulator with size cells of memory.
// A size of zero selects cpu.MEMORY_SIZE.
func NewEmulator(size uint) (emu *Emulator) {
	if size == 0 {
		size = cpu.MEMORY_SIZE
	}

	emu = &Emulator{
		Cpu:     cpu.NewCpu(size),
		Program: &cpu.Program{},
	}

	return
}

// Predefine sets an equate for the next Assemble.
func (emu *Emulator) Predefine(equ string, value string) {
	if emu.predefine == nil {
		emu.predefine = make(map[string]string)
	}
	emu.predefine[equ] = value
}

// Defines returns an iterator over all of the defines. Predefines come
// last, so they override the machine's own.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(emu.Cpu.Defines(), maps.All(emu.predefine))
}

// Assemble assembles program lines, and installs the result as the
// emulator's program. The previous program is kept on error.
func (emu *Emulator) Assemble(lines []string) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for equ, value := range emu.Defines() {
		asm.Predefine(equ, value)
	}

	prog, err := asm.Assemble(lines)
	if err != nil {
		return
	}

	emu.Program = prog
	return
}

// LoadFile loads and assembles a program file.
func (emu *Emulator) LoadFile(path string) (err error) {
	lines, err := LoadFile(path)
	if err != nil {
		return
	}

	return emu.Assemble(lines)
}

// Reset the machine, and prepare to run the program from its first
// instruction.
func (emu *Emulator) Reset() (err error) {
	if emu.Program == nil {
		err = ErrNoProgram
		return
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset(emu.Program.Text())

	return
}

// Code returns the current instruction code.
func (emu *Emulator) Code() (code cpu.Code) {
	op := emu.Program.Debug(emu.Cpu.Pc)
	if op != nil {
		code = op.Code
	}

	return
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	op := emu.Program.Debug(emu.Cpu.Pc)
	if op != nil {
		return op.LineNo
	}

	return 0
}

// Registers returns a copy of the register file.
func (emu *Emulator) Registers() [cpu.REGISTER_COUNT]int32 {
	return emu.Cpu.Register
}

// MemorySnapshot returns a copy of the first count memory cells.
func (emu *Emulator) MemorySnapshot(count int) []int32 {
	count = max(0, min(count, emu.Cpu.Memory.Len()))
	snap := make([]int32, count)
	copy(snap, emu.Cpu.Memory.Data)
	return snap
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	pc := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Pc: pc, Err: err}
		}
	}()

	if emu.MaxTicks > 0 && emu.Cpu.Ticks >= emu.MaxTicks && !emu.Cpu.Halted() {
		err = ErrTickLimit
		return
	}

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrPcEmpty) {
		err = nil
		done = true
		return
	}

	return
}

// Run ticks the emulator until the program runs off its end, or faults.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	if emu.Verbose {
		log.Printf("emulator: halted after %d ticks", emu.Cpu.Ticks)
	}

	return
}
