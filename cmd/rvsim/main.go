// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ezrec/rvsim/emulator"
)

type options struct {
	verbose  bool
	dump     int
	memory   uint
	maxTicks int
	defines  map[string]string
}

var errDefineSyntax = errors.New("define must be NAME=VALUE")

func parseArgs(name string, args []string) (opts options, files []string, err error) {
	opts.defines = make(map[string]string)

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.BoolVar(&opts.verbose, "v", false, "Verbose mode")
	flags.IntVar(&opts.dump, "m", 32, "Memory cells to dump after the run")
	flags.UintVar(&opts.memory, "M", 1024, "Memory size, in cells")
	flags.IntVar(&opts.maxTicks, "t", 0, "Maximum instructions to execute (0 is unlimited)")
	flags.Func("D", "Predefine an equate, as NAME=VALUE", func(arg string) error {
		equ, value, ok := strings.Cut(arg, "=")
		if !ok || len(equ) == 0 {
			return fmt.Errorf("%w: %q", errDefineSyntax, arg)
		}
		opts.defines[equ] = value
		return nil
	})

	err = flags.Parse(args)
	if err != nil {
		return
	}

	files = flags.Args()
	return
}

// run assembles and executes one program file, then dumps the machine state.
func run(opts options, path string, w io.Writer) (err error) {
	emu := emulator.NewEmulator(opts.memory)
	emu.Verbose = opts.verbose
	emu.MaxTicks = opts.maxTicks
	for equ, value := range opts.defines {
		emu.Predefine(equ, value)
	}

	err = emu.LoadFile(path)
	if err != nil {
		return
	}

	err = emu.Reset()
	if err != nil {
		return
	}

	runErr := emu.Run()

	// The state is dumped even after a fault.
	_, err = fmt.Fprintf(w, "ticks: %d\n", emu.Cpu.Ticks)
	if err == nil {
		err = emu.Cpu.DumpMemory(w, opts.dump)
	}
	if err == nil {
		err = emu.Cpu.DumpRegisters(w)
	}

	return errors.Join(runErr, err)
}

func main() {
	opts, files, err := parseArgs(os.Args[0], os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	if len(files) != 1 {
		log.Fatalf("%v: expected one program file, got %v", os.Args[0], files)
	}

	err = run(opts, files[0], os.Stdout)
	if err != nil {
		log.Fatalf("%v: %v", files[0], err)
	}
}
