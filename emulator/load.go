package emulator

import (
	"errors"
	"io"
	"os"

	"github.com/ezrec/rvsim/cpu"
)

// Load reads every line of program text from input.
func Load(input io.Reader) (lines []string, err error) {
	return cpu.Load(input)
}

// LoadFile reads every line of program text from a file.
func LoadFile(path string) (lines []string, err error) {
	inf, err := os.Open(path)
	if err != nil {
		err = errors.Join(ErrLoad, err)
		return
	}
	defer inf.Close()

	return Load(inf)
}
