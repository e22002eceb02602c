package cpu

import (
	"bufio"
	"errors"
	"io"
)

// Load reads every line of program text from input.
// Lines are returned as read; the assembler trims them and skips empty ones,
// so that line numbers in errors match the source.
func Load(input io.Reader) (lines []string, err error) {
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	err = scanner.Err()
	if err != nil {
		lines = nil
		err = errors.Join(ErrLoad, err)
		return
	}

	return
}
