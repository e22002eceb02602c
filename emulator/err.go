package emulator

import (
	"errors"
	"strconv"

	"github.com/ezrec/rvsim/cpu"
	"github.com/ezrec/rvsim/translate"
)

var f = translate.From

var (
	ErrLoad      = cpu.ErrLoad
	ErrNoProgram = errors.New(f("no program assembled"))
	ErrTickLimit = errors.New(f("tick limit reached"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Pc     int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %v pc %v %v", strconv.Itoa(err.LineNo), strconv.Itoa(err.Pc), err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
