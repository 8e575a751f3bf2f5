package emulator

import (
	"errors"

	"github.com/ezrec/melo/translate"
)

var f = translate.From

var (
	ErrTickLimit     = errors.New(f("tick limit reached"))
	ErrImageSize     = errors.New(f("image exceeds address space"))
	ErrMemoryMissing = errors.New(f("no memory attached"))
	ErrDemoUnknown   = errors.New(f("unknown demo"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
