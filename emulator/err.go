package emulator

import (
	"errors"

	"github.com/ezrec/urisc/translate"
)

var f = translate.From

var (
	ErrTickLimit       = errors.New(f("tick limit reached before halt"))
	ErrMonitorArgument = errors.New(f("monitor argument invalid"))
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

// ErrMonitorCommand is an unknown monitor command.
type ErrMonitorCommand string

func (err ErrMonitorCommand) Error() string {
	return f("'%v' is not a monitor command", string(err))
}
