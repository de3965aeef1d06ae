package io

import (
	"fmt"
	"io"
)

// TapeFormat selects how output pulses are rendered on a Tape.
type TapeFormat int

const (
	TAPE_CHAR    = TapeFormat(0) // Low byte of the value, as a raw byte.
	TAPE_DECIMAL = TapeFormat(1) // Unsigned decimal, one value per line.
	TAPE_HEX     = TapeFormat(2) // Fixed width hex, one value per line.
)

var tapeFormatName = map[string]TapeFormat{
	"char":    TAPE_CHAR,
	"decimal": TAPE_DECIMAL,
	"hex":     TAPE_HEX,
}

// ParseTapeFormat returns the format for a name: char, decimal or hex.
func ParseTapeFormat(name string) (format TapeFormat, err error) {
	format, ok := tapeFormatName[name]
	if !ok {
		err = ErrTapeFormat
	}
	return
}

// Tape renders each output pulse onto a byte stream, the console of the
// μRISC system.
type Tape struct {
	Output io.Writer
	Format TapeFormat
}

var _ Port = (*Tape)(nil)

// Send writes a value to the output stream.
func (tc *Tape) Send(value uint64) (err error) {
	switch tc.Format {
	case TAPE_CHAR:
		_, err = tc.Output.Write([]byte{byte(value)})
	case TAPE_DECIMAL:
		_, err = fmt.Fprintf(tc.Output, "%d\n", value)
	case TAPE_HEX:
		_, err = fmt.Fprintf(tc.Output, "%016x\n", value)
	default:
		err = ErrTapeFormat
	}

	return
}
