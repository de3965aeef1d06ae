package io

import (
	"errors"

	"github.com/ezrec/urisc/translate"
)

var f = translate.From

var (
	// Image errors
	ErrImageOverflow = errors.New(f("image exceeds rom depth"))

	// Port errors
	ErrTapeFormat = errors.New(f("tape format unknown"))
)

// ErrImageSyntax is a malformed line of a ROM image file.
type ErrImageSyntax struct {
	LineNo int
	Line   string
}

func (err ErrImageSyntax) Error() string {
	return f("image line %d '%v' is not a hex word", err.LineNo, err.Line)
}
