package cpu

import (
	"errors"

	"github.com/ezrec/urisc/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrRomOverflow = errors.New(f("rom image exceeds rom depth"))
	ErrRomLocked   = errors.New(f("rom load while not in reset"))
)
