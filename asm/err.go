package asm

import (
	"errors"

	"github.com/ezrec/urisc/translate"
)

var f = translate.From

var (
	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrStringSyntax       = errors.New(f("string syntax"))
	ErrDirectiveInvalid   = errors.New(f("directive invalid"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeMissing      = errors.New(f("opcode missing"))

	// Macro errors
	ErrMacroSyntax     = errors.New(f(".macro syntax"))
	ErrMacroNesting    = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate  = errors.New(f(".macro duplicated"))
	ErrMacroLonely     = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm = errors.New(f(".endm without .macro"))
	ErrMacroArguments  = errors.New(f("macro argument count mismatch"))
	ErrMacroRecursion  = errors.New(f("macro expansion too deep"))
)

// ErrLabelMissing is a reference to a label that is never defined.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrSyntax locates an error in the assembly source.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseRegister string

func (err ErrParseRegister) Error() string {
	return f("'%v' is not a register", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrOpcodeUnknown string

func (err ErrOpcodeUnknown) Error() string {
	return f("'%v' is not an opcode", string(err))
}

// ErrMacro locates an error inside a macro expansion.
type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err)
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
