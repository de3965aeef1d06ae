package asm

import (
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// parenEval does compile-time $(...) evaluations. All numeric equates and
// all labels known so far are predeclared.
func (asm *Assembler) parenEval(expr string) (value uint64, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		if !reIdent.MatchString(key) || key[0] == '.' {
			continue
		}
		var equ uint64
		equ, err = parseNumber(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or labels.
			err = nil
			continue
		}
		pred[key] = starlark.MakeUint64(equ)
	}
	for key, ip := range asm.Label {
		if key[0] == '.' {
			continue
		}
		pred[key] = starlark.MakeInt(ip)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}

	if st_int64, ok := st_int.Int64(); ok {
		value = uint64(st_int64)
	} else if st_uint64, ok := st_int.Uint64(); ok {
		value = st_uint64
	} else {
		err = ErrParseExpression(expr)
	}

	return
}
