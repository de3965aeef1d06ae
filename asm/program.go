package asm

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/ezrec/urisc/isa"
)

// Opcode is a line of assembled code with its source location and the
// instruction words it generated.
type Opcode struct {
	LineNo int
	Ip     int
	Words  []string
	Codes  []isa.Word
}

// Program is the output of the assembler.
type Program struct {
	Opcodes []Opcode
	Labels  map[string]int // Map of labels to word addresses.
}

type Debug struct {
	*Opcode
	Index int
}

// Debug locates the opcode that generated the word at ip.
func (prog *Program) Debug(ip int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if ip >= op.Ip && ip < op.Ip+len(op.Codes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  ip - op.Ip,
			}
			break
		}
	}

	return
}

// Binary returns the ROM image of the program.
func (prog *Program) Binary() (bins []isa.Word) {
	for _, code := range prog.Codes() {
		bins = append(bins, code)
	}

	return
}

// Codes iterates over the instruction words and their addresses.
func (prog *Program) Codes() iter.Seq2[int, isa.Word] {
	return func(yield func(ip int, code isa.Word) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(op.Ip+n, code) {
					return
				}
			}
		}
	}
}

// Label returns the first label naming an address.
func (prog *Program) Label(ip int) (label string, ok bool) {
	for name, addr := range prog.Labels {
		if addr != ip {
			continue
		}
		if !ok || name < label {
			label = name
			ok = true
		}
	}
	return
}

// Listing writes an address, word, and source listing of the program.
func (prog *Program) Listing(output io.Writer) (err error) {
	for _, op := range prog.Opcodes {
		for n, code := range op.Codes {
			ip := op.Ip + n
			if label, ok := prog.Label(ip); ok {
				_, err = fmt.Fprintf(output, "%v:\n", label)
				if err != nil {
					return
				}
			}
			source := ""
			if n == 0 {
				source = "; " + strings.Join(op.Words, " ")
			}
			_, err = fmt.Fprintf(output, "%02x: %016x  %-20v %v\n", ip, uint64(code), code, source)
			if err != nil {
				return
			}
		}
	}

	return
}
