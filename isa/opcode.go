// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package isa

import (
	"fmt"
	"iter"
	"maps"
)

const (
	ROM_DEPTH = 256  // Instruction memory depth, in words.
	RAM_DEPTH = 256  // Data memory depth, in words.
	REGISTERS = 8    // General purpose registers r0..r7.
	IO_PORT   = 0xff // Data address whose stores are emitted as output pulses.

	WORD_BITS   = 64
	WORD_DIGITS = WORD_BITS / 4 // Hex digits per image line.
)

// Opcode is the 4-bit operation selector of an instruction word.
type Opcode uint8

const (
	OP_NOP  = Opcode(0x0) // NOP
	OP_ADD  = Opcode(0x1) // ADD
	OP_SUB  = Opcode(0x2) // SUB
	OP_LI   = Opcode(0x3) // LI
	OP_LD   = Opcode(0x4) // LD
	OP_ST   = Opcode(0x5) // ST
	OP_JZ   = Opcode(0x6) // JZ
	OP_JMP  = Opcode(0x7) // JMP
	OP_LI64 = Opcode(0x8) // LI64
	OP_SHL  = Opcode(0x9) // SHL
	OP_SHR  = Opcode(0xa) // SHR
	OP_SAR  = Opcode(0xb) // SAR
	OP_ADDI = Opcode(0xc) // ADDI
	OP_SUBI = Opcode(0xd) // SUBI
	OP_HALT = Opcode(0xf) // HALT
)

var opcodeName = [16]string{
	OP_NOP:  "NOP",
	OP_ADD:  "ADD",
	OP_SUB:  "SUB",
	OP_LI:   "LI",
	OP_LD:   "LD",
	OP_ST:   "ST",
	OP_JZ:   "JZ",
	OP_JMP:  "JMP",
	OP_LI64: "LI64",
	OP_SHL:  "SHL",
	OP_SHR:  "SHR",
	OP_SAR:  "SAR",
	OP_ADDI: "ADDI",
	OP_SUBI: "SUBI",
	OP_HALT: "HALT",
}

// Assigned returns true if the opcode has defined semantics.
// Unassigned opcodes execute as NOP.
func (op Opcode) Assigned() bool {
	return op < 16 && opcodeName[op] != ""
}

// String returns the mnemonic of the opcode.
func (op Opcode) String() string {
	if !op.Assigned() {
		return fmt.Sprintf("OP_%X", uint8(op))
	}
	return opcodeName[op]
}

// Opcodes returns the assigned opcodes, keyed by mnemonic.
func Opcodes() iter.Seq2[string, Opcode] {
	return func(yield func(name string, op Opcode) bool) {
		for n, name := range opcodeName {
			if name == "" {
				continue
			}
			if !yield(name, Opcode(n)) {
				return
			}
		}
	}
}

var _isa_defines = map[string]string{
	"ROM_DEPTH": fmt.Sprintf("%v", ROM_DEPTH),
	"RAM_DEPTH": fmt.Sprintf("%v", RAM_DEPTH),
	"IO_PORT":   fmt.Sprintf("%#x", IO_PORT),
}

// Defines returns the architectural constants as assembler equates.
func Defines() iter.Seq2[string, string] {
	return maps.All(_isa_defines)
}
