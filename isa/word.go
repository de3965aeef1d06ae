// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package isa

import (
	"fmt"
)

const (
	OPCODE_SHIFT = 60
	RD_SHIFT     = 57
	RS1_SHIFT    = 54
	RS2_SHIFT    = 51

	OPCODE_MASK = 0xf
	REG_MASK    = 0x7
	IMM16_MASK  = 0xffff
	LI64_MASK   = (uint64(1) << RS2_SHIFT) - 1 // Literal bits below the register fields.
)

// Word is a single encoded instruction.
type Word uint64

// Fields is a decoded instruction word.
type Fields struct {
	Opcode Opcode
	Rd     uint8
	Rs1    uint8
	Rs2    uint8
	Imm16  uint16
	Imm64  uint64
}

// Encode packs an instruction. Out of range inputs are silently truncated:
// the opcode to 4 bits, registers to 3 bits, and the immediate to 16 bits
// (51 bits for LI64).
func Encode(op Opcode, rd, rs1, rs2 uint8, imm uint64) Word {
	word := (uint64(op)&OPCODE_MASK)<<OPCODE_SHIFT |
		(uint64(rd)&REG_MASK)<<RD_SHIFT |
		(uint64(rs1)&REG_MASK)<<RS1_SHIFT |
		(uint64(rs2)&REG_MASK)<<RS2_SHIFT

	if op&OPCODE_MASK == OP_LI64 {
		word |= imm & LI64_MASK
	} else {
		word |= imm & IMM16_MASK
	}

	return Word(word)
}

// Decode unpacks all fields of the instruction word.
func Decode(word Word) Fields {
	return Fields{
		Opcode: word.Opcode(),
		Rd:     word.Rd(),
		Rs1:    word.Rs1(),
		Rs2:    word.Rs2(),
		Imm16:  word.Imm16(),
		Imm64:  word.Imm64(),
	}
}

// Opcode returns the operation selector.
func (word Word) Opcode() Opcode {
	return Opcode((word >> OPCODE_SHIFT) & OPCODE_MASK)
}

// Rd returns the destination register index.
func (word Word) Rd() uint8 {
	return uint8((word >> RD_SHIFT) & REG_MASK)
}

// Rs1 returns the first source register index.
func (word Word) Rs1() uint8 {
	return uint8((word >> RS1_SHIFT) & REG_MASK)
}

// Rs2 returns the second source register index.
func (word Word) Rs2() uint8 {
	return uint8((word >> RS2_SHIFT) & REG_MASK)
}

// Imm16 returns the narrow immediate field.
func (word Word) Imm16() uint16 {
	return uint16(word & IMM16_MASK)
}

// Imm64 returns the whole word, as used by LI64.
func (word Word) Imm64() uint64 {
	return uint64(word)
}

// Addr8 returns the data memory or ROM address held in the low 8 bits.
func (word Word) Addr8() uint8 {
	return uint8(word & 0xff)
}

// Disp8 returns the low 8 bits of the immediate as a signed displacement.
func (word Word) Disp8() int8 {
	return int8(word & 0xff)
}

// String disassembles the word into assembler syntax.
func (word Word) String() (out string) {
	op := word.Opcode()
	rd := word.Rd()

	switch op {
	case OP_NOP, OP_HALT:
		if word&^(OPCODE_MASK<<OPCODE_SHIFT) != 0 {
			out = fmt.Sprintf(".word 0x%016x", uint64(word))
		} else {
			out = op.String()
		}
	case OP_ADD, OP_SUB, OP_SHL, OP_SHR, OP_SAR:
		out = fmt.Sprintf("%v r%d, r%d", op, rd, word.Rs1())
	case OP_LI, OP_ADDI, OP_SUBI:
		out = fmt.Sprintf("%v r%d, %#x", op, rd, word.Imm16())
	case OP_LD, OP_ST:
		out = fmt.Sprintf("%v r%d, %#x", op, rd, word.Addr8())
	case OP_JZ:
		out = fmt.Sprintf("%v r%d, %d", op, rd, word.Disp8())
	case OP_JMP:
		out = fmt.Sprintf("%v %#x", op, word.Addr8())
	case OP_LI64:
		out = fmt.Sprintf("%v r%d, %#x", op, rd, uint64(word)&LI64_MASK)
	default:
		out = fmt.Sprintf(".word 0x%016x", uint64(word))
	}

	return
}
