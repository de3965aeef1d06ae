// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package isa defines the μRISC instruction set: the 64-bit instruction word
// layout, the opcode table, and the architectural sizes shared by the
// assembler and the simulator.
//
// An instruction word is laid out as:
//
//	63..60  opcode
//	59..57  rd
//	56..54  rs1
//	53..51  rs2
//	50..16  zero (LI64 literal bits)
//	15..0   imm16
//
// LI64 treats the entire word as its 64-bit immediate.
package isa
