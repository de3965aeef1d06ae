// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package isa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name     string
		op       Opcode
		rd       uint8
		rs1      uint8
		rs2      uint8
		imm      uint64
		expected Word
	}){
		{"nop", OP_NOP, 0, 0, 0, 0, 0x0000_0000_0000_0000},
		{"add", OP_ADD, 1, 2, 0, 0, 0x1280_0000_0000_0000},
		{"li", OP_LI, 7, 0, 0, 0x1234, 0x3e00_0000_0000_1234},
		{"st", OP_ST, 0, 0, 0, 0xff, 0x5000_0000_0000_00ff},
		{"rs2", OP_NOP, 0, 0, 7, 0, 0x0038_0000_0000_0000},
		{"halt", OP_HALT, 0, 0, 0, 0, 0xf000_0000_0000_0000},
		{"imm16_truncated", OP_ADDI, 1, 0, 0, 0x1_ffff, 0xc200_0000_0000_ffff},
		{"reg_truncated", OP_ADD, 9, 15, 0, 0, 0x13c0_0000_0000_0000},
		{"opcode_truncated", Opcode(0x13), 0, 0, 0, 0, 0x3000_0000_0000_0000},
		{"li64", OP_LI64, 2, 0, 0, 0x0007_dead_beef_cafe, 0x8407_dead_beef_cafe},
		{"li64_truncated", OP_LI64, 0, 0, 0, 0xffff_ffff_ffff_ffff, 0x8007_ffff_ffff_ffff},
	}

	for _, entry := range table {
		word := Encode(entry.op, entry.rd, entry.rs1, entry.rs2, entry.imm)
		assert.Equal(entry.expected, word, entry.name)
	}
}

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	word := Word(0xb6e8_0000_0000_8001)
	fields := Decode(word)

	assert.Equal(OP_SAR, fields.Opcode)
	assert.Equal(uint8(3), fields.Rd)
	assert.Equal(uint8(3), fields.Rs1)
	assert.Equal(uint8(5), fields.Rs2)
	assert.Equal(uint16(0x8001), fields.Imm16)
	assert.Equal(uint64(word), fields.Imm64)
	assert.Equal(uint8(0x01), word.Addr8())
	assert.Equal(int8(1), word.Disp8())

	assert.Equal(int8(-3), Word(0x60000000000000fd).Disp8())
}

func TestOpcodeString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("ADD", OP_ADD.String())
	assert.Equal("HALT", OP_HALT.String())
	assert.Equal("OP_E", Opcode(0xe).String())
	assert.False(Opcode(0xe).Assigned())
	assert.True(OP_NOP.Assigned())

	names := map[string]Opcode{}
	for name, op := range Opcodes() {
		names[name] = op
	}
	assert.Equal(15, len(names))
	assert.Equal(OP_LI64, names["LI64"])
}

func TestWordString(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		word     Word
		expected string
	}){
		{Encode(OP_NOP, 0, 0, 0, 0), "NOP"},
		{Encode(OP_ADD, 1, 2, 0, 0), "ADD r1, r2"},
		{Encode(OP_SUB, 7, 0, 0, 0), "SUB r7, r0"},
		{Encode(OP_LI, 0, 0, 0, 'A'), "LI r0, 0x41"},
		{Encode(OP_LD, 3, 0, 0, 0x10), "LD r3, 0x10"},
		{Encode(OP_ST, 0, 0, 0, 0xff), "ST r0, 0xff"},
		{Encode(OP_JZ, 2, 0, 0, 0xfd), "JZ r2, -3"},
		{Encode(OP_JMP, 0, 0, 0, 0x12), "JMP 0x12"},
		{Encode(OP_LI64, 4, 0, 0, 0x1234), "LI64 r4, 0x1234"},
		{Encode(OP_SAR, 1, 1, 0, 0), "SAR r1, r1"},
		{Encode(OP_SUBI, 0, 0, 0, 1), "SUBI r0, 0x1"},
		{Encode(OP_HALT, 0, 0, 0, 0), "HALT"},
		{Word(0xe000_0000_0000_0001), ".word 0xe000000000000001"},
		{Word(0x0000_0000_0000_0001), ".word 0x0000000000000001"},
	}

	for _, entry := range table {
		assert.Equal(entry.expected, entry.word.String())
	}
}

func FuzzEncode(f *testing.F) {
	f.Add(uint8(0), uint8(0), uint8(0), uint8(0), uint64(0))
	f.Add(uint8(0xf), uint8(7), uint8(7), uint8(7), uint64(0xffff))
	f.Add(uint8(0x8), uint8(3), uint8(0), uint8(0), uint64(0xffff_ffff_ffff_ffff))

	f.Fuzz(func(t *testing.T, op, rd, rs1, rs2 uint8, imm uint64) {
		assert := assert.New(t)

		word := Encode(Opcode(op), rd, rs1, rs2, imm)
		fields := Decode(word)

		assert.Equal(Opcode(op&OPCODE_MASK), fields.Opcode)
		assert.Equal(rd&REG_MASK, fields.Rd)
		assert.Equal(rs1&REG_MASK, fields.Rs1)
		assert.Equal(rs2&REG_MASK, fields.Rs2)
		assert.Equal(uint64(word), fields.Imm64)
		if fields.Opcode == OP_LI64 {
			assert.Equal(imm&LI64_MASK, uint64(word)&LI64_MASK)
		} else {
			assert.Equal(uint16(imm&IMM16_MASK), fields.Imm16)
		}

		assert.Equal(word, Encode(fields.Opcode, fields.Rd, fields.Rs1, fields.Rs2, uint64(word)&LI64_MASK))
	})
}
