package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/urisc/isa"
)

func FuzzCpu(f *testing.F) {
	for op := range 16 {
		f.Add(uint64(isa.Encode(isa.Opcode(op), 1, 2, 3, 0x00ff)), uint64(0))
		f.Add(uint64(isa.Encode(isa.Opcode(op), 0, 7, 0, 0xff80)), uint64(0xffff_ffff_ffff_fff8))
	}

	f.Fuzz(func(t *testing.T, code uint64, value uint64) {
		assert := assert.New(t)

		word := isa.Word(code)

		cpu := NewCpu(1)
		assert.NoError(cpu.Load([]isa.Word{0x0, word}))
		cpu.Step(true)
		cpu.Step(false)
		cpu.Step(false)
		assert.Equal(uint64(1), cpu.Pc())

		var registers [isa.REGISTERS]uint64
		for n := range registers {
			registers[n] = value + uint64(n)
		}
		cpu.Register = registers
		cpu.Memory[word.Addr8()] = ^value

		pulse := cpu.Step(false)
		assert.Equal(2, cpu.Retired)

		rd := word.Rd()
		a := registers[rd]
		b := registers[word.Rs1()]

		// Only rd may change.
		for n := range registers {
			if n != int(rd) {
				assert.Equal(registers[n], cpu.Register[n])
			}
		}

		expected := a
		next_pc := uint64(2)
		state := STATE_RUNNING
		switch word.Opcode() {
		case isa.OP_ADD:
			expected = a + b
		case isa.OP_SUB:
			expected = a - b
		case isa.OP_LI:
			expected = uint64(word.Imm16())
		case isa.OP_LD:
			expected = ^value
		case isa.OP_ST:
			assert.Equal(a, cpu.Memory[word.Addr8()])
		case isa.OP_JZ:
			if a == 0 {
				next_pc = 1 + uint64(int64(word.Disp8()))
			}
		case isa.OP_JMP:
			next_pc = uint64(word.Addr8())
		case isa.OP_LI64:
			expected = code
		case isa.OP_SHL:
			expected = a << b
		case isa.OP_SHR:
			expected = a >> b
		case isa.OP_SAR:
			expected = uint64(int64(a) >> b)
		case isa.OP_ADDI:
			expected = a + uint64(word.Imm16())
		case isa.OP_SUBI:
			expected = a - uint64(word.Imm16())
		case isa.OP_HALT:
			next_pc = 1
			state = STATE_HALTED
		}

		assert.Equal(expected, cpu.Register[rd])
		assert.Equal(next_pc, cpu.Pc())
		assert.Equal(state, cpu.State())

		if word.Opcode() == isa.OP_ST && word.Addr8() == isa.IO_PORT {
			assert.Equal(Pulse{Strobe: true, Value: a}, pulse)
		} else {
			assert.False(pulse.Strobe)
		}
	})
}
