// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"log"

	"github.com/ezrec/urisc/isa"
)

// State is the run state of the CPU.
type State int

const (
	STATE_RESET   = State(0) // reset
	STATE_RUNNING = State(1) // running
	STATE_HALTED  = State(2) // halted
)

func (state State) String() string {
	switch state {
	case STATE_RESET:
		return "reset"
	case STATE_RUNNING:
		return "running"
	case STATE_HALTED:
		return "halted"
	}
	return fmt.Sprintf("State(%d)", int(state))
}

// Pulse is the output channel of the CPU during one clock period.
type Pulse struct {
	Strobe bool   // Set only for the clock period in which a store to the I/O port retired.
	Value  uint64 // Value stored to the I/O port.
}

// Cpu is the simulation context of the μRISC core.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.
	Period  int  // Clock edges per instruction retirement. Values below 1 act as 1.

	Register [isa.REGISTERS]uint64 // Register bank.
	Memory   [isa.RAM_DEPTH]uint64 // Data memory.

	Ticks   int // Clock edges spent running since reset.
	Retired int // Instructions retired since reset.

	pc      uint64
	state   State
	counter int
	output  Pulse
	rom     [isa.ROM_DEPTH]isa.Word
}

// NewCpu creates a new CPU, held in reset, retiring one instruction every
// period clock edges.
func NewCpu(period int) (cpu *Cpu) {
	cpu = &Cpu{
		Period: period,
	}

	return
}

// Load copies an image into the ROM. The remainder of the ROM is zeroed.
// The ROM may only be loaded while the CPU is held in reset.
func (cpu *Cpu) Load(image []isa.Word) (err error) {
	if cpu.state != STATE_RESET {
		err = ErrRomLocked
		return
	}

	if len(image) > len(cpu.rom) {
		err = ErrRomOverflow
		return
	}

	clear(cpu.rom[:])
	copy(cpu.rom[:], image)

	return
}

// Rom returns the ROM word at an address.
func (cpu *Cpu) Rom(addr uint8) isa.Word {
	return cpu.rom[addr]
}

// Pc returns the program counter. The ROM is indexed by its low 8 bits.
func (cpu *Cpu) Pc() uint64 {
	return cpu.pc
}

// State returns the current run state.
func (cpu *Cpu) State() State {
	return cpu.state
}

// Output returns the output channel level for the current clock period.
func (cpu *Cpu) Output() Pulse {
	return cpu.output
}

// Reset asserts reset: all state except the ROM is cleared and the CPU
// stays in reset until the next Step without reset.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.clearState()
	cpu.state = STATE_RESET
}

func (cpu *Cpu) clearState() {
	clear(cpu.Register[:])
	clear(cpu.Memory[:])
	cpu.pc = 0
	cpu.counter = 0
	cpu.output = Pulse{}
	cpu.Ticks = 0
	cpu.Retired = 0
}

func (cpu *Cpu) period() int {
	if cpu.Period < 1 {
		return 1
	}
	return cpu.Period
}

// Step advances the CPU by one clock edge. Reset has priority over all other
// behavior. The returned pulse is the output channel for the new clock
// period; its Strobe is set only if an I/O store retired on this edge.
func (cpu *Cpu) Step(reset bool) (pulse Pulse) {
	cpu.output = Pulse{}

	if reset {
		cpu.Reset()
		return
	}

	switch cpu.state {
	case STATE_RESET:
		cpu.clearState()
		cpu.state = STATE_RUNNING
		if cpu.Verbose {
			log.Printf("cpu: running, period %d", cpu.period())
		}
		return
	case STATE_HALTED:
		return
	}

	cpu.Ticks++

	if cpu.counter < cpu.period()-1 {
		cpu.counter++
		return
	}

	cpu.counter = 0
	pulse = cpu.Execute(cpu.rom[uint8(cpu.pc)])
	cpu.output = pulse

	return
}

// Execute retires a single instruction at the current PC. Register, memory
// and PC updates are committed together after the instruction is evaluated.
func (cpu *Cpu) Execute(word isa.Word) (pulse Pulse) {
	if cpu.Verbose {
		log.Printf("%02x: %v", uint8(cpu.pc), word)
	}

	rd := word.Rd()
	a := cpu.Register[rd]
	b := cpu.Register[word.Rs1()]

	next_pc := cpu.pc + 1
	halt := false

	var reg_write bool
	var reg_value uint64

	var mem_write bool
	var mem_addr uint8

	switch word.Opcode() {
	case isa.OP_NOP:
		// pass
	case isa.OP_ADD:
		reg_write, reg_value = true, a+b
	case isa.OP_SUB:
		reg_write, reg_value = true, a-b
	case isa.OP_LI:
		reg_write, reg_value = true, uint64(word.Imm16())
	case isa.OP_LD:
		reg_write, reg_value = true, cpu.Memory[word.Addr8()]
	case isa.OP_ST:
		mem_write, mem_addr = true, word.Addr8()
	case isa.OP_JZ:
		if a == 0 {
			next_pc = cpu.pc + uint64(int64(word.Disp8()))
		}
	case isa.OP_JMP:
		next_pc = uint64(word.Addr8())
	case isa.OP_LI64:
		reg_write, reg_value = true, word.Imm64()
	case isa.OP_SHL:
		reg_write, reg_value = true, a<<b
	case isa.OP_SHR:
		reg_write, reg_value = true, a>>b
	case isa.OP_SAR:
		reg_write, reg_value = true, uint64(int64(a)>>b)
	case isa.OP_ADDI:
		reg_write, reg_value = true, a+uint64(word.Imm16())
	case isa.OP_SUBI:
		reg_write, reg_value = true, a-uint64(word.Imm16())
	case isa.OP_HALT:
		next_pc = cpu.pc
		halt = true
	default:
		// Unassigned opcodes retire as NOP, and never fault.
	}

	if reg_write {
		cpu.Register[rd] = reg_value
	}

	if mem_write {
		cpu.Memory[mem_addr] = a
		if mem_addr == isa.IO_PORT {
			pulse = Pulse{Strobe: true, Value: a}
		}
	}

	cpu.pc = next_pc
	cpu.Retired++

	if halt {
		cpu.state = STATE_HALTED
		if cpu.Verbose {
			log.Printf("cpu: halted at %02x", uint8(cpu.pc))
		}
	}

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %v\n", "state", cpu.state)
	text += fmt.Sprintf("% 5s: %02x (%v)\n", "pc", uint8(cpu.pc), cpu.rom[uint8(cpu.pc)])
	for n, val := range cpu.Register {
		reg := fmt.Sprintf("r%d", n)
		text += fmt.Sprintf("% 5s: %04X_%04X_%04X_%04X\n", reg,
			(val>>48)&0xffff, (val>>32)&0xffff, (val>>16)&0xffff, val&0xffff)
	}
	text += fmt.Sprintf("% 5s: %d\n", "ticks", cpu.Ticks)

	return
}
